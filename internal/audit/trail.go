package audit

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/kale-connect/kaleconnect/internal/auth"
	"github.com/kale-connect/kaleconnect/internal/store"
)

const (
	namespace = "audit"
	headTag   = "Head"
	eventTag  = "Event"
)

// ErrBrokenChain is returned by Verify when an event does not link to its predecessor.
var ErrBrokenChain = errors.New("audit chain broken")

// Event is one entry of a principal's audit chain.
type Event struct {
	ID         string         `json:"id"`
	Principal  auth.Principal `json:"principal"`
	Seq        uint64         `json:"seq"`
	Timestamp  time.Time      `json:"ts"`
	Action     string         `json:"action"`
	PayloadRef string         `json:"payload_ref"`
	PrevHash   string         `json:"prev_hash,omitempty"`
	ChainHash  string         `json:"chain_hash"`
}

type head struct {
	Length    uint64 `json:"length"`
	ChainHash string `json:"chain_hash"`
}

// Recorder receives registry mutations after they commit.
type Recorder interface {
	Record(ctx context.Context, p auth.Principal, action string, payload any) error
}

// Trail keeps one HMAC-linked chain of events per principal.
type Trail struct {
	store  store.Store
	secret []byte
	now    func() time.Time
}

// NewTrail creates a trail over st keyed by secret.
func NewTrail(st store.Store, secret string) *Trail {
	return &Trail{store: st, secret: []byte(secret), now: time.Now}
}

func (t *Trail) mac(s string) string {
	h := hmac.New(sha256.New, t.secret)
	h.Write([]byte(s))
	return hex.EncodeToString(h.Sum(nil))
}

func (t *Trail) chainHash(e Event) string {
	return t.mac(e.Action + "|" + e.Timestamp.Format(time.RFC3339Nano) + "|" + e.PayloadRef + "|" + e.PrevHash)
}

func eventKey(p auth.Principal, seq uint64) store.Key {
	return store.Keyed(eventTag, string(p)+"/"+strconv.FormatUint(seq, 10))
}

// Append adds an event to p's chain, linking it to the current head.
func (t *Trail) Append(ctx context.Context, p auth.Principal, action string, payload any) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("encode audit payload: %w", err)
	}

	var evt Event
	err = t.store.Update(ctx, namespace, func(tx store.Txn) error {
		var h head
		headKey := store.Keyed(headTag, string(p))
		if _, err := tx.Get(store.ScopePersistent, headKey, &h); err != nil {
			return err
		}
		evt = Event{
			ID:         uuid.NewString(),
			Principal:  p,
			Seq:        h.Length + 1,
			Timestamp:  t.now().UTC(),
			Action:     action,
			PayloadRef: t.mac(string(raw)),
			PrevHash:   h.ChainHash,
		}
		evt.ChainHash = t.chainHash(evt)
		if err := tx.Set(store.ScopePersistent, eventKey(p, evt.Seq), evt); err != nil {
			return err
		}
		return tx.Set(store.ScopePersistent, headKey, head{Length: evt.Seq, ChainHash: evt.ChainHash})
	})
	if err != nil {
		return Event{}, err
	}
	return evt, nil
}

// Record implements Recorder.
func (t *Trail) Record(ctx context.Context, p auth.Principal, action string, payload any) error {
	_, err := t.Append(ctx, p, action, payload)
	return err
}

// Events returns p's chain, oldest first.
func (t *Trail) Events(ctx context.Context, p auth.Principal) ([]Event, error) {
	events := []Event{}
	err := t.store.View(ctx, namespace, func(tx store.Txn) error {
		var h head
		if _, err := tx.Get(store.ScopePersistent, store.Keyed(headTag, string(p)), &h); err != nil {
			return err
		}
		for seq := uint64(1); seq <= h.Length; seq++ {
			var evt Event
			found, err := tx.Get(store.ScopePersistent, eventKey(p, seq), &evt)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("event %d: %w", seq, ErrBrokenChain)
			}
			events = append(events, evt)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

// Verify recomputes every chain hash and checks each event links to the one before it.
func (t *Trail) Verify(events []Event) error {
	prev := ""
	for i, evt := range events {
		if evt.PrevHash != prev {
			return fmt.Errorf("event %d: prev hash mismatch: %w", i+1, ErrBrokenChain)
		}
		if !hmac.Equal([]byte(evt.ChainHash), []byte(t.chainHash(evt))) {
			return fmt.Errorf("event %d: chain hash mismatch: %w", i+1, ErrBrokenChain)
		}
		prev = evt.ChainHash
	}
	return nil
}
