package auth

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/kale-connect/kaleconnect/internal/store"
)

const (
	credentialsNamespace = "auth"
	credentialTag        = "Credential"
	challengeTag         = "Challenge"
	minSecretLength      = 8
	challengeTTL         = 5 * time.Minute
)

var (
	// ErrCredentialExists is returned when a principal registers twice.
	ErrCredentialExists = errors.New("credential already registered")
	// ErrInvalidCredentials is returned when authentication fails.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrWeakSecret is returned when a secret is too short.
	ErrWeakSecret = errors.New("secret must be at least 8 characters")
)

type credential struct {
	Hash      []byte    `json:"hash"`
	CreatedAt time.Time `json:"created_at"`
}

// Challenge is a single-use login nonce. The account proves ownership by
// signing Message with its ed25519 key.
type Challenge struct {
	Principal Principal `json:"principal"`
	Nonce     string    `json:"nonce"`
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expires_at"`
	Used      bool      `json:"used"`
}

// Service issues bearer tokens to principals that prove they own their
// account, either by signing a challenge or with a secret bound earlier
// under such a proof.
type Service struct {
	store  store.Store
	tokens *TokenIssuer
	now    func() time.Time
}

// NewService creates a new auth service.
func NewService(st store.Store, tokens *TokenIssuer) *Service {
	return &Service{store: st, tokens: tokens, now: time.Now}
}

// TokenPair is the outcome of a successful login.
type TokenPair struct {
	AccessToken string
	ExpiresAt   time.Time
}

func challengeMessage(p Principal, nonce string) string {
	return fmt.Sprintf("kaleconnect login\naccount: %s\nnonce: %s", p, nonce)
}

// Challenge issues a fresh nonce for p, replacing any outstanding one.
func (s *Service) Challenge(ctx context.Context, p Principal) (Challenge, error) {
	if _, err := AccountKey(p); err != nil {
		return Challenge{}, err
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return Challenge{}, fmt.Errorf("generate nonce: %w", err)
	}
	nonce := hex.EncodeToString(buf)
	ch := Challenge{
		Principal: p,
		Nonce:     nonce,
		Message:   challengeMessage(p, nonce),
		ExpiresAt: s.now().Add(challengeTTL).UTC(),
	}
	err := s.store.Update(ctx, credentialsNamespace, func(tx store.Txn) error {
		return tx.Set(store.ScopeInstance, store.Keyed(challengeTag, string(p)), ch)
	})
	if err != nil {
		return Challenge{}, err
	}
	return ch, nil
}

// consumeChallenge verifies signature over p's outstanding challenge and
// marks it used. Any mismatch is reported as ErrInvalidCredentials.
func (s *Service) consumeChallenge(tx store.Txn, p Principal, signature []byte) error {
	pub, err := AccountKey(p)
	if err != nil {
		return ErrInvalidCredentials
	}
	key := store.Keyed(challengeTag, string(p))
	var ch Challenge
	found, err := tx.Get(store.ScopeInstance, key, &ch)
	if err != nil {
		return err
	}
	if !found || ch.Used || !s.now().Before(ch.ExpiresAt) {
		return ErrInvalidCredentials
	}
	if !ed25519.Verify(pub, []byte(ch.Message), signature) {
		return ErrInvalidCredentials
	}
	ch.Used = true
	return tx.Set(store.ScopeInstance, key, ch)
}

// LoginWithSignature exchanges a signed challenge for an access token.
func (s *Service) LoginWithSignature(ctx context.Context, p Principal, signature []byte) (TokenPair, error) {
	err := s.store.Update(ctx, credentialsNamespace, func(tx store.Txn) error {
		return s.consumeChallenge(tx, p, signature)
	})
	if err != nil {
		return TokenPair{}, err
	}
	return s.issue(p)
}

// Register binds a hashed secret to p. The caller proves ownership of p by
// signing its outstanding challenge; p must not have a secret yet.
func (s *Service) Register(ctx context.Context, p Principal, secret string, signature []byte) error {
	if _, err := AccountKey(p); err != nil {
		return err
	}
	if len(secret) < minSecretLength {
		return ErrWeakSecret
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	key := store.Keyed(credentialTag, string(p))
	return s.store.Update(ctx, credentialsNamespace, func(tx store.Txn) error {
		if err := s.consumeChallenge(tx, p, signature); err != nil {
			return err
		}
		exists, err := tx.Has(store.ScopePersistent, key)
		if err != nil {
			return err
		}
		if exists {
			return ErrCredentialExists
		}
		return tx.Set(store.ScopePersistent, key, credential{Hash: hash, CreatedAt: s.now().UTC()})
	})
}

// Login verifies the secret and issues an access token for p.
func (s *Service) Login(ctx context.Context, p Principal, secret string) (TokenPair, error) {
	var cred credential
	err := s.store.View(ctx, credentialsNamespace, func(tx store.Txn) error {
		found, err := tx.Get(store.ScopePersistent, store.Keyed(credentialTag, string(p)), &cred)
		if err != nil {
			return err
		}
		if !found {
			return ErrInvalidCredentials
		}
		return nil
	})
	if err != nil {
		return TokenPair{}, err
	}

	if err := bcrypt.CompareHashAndPassword(cred.Hash, []byte(secret)); err != nil {
		return TokenPair{}, ErrInvalidCredentials
	}
	return s.issue(p)
}

func (s *Service) issue(p Principal) (TokenPair, error) {
	token, exp, err := s.tokens.Issue(p)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: token, ExpiresAt: exp}, nil
}
