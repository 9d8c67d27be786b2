package auth

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kale-connect/kaleconnect/internal/store"
)

type account struct {
	id   Principal
	priv ed25519.PrivateKey
}

func newAccount(t *testing.T) account {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return account{id: AccountID(pub), priv: priv}
}

func (a account) sign(ch Challenge) []byte {
	return ed25519.Sign(a.priv, []byte(ch.Message))
}

func newService(t *testing.T) (*Service, *TokenIssuer) {
	t.Helper()
	issuer := NewTokenIssuer("test-secret", time.Minute)
	return NewService(store.NewMemory(), issuer), issuer
}

func TestLoginWithSignedChallenge(t *testing.T) {
	ctx := context.Background()
	svc, issuer := newService(t)
	alice := newAccount(t)

	ch, err := svc.Challenge(ctx, alice.id)
	require.NoError(t, err)
	assert.Contains(t, ch.Message, string(alice.id))
	assert.Contains(t, ch.Message, ch.Nonce)

	pair, err := svc.LoginWithSignature(ctx, alice.id, alice.sign(ch))
	require.NoError(t, err)

	p, err := issuer.Verify(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, alice.id, p)
}

func TestForeignKeyCannotLoginAsAccount(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	victim, attacker := newAccount(t), newAccount(t)

	ch, err := svc.Challenge(ctx, victim.id)
	require.NoError(t, err)

	_, err = svc.LoginWithSignature(ctx, victim.id, attacker.sign(ch))
	require.ErrorIs(t, err, ErrInvalidCredentials)
	require.ErrorIs(t, svc.Register(ctx, victim.id, "attacker-secret", attacker.sign(ch)), ErrInvalidCredentials)

	_, err = svc.Login(ctx, victim.id, "attacker-secret")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	// The failed attempts did not burn the victim's challenge.
	_, err = svc.LoginWithSignature(ctx, victim.id, victim.sign(ch))
	require.NoError(t, err)
}

func TestChallengeIsSingleUse(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	alice := newAccount(t)

	ch, err := svc.Challenge(ctx, alice.id)
	require.NoError(t, err)
	sig := alice.sign(ch)

	_, err = svc.LoginWithSignature(ctx, alice.id, sig)
	require.NoError(t, err)
	_, err = svc.LoginWithSignature(ctx, alice.id, sig)
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestChallengeExpires(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	alice := newAccount(t)

	ch, err := svc.Challenge(ctx, alice.id)
	require.NoError(t, err)

	now = now.Add(challengeTTL)
	_, err = svc.LoginWithSignature(ctx, alice.id, alice.sign(ch))
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginWithoutChallenge(t *testing.T) {
	svc, _ := newService(t)
	alice := newAccount(t)
	_, err := svc.LoginWithSignature(context.Background(), alice.id, make([]byte, ed25519.SignatureSize))
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestChallengeRejectsNonAccount(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Challenge(context.Background(), "GADMIN")
	require.ErrorIs(t, err, ErrInvalidAccount)
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, issuer := newService(t)
	admin := newAccount(t)

	ch, err := svc.Challenge(ctx, admin.id)
	require.NoError(t, err)
	require.NoError(t, svc.Register(ctx, admin.id, "correct-horse", admin.sign(ch)))

	ch, err = svc.Challenge(ctx, admin.id)
	require.NoError(t, err)
	require.ErrorIs(t, svc.Register(ctx, admin.id, "another-secret", admin.sign(ch)), ErrCredentialExists)

	pair, err := svc.Login(ctx, admin.id, "correct-horse")
	require.NoError(t, err)
	assert.True(t, pair.ExpiresAt.After(time.Now()))

	p, err := issuer.Verify(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, admin.id, p)
}

func TestLoginRejectsBadSecret(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	user := newAccount(t)

	_, err := svc.Login(ctx, user.id, "whatever-secret")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	ch, err := svc.Challenge(ctx, user.id)
	require.NoError(t, err)
	require.NoError(t, svc.Register(ctx, user.id, "user-secret", user.sign(ch)))
	_, err = svc.Login(ctx, user.id, "wrong-secret")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterRejectsWeakSecret(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	user := newAccount(t)

	ch, err := svc.Challenge(ctx, user.id)
	require.NoError(t, err)
	require.ErrorIs(t, svc.Register(ctx, user.id, "short", user.sign(ch)), ErrWeakSecret)
}
