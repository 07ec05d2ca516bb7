package identity

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newProvider() *Provider {
	return NewProvider(NewMemoryUserStore(), []byte("test-signing-key"), time.Hour)
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	p := newProvider()

	if err := p.Register(ctx, "ada", "hunter22"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := p.Register(ctx, "ada", "other-pass"); !errors.Is(err, ErrDuplicateUser) {
		t.Fatalf("duplicate username must be rejected, got %v", err)
	}
	if err := p.Register(ctx, "", "hunter22"); err == nil {
		t.Fatalf("empty username must be rejected")
	}
	if err := p.Register(ctx, "ben", "short"); err == nil {
		t.Fatalf("short password must be rejected")
	}

	token, err := p.Login(ctx, "ada", "hunter22")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	owner, ok := p.CurrentUser(token)
	if !ok || owner != "ada" {
		t.Fatalf("current user: got (%q, %v)", owner, ok)
	}
}

func TestLoginFailuresAreUniform(t *testing.T) {
	ctx := context.Background()
	p := newProvider()
	p.Register(ctx, "ada", "hunter22")

	if _, err := p.Login(ctx, "ada", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: %v", err)
	}
	if _, err := p.Login(ctx, "nobody", "hunter22"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("missing user must look identical: %v", err)
	}
}

func TestCurrentUserRejectsBadTokens(t *testing.T) {
	ctx := context.Background()
	p := newProvider()
	p.Register(ctx, "ada", "hunter22")
	token, _ := p.Login(ctx, "ada", "hunter22")

	if _, ok := p.CurrentUser(""); ok {
		t.Fatalf("empty token accepted")
	}
	if _, ok := p.CurrentUser("not-a-jwt"); ok {
		t.Fatalf("garbage token accepted")
	}
	// A token signed with a different key must not resolve.
	other := NewProvider(NewMemoryUserStore(), []byte("other-key"), time.Hour)
	if _, ok := other.CurrentUser(token); ok {
		t.Fatalf("cross-key token accepted")
	}
	// Expired sessions resolve to no user.
	expired := NewProvider(p.store, []byte("test-signing-key"), time.Hour)
	expired.sessionTTL = -time.Minute
	tok, err := expired.Login(ctx, "ada", "hunter22")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, ok := expired.CurrentUser(tok); ok {
		t.Fatalf("expired token accepted")
	}
}

func TestRewardClaim(t *testing.T) {
	ctx := context.Background()
	p := newProvider()
	p.Register(ctx, "ada", "hunter22")

	claimed, err := p.RewardClaimed(ctx, "ada")
	if err != nil || claimed {
		t.Fatalf("fresh user: (%v, %v)", claimed, err)
	}
	if err := p.ClaimReward(ctx, "ada"); err != nil {
		t.Fatalf("claim: %v", err)
	}
	claimed, _ = p.RewardClaimed(ctx, "ada")
	if !claimed {
		t.Fatalf("claim must persist")
	}
	if _, err := p.RewardClaimed(ctx, "nobody"); !errors.Is(err, ErrUnknownUser) {
		t.Fatalf("unknown user: %v", err)
	}
}
