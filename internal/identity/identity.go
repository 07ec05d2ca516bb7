// Package identity supplies the "current user" the ledger filters by.
// It owns registration, login and the persistent reward-claimed profile
// flag; the ledger itself never validates credentials.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrDuplicateUser      = errors.New("user already exists")
	ErrUnknownUser        = errors.New("unknown user")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidSession     = errors.New("invalid session")
)

// User is the identity record. The ledger consumes only Username, as an
// opaque owner key.
type User struct {
	Username      string
	PasswordHash  []byte
	RewardClaimed bool
}

// UserStore persists identity records alongside the ledger collection.
type UserStore interface {
	CreateUser(ctx context.Context, u User) error
	GetUser(ctx context.Context, username string) (User, error)
	SetRewardClaimed(ctx context.Context, username string, claimed bool) error
}

// Provider implements registration, login and JWT session handling.
type Provider struct {
	store      UserStore
	signingKey []byte
	sessionTTL time.Duration
}

type sessionClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

func NewProvider(store UserStore, signingKey []byte, sessionTTL time.Duration) *Provider {
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &Provider{store: store, signingKey: signingKey, sessionTTL: sessionTTL}
}

// Register creates a user with a bcrypt-hashed secret. Duplicate
// usernames are rejected with a user-visible error.
func (p *Provider) Register(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return errors.New("username required")
	}
	if len(password) < 6 {
		return errors.New("password too short (min 6)")
	}
	if _, err := p.store.GetUser(ctx, username); err == nil {
		return ErrDuplicateUser
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := p.store.CreateUser(ctx, User{Username: username, PasswordHash: hash}); err != nil {
		return err
	}
	return nil
}

// Login verifies the credentials and issues a session token carrying
// the username. The failure is deliberately uniform: callers cannot
// tell a missing user from a wrong password.
func (p *Provider) Login(ctx context.Context, username, password string) (string, error) {
	u, err := p.store.GetUser(ctx, strings.TrimSpace(username))
	if err != nil {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	now := time.Now()
	claims := &sessionClaims{
		Username: u.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.sessionTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(p.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// CurrentUser resolves a session token to the owner key. An expired or
// malformed token yields (_, false), never an error the caller must
// branch on.
func (p *Provider) CurrentUser(tokenStr string) (string, bool) {
	if tokenStr == "" {
		return "", false
	}
	token, err := jwt.ParseWithClaims(tokenStr, &sessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return p.signingKey, nil
	})
	if err != nil {
		return "", false
	}
	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid || claims.Username == "" {
		return "", false
	}
	return claims.Username, true
}

// RewardClaimed reads the persistent reward flag for the user.
func (p *Provider) RewardClaimed(ctx context.Context, username string) (bool, error) {
	u, err := p.store.GetUser(ctx, username)
	if err != nil {
		return false, err
	}
	return u.RewardClaimed, nil
}

// ClaimReward sets the one-time reward flag. The caller gates this on
// the ledger's GoalReached; the provider only records the claim.
func (p *Provider) ClaimReward(ctx context.Context, username string) error {
	return p.store.SetRewardClaimed(ctx, username, true)
}
