package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/arjunmehta/desikart-backend/pkg/config"
	redisclient "github.com/arjunmehta/desikart-backend/pkg/redis"
)

const tokenBytes = 32

// guest marker stored against each token; the token itself is the identity.
const guestMarker = "guest"

var ErrUnknownSession = errors.New("unknown session token")

type sessionStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Expire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
}

type sessionKeyer interface {
	SessionKey(token string) string
}

// Manager mints and validates anonymous cart session tokens backed by Redis.
// A token identifies a guest's cart until it expires or the cart is checked out.
type Manager struct {
	store sessionStore
	keyer sessionKeyer
	ttl   time.Duration
}

// NewManager constructs a session manager backed by Redis.
func NewManager(client *redisclient.Client, cfg config.SessionConfig) (*Manager, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	ttl := cfg.TTL()
	if ttl <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	return &Manager{
		store: client,
		keyer: client,
		ttl:   ttl,
	}, nil
}

// Mint creates a fresh guest token and stores it with the configured TTL.
func (m *Manager) Mint(ctx context.Context) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}
	if err := m.store.Set(ctx, m.keyer.SessionKey(token), guestMarker, m.ttl); err != nil {
		return "", err
	}
	return token, nil
}

// Validate checks the token is known and slides its expiry forward. It
// returns ErrUnknownSession for tokens that expired or were never minted.
func (m *Manager) Validate(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return ErrUnknownSession
	}
	key := m.keyer.SessionKey(token)
	if _, err := m.store.Get(ctx, key); err != nil {
		if errors.Is(err, redislib.Nil) {
			return ErrUnknownSession
		}
		return err
	}
	if _, err := m.store.Expire(ctx, key, m.ttl); err != nil {
		return err
	}
	return nil
}

// Revoke drops the token, typically after its cart is converted to an order.
func (m *Manager) Revoke(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("session token is required")
	}
	return m.store.Del(ctx, m.keyer.SessionKey(token))
}

func generateToken() (string, error) {
	bytes := make([]byte, tokenBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generating session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}
