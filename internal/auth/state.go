package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/squadsvirtuais/api/internal/apperr"
)

const stateTTL = 10 * time.Minute

// StateStore emite e consome o parâmetro state do OAuth; cada valor vale uma única vez.
type StateStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStateStore(rdb *redis.Client) *StateStore {
	return &StateStore{rdb: rdb, ttl: stateTTL}
}

// Issue gera um state aleatório e guarda apenas seu hash.
func (s *StateStore) Issue(ctx context.Context) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	raw := base64.RawURLEncoding.EncodeToString(buf)
	if err := s.rdb.Set(ctx, stateKey(raw), "1", s.ttl).Err(); err != nil {
		return "", err
	}
	return raw, nil
}

// Consume remove o state atomicamente; ausente, expirado ou reutilizado resulta em ErrInvalidState.
func (s *StateStore) Consume(ctx context.Context, raw string) error {
	if raw == "" {
		return apperr.ErrInvalidState
	}
	err := s.rdb.GetDel(ctx, stateKey(raw)).Err()
	if errors.Is(err, redis.Nil) {
		return apperr.ErrInvalidState
	}
	return err
}

func stateKey(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return "oauth:state:" + base64.RawURLEncoding.EncodeToString(sum[:])
}
