package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationStore guarda os jti de sessões encerradas até a expiração natural do token.
type RevocationStore struct {
	rdb *redis.Client
	now func() time.Time
}

func NewRevocationStore(rdb *redis.Client) *RevocationStore {
	return &RevocationStore{rdb: rdb, now: time.Now}
}

// Revoke marca o jti como revogado; tokens já expirados são ignorados.
func (s *RevocationStore) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	return s.rdb.Set(ctx, revokedKey(jti), "1", ttl).Err()
}

func (s *RevocationStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.rdb.Exists(ctx, revokedKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func revokedKey(jti string) string {
	return "session:revoked:" + jti
}
