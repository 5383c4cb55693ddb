package workspace

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/squadsvirtuais/api/internal/repo"
)

const listCacheTTL = 5 * time.Minute

// ListCache guarda, por usuário, a lista de workspaces visíveis.
// Toda mutação que altera a lista de alguém chama Invalidate para esse usuário.
type ListCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewListCache aceita cliente nil, caso em que o cache fica desligado.
func NewListCache(rdb *redis.Client) *ListCache {
	return &ListCache{rdb: rdb, ttl: listCacheTTL}
}

func listKey(userID uuid.UUID) string {
	return "workspaces:user:" + userID.String()
}

func (c *ListCache) Get(ctx context.Context, userID uuid.UUID) ([]repo.Workspace, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}
	data, err := c.rdb.Get(ctx, listKey(userID)).Bytes()
	if err != nil {
		return nil, false
	}
	var items []repo.Workspace
	if json.Unmarshal(data, &items) != nil {
		return nil, false
	}
	return items, true
}

func (c *ListCache) Set(ctx context.Context, userID uuid.UUID, items []repo.Workspace) {
	if c == nil || c.rdb == nil {
		return
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, listKey(userID), payload, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Msg("workspace cache: falha ao gravar")
	}
}

// Invalidate descarta a lista dos usuários informados.
func (c *ListCache) Invalidate(ctx context.Context, userIDs ...uuid.UUID) {
	if c == nil || c.rdb == nil || len(userIDs) == 0 {
		return
	}
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, listKey(id))
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		log.Warn().Err(err).Msg("workspace cache: falha ao invalidar")
	}
}
