package hierarchy

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

const cacheKey = "dashboard:hierarchy:children"

// RedisPersister stores the children map as one redis hash keyed by parent
// id, so restarts keep the already-expanded parts of the tree warm.
type RedisPersister struct {
	client *redis.Client
}

func NewRedisPersister(client *redis.Client) *RedisPersister {
	return &RedisPersister{client: client}
}

func (p *RedisPersister) Load(ctx context.Context) (map[string][]Node, error) {
	fields, err := p.client.HGetAll(ctx, cacheKey).Result()
	if err != nil {
		return nil, fmt.Errorf("load hierarchy cache: %w", err)
	}

	out := make(map[string][]Node, len(fields))
	for parentID, raw := range fields {
		var nodes []Node
		if err := json.Unmarshal([]byte(raw), &nodes); err != nil {
			// A corrupt entry is refetched on demand; skip it.
			continue
		}
		out[parentID] = nodes
	}
	return out, nil
}

func (p *RedisPersister) Save(ctx context.Context, parentID string, nodes []Node) error {
	raw, err := json.Marshal(nodes)
	if err != nil {
		return err
	}
	return p.client.HSet(ctx, cacheKey, parentID, raw).Err()
}

func (p *RedisPersister) Delete(ctx context.Context, parentID string) error {
	return p.client.HDel(ctx, cacheKey, parentID).Err()
}

func (p *RedisPersister) Flush(ctx context.Context) error {
	return p.client.Del(ctx, cacheKey).Err()
}
