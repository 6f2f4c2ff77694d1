package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/civicworks/triage-service/internal/domain"
)

const keyPrefix = "triage:dashboard:"

// DashboardCache stores rendered dashboard snapshots in Redis, keyed by
// role. The workflow service invalidates all snapshots after every
// mutation; reads are best-effort and never fail the request.
type DashboardCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewDashboardCache creates the cache. A nil client disables it.
func NewDashboardCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *DashboardCache {
	return &DashboardCache{client: client, ttl: ttl, logger: logger}
}

// Get unmarshals a cached snapshot into dest, reporting whether one was
// found.
func (c *DashboardCache) Get(ctx context.Context, role domain.Role, dest any) bool {
	if c == nil || c.client == nil {
		return false
	}
	raw, err := c.client.Get(ctx, keyPrefix+string(role)).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		c.logger.Warn("corrupt dashboard snapshot", zap.String("role", string(role)), zap.Error(err))
		return false
	}
	return true
}

// Set stores a snapshot for the role.
func (c *DashboardCache) Set(ctx context.Context, role domain.Role, snapshot any) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(snapshot)
	if err != nil {
		c.logger.Warn("marshal dashboard snapshot", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, keyPrefix+string(role), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("store dashboard snapshot", zap.Error(err))
	}
}

// Invalidate drops every role's snapshot.
func (c *DashboardCache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	keys := []string{
		keyPrefix + string(domain.RoleCitizen),
		keyPrefix + string(domain.RoleEngineer),
		keyPrefix + string(domain.RoleCouncil),
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("invalidate dashboard snapshots", zap.Error(err))
	}
}
