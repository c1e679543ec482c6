package tenant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"gymdesk/internal/tenant/models"
	id "gymdesk/pkg/domain"
	"gymdesk/pkg/platform/sentinel"
)

const (
	tenantKeyPrefix = "tenant:"
	tenantIndexKey  = "tenants"
)

// RedisStore keeps each tenant as a JSON document under tenant:{id}, with the set
// "tenants" indexing every stored ID.
type RedisStore struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func tenantKey(tenantID id.TenantID) string {
	return tenantKeyPrefix + tenantID.String()
}

func (s *RedisStore) Create(ctx context.Context, tenant *models.Tenant) (id.TenantID, error) {
	tenant.ID = id.TenantID(uuid.New())
	payload, err := json.Marshal(tenant)
	if err != nil {
		return id.TenantID{}, fmt.Errorf("encode tenant: %w", err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, tenantKey(tenant.ID), payload, 0)
		pipe.SAdd(ctx, tenantIndexKey, tenant.ID.String())
		return nil
	})
	if err != nil {
		return id.TenantID{}, fmt.Errorf("store tenant: %w", err)
	}
	return tenant.ID, nil
}

func (s *RedisStore) FindByID(ctx context.Context, tenantID id.TenantID) (*models.Tenant, error) {
	return s.load(ctx, s.client, tenantID)
}

// Execute applies validate and mutate under WATCH. A concurrent write to the same tenant
// aborts the transaction and surfaces as sentinel.ErrConflict.
func (s *RedisStore) Execute(ctx context.Context, tenantID id.TenantID, validate func(*models.Tenant) error, mutate func(*models.Tenant)) (*models.Tenant, error) {
	key := tenantKey(tenantID)
	var result *models.Tenant
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		t, err := s.load(ctx, tx, tenantID)
		if err != nil {
			return err
		}
		if err := validate(t); err != nil {
			return err
		}
		mutate(t)
		payload, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("encode tenant: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, 0)
			return nil
		})
		if err != nil {
			return err
		}
		result = t
		return nil
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		return nil, fmt.Errorf("tenant %s modified concurrently: %w", tenantID, sentinel.ErrConflict)
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *RedisStore) Delete(ctx context.Context, tenantID id.TenantID) error {
	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, tenantKey(tenantID))
		pipe.SRem(ctx, tenantIndexKey, tenantID.String())
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete tenant: %w", err)
	}
	if del.Val() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *RedisStore) Count(ctx context.Context) (int, error) {
	n, err := s.client.SCard(ctx, tenantIndexKey).Result()
	if err != nil {
		return 0, fmt.Errorf("count tenants: %w", err)
	}
	return int(n), nil
}

func (s *RedisStore) load(ctx context.Context, c redis.Cmdable, tenantID id.TenantID) (*models.Tenant, error) {
	raw, err := c.Get(ctx, tenantKey(tenantID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load tenant: %w", err)
	}
	var t models.Tenant
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("decode tenant: %w", err)
	}
	return &t, nil
}
