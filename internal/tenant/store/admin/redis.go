package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"gymdesk/internal/tenant/models"
	id "gymdesk/pkg/domain"
	"gymdesk/pkg/platform/sentinel"
)

// record is the stored shape. AdminCredential hides Password from JSON, so it cannot be
// marshalled directly.
type record struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"password"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Role      string    `json:"role"`
	TenantID  string    `json:"tenant_id"`
	CreatedAt time.Time `json:"created_at"`
}

func toRecord(a *models.AdminCredential) record {
	return record{
		ID:        a.ID.String(),
		Username:  a.Username,
		Password:  a.Password,
		Name:      a.Name,
		Email:     a.Email,
		Phone:     a.Phone,
		Role:      a.Role,
		TenantID:  a.TenantID.String(),
		CreatedAt: a.CreatedAt,
	}
}

func (r record) toModel() (*models.AdminCredential, error) {
	adminID, err := id.ParseAdminID(r.ID)
	if err != nil {
		return nil, err
	}
	tenantID, err := id.ParseTenantID(r.TenantID)
	if err != nil {
		return nil, err
	}
	return &models.AdminCredential{
		ID:        adminID,
		Username:  r.Username,
		Password:  r.Password,
		Name:      r.Name,
		Email:     r.Email,
		Phone:     r.Phone,
		Role:      r.Role,
		TenantID:  tenantID,
		CreatedAt: r.CreatedAt,
	}, nil
}

// RedisStore keeps credentials under admin:{id} with a per-tenant set tenant:{id}:admins.
type RedisStore struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func adminKey(adminID id.AdminID) string {
	return "admin:" + adminID.String()
}

func tenantAdminsKey(tenantID id.TenantID) string {
	return "tenant:" + tenantID.String() + ":admins"
}

func (s *RedisStore) Create(ctx context.Context, admin *models.AdminCredential) (id.AdminID, error) {
	admin.ID = id.AdminID(uuid.New())
	payload, err := json.Marshal(toRecord(admin))
	if err != nil {
		return id.AdminID{}, fmt.Errorf("encode admin credential: %w", err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, adminKey(admin.ID), payload, 0)
		pipe.SAdd(ctx, tenantAdminsKey(admin.TenantID), admin.ID.String())
		return nil
	})
	if err != nil {
		return id.AdminID{}, fmt.Errorf("store admin credential: %w", err)
	}
	return admin.ID, nil
}

func (s *RedisStore) FindByID(ctx context.Context, adminID id.AdminID) (*models.AdminCredential, error) {
	raw, err := s.client.Get(ctx, adminKey(adminID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load admin credential: %w", err)
	}
	return decode(raw)
}

// ListByTenant reads the tenant's index set and loads each member. Members whose document
// has already gone are skipped.
func (s *RedisStore) ListByTenant(ctx context.Context, tenantID id.TenantID) ([]*models.AdminCredential, error) {
	members, err := s.client.SMembers(ctx, tenantAdminsKey(tenantID)).Result()
	if err != nil {
		return nil, fmt.Errorf("list admin credentials: %w", err)
	}
	if len(members) == 0 {
		return []*models.AdminCredential{}, nil
	}
	keys := make([]string, len(members))
	for i, m := range members {
		keys[i] = "admin:" + m
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load admin credentials: %w", err)
	}
	out := make([]*models.AdminCredential, 0, len(values))
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		a, err := decode([]byte(str))
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func (s *RedisStore) Delete(ctx context.Context, adminID id.AdminID) error {
	a, err := s.FindByID(ctx, adminID)
	if err != nil {
		return err
	}
	var del *redis.IntCmd
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, adminKey(adminID))
		pipe.SRem(ctx, tenantAdminsKey(a.TenantID), adminID.String())
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete admin credential: %w", err)
	}
	if del.Val() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func decode(raw []byte) (*models.AdminCredential, error) {
	var r record
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("decode admin credential: %w", err)
	}
	return r.toModel()
}
