package redis

// Package redis provides Redis-based adapters for the dispatch web gateway.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	domainauth "github.com/saferide/dispatch-web/internal/domain/auth"
	apperrors "github.com/saferide/dispatch-web/internal/errors"
)

// DefaultLoginPrefix namespaces login records in a shared Redis.
const DefaultLoginPrefix = "dispatch:login:"

// ErrNotFound is returned when a login record is missing or expired.
var ErrNotFound = apperrors.NotFound("login not found")

// LoginStore is a Redis-based login record store.
// Keys expire with the login's ExpiresAt; records never carry a role.
type LoginStore struct {
	client redis.UniversalClient
	prefix string
}

// NewLoginStore creates a new Redis-based login store using DefaultLoginPrefix.
func NewLoginStore(client redis.UniversalClient) *LoginStore {
	return NewLoginStoreWithPrefix(client, DefaultLoginPrefix)
}

// NewLoginStoreWithPrefix creates a Redis login store with a custom key prefix.
func NewLoginStoreWithPrefix(client redis.UniversalClient, prefix string) *LoginStore {
	return &LoginStore{client: client, prefix: prefix}
}

func (s *LoginStore) Save(ctx context.Context, login domainauth.Login) error {
	if login.ID == "" {
		return errors.New("login ID cannot be empty")
	}

	ttl := time.Until(login.ExpiresAt)
	if ttl <= 0 {
		return errors.New("login is expired")
	}

	data, err := json.Marshal(login)
	if err != nil {
		return fmt.Errorf("marshal login: %w", err)
	}

	return s.client.Set(ctx, s.prefix+login.ID, data, ttl).Err()
}

func (s *LoginStore) Get(ctx context.Context, id string) (domainauth.Login, error) {
	if id == "" {
		return domainauth.Login{}, ErrNotFound
	}

	data, err := s.client.Get(ctx, s.prefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domainauth.Login{}, ErrNotFound
		}
		return domainauth.Login{}, fmt.Errorf("redis get: %w", err)
	}

	var login domainauth.Login
	if unmarshalErr := json.Unmarshal(data, &login); unmarshalErr != nil {
		return domainauth.Login{}, fmt.Errorf("unmarshal login: %w", unmarshalErr)
	}

	// Redis TTL granularity can leave a record readable just past ExpiresAt.
	if login.Expired(time.Now()) {
		if deleteErr := s.Delete(ctx, id); deleteErr != nil {
			return domainauth.Login{}, fmt.Errorf("cleanup expired login: %w", deleteErr)
		}
		return domainauth.Login{}, ErrNotFound
	}

	return login, nil
}

func (s *LoginStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return s.client.Del(ctx, s.prefix+id).Err()
}

// scanBatch is the SCAN COUNT hint used when walking login keys.
const scanBatch = 200

// ForSubject returns every live login record belonging to subject.
// It walks the keyspace with SCAN and is meant for operator tooling, not request paths.
func (s *LoginStore) ForSubject(ctx context.Context, subject string) ([]domainauth.Login, error) {
	if subject == "" {
		return nil, apperrors.ValidationField("subject", "subject is required")
	}

	keys, err := s.loginKeys(ctx)
	if err != nil {
		return nil, err
	}

	var out []domainauth.Login
	for _, key := range keys {
		login, err := s.Get(ctx, strings.TrimPrefix(key, s.prefix))
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		if login.Subject == subject {
			out = append(out, login)
		}
	}
	return out, nil
}

// loginKeys lists every login key. A cluster client is scanned master by
// master since SCAN only walks the node it is sent to.
func (s *LoginStore) loginKeys(ctx context.Context) ([]string, error) {
	cluster, ok := s.client.(*redis.ClusterClient)
	if !ok {
		return scanKeys(ctx, s.client, s.prefix+"*")
	}

	var (
		mu   sync.Mutex
		keys []string
	)
	err := cluster.ForEachMaster(ctx, func(ctx context.Context, node *redis.Client) error {
		nodeKeys, err := scanKeys(ctx, node, s.prefix+"*")
		if err != nil {
			return err
		}
		mu.Lock()
		keys = append(keys, nodeKeys...)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

func scanKeys(ctx context.Context, c redis.Cmdable, match string) ([]string, error) {
	var keys []string
	iter := c.Scan(ctx, 0, match, scanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan: %w", err)
	}
	return keys, nil
}

// RevokeSubject deletes every login record belonging to subject and reports how many were removed.
func (s *LoginStore) RevokeSubject(ctx context.Context, subject string) (int, error) {
	logins, err := s.ForSubject(ctx, subject)
	if err != nil {
		return 0, err
	}
	for i, l := range logins {
		if delErr := s.Delete(ctx, l.ID); delErr != nil {
			return i, fmt.Errorf("delete login %s: %w", l.ID, delErr)
		}
	}
	return len(logins), nil
}
