package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/porthorian/tokengate/pkg/cache"
	"github.com/porthorian/tokengate/pkg/crypto"
)

const defaultNamespace = "tokengate"

type Config struct {
	Address     string
	Username    string
	Password    string
	Database    int
	Namespace   string
	DialTimeout time.Duration

	// Eviction, when positive, sets a server-side expiry on stored records.
	// This is the external eviction policy for tokens never re-presented; it
	// is unrelated to the freshness TTL judged by the authenticator.
	Eviction time.Duration
}

type Adapter struct {
	client    *goredis.Client
	namespace string
	eviction  time.Duration
}

var _ cache.ProfileStore = (*Adapter)(nil)

func NewAdapter(ctx context.Context, config Config) (*Adapter, error) {
	if config.Address == "" {
		return nil, errors.New("redis cache: address is required")
	}

	namespace := config.Namespace
	if namespace == "" {
		namespace = defaultNamespace
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:        config.Address,
		Username:    config.Username,
		Password:    config.Password,
		DB:          config.Database,
		DialTimeout: config.DialTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis cache: ping %s: %w", config.Address, err)
	}

	return &Adapter{
		client:    client,
		namespace: namespace,
		eviction:  config.Eviction,
	}, nil
}

// record is the wire shape stored in redis.
type record struct {
	Subject     string    `json:"subject"`
	Provider    string    `json:"provider"`
	DisplayName string    `json:"display_name,omitempty"`
	Emails      []string  `json:"emails,omitempty"`
	Photos      []string  `json:"photos,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (a *Adapter) Get(ctx context.Context, token string) (cache.Record, bool, error) {
	payload, err := a.client.Get(ctx, a.key(token)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return cache.Record{}, false, nil
	}
	if err != nil {
		return cache.Record{}, false, fmt.Errorf("redis cache: get: %w", err)
	}

	var stored record
	if err := json.Unmarshal(payload, &stored); err != nil {
		return cache.Record{}, false, fmt.Errorf("redis cache: decode record: %w", err)
	}

	return cache.Record{
		Subject:     stored.Subject,
		Provider:    stored.Provider,
		DisplayName: stored.DisplayName,
		Emails:      stored.Emails,
		Photos:      stored.Photos,
		CreatedAt:   stored.CreatedAt,
	}, true, nil
}

func (a *Adapter) Put(ctx context.Context, token string, rec cache.Record) error {
	if token == "" {
		return errors.New("redis cache: token is required")
	}

	payload, err := json.Marshal(record{
		Subject:     rec.Subject,
		Provider:    rec.Provider,
		DisplayName: rec.DisplayName,
		Emails:      rec.Emails,
		Photos:      rec.Photos,
		CreatedAt:   rec.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("redis cache: encode record: %w", err)
	}

	if err := a.client.Set(ctx, a.key(token), payload, a.eviction).Err(); err != nil {
		return fmt.Errorf("redis cache: set: %w", err)
	}
	return nil
}

func (a *Adapter) Close() error {
	return a.client.Close()
}

// key digests the token so raw credentials never enter the redis keyspace.
func (a *Adapter) key(token string) string {
	return a.namespace + ":profile:" + crypto.DigestToken(token)
}
