package appointments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	doctorKeyPrefix  = "appointments:doctor:"
	patientKeyPrefix = "appointments:patient:"
	versionKeyPrefix = "appointments:version:"
)

var errStaleList = errors.New("appointments: list changed while loading")

// CachedStore is a Store that keeps the lists of appointments in Redis. Every write goes to the
// underlying store and then evicts the lists of the doctor and the patient involved. Each list
// has a version counter bumped on eviction, and a loaded list is only cached while its version
// is the one read before loading. Cache failures are logged and never fail a call.
type CachedStore struct {
	next   Store
	redis  *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewCachedStore creates a new CachedStore on top of the given store.
func NewCachedStore(next Store, redisClient *redis.Client, ttl time.Duration, logger zerolog.Logger) *CachedStore {
	return &CachedStore{next: next, redis: redisClient, ttl: ttl, logger: logger}
}

func (c *CachedStore) cachedList(ctx context.Context, key string, load func() ([]Appointment, error)) ([]Appointment, error) {
	data, err := c.redis.Get(ctx, key).Bytes()
	if err == nil {
		var cached []Appointment
		if err = json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
	}
	if err != nil && !errors.Is(err, redis.Nil) {
		c.logger.Warn().Err(err).Str("key", key).Msg("appointment cache read failed")
	}
	version, err := c.redis.Get(ctx, versionKeyPrefix+key).Int64()
	cacheable := err == nil || errors.Is(err, redis.Nil)
	appointments, err := load()
	if err != nil {
		return nil, err
	}
	if !cacheable {
		return appointments, nil
	}
	data, err = json.Marshal(appointments)
	if err != nil {
		return nil, fmt.Errorf("appointments: marshal cache entry: %w", err)
	}
	c.store(ctx, key, version, data)
	return appointments, nil
}

// store caches data under key unless an eviction bumped the list version past version.
func (c *CachedStore) store(ctx context.Context, key string, version int64, data []byte) {
	versionKey := versionKeyPrefix + key
	err := c.redis.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, versionKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != version {
			return errStaleList
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, c.ttl)
			return nil
		})
		return err
	}, versionKey)
	switch {
	case err == nil:
	case errors.Is(err, errStaleList), errors.Is(err, redis.TxFailedErr):
		c.logger.Debug().Str("key", key).Msg("appointment list changed while loading, not cached")
	default:
		c.logger.Warn().Err(err).Str("key", key).Msg("appointment cache write failed")
	}
}

func (c *CachedStore) evict(ctx context.Context, appointment Appointment) {
	keys := []string{doctorKeyPrefix + appointment.DoctorID, patientKeyPrefix + appointment.PatientID}
	_, err := c.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, key := range keys {
			pipe.Incr(ctx, versionKeyPrefix+key)
		}
		pipe.Del(ctx, keys...)
		return nil
	})
	if err != nil {
		c.logger.Warn().Err(err).Strs("keys", keys).Msg("appointment cache eviction failed")
	}
}

func (c *CachedStore) ListByDoctor(ctx context.Context, doctorID string) ([]Appointment, error) {
	return c.cachedList(ctx, doctorKeyPrefix+doctorID, func() ([]Appointment, error) {
		return c.next.ListByDoctor(ctx, doctorID)
	})
}

func (c *CachedStore) ListByPatient(ctx context.Context, patientID string) ([]Appointment, error) {
	return c.cachedList(ctx, patientKeyPrefix+patientID, func() ([]Appointment, error) {
		return c.next.ListByPatient(ctx, patientID)
	})
}

func (c *CachedStore) Get(ctx context.Context, id string) (*Appointment, error) {
	return c.next.Get(ctx, id)
}

func (c *CachedStore) Create(ctx context.Context, appointment Appointment) (*Appointment, error) {
	created, err := c.next.Create(ctx, appointment)
	if err != nil {
		return nil, err
	}
	c.evict(ctx, *created)
	return created, nil
}

func (c *CachedStore) UpdateStatus(ctx context.Context, id string, status Status) error {
	current, err := c.next.Get(ctx, id)
	if err != nil {
		return err
	}
	if err = c.next.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	c.evict(ctx, *current)
	return nil
}

func (c *CachedStore) Update(ctx context.Context, appointment Appointment) error {
	if err := c.next.Update(ctx, appointment); err != nil {
		return err
	}
	c.evict(ctx, appointment)
	return nil
}

func (c *CachedStore) Delete(ctx context.Context, id string) error {
	current, err := c.next.Get(ctx, id)
	if err != nil {
		return err
	}
	if err = c.next.Delete(ctx, id); err != nil {
		return err
	}
	c.evict(ctx, *current)
	return nil
}
