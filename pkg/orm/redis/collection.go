package redis

import (
	"context"
	"encoding/json"
	"errors"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/sessionstore/pkg/orm"
	redisconn "github.com/dmitrymomot/sessionstore/pkg/redis"
)

const scanBatch = 100

// Collection is an orm.Collection over a Redis keyspace.
type Collection struct {
	client goredis.UniversalClient
	model  orm.Model
	prefix string
}

// NewCollection adopts an existing client. Keys are "<prefix><table>:<sid>".
func NewCollection(client goredis.UniversalClient, prefix string, model orm.Model) *Collection {
	return &Collection{
		client: client,
		model:  model,
		prefix: prefix + model.TableName + ":",
	}
}

func (c *Collection) key(sid string) string { return c.prefix + sid }

func (c *Collection) Ping(ctx context.Context) error {
	return redisconn.Healthcheck(c.client)(ctx)
}

func (c *Collection) FindOne(ctx context.Context, where orm.Condition) (*orm.Record, error) {
	if sid, ok := orm.SIDOf(where); ok {
		rec, err := c.load(ctx, c.key(sid))
		if err != nil || rec == nil || !orm.Matches(where, *rec) {
			return nil, err
		}
		return rec, nil
	}

	var found *orm.Record
	err := c.scan(ctx, func(key string, rec orm.Record) (bool, error) {
		if orm.Matches(where, rec) {
			found = &rec
			return false, nil
		}
		return true, nil
	})
	return found, err
}

func (c *Collection) Update(ctx context.Context, where orm.Condition, patch orm.Patch) (int64, error) {
	var n int64
	update := func(key string, rec orm.Record) (bool, error) {
		if !orm.Matches(where, rec) {
			return true, nil
		}
		patch.Apply(&rec)
		if err := c.model.BeforeValidate(&rec); err != nil {
			return false, err
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return false, err
		}
		// XX: never resurrect a key deleted since it was read.
		ok, err := c.client.SetXX(ctx, key, data, 0).Result()
		if err != nil {
			return false, err
		}
		if ok {
			n++
		}
		return true, nil
	}

	if sid, ok := orm.SIDOf(where); ok {
		rec, err := c.load(ctx, c.key(sid))
		if err != nil || rec == nil {
			return 0, err
		}
		_, err = update(c.key(sid), *rec)
		return n, err
	}

	err := c.scan(ctx, update)
	return n, err
}

func (c *Collection) Create(ctx context.Context, rec orm.Record) error {
	if err := c.model.BeforeValidate(&rec); err != nil {
		return err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	ok, err := c.client.SetNX(ctx, c.key(rec.SID), data, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return orm.ErrDuplicateSID
	}
	return nil
}

func (c *Collection) Destroy(ctx context.Context, where orm.Condition) (int64, error) {
	if sid, ok := orm.SIDOf(where); ok {
		rec, err := c.load(ctx, c.key(sid))
		if err != nil || rec == nil || !orm.Matches(where, *rec) {
			return 0, err
		}
		return c.client.Del(ctx, c.key(sid)).Result()
	}

	var keys []string
	err := c.scan(ctx, func(key string, rec orm.Record) (bool, error) {
		if orm.Matches(where, rec) {
			keys = append(keys, key)
		}
		return true, nil
	})
	if err != nil || len(keys) == 0 {
		return 0, err
	}
	return c.client.Del(ctx, keys...).Result()
}

func (c *Collection) Count(ctx context.Context, where orm.Condition) (int64, error) {
	var n int64
	err := c.scan(ctx, func(_ string, rec orm.Record) (bool, error) {
		if orm.Matches(where, rec) {
			n++
		}
		return true, nil
	})
	return n, err
}

func (c *Collection) Drop(ctx context.Context) error {
	_, err := c.Destroy(ctx, nil)
	return err
}

func (c *Collection) load(ctx context.Context, key string) (*orm.Record, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rec orm.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// scan walks every record of the table until fn returns false.
// Keys removed between SCAN and GET are skipped; SCAN may repeat keys, so
// each key is visited once.
func (c *Collection) scan(ctx context.Context, fn func(key string, rec orm.Record) (bool, error)) error {
	seen := map[string]struct{}{}
	iter := c.client.Scan(ctx, 0, c.prefix+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		rec, err := c.load(ctx, key)
		if err != nil {
			return err
		}
		if rec == nil {
			continue
		}
		more, err := fn(key, *rec)
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
	return iter.Err()
}

var _ orm.Collection = (*Collection)(nil)
