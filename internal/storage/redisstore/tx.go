package redisstore

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// maxTxAttempts bounds optimistic WATCH/EXEC retries. Every round of contention
// commits at least one writer, so this covers that many overlapping requests.
const maxTxAttempts = 10

// watchTx runs fn under WATCH on keys and reruns it when a watched key changed
// before EXEC. fn must be safe to repeat.
func watchTx(ctx context.Context, client *redis.Client, fn func(tx *redis.Tx) error, keys ...string) error {
	var err error
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		err = client.Watch(ctx, fn, keys...)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return err
}
