// Package redis opens go-redis clients for the session backend.
//
// [Open] parses a redis:// or rediss:// URL, applies pool and timeout options
// and pings the server, retrying with linear backoff. [Healthcheck] and
// [Shutdown] return closures for health endpoints and shutdown hooks.
//
//	client, err := redis.Open(ctx, os.Getenv("REDIS_URL"),
//		redis.WithPoolSize(20),
//		redis.WithRetry(5, time.Second),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
// Errors wrap the sentinels [ErrEmptyConnectionURL], [ErrFailedToParseURL],
// [ErrConnectionFailed] and [ErrHealthcheckFailed] with [errors.Join].
package redis
