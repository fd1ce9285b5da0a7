// Package health runs named backend checks in parallel under one deadline.
//
//	resp := health.Run(ctx, health.Checks{
//	    "sessions": store.Ping,
//	}, health.WithTimeout(3*time.Second))
//	if err := resp.Err(); err != nil {
//	    // ErrCheckFailed or ErrCheckTimeout
//	}
package health
