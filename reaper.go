package sessionstore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// reaperTimeout bounds a single cleanup pass.
const reaperTimeout = time.Minute

// reaper periodically deletes expired sessions.
type reaper struct {
	cron *cron.Cron
}

func startReaper(s *Store, interval time.Duration) (*reaper, error) {
	schedule, err := cron.ParseStandard(fmt.Sprintf("@every %s", interval))
	if err != nil {
		return nil, err
	}

	c := cron.New(
		cron.WithLogger(cronLogger{log: s.log}),
		cron.WithChain(
			cron.Recover(cronLogger{log: s.log}),
			cron.SkipIfStillRunning(cronLogger{log: s.log}),
		),
	)
	c.Schedule(schedule, cron.FuncJob(func() {
		ctx, cancel := context.WithTimeout(context.Background(), reaperTimeout)
		defer cancel()

		n, err := s.Reap(ctx)
		if err != nil {
			s.log.WarnContext(ctx, "failed to remove expired sessions", slog.Any("error", err))
			return
		}
		if n > 0 {
			s.log.DebugContext(ctx, "removed expired sessions", slog.Int64("count", n))
		}
	}))
	c.Start()

	return &reaper{cron: c}, nil
}

// stop prevents further runs and waits for a running pass to finish.
func (r *reaper) stop() {
	<-r.cron.Stop().Done()
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug("reaper: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Warn("reaper: "+msg, append(keysAndValues, "error", err)...)
}
