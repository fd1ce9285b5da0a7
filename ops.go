package sessionstore

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/sessionstore/pkg/orm"
)

// Get returns the live session stored under id, or nil when there is none.
// With touch tracking enabled the stored lastModified is attached.
func (s *Store) Get(ctx context.Context, id string) (*Session, error) {
	coll, err := s.collection(ctx)
	if err != nil {
		return nil, err
	}

	sid := s.ids.normalize(id)
	rec, err := coll.FindOne(ctx, orm.Live(sid, s.cfg.now()))
	if err != nil {
		s.log.ErrorContext(ctx, "failed to find session", slog.String("sid", sid), slog.Any("error", err))
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}

	sess, err := s.codec.decodeSafe(rec.Session)
	if err != nil {
		s.log.ErrorContext(ctx, "failed to decode session", slog.String("sid", sid), slog.Any("error", err))
		return nil, err
	}
	if s.policy.tracking() && rec.LastModified != nil {
		sess.LastModified = *rec.LastModified
	}
	return sess, nil
}

// Set stores s under id, replacing any existing session. The caller's
// session is not modified.
//
// Set updates first and inserts when nothing matched. The two steps are
// not atomic: concurrent first writes for one id rely on the backend's
// unique sid constraint.
func (s *Store) Set(ctx context.Context, id string, sess *Session) error {
	coll, err := s.collection(ctx)
	if err != nil {
		return err
	}

	sid := s.ids.normalize(id)
	sess = sess.clone()
	sess.LastModified = time.Time{}

	payload, err := s.codec.encodeSafe(sess)
	if err != nil {
		s.log.ErrorContext(ctx, "failed to encode session", slog.String("sid", sid), slog.Any("error", err))
		return err
	}

	now := s.cfg.now()
	patch := orm.Patch{
		Session: payload,
		Expires: orm.Time(s.policy.expiresAt(sess, now)),
	}
	if s.policy.tracking() {
		patch.LastModified = orm.Time(now)
	}

	n, err := coll.Update(ctx, orm.Eq(orm.FieldSID, sid), patch)
	if err != nil {
		s.log.ErrorContext(ctx, "failed to update session", slog.String("sid", sid), slog.Any("error", err))
		return err
	}
	if n > 0 {
		return nil
	}

	rec := orm.Record{SID: sid}
	patch.Apply(&rec)
	if err := coll.Create(ctx, rec); err != nil {
		s.log.ErrorContext(ctx, "failed to create session", slog.String("sid", sid), slog.Any("error", err))
		return err
	}
	return nil
}

// Touch refreshes the expiry of the session stored under id without
// rewriting its data. With WithTouchAfter the write is skipped while the
// session's LastModified is younger than the interval.
func (s *Store) Touch(ctx context.Context, id string, sess *Session) error {
	now := s.cfg.now()
	if !s.policy.shouldTouch(sess, now) {
		return nil
	}

	coll, err := s.collection(ctx)
	if err != nil {
		return err
	}

	sid := s.ids.normalize(id)
	patch := orm.Patch{Expires: orm.Time(s.policy.expiresAt(sess, now))}
	if s.policy.tracking() {
		patch.LastModified = orm.Time(now)
	}

	n, err := coll.Update(ctx, orm.Eq(orm.FieldSID, sid), patch)
	if err != nil {
		s.log.ErrorContext(ctx, "failed to touch session", slog.String("sid", sid), slog.Any("error", err))
		return err
	}
	if n == 0 {
		s.log.DebugContext(ctx, "session to touch not found", slog.String("sid", sid))
		return ErrNotFound
	}
	return nil
}

// Destroy removes the session stored under id. Missing ids are not an error.
func (s *Store) Destroy(ctx context.Context, id string) error {
	coll, err := s.collection(ctx)
	if err != nil {
		return err
	}

	sid := s.ids.normalize(id)
	if _, err := coll.Destroy(ctx, orm.Eq(orm.FieldSID, sid)); err != nil {
		s.log.ErrorContext(ctx, "failed to destroy session", slog.String("sid", sid), slog.Any("error", err))
		return err
	}
	return nil
}

// Length counts stored sessions, including expired ones the reaper has not
// removed yet.
func (s *Store) Length(ctx context.Context) (int64, error) {
	coll, err := s.collection(ctx)
	if err != nil {
		return 0, err
	}

	n, err := coll.Count(ctx, nil)
	if err != nil {
		s.log.ErrorContext(ctx, "failed to count sessions", slog.Any("error", err))
		return 0, err
	}
	return n, nil
}

// Clear removes every session.
func (s *Store) Clear(ctx context.Context) error {
	coll, err := s.collection(ctx)
	if err != nil {
		return err
	}

	if err := coll.Drop(ctx); err != nil {
		s.log.ErrorContext(ctx, "failed to clear sessions", slog.Any("error", err))
		return err
	}
	return nil
}

// Reap removes every session that expired before now and reports how many
// were deleted.
func (s *Store) Reap(ctx context.Context) (int64, error) {
	coll, err := s.collection(ctx)
	if err != nil {
		return 0, err
	}
	return coll.Destroy(ctx, orm.Lt(orm.FieldExpires, s.cfg.now()))
}

// Ping checks backend connectivity when the collection supports it.
func (s *Store) Ping(ctx context.Context) error {
	coll, err := s.collection(ctx)
	if err != nil {
		return err
	}
	if p, ok := coll.(orm.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
