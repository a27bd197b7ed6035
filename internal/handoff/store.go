// Package handoff implements the single-slot, TTL-bounded store that carries one
// MR template from the capture phase to the apply phase.
package handoff

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/hpungsan/quickmr/internal/db"
	"github.com/hpungsan/quickmr/internal/errors"
	"github.com/hpungsan/quickmr/internal/template"
)

// SlotKey names the one slot the store uses.
const SlotKey = "mr_template_v3"

// DefaultTTL is how long a captured template stays valid.
const DefaultTTL = 4 * time.Hour

// Store is the handoff channel. It holds at most one template record.
type Store struct {
	db     *sql.DB
	ttl    time.Duration
	now    func() time.Time
	logger zerolog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithTTL overrides DefaultTTL. Non-positive values are ignored.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger attaches a logger for purge events.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// NewStore creates a Store over an initialized database.
func NewStore(database *sql.DB, opts ...Option) *Store {
	s := &Store{
		db:     database,
		ttl:    DefaultTTL,
		now:    time.Now,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TTL returns the configured time-to-live.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Now returns the store's current time.
func (s *Store) Now() time.Time {
	return s.now()
}

// Put stamps CreatedAt and CaptureID on a copy of rec and stores it, replacing any
// pending record. Failures are reported as STORAGE_FAULT and leave the slot as it was.
func (s *Store) Put(ctx context.Context, rec *template.Record) (*template.Record, error) {
	if rec == nil {
		return nil, errors.NewInvalidRequest("record is required")
	}
	if rec.SourceID == "" {
		return nil, errors.NewInvalidRequest("source id is required")
	}

	now := s.now()
	id, err := ulid.New(ulid.Timestamp(now), ulid.Monotonic(rand.Reader, 0))
	if err != nil {
		return nil, errors.NewStorageFault(err)
	}

	stored := *rec
	stored.Labels = append([]string(nil), rec.Labels...)
	stored.CreatedAt = now.UnixMilli()
	stored.CaptureID = id.String()

	payload, err := json.Marshal(&stored)
	if err != nil {
		return nil, errors.NewStorageFault(err)
	}

	if err := db.PutSlot(ctx, s.db, SlotKey, string(payload)); err != nil {
		return nil, errors.NewStorageFault(err)
	}

	s.logger.Debug().
		Str("capture_id", stored.CaptureID).
		Str("issue", stored.SourceID).
		Msg("template stored")

	return &stored, nil
}

// Get returns the pending record, or nil when there is none.
// Malformed and expired payloads are purged and reported as absent.
// Only a failed database read returns an error.
func (s *Store) Get(ctx context.Context) (*template.Record, error) {
	payload, ok, err := db.GetSlot(ctx, s.db, SlotKey)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if !ok {
		return nil, nil
	}

	var rec template.Record
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		s.logger.Warn().Err(err).Msg("discarding malformed template payload")
		s.purge(ctx)
		return nil, nil
	}

	if rec.Expired(s.now(), s.ttl) {
		s.logger.Info().
			Str("issue", rec.SourceID).
			Dur("age", rec.Age(s.now())).
			Msg("discarding expired template")
		s.purge(ctx)
		return nil, nil
	}

	return &rec, nil
}

// Clear empties the slot. Clearing an empty store is not an error.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := db.DeleteSlot(ctx, s.db, SlotKey); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// purge removes the slot on the read path; a failure only costs a retry on the next read.
func (s *Store) purge(ctx context.Context) {
	if _, err := db.DeleteSlot(ctx, s.db, SlotKey); err != nil {
		s.logger.Warn().Err(err).Msg("failed to purge template slot")
	}
}
