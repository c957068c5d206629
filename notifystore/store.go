// Package notifystore keeps a SQLite record of the notifications seen by the watcher.
package notifystore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/andyle182810/ghclient/dbiterator"
	"github.com/andyle182810/ghclient/pagination"
	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const serviceName = "notifystore"

var (
	ErrNotFound  = errors.New("notifystore: notification not found")
	ErrMissingID = errors.New("notifystore: notification has no id")
)

const schema = `
	CREATE TABLE IF NOT EXISTS notifications (
		id            TEXT PRIMARY KEY,
		repository    TEXT NOT NULL DEFAULT '',
		subject_type  TEXT NOT NULL DEFAULT '',
		subject_title TEXT NOT NULL DEFAULT '',
		reason        TEXT NOT NULL DEFAULT '',
		unread        BOOLEAN NOT NULL DEFAULT 0,
		updated_at    TEXT NOT NULL DEFAULT '',
		seen_at       TEXT NOT NULL,
		payload       TEXT NOT NULL
	)
`

const selectColumns = `id, repository, subject_type, subject_title, reason, unread, updated_at, seen_at, payload`

//nolint:tagliatelle
type Notification struct {
	ID           string `db:"id"            json:"id"`
	Repository   string `db:"repository"    json:"repository"`
	SubjectType  string `db:"subject_type"  json:"subject_type"`
	SubjectTitle string `db:"subject_title" json:"subject_title"`
	Reason       string `db:"reason"        json:"reason"`
	Unread       bool   `db:"unread"        json:"unread"`
	UpdatedAt    string `db:"updated_at"    json:"updated_at"`
	SeenAt       string `db:"seen_at"       json:"seen_at"`
	Payload      string `db:"payload"       json:"-"`
}

//nolint:tagliatelle
type Page struct {
	Page       int            `json:"page"`
	PerPage    int            `json:"per_page"`
	TotalCount int            `json:"total_count"`
	TotalPages int            `json:"total_pages"`
	Items      []Notification `json:"items"`
}

type Store struct {
	db     *sql.DB
	now    func() time.Time
	logger zerolog.Logger
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

func New(db *sql.DB, opts ...Option) *Store {
	store := &Store{
		db:     db,
		now:    time.Now,
		logger: log.Logger,
	}

	for _, opt := range opts {
		opt(store)
	}

	store.logger = store.logger.With().Str("service_name", serviceName).Logger()

	return store
}

// Open opens the SQLite database at dsn and creates the schema if needed.
func Open(ctx context.Context, dsn string, opts ...Option) (*Store, error) {
	db, err := dbiterator.OpenSQLite(ctx, dsn)
	if err != nil {
		return nil, err
	}

	store := New(db, opts...)

	if err := store.Migrate(ctx); err != nil {
		_ = db.Close()

		return nil, err
	}

	return store, nil
}

func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("notifystore: create schema: %w", err)
	}

	return nil
}

// Save inserts or refreshes one decoded notification. Its signature matches
// watcher.Handler.
func (s *Store) Save(ctx context.Context, notification map[string]any) error {
	row, err := s.fromPayload(notification)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO notifications (` + selectColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			repository = excluded.repository,
			subject_type = excluded.subject_type,
			subject_title = excluded.subject_title,
			reason = excluded.reason,
			unread = excluded.unread,
			updated_at = excluded.updated_at,
			seen_at = excluded.seen_at,
			payload = excluded.payload
	`

	_, err = s.db.ExecContext(ctx, query,
		row.ID, row.Repository, row.SubjectType, row.SubjectTitle, row.Reason,
		row.Unread, row.UpdatedAt, row.SeenAt, row.Payload,
	)
	if err != nil {
		return fmt.Errorf("notifystore: save notification %s: %w", row.ID, err)
	}

	s.logger.Debug().Str("notification_id", row.ID).Str("reason", row.Reason).Msg("Notification stored")

	return nil
}

func (s *Store) Get(ctx context.Context, id string) (*Notification, error) {
	query := `SELECT ` + selectColumns + ` FROM notifications WHERE id = ? LIMIT 1`

	var notification Notification

	if err := sqlscan.Get(ctx, s.db, &notification, query, id); err != nil {
		if sqlscan.NotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}

		return nil, fmt.Errorf("notifystore: get notification %s: %w", id, err)
	}

	return &notification, nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var count int

	if err := sqlscan.Get(ctx, s.db, &count, `SELECT COUNT(*) FROM notifications`); err != nil {
		return 0, fmt.Errorf("notifystore: count notifications: %w", err)
	}

	return count, nil
}

// Iterate walks one page of stored notifications, most recently updated first. The
// caller must close the iterator before issuing other queries on an in-memory store.
func (s *Store) Iterate(ctx context.Context, page, perPage int) (*dbiterator.Iterator[Notification], error) {
	_, limit, offset := pagination.Normalize(page, perPage)

	query := `
		SELECT ` + selectColumns + `
		FROM notifications
		ORDER BY updated_at DESC, id DESC
		LIMIT ? OFFSET ?
	`

	return dbiterator.Query[Notification](ctx, s.db, query, limit, offset)
}

func (s *Store) Page(ctx context.Context, page, perPage int) (*Page, error) {
	page, perPage, _ = pagination.Normalize(page, perPage)

	total, err := s.Count(ctx)
	if err != nil {
		return nil, err
	}

	it, err := s.Iterate(ctx, page, perPage)
	if err != nil {
		return nil, err
	}

	items, err := dbiterator.Collect(it)
	if err != nil {
		return nil, err
	}

	if items == nil {
		items = []Notification{}
	}

	return &Page{
		Page:       page,
		PerPage:    perPage,
		TotalCount: total,
		TotalPages: pagination.ComputeTotals(total, perPage),
		Items:      items,
	}, nil
}

func (s *Store) fromPayload(notification map[string]any) (*Notification, error) {
	id := idString(notification["id"])
	if id == "" {
		return nil, ErrMissingID
	}

	payload, err := json.Marshal(notification)
	if err != nil {
		return nil, fmt.Errorf("notifystore: encode notification %s: %w", id, err)
	}

	subject, _ := notification["subject"].(map[string]any)
	repository, _ := notification["repository"].(map[string]any)
	unread, _ := notification["unread"].(bool)

	return &Notification{
		ID:           id,
		Repository:   stringField(repository, "full_name"),
		SubjectType:  stringField(subject, "type"),
		SubjectTitle: stringField(subject, "title"),
		Reason:       stringField(notification, "reason"),
		Unread:       unread,
		UpdatedAt:    stringField(notification, "updated_at"),
		SeenAt:       s.now().UTC().Format(time.RFC3339),
		Payload:      string(payload),
	}, nil
}

func idString(value any) string {
	switch id := value.(type) {
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	default:
		return ""
	}
}

func stringField(object map[string]any, key string) string {
	value, _ := object[key].(string)

	return value
}

// Start only logs; the database is already open.
func (s *Store) Start(_ context.Context) error {
	s.logger.Info().Msg("Notification store operational")

	return nil
}

func (s *Store) Stop() error {
	s.logger.Info().Msg("Closing notification store")

	return s.db.Close()
}

func (s *Store) Name() string {
	return serviceName
}
