// Package sqlite implements storage.Store on SQLite.
package sqlite

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/c360/coworking/booking"
	"github.com/c360/coworking/config"
	"github.com/c360/coworking/errors"
	"github.com/c360/coworking/metric"
	"github.com/c360/coworking/pkg/retry"
	"github.com/c360/coworking/storage"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Store is the SQLite-backed authoritative store. It is safe for concurrent use.
type Store struct {
	db      *sql.DB
	retry   errors.RetryConfig
	metrics *metric.Metrics
	logger  *slog.Logger

	spaces       *SpaceRepository
	users        *UserRepository
	reservations *ReservationRepository
}

var _ storage.Store = (*Store)(nil)

// Option configures a Store
type Option func(*Store)

// WithRetry overrides the retry policy for busy or locked databases
func WithRetry(cfg errors.RetryConfig) Option {
	return func(s *Store) {
		s.retry = cfg
	}
}

// WithMetrics counts store operations in the core metrics
func WithMetrics(metrics *metric.Metrics) Option {
	return func(s *Store) {
		s.metrics = metrics
	}
}

// WithLogger sets the store logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Open opens the database at cfg.Path, applies pragmas and creates the schema.
func Open(ctx context.Context, cfg config.StorageConfig, opts ...Option) (*Store, error) {
	if cfg.Path == "" {
		return nil, errors.WrapFatal(errors.ErrMissingConfig, "SQLiteStore", "Open", "storage path")
	}

	s := &Store{
		retry:  errors.DefaultRetryConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "sqlite")

	db, err := sql.Open("sqlite3", dsn(cfg))
	if err != nil {
		return nil, errors.WrapFatal(err, "SQLiteStore", "Open", "open database")
	}

	if cfg.Path == MemoryPath {
		// Every connection to :memory: sees its own database
		db.SetMaxOpenConns(1)
	} else if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	s.db = db

	if err := s.configurePragmas(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if err := s.createTables(ctx); err != nil {
		db.Close()
		return nil, err
	}

	s.spaces = &SpaceRepository{store: s}
	s.users = &UserRepository{store: s}
	s.reservations = &ReservationRepository{store: s}

	s.logger.Info("SQLite store opened", "path", cfg.Path)
	return s, nil
}

func dsn(cfg config.StorageConfig) string {
	params := fmt.Sprintf("_busy_timeout=%d&_foreign_keys=on", cfg.BusyTimeout.Milliseconds())
	if cfg.Path == MemoryPath {
		return "file::memory:?" + params
	}
	return fmt.Sprintf("file:%s?%s", cfg.Path, params)
}

func (s *Store) configurePragmas(ctx context.Context) error {
	for _, pragma := range pragmas {
		if _, err := s.db.ExecContext(ctx, pragma); err != nil {
			return errors.WrapFatal(err, "SQLiteStore", "configurePragmas", pragma)
		}
	}
	return nil
}

func (s *Store) createTables(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return errors.WrapFatal(err, "SQLiteStore", "createTables", "create schema")
	}
	return nil
}

// Spaces returns the space repository
func (s *Store) Spaces() booking.SpaceRepository { return s.spaces }

// Users returns the user repository
func (s *Store) Users() booking.UserRepository { return s.users }

// Reservations returns the reservation repository
func (s *Store) Reservations() booking.ReservationRepository { return s.reservations }

// Ping checks that the database answers queries
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return errors.WrapTransient(err, "SQLiteStore", "Ping", "ping database")
	}
	return nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// do runs fn against the database, retrying while SQLite reports busy or locked.
func (s *Store) do(ctx context.Context, entity, operation string, fn func(q querier) error) error {
	if s.metrics != nil {
		s.metrics.RecordStoreOperation(entity, operation)
	}
	return retry.DoIf(ctx, s.retry.ToRetryConfig(), errors.IsTransient, func() error {
		return classify(fn(s.db), entity, operation)
	})
}

// tx runs fn inside a transaction with the same retry policy as do. Each
// attempt starts a fresh transaction.
func (s *Store) tx(ctx context.Context, entity, operation string, fn func(q querier) error) error {
	if s.metrics != nil {
		s.metrics.RecordStoreOperation(entity, operation)
	}
	return retry.DoIf(ctx, s.retry.ToRetryConfig(), errors.IsTransient, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return classify(err, entity, operation)
		}
		if err := fn(tx); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.Warn("Rollback failed", "operation", operation, "error", rbErr)
			}
			return classify(err, entity, operation)
		}
		return classify(tx.Commit(), entity, operation)
	})
}

// classify maps SQLite failures onto the service error classes. Errors that
// are already classified pass through.
func classify(err error, entity, operation string) error {
	if err == nil {
		return nil
	}

	var ce *errors.ClassifiedError
	if stderrors.As(err, &ce) {
		return err
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return errors.WrapTransient(err, "SQLiteStore", operation, entity)
	}

	var sqliteErr sqlite3.Error
	if stderrors.As(err, &sqliteErr) {
		switch {
		case sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked:
			return errors.WrapTransient(fmt.Errorf("%w: %v", errors.ErrStorageBusy, err),
				"SQLiteStore", operation, entity)
		case sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique,
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey:
			return errors.Conflictf("SQLiteStore", operation, "%s conflicts with an existing record", entity)
		case sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey:
			return errors.NotFoundf("SQLiteStore", operation, "%s references a missing record", entity)
		case sqliteErr.Code == sqlite3.ErrCorrupt:
			return errors.WrapFatal(fmt.Errorf("%w: %v", errors.ErrDataCorrupted, err),
				"SQLiteStore", operation, entity)
		}
	}

	return errors.WrapFatal(err, "SQLiteStore", operation, entity)
}

func notFound(operation, entity string, id int64) error {
	return errors.NotFoundf("SQLiteStore", operation, "%s not found with id: %d", entity, id)
}

// placeholders returns "?, ?, ?" for n arguments
func placeholders(n int) string {
	if n == 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}

func toArgs[T any](values []T) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}

// collectIDs reads a single-column result of ids
func collectIDs(rows *sql.Rows) ([]int64, error) {
	defer rows.Close()
	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// groupIDs reads (owner, id) pairs into owner -> ids, ordered as returned
func groupIDs(rows *sql.Rows) (map[int64][]int64, error) {
	defer rows.Close()
	grouped := make(map[int64][]int64)
	for rows.Next() {
		var owner, id int64
		if err := rows.Scan(&owner, &id); err != nil {
			return nil, err
		}
		grouped[owner] = append(grouped[owner], id)
	}
	return grouped, rows.Err()
}

// idsOrEmpty never returns nil so JSON renders an empty list
func idsOrEmpty(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}

// exists runs a SELECT EXISTS query
func (s *Store) exists(ctx context.Context, entity, operation, query string, args ...any) (bool, error) {
	var found bool
	err := s.do(ctx, entity, operation, func(q querier) error {
		return q.QueryRowContext(ctx, query, args...).Scan(&found)
	})
	return found, err
}

// requireAffected turns a zero-row write into a not-found error
func requireAffected(res sql.Result, operation, entity string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound(operation, entity, id)
	}
	return nil
}
