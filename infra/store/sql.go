// Package store implements the history gateway on a SQL database via sqlx.
// Postgres is the production backend; the embedded sqlite driver serves
// development setups and tests without an external server.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/jdalisay/anihan/core/history"
	"github.com/jdalisay/anihan/core/logger"
	"github.com/jdalisay/anihan/core/model"
)

// Config selects the backing database.
type Config struct {
	// Driver is "postgres" or "sqlite".
	Driver string `json:"driver"`
	DSN    string `json:"dsn"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Driver == "" {
		c.Driver = "sqlite"
	}
	if c.DSN == "" && c.Driver == "sqlite" {
		c.DSN = "anihan.db"
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.Driver != "postgres" && c.Driver != "sqlite" {
		return fmt.Errorf("unknown driver %s", c.Driver)
	}
	if c.DSN == "" {
		return fmt.Errorf("dsn is required")
	}
	return nil
}

// SQLStore persists prediction requests and their points in two related
// tables. Requests are keyed by the generated request token; every point row
// references exactly one request token. Writes and deletes run in a single
// transaction so a request's point set exists entirely or not at all.
type SQLStore struct {
	db  *sqlx.DB
	log logger.Logger
}

const schema = `
CREATE TABLE IF NOT EXISTS prediction_requests (
	request_id  TEXT PRIMARY KEY,
	species     TEXT NOT NULL,
	province    TEXT NOT NULL,
	city        TEXT NOT NULL,
	date_from   TIMESTAMP NOT NULL,
	date_to     TIMESTAMP NOT NULL,
	created_at  TIMESTAMP NOT NULL,
	ip_address  TEXT NOT NULL DEFAULT '',
	user_agent  TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS predictions (
	request_id       TEXT NOT NULL REFERENCES prediction_requests(request_id),
	prediction_date  TIMESTAMP NOT NULL,
	predicted_value  DOUBLE PRECISION NOT NULL,
	confidence_lower DOUBLE PRECISION,
	confidence_upper DOUBLE PRECISION
);
CREATE INDEX IF NOT EXISTS idx_requests_species ON prediction_requests(species);
CREATE INDEX IF NOT EXISTS idx_requests_created ON prediction_requests(created_at);
CREATE INDEX IF NOT EXISTS idx_predictions_request ON predictions(request_id);
`

// Open connects to the configured database, verifies reachability and applies
// the schema.
func Open(cfg Config, log logger.Logger) (*SQLStore, error) {
	db, err := sqlx.Connect(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", history.ErrUnavailable, err)
	}
	if cfg.Driver == "sqlite" {
		// The embedded driver serializes writes; a single connection avoids
		// table lock errors under concurrent saves.
		db.SetMaxOpenConns(1)
	}
	db.SetConnMaxLifetime(time.Hour)
	s := &SQLStore{db: db, log: log}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	log.Infof("history store ready (driver %s)", cfg.Driver)
	return s, nil
}

func (s *SQLStore) Save(ctx context.Context, rec history.Record, points []model.PredictionPoint) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", history.ErrUnavailable, err)
	}
	defer func() { _ = tx.Rollback() }()

	insertReq := s.db.Rebind(`INSERT INTO prediction_requests
		(request_id, species, province, city, date_from, date_to, created_at, ip_address, user_agent)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if _, err := tx.ExecContext(ctx, insertReq,
		rec.RequestID, rec.Species, rec.Province, rec.City,
		rec.DateFrom, rec.DateTo, rec.CreatedAt, rec.IPAddress, rec.UserAgent); err != nil {
		return fmt.Errorf("insert request: %w", err)
	}

	insertPoint := s.db.Rebind(`INSERT INTO predictions
		(request_id, prediction_date, predicted_value, confidence_lower, confidence_upper)
		VALUES (?, ?, ?, ?, ?)`)
	for _, p := range points {
		if _, err := tx.ExecContext(ctx, insertPoint,
			rec.RequestID, p.Date, p.PredictedValue, p.ConfidenceLower, p.ConfidenceUpper); err != nil {
			return fmt.Errorf("insert point: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

type pointRow struct {
	Date  time.Time `db:"prediction_date"`
	Value float64   `db:"predicted_value"`
	Lower *float64  `db:"confidence_lower"`
	Upper *float64  `db:"confidence_upper"`
}

func (s *SQLStore) Get(ctx context.Context, requestID string) (history.Record, []model.PredictionPoint, error) {
	var rec history.Record
	q := s.db.Rebind(`SELECT request_id, species, province, city, date_from, date_to, created_at, ip_address, user_agent
		FROM prediction_requests WHERE request_id = ?`)
	if err := s.db.GetContext(ctx, &rec, q, requestID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return history.Record{}, nil, history.ErrNotFound
		}
		return history.Record{}, nil, fmt.Errorf("%w: %v", history.ErrUnavailable, err)
	}

	var rows []pointRow
	pq := s.db.Rebind(`SELECT prediction_date, predicted_value, confidence_lower, confidence_upper
		FROM predictions WHERE request_id = ? ORDER BY prediction_date ASC`)
	if err := s.db.SelectContext(ctx, &rows, pq, requestID); err != nil {
		return history.Record{}, nil, fmt.Errorf("%w: %v", history.ErrUnavailable, err)
	}
	points := make([]model.PredictionPoint, len(rows))
	for i, r := range rows {
		points[i] = model.PredictionPoint{
			Date:            r.Date.UTC(),
			PredictedValue:  r.Value,
			ConfidenceLower: r.Lower,
			ConfidenceUpper: r.Upper,
		}
	}
	return rec, points, nil
}

func (s *SQLStore) List(ctx context.Context, f history.Filter, skip, limit int) ([]history.Summary, error) {
	limit = history.ClampLimit(limit)
	if skip < 0 {
		skip = 0
	}
	where, args := filterClause(f)
	q := s.db.Rebind(`SELECT r.request_id, r.species, r.province, r.city, r.date_from, r.date_to,
			r.created_at, r.ip_address, r.user_agent,
			(SELECT COUNT(*) FROM predictions p WHERE p.request_id = r.request_id) AS prediction_count
		FROM prediction_requests r` + where + ` ORDER BY r.created_at DESC LIMIT ? OFFSET ?`)
	args = append(args, limit, skip)

	var out []history.Summary
	if err := s.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, fmt.Errorf("%w: %v", history.ErrUnavailable, err)
	}
	return out, nil
}

func (s *SQLStore) Count(ctx context.Context, f history.Filter) (int, error) {
	where, args := filterClause(f)
	q := s.db.Rebind(`SELECT COUNT(*) FROM prediction_requests r` + where)
	var n int
	if err := s.db.GetContext(ctx, &n, q, args...); err != nil {
		return 0, fmt.Errorf("%w: %v", history.ErrUnavailable, err)
	}
	return n, nil
}

func (s *SQLStore) Delete(ctx context.Context, requestID string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", history.ErrUnavailable, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, s.db.Rebind(`DELETE FROM predictions WHERE request_id = ?`), requestID); err != nil {
		return fmt.Errorf("delete points: %w", err)
	}
	res, err := tx.ExecContext(ctx, s.db.Rebind(`DELETE FROM prediction_requests WHERE request_id = ?`), requestID)
	if err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	if n == 0 {
		return history.ErrNotFound
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}
	return nil
}

func (s *SQLStore) Close() error { return s.db.Close() }

// filterClause renders the AND-conjunction for set filter fields using `?`
// placeholders; callers rebind for the active driver.
func filterClause(f history.Filter) (string, []any) {
	var conds []string
	var args []any
	if f.Species != "" {
		conds = append(conds, "r.species = ?")
		args = append(args, f.Species)
	}
	if f.Province != "" {
		conds = append(conds, "r.province = ?")
		args = append(args, f.Province)
	}
	if f.City != "" {
		conds = append(conds, "r.city = ?")
		args = append(args, f.City)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
