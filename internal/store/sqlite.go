package store

import (
	"context"
	"database/sql"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/sells-group/rfm-cli/internal/model"
)

var _ Store = (*SQLiteStore)(nil)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS rfm_runs (
	id             TEXT PRIMARY KEY,
	input          TEXT NOT NULL,
	reference_date TEXT NOT NULL,
	bins           INTEGER NOT NULL,
	customers      INTEGER NOT NULL,
	created_at     DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS rfm_customers (
	run_id          TEXT NOT NULL REFERENCES rfm_runs(id),
	customer_id     TEXT NOT NULL,
	recency         INTEGER NOT NULL,
	frequency       INTEGER NOT NULL,
	monetary        REAL NOT NULL,
	recency_score   INTEGER NOT NULL,
	frequency_score INTEGER NOT NULL,
	monetary_score  INTEGER NOT NULL,
	rf_score        TEXT NOT NULL,
	segment         TEXT NOT NULL,
	position        INTEGER NOT NULL,
	PRIMARY KEY (run_id, customer_id)
);

CREATE INDEX IF NOT EXISTS idx_rfm_customers_segment ON rfm_customers(run_id, segment);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveRun(ctx context.Context, run Run, rows []model.CustomerRFM) (*Run, error) {
	run.ID = uuid.New().String()
	run.Customers = len(rows)
	run.CreatedAt = time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: begin transaction")
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx,
		`INSERT INTO rfm_runs (id, input, reference_date, bins, customers, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Input, run.Reference.Format(time.DateOnly), run.Bins, run.Customers, run.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO rfm_customers
			(run_id, customer_id, recency, frequency, monetary,
			 recency_score, frequency_score, monetary_score, rf_score, segment, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: prepare customer insert")
	}
	defer stmt.Close() //nolint:errcheck

	for i, r := range rows {
		_, err := stmt.ExecContext(ctx,
			run.ID, r.CustomerID, r.Recency, r.Frequency, r.Monetary,
			r.RecencyScore, r.FrequencyScore, r.MonetaryScore, r.RFScore, r.Segment, i,
		)
		if err != nil {
			return nil, eris.Wrapf(err, "sqlite: insert customer %s", r.CustomerID)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, eris.Wrap(err, "sqlite: commit run")
	}

	zap.L().Info("sqlite: saved run",
		zap.String("run_id", run.ID),
		zap.Int("customers", run.Customers),
	)
	return &run, nil
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*Run, error) {
	var (
		run       Run
		reference string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, input, reference_date, bins, customers, created_at FROM rfm_runs WHERE id = ?`,
		runID,
	).Scan(&run.ID, &run.Input, &reference, &run.Bins, &run.Customers, &run.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.Errorf("sqlite: run not found: %s", runID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get run %s", runID)
	}

	run.Reference, err = time.ParseInLocation(time.DateOnly, reference, time.UTC)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: parse reference date of run %s", runID)
	}
	return &run, nil
}

func (s *SQLiteStore) ListSegment(ctx context.Context, runID, segment string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT customer_id FROM rfm_customers WHERE run_id = ? AND segment = ? ORDER BY position`,
		runID, segment,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list segment %s", segment)
	}
	defer rows.Close() //nolint:errcheck

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan customer id")
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate segment rows")
	}
	return slices.Clip(ids), nil
}
