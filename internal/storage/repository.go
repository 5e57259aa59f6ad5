package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"sales-dashboard/internal/sales"
)

var (
	// ErrNotConfigured indicates the storage pool was not initialised.
	ErrNotConfigured = errors.New("storage: pool not configured")
)

// DefaultTable is used when no table name is configured.
const DefaultTable = "sales_records"

const (
	createTableSQL = `CREATE TABLE IF NOT EXISTS %[1]s (
        id         BIGSERIAL PRIMARY KEY,
        sale_date  DATE           NOT NULL,
        sales      NUMERIC(18, 4) NOT NULL CHECK (sales >= 0),
        region     TEXT           NOT NULL DEFAULT '',
        created_at TIMESTAMPTZ    NOT NULL DEFAULT now()
    );`

	createIndexSQL = `CREATE INDEX IF NOT EXISTS %[2]s ON %[1]s (sale_date, id);`

	insertRecordSQL = `INSERT INTO %s (sale_date, sales, region) VALUES ($1, $2::numeric, $3);`

	listRecordsSQL = `SELECT
        sale_date,
        sales::text,
        region
    FROM %s
    ORDER BY sale_date, id;`

	countRecordsSQL = `SELECT COUNT(*) FROM %s;`

	truncateSQL = `TRUNCATE TABLE %s RESTART IDENTITY;`
)

// RecordStore defines persistence for loaded sales records.
type RecordStore interface {
	EnsureSchema(ctx context.Context) error
	InsertRecords(ctx context.Context, records []sales.Record) (int64, error)
	ReplaceRecords(ctx context.Context, records []sales.Record) (int64, error)
	ListRecords(ctx context.Context) ([]sales.Record, error)
	CountRecords(ctx context.Context) (int64, error)
}

// Store persists sales records in PostgreSQL.
type Store struct {
	pool  *pgxpool.Pool
	table string
}

// NewStore wires a pgx pool into a Store writing to table.
func NewStore(pool *pgxpool.Pool, table string) *Store {
	if table == "" {
		table = DefaultTable
	}
	return &Store{pool: pool, table: table}
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

func (s *Store) getPool() (*pgxpool.Pool, error) {
	if s == nil || s.pool == nil {
		return nil, ErrNotConfigured
	}
	return s.pool, nil
}

func (s *Store) ident() string {
	return pgx.Identifier{s.table}.Sanitize()
}

func (s *Store) sql(tmpl string) string {
	return fmt.Sprintf(tmpl, s.ident())
}

// EnsureSchema creates the records table and its ordering index when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}
	if _, err := pool.Exec(ctx, s.sql(createTableSQL)); err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	index := pgx.Identifier{s.table + "_date_idx"}.Sanitize()
	if _, err := pool.Exec(ctx, fmt.Sprintf(createIndexSQL, s.ident(), index)); err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

// InsertRecords appends records in one transaction and returns the number inserted.
func (s *Store) InsertRecords(ctx context.Context, records []sales.Record) (int64, error) {
	return s.writeRecords(ctx, records, false)
}

// ReplaceRecords truncates the table and inserts records in one transaction.
// On any failure the previous contents are kept.
func (s *Store) ReplaceRecords(ctx context.Context, records []sales.Record) (int64, error) {
	return s.writeRecords(ctx, records, true)
}

func (s *Store) writeRecords(ctx context.Context, records []sales.Record, truncate bool) (int64, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}
	if len(records) == 0 && !truncate {
		return 0, nil
	}

	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if truncate {
		if _, execErr := tx.Exec(ctx, s.sql(truncateSQL)); execErr != nil {
			return 0, fmt.Errorf("truncate records: %w", execErr)
		}
	}

	inserted, err := s.insertBatch(ctx, tx, records)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit records: %w", err)
	}
	return inserted, nil
}

func (s *Store) insertBatch(ctx context.Context, tx pgx.Tx, records []sales.Record) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	query := s.sql(insertRecordSQL)
	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(query, rec.Date, rec.Sales.String(), rec.Region)
	}

	results := tx.SendBatch(ctx, batch)
	var inserted int64
	for i := range records {
		tag, execErr := results.Exec()
		if execErr != nil {
			_ = results.Close()
			return 0, fmt.Errorf("insert record %d: %w", i, execErr)
		}
		inserted += tag.RowsAffected()
	}
	if err := results.Close(); err != nil {
		return 0, fmt.Errorf("insert records: %w", err)
	}
	return inserted, nil
}

// ListRecords returns all records ordered by date, then insertion order.
func (s *Store) ListRecords(ctx context.Context) ([]sales.Record, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, s.sql(listRecordsSQL))
	if queryErr != nil {
		return nil, fmt.Errorf("list records: %w", queryErr)
	}
	defer rows.Close()

	records := make([]sales.Record, 0)
	for rows.Next() {
		rec, scanErr := scanRecord(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		records = append(records, rec)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return records, nil
}

// CountRecords counts stored records.
func (s *Store) CountRecords(ctx context.Context) (int64, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}
	var count int64
	if scanErr := pool.QueryRow(ctx, s.sql(countRecordsSQL)).Scan(&count); scanErr != nil {
		return 0, fmt.Errorf("count records: %w", scanErr)
	}
	return count, nil
}

func scanRecord(rows pgx.Rows) (sales.Record, error) {
	var (
		date     time.Time
		salesStr string
		region   string
	)

	if err := rows.Scan(&date, &salesStr, &region); err != nil {
		return sales.Record{}, err
	}

	amount, err := decimal.NewFromString(salesStr)
	if err != nil {
		return sales.Record{}, fmt.Errorf("parse sales amount: %w", err)
	}

	return sales.Record{
		Date:   sales.DateOf(date),
		Sales:  amount,
		Region: region,
	}, nil
}

var _ RecordStore = (*Store)(nil)
