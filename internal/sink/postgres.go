package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nucleus/sharepoint-publisher/internal/endpoint"
)

var _ endpoint.ProvisioningSink = (*PostgresSink)(nil)

// execer is the subset of *pgxpool.Pool the sink uses.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresSink appends data points as rows of a JSONB event table.
type PostgresSink struct {
	db    execer
	table string
	now   func() time.Time

	mu    sync.Mutex
	runID string
}

// ConnectPostgres opens and pings a connection pool.
func ConnectPostgres(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, wrapError(CodeEndpointUnreachable, true, fmt.Errorf("open postgres pool: %w", err))
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, wrapError(CodeEndpointUnreachable, true, fmt.Errorf("ping postgres: %w", err))
	}
	return pool, nil
}

// NewPostgresSink creates a sink writing to table through db.
func NewPostgresSink(db *pgxpool.Pool, table string) *PostgresSink {
	return newPostgresSink(db, table)
}

func newPostgresSink(db execer, table string) *PostgresSink {
	if table == "" {
		table = "data_points"
	}
	return &PostgresSink{db: db, table: table, now: time.Now}
}

func (s *PostgresSink) quotedTable() string {
	return pgx.Identifier(strings.Split(s.table, ".")).Sanitize()
}

// Provision creates the event table when missing.
func (s *PostgresSink) Provision(ctx context.Context, runID string, shape endpoint.ShapeDefinition) error {
	s.mu.Lock()
	s.runID = runID
	s.mu.Unlock()

	table := s.quotedTable()
	index := pgx.Identifier{strings.ReplaceAll(s.table, ".", "_") + "_entity_run_idx"}.Sanitize()
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id BIGSERIAL PRIMARY KEY,
	run_id TEXT NOT NULL,
	entity TEXT NOT NULL,
	action TEXT NOT NULL,
	data JSONB NOT NULL,
	emitted_at TIMESTAMPTZ NOT NULL
)`, table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (entity, run_id)`, index, table),
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return wrapError(CodeWriteFailed, true, fmt.Errorf("provision %s: %w", s.table, err))
		}
	}
	return nil
}

// Send inserts the batch with one statement.
func (s *PostgresSink) Send(ctx context.Context, batch []endpoint.DataPoint) error {
	if len(batch) == 0 {
		return nil
	}
	s.mu.Lock()
	runID := s.runID
	s.mu.Unlock()

	const columns = 5
	now := s.now().UTC()
	values := make([]string, 0, len(batch))
	args := make([]any, 0, len(batch)*columns)
	for i, dp := range batch {
		data, err := json.Marshal(dp.Data)
		if err != nil {
			return wrapError(CodeWriteFailed, false, fmt.Errorf("marshal data point: %w", err))
		}
		values = append(values, "("+placeholders(i*columns+1, columns)+")")
		args = append(args, runID, dp.Entity, string(dp.Action), string(data), now)
	}

	stmt := fmt.Sprintf(`INSERT INTO %s (run_id, entity, action, data, emitted_at) VALUES %s`,
		s.quotedTable(), strings.Join(values, ","))
	if _, err := s.db.Exec(ctx, stmt, args...); err != nil {
		return wrapError(CodeWriteFailed, true, fmt.Errorf("insert into %s: %w", s.table, err))
	}
	return nil
}

// placeholders returns "$start,...,$start+n-1".
func placeholders(start, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", start+i)
	}
	return strings.Join(parts, ",")
}
