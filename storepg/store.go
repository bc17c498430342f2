// Package storepg implements session.Store on Postgres, for deployments
// that need the sequence archive and counters to survive a process
// restart (spec.md §6.4's "durable store flavors"). The teacher's go.mod
// carries jackc/pgx/v5 as an indirect dependency it never imports directly
// — this package gives it its first real home.
package storepg

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS hotfix_sequence_counters (
	session_id  TEXT PRIMARY KEY,
	next_sender BIGINT NOT NULL DEFAULT 1,
	next_target BIGINT NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS hotfix_message_archive (
	session_id TEXT NOT NULL,
	seq_num    BIGINT NOT NULL,
	data       BYTEA NOT NULL,
	PRIMARY KEY (session_id, seq_num)
);
`

// Store is a Postgres-backed session.Store. One instance is scoped to a
// single sessionID (SenderCompID/TargetCompID pair) so multiple sessions
// can share a pool without clobbering each other's counters.
type Store struct {
	pool      *pgxpool.Pool
	sessionID string
}

// Open connects to Postgres via dsn and ensures the schema exists.
func Open(ctx context.Context, dsn, sessionID string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("storepg: connect: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("storepg: migrate: %w", err)
	}
	s := &Store{pool: pool, sessionID: sessionID}
	if err := s.ensureRow(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureRow(ctx context.Context) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO hotfix_sequence_counters (session_id) VALUES ($1) ON CONFLICT DO NOTHING`,
		s.sessionID)
	return err
}

func (s *Store) Close() { s.pool.Close() }

func (s *Store) Add(seq uint64, data []byte) error {
	ctx := context.Background()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO hotfix_message_archive (session_id, seq_num, data) VALUES ($1, $2, $3)
		 ON CONFLICT (session_id, seq_num) DO UPDATE SET data = EXCLUDED.data`,
		s.sessionID, int64(seq), data)
	return err
}

func (s *Store) GetRange(begin, end uint64) ([][]byte, error) {
	if end < begin {
		return nil, fmt.Errorf("storepg: invalid range [%d,%d]", begin, end)
	}
	ctx := context.Background()
	rows, err := s.pool.Query(ctx,
		`SELECT data FROM hotfix_message_archive
		 WHERE session_id = $1 AND seq_num BETWEEN $2 AND $3
		 ORDER BY seq_num ASC`,
		s.sessionID, int64(begin), int64(end))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out [][]byte
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		out = append(out, data)
	}
	return out, rows.Err()
}

func (s *Store) NextSenderSeq() (uint64, error) {
	return s.scanCounter("next_sender")
}

func (s *Store) NextTargetSeq() (uint64, error) {
	return s.scanCounter("next_target")
}

func (s *Store) scanCounter(column string) (uint64, error) {
	ctx := context.Background()
	var n int64
	query := fmt.Sprintf(`SELECT %s FROM hotfix_sequence_counters WHERE session_id = $1`, column)
	if err := s.pool.QueryRow(ctx, query, s.sessionID).Scan(&n); err != nil {
		return 0, err
	}
	return uint64(n), nil
}

func (s *Store) IncrementSender() error {
	ctx := context.Background()
	_, err := s.pool.Exec(ctx,
		`UPDATE hotfix_sequence_counters SET next_sender = next_sender + 1 WHERE session_id = $1`,
		s.sessionID)
	return err
}

func (s *Store) IncrementTarget() error {
	ctx := context.Background()
	_, err := s.pool.Exec(ctx,
		`UPDATE hotfix_sequence_counters SET next_target = next_target + 1 WHERE session_id = $1`,
		s.sessionID)
	return err
}

func (s *Store) Reset() error {
	ctx := context.Background()
	_, err := s.pool.Exec(ctx,
		`UPDATE hotfix_sequence_counters SET next_sender = 1, next_target = 1 WHERE session_id = $1`,
		s.sessionID)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `DELETE FROM hotfix_message_archive WHERE session_id = $1`, s.sessionID)
	return err
}
