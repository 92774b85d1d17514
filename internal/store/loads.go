package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// EntriesLoad is the audit record written once per imported entries file.
type EntriesLoad struct {
	ID          string    `json:"id"`
	NumSwimmers int       `json:"numSwimmers"`
	NumEntries  int       `json:"numEntries"`
	DurationMs  int       `json:"durationMs"`
	Swimmers    string    `json:"swimmers"`
	LoadedAt    time.Time `json:"loadedAt"`
}

// InsertEntriesLoad persists the summary of one entries import run. The
// swimmer ids are serialized as a comma-joined list; set membership, not
// order, is the contract. Returns the generated load id.
func (s *Store) InsertEntriesLoad(ctx context.Context, numSwimmers, numEntries int, duration time.Duration, swimmerIDs []string) (string, error) {
	id := uuid.New().String()
	joined := strings.Join(swimmerIDs, ", ")

	_, err := s.db.Exec(ctx, `
		insert into entries_load (id, num_swimmers, num_entries, duration, swimmers)
		values ($1, $2, $3, $4, $5)`,
		id, numSwimmers, numEntries, int(duration.Milliseconds()), joined,
	)
	if err != nil {
		return "", fmt.Errorf("insert entries load: %w", err)
	}
	return id, nil
}

// ListEntriesLoads returns the most recent load audit records, newest first.
func (s *Store) ListEntriesLoads(ctx context.Context, limit int) ([]EntriesLoad, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(ctx, `
		select id, num_swimmers, num_entries, duration, swimmers, loaded_at
		from entries_load
		order by loaded_at desc
		limit $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list entries loads: %w", err)
	}
	defer rows.Close()

	var loads []EntriesLoad
	for rows.Next() {
		var l EntriesLoad
		if err := rows.Scan(&l.ID, &l.NumSwimmers, &l.NumEntries, &l.DurationMs, &l.Swimmers, &l.LoadedAt); err != nil {
			return nil, fmt.Errorf("scan entries load: %w", err)
		}
		loads = append(loads, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("entries load rows: %w", err)
	}
	return loads, nil
}
