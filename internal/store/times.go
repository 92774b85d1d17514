package store

import (
	"context"
	"fmt"

	"github.com/coachdesk/swimmeet/internal/swim"
	"github.com/jackc/pgx/v5/pgtype"
)

// InsertTime records one timed performance. Duplicate suppression happens at
// the storage boundary: the first-imported time for a given (swimmer, style,
// distance, course, time) key wins and later duplicates are silently dropped.
// Returns whether a row was actually written.
func (s *Store) InsertTime(ctx context.Context, t swim.SwimmerTime) (bool, error) {
	date := pgtype.Date{Time: t.Date, Valid: !t.Date.IsZero()}

	tag, err := s.db.Exec(ctx, `
		insert into swimmer_time (swimmer, style, distance, course, time_official, time_date)
		values ($1, $2, $3, $4, $5, $6)
		on conflict do nothing`,
		t.SwimmerID, string(t.Style), t.Distance, string(t.Course), t.Millis, date,
	)
	if err != nil {
		return false, fmt.Errorf("insert time for %s: %w", t.SwimmerID, err)
	}
	return tag.RowsAffected() > 0, nil
}

// CountTimes returns the number of stored performances for a swimmer.
func (s *Store) CountTimes(ctx context.Context, swimmerID string) (int64, error) {
	var count int64
	err := s.db.QueryRow(ctx,
		`select count(*) from swimmer_time where swimmer = $1`, swimmerID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count times for %s: %w", swimmerID, err)
	}
	return count, nil
}
