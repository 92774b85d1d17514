package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/coachdesk/swimmeet/internal/swim"
	"github.com/jackc/pgx/v5"
)

// ErrSwimmerNotFound is returned when a name lookup matches no swimmer.
var ErrSwimmerNotFound = errors.New("swimmer not found")

// UpsertSwimmer inserts a swimmer identity record. The insert is idempotent
// and first-write-wins: a conflicting id leaves the stored record unchanged,
// even when names or gender differ. Returns the swimmer id on success.
func (s *Store) UpsertSwimmer(ctx context.Context, sw swim.Swimmer) (string, error) {
	_, err := s.db.Exec(ctx, `
		insert into swimmer (id, name_first, name_last, gender, birth_date)
		values ($1, $2, $3, $4, $5)
		on conflict (id) do nothing`,
		sw.ID, sw.FirstName, sw.LastName, sw.Gender, sw.BirthDate,
	)
	if err != nil {
		return "", fmt.Errorf("upsert swimmer %s: %w", sw.ID, err)
	}
	return sw.ID, nil
}

// FindSwimmerByName resolves a results-header lookup name ("First Last",
// anything after the first comma already stripped by the caller) to a swimmer
// by exact (first, last) match. Swimmers sharing a name are not disambiguated;
// the lowest id wins so the choice is at least deterministic.
func (s *Store) FindSwimmerByName(ctx context.Context, fullName string) (swim.Swimmer, error) {
	first, last := swim.SplitLookupName(fullName)

	row := s.db.QueryRow(ctx, `
		select id, name_first, name_last, gender, birth_date
		from swimmer
		where name_first = $1 and name_last = $2
		order by id
		limit 1`,
		first, last,
	)

	var sw swim.Swimmer
	err := row.Scan(&sw.ID, &sw.FirstName, &sw.LastName, &sw.Gender, &sw.BirthDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return swim.Swimmer{}, ErrSwimmerNotFound
	}
	if err != nil {
		return swim.Swimmer{}, fmt.Errorf("find swimmer %q: %w", fullName, err)
	}
	return sw, nil
}

// ListSwimmers returns the directory ordered by first then last name.
func (s *Store) ListSwimmers(ctx context.Context) ([]swim.Swimmer, error) {
	rows, err := s.db.Query(ctx, `
		select id, name_first, name_last, gender, birth_date
		from swimmer
		order by name_first, name_last`,
	)
	if err != nil {
		return nil, fmt.Errorf("list swimmers: %w", err)
	}
	defer rows.Close()

	var swimmers []swim.Swimmer
	for rows.Next() {
		var sw swim.Swimmer
		if err := rows.Scan(&sw.ID, &sw.FirstName, &sw.LastName, &sw.Gender, &sw.BirthDate); err != nil {
			return nil, fmt.Errorf("scan swimmer: %w", err)
		}
		swimmers = append(swimmers, sw)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("swimmer rows: %w", err)
	}
	return swimmers, nil
}
