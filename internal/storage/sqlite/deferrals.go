package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/weeklit/internal/models"
	"github.com/julianstephens/weeklit/internal/storage"
)

const deferralColumns = `id, habit_id, original_day, deferred_to_day, times_deferred,
	reason, completed, created_at, updated_at`

func scanDeferral(row interface{ Scan(...any) error }) (models.Deferral, error) {
	var d models.Deferral
	var createdAt, updatedAt string

	err := row.Scan(&d.ID, &d.HabitID, &d.OriginalDay, &d.DeferredToDay, &d.TimesDeferred,
		&d.Reason, &d.Completed, &createdAt, &updatedAt)
	if err != nil {
		return models.Deferral{}, err
	}

	d.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return models.Deferral{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	d.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return models.Deferral{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return d, nil
}

func (s *Store) GetOpenDeferral(habitID, originalDay string) (models.Deferral, error) {
	row := s.db.QueryRow(`
		SELECT `+deferralColumns+`
		FROM deferrals
		WHERE habit_id = ? AND original_day = ? AND completed = 0`, habitID, originalDay)

	d, err := scanDeferral(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Deferral{}, fmt.Errorf("open deferral for habit %s on %s: %w", habitID, originalDay, storage.ErrNotFound)
	}
	return d, err
}

func (s *Store) GetDeferralsByTarget(habitID, startDay, endDay string) ([]models.Deferral, error) {
	rows, err := s.db.Query(`
		SELECT `+deferralColumns+`
		FROM deferrals
		WHERE habit_id = ? AND deferred_to_day >= ? AND deferred_to_day <= ?
		ORDER BY deferred_to_day`, habitID, startDay, endDay)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deferrals []models.Deferral
	for rows.Next() {
		d, err := scanDeferral(rows)
		if err != nil {
			return nil, err
		}
		deferrals = append(deferrals, d)
	}

	return deferrals, rows.Err()
}

func (s *Store) GetOpenDeferralsInRange(startDay, endDay string) ([]models.Deferral, error) {
	rows, err := s.db.Query(`
		SELECT `+deferralColumns+`
		FROM deferrals
		WHERE completed = 0
		  AND ((original_day >= ? AND original_day <= ?)
		    OR (deferred_to_day >= ? AND deferred_to_day <= ?))
		ORDER BY original_day`, startDay, endDay, startDay, endDay)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deferrals []models.Deferral
	for rows.Next() {
		d, err := scanDeferral(rows)
		if err != nil {
			return nil, err
		}
		deferrals = append(deferrals, d)
	}

	return deferrals, rows.Err()
}

func (s *Store) GetAllDeferrals() ([]models.Deferral, error) {
	rows, err := s.db.Query(`SELECT ` + deferralColumns + ` FROM deferrals ORDER BY original_day`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deferrals []models.Deferral
	for rows.Next() {
		d, err := scanDeferral(rows)
		if err != nil {
			return nil, err
		}
		deferrals = append(deferrals, d)
	}

	return deferrals, rows.Err()
}

// SaveDeferral upserts a deferral row. The unique open-deferral index on
// (habit_id, original_day) keeps find-or-create idempotent.
func (s *Store) SaveDeferral(deferral models.Deferral) error {
	_, err := s.db.Exec(`
		INSERT INTO deferrals (id, habit_id, original_day, deferred_to_day, times_deferred,
			reason, completed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			deferred_to_day = excluded.deferred_to_day,
			times_deferred = excluded.times_deferred,
			reason = excluded.reason,
			completed = excluded.completed,
			updated_at = excluded.updated_at`,
		deferral.ID, deferral.HabitID, deferral.OriginalDay, deferral.DeferredToDay,
		deferral.TimesDeferred, deferral.Reason, deferral.Completed,
		deferral.CreatedAt.Format(time.RFC3339), deferral.UpdatedAt.Format(time.RFC3339))

	return err
}
