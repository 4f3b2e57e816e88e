package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/julianstephens/weeklit/internal/models"
	"github.com/julianstephens/weeklit/internal/storage"
)

const deferralColumns = `id, habit_id, original_day, deferred_to_day, times_deferred,
	reason, completed, created_at, updated_at`

func scanDeferral(row interface{ Scan(...any) error }) (models.Deferral, error) {
	var d models.Deferral

	err := row.Scan(&d.ID, &d.HabitID, &d.OriginalDay, &d.DeferredToDay, &d.TimesDeferred,
		&d.Reason, &d.Completed, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return models.Deferral{}, err
	}

	return d, nil
}

func (s *Store) GetOpenDeferral(habitID, originalDay string) (models.Deferral, error) {
	row := s.db.QueryRow(`
		SELECT `+deferralColumns+`
		FROM deferrals
		WHERE habit_id = $1 AND original_day = $2 AND NOT completed`, habitID, originalDay)

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
		WHERE habit_id = $1 AND deferred_to_day >= $2 AND deferred_to_day <= $3
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
		WHERE NOT completed
		  AND ((original_day >= $1 AND original_day <= $2)
		    OR (deferred_to_day >= $3 AND deferred_to_day <= $4))
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

func (s *Store) SaveDeferral(deferral models.Deferral) error {
	_, err := s.db.Exec(`
		INSERT INTO deferrals (id, habit_id, original_day, deferred_to_day, times_deferred,
			reason, completed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			deferred_to_day = EXCLUDED.deferred_to_day,
			times_deferred = EXCLUDED.times_deferred,
			reason = EXCLUDED.reason,
			completed = EXCLUDED.completed,
			updated_at = EXCLUDED.updated_at`,
		deferral.ID, deferral.HabitID, deferral.OriginalDay, deferral.DeferredToDay,
		deferral.TimesDeferred, deferral.Reason, deferral.Completed,
		deferral.CreatedAt, deferral.UpdatedAt)

	return err
}
