package postgres

import (
	"fmt"

	"github.com/julianstephens/weeklit/internal/constants"
	"github.com/julianstephens/weeklit/internal/models"
)

func (s *Store) GetSettings() (models.Settings, error) {
	rows, err := s.db.Query("SELECT key, value FROM settings")
	if err != nil {
		return models.Settings{}, err
	}
	defer rows.Close()

	settings := models.Settings{}
	count := 0
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return models.Settings{}, err
		}
		switch key {
		case constants.SettingAnchorHabit:
			settings.AnchorHabit = value
		case constants.SettingTimezone:
			settings.Timezone = value
		case constants.SettingDefaultWeeklyTarget:
			if _, err := fmt.Sscanf(value, "%d", &settings.DefaultWeeklyTarget); err != nil {
				return models.Settings{}, fmt.Errorf("parsing default_weekly_target: %w", err)
			}
		case constants.SettingNotificationsEnabled:
			settings.NotificationsEnabled = value == "true"
		case constants.SettingDeadlineOffsetMin:
			if _, err := fmt.Sscanf(value, "%d", &settings.DeadlineOffsetMin); err != nil {
				return models.Settings{}, fmt.Errorf("parsing deadline_offset_min: %w", err)
			}
		case constants.SettingJobIntervalMin:
			if _, err := fmt.Sscanf(value, "%d", &settings.JobIntervalMin); err != nil {
				return models.Settings{}, fmt.Errorf("parsing job_interval_min: %w", err)
			}
		case constants.SettingJobBackoffMin:
			if _, err := fmt.Sscanf(value, "%d", &settings.JobBackoffMin); err != nil {
				return models.Settings{}, fmt.Errorf("parsing job_backoff_min: %w", err)
			}
		case constants.SettingJobBackfillLimit:
			if _, err := fmt.Sscanf(value, "%d", &settings.JobBackfillLimit); err != nil {
				return models.Settings{}, fmt.Errorf("parsing job_backfill_limit: %w", err)
			}
		}
		count++
	}

	if count == 0 {
		return models.Settings{}, fmt.Errorf("settings not found")
	}

	return settings, nil
}

func (s *Store) SaveSettings(settings models.Settings) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO settings (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	pairs := []struct {
		key   string
		value string
	}{
		{constants.SettingAnchorHabit, settings.AnchorHabit},
		{constants.SettingTimezone, settings.Timezone},
		{constants.SettingDefaultWeeklyTarget, fmt.Sprintf("%d", settings.DefaultWeeklyTarget)},
		{constants.SettingNotificationsEnabled, fmt.Sprintf("%v", settings.NotificationsEnabled)},
		{constants.SettingDeadlineOffsetMin, fmt.Sprintf("%d", settings.DeadlineOffsetMin)},
		{constants.SettingJobIntervalMin, fmt.Sprintf("%d", settings.JobIntervalMin)},
		{constants.SettingJobBackoffMin, fmt.Sprintf("%d", settings.JobBackoffMin)},
		{constants.SettingJobBackfillLimit, fmt.Sprintf("%d", settings.JobBackfillLimit)},
	}
	for _, p := range pairs {
		if _, err := stmt.Exec(p.key, p.value); err != nil {
			return err
		}
	}

	return tx.Commit()
}
