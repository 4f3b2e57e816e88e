package weeks

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/weeklit/internal/cli"
	"github.com/julianstephens/weeklit/internal/models"
	"github.com/julianstephens/weeklit/internal/storage"
)

type DoneCmd struct {
	Habit string `arg:"" help:"Habit ID or name."`
	Day   string `help:"Day to record (YYYY-MM-DD). Defaults to today."`
	Note  string `short:"n" help:"Optional note."`
	Undo  bool   `help:"Remove the completion instead of recording it."`
}

func (c *DoneCmd) Run(ctx *cli.Context) error {
	habit, err := ctx.ResolveHabit(c.Habit)
	if err != nil {
		return err
	}

	day, err := ctx.ResolveDay(c.Day)
	if err != nil {
		return err
	}

	existing, err := ctx.Store.GetCompletion(habit.ID, day)
	switch {
	case err == nil && c.Undo:
		if err := ctx.Store.DeleteCompletion(existing.ID); err != nil {
			return fmt.Errorf("failed to remove completion: %w", err)
		}
		fmt.Printf("Removed completion: %s on %s\n", habit.Name, day)

	case err == nil:
		// Already done for the day; a repeat just refreshes the note.
		existing.Note = c.Note
		existing.UpdatedAt = time.Now()
		if err := ctx.Store.AddCompletion(existing); err != nil {
			return fmt.Errorf("failed to update completion: %w", err)
		}
		fmt.Printf("✓ %s already done on %s (note updated)\n", habit.Name, day)

	case errors.Is(err, storage.ErrNotFound) && c.Undo:
		return fmt.Errorf("%s has no completion on %s", habit.Name, day)

	case errors.Is(err, storage.ErrNotFound):
		now := time.Now()
		completion := models.Completion{
			ID:        uuid.NewString(),
			HabitID:   habit.ID,
			Day:       day,
			Note:      c.Note,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := ctx.Store.AddCompletion(completion); err != nil {
			return fmt.Errorf("failed to record completion: %w", err)
		}
		// Completing on a deferral's target day settles the move.
		if err := ctx.Scheduler.Ledger().ResolveCompletion(habit.ID, day); err != nil {
			return fmt.Errorf("failed to close deferral: %w", err)
		}
		fmt.Printf("✓ %s done on %s\n", habit.Name, day)

	default:
		return fmt.Errorf("failed to check completion: %w", err)
	}

	// Keep the stored day summary in step with the new completion state.
	if _, err := ctx.Stats.CalculateAndStoreDayStats(day); err != nil {
		return fmt.Errorf("failed to update day stats: %w", err)
	}

	return nil
}
