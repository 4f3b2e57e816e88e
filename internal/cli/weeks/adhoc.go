package weeks

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/weeklit/internal/cli"
	"github.com/julianstephens/weeklit/internal/models"
)

type AdhocAddCmd struct {
	Name string `arg:"" help:"Task name."`
	Day  string `help:"Day the task is due (YYYY-MM-DD). Defaults to today."`
}

func (c *AdhocAddCmd) Run(ctx *cli.Context) error {
	day, err := ctx.ResolveDay(c.Day)
	if err != nil {
		return err
	}

	task := models.AdHocTask{
		ID:        uuid.NewString(),
		Day:       day,
		Name:      c.Name,
		CreatedAt: time.Now(),
	}
	if err := ctx.Store.AddAdHocTask(task); err != nil {
		return fmt.Errorf("failed to add ad-hoc task: %w", err)
	}

	fmt.Printf("Added ad-hoc task: %s on %s (ID: %s)\n", task.Name, day, task.ID)
	return nil
}

type AdhocDoneCmd struct {
	Task string `arg:"" help:"Task ID or name."`
	Day  string `help:"Day the task is on (YYYY-MM-DD). Defaults to today."`
	Undo bool   `help:"Mark the task as not done instead."`
}

func (c *AdhocDoneCmd) Run(ctx *cli.Context) error {
	day, err := ctx.ResolveDay(c.Day)
	if err != nil {
		return err
	}

	task, err := findAdHocTask(ctx, day, c.Task)
	if err != nil {
		return err
	}

	task.Done = !c.Undo
	if err := ctx.Store.UpdateAdHocTask(task); err != nil {
		return fmt.Errorf("failed to update ad-hoc task: %w", err)
	}

	if task.Done {
		fmt.Printf("✓ %s done on %s\n", task.Name, day)
	} else {
		fmt.Printf("Marked %s as not done on %s\n", task.Name, day)
	}

	if _, err := ctx.Stats.CalculateAndStoreDayStats(day); err != nil {
		return fmt.Errorf("failed to update day stats: %w", err)
	}
	return nil
}

type AdhocListCmd struct {
	Day string `arg:"" optional:"" help:"Day to list (YYYY-MM-DD). Defaults to today."`
}

func (c *AdhocListCmd) Run(ctx *cli.Context) error {
	day, err := ctx.ResolveDay(c.Day)
	if err != nil {
		return err
	}

	tasks, err := ctx.Store.GetAdHocTasksForDay(day)
	if err != nil {
		return fmt.Errorf("failed to get ad-hoc tasks: %w", err)
	}
	if len(tasks) == 0 {
		fmt.Printf("No ad-hoc tasks on %s\n", day)
		return nil
	}

	fmt.Printf("Ad-hoc tasks on %s:\n", day)
	for _, task := range tasks {
		mark := "[ ]"
		if task.Done {
			mark = "[x]"
		}
		fmt.Printf("  %s %s (ID: %s)\n", mark, task.Name, task.ID)
	}
	return nil
}

type AdhocDeleteCmd struct {
	Task string `arg:"" help:"Task ID or name."`
	Day  string `help:"Day the task is on (YYYY-MM-DD). Defaults to today."`
}

func (c *AdhocDeleteCmd) Run(ctx *cli.Context) error {
	day, err := ctx.ResolveDay(c.Day)
	if err != nil {
		return err
	}

	task, err := findAdHocTask(ctx, day, c.Task)
	if err != nil {
		return err
	}

	if err := ctx.Store.DeleteAdHocTask(task.ID); err != nil {
		return fmt.Errorf("failed to delete ad-hoc task: %w", err)
	}

	fmt.Printf("Deleted ad-hoc task: %s\n", task.Name)
	return nil
}

func findAdHocTask(ctx *cli.Context, day, ref string) (models.AdHocTask, error) {
	tasks, err := ctx.Store.GetAdHocTasksForDay(day)
	if err != nil {
		return models.AdHocTask{}, fmt.Errorf("failed to get ad-hoc tasks: %w", err)
	}
	for _, task := range tasks {
		if task.ID == ref || task.Name == ref {
			return task, nil
		}
	}
	return models.AdHocTask{}, fmt.Errorf("no ad-hoc task with id or name %q on %s", ref, day)
}
