package reports

import (
	"fmt"

	"github.com/julianstephens/weeklit/internal/cli"
	"github.com/julianstephens/weeklit/internal/utils"
)

type RecalcCmd struct {
	From string `help:"First day to recalculate (YYYY-MM-DD)."`
	To   string `help:"Last day to recalculate (YYYY-MM-DD). Defaults to today."`
	Days int    `help:"Recalculate the last N days ending today (ignored when --from is set)." default:"7"`
}

func (c *RecalcCmd) Run(ctx *cli.Context) error {
	today, err := ctx.ResolveDay("")
	if err != nil {
		return err
	}

	from := c.From
	to := c.To
	if to == "" {
		to = today
	}
	if from == "" {
		if c.Days < 1 {
			return fmt.Errorf("--days must be at least 1")
		}
		from, err = utils.AddDays(to, -(c.Days - 1))
		if err != nil {
			return err
		}
	}

	fmt.Printf("Recalculating stats from %s to %s...\n", from, to)
	written, err := ctx.Stats.RecalculateRange(from, to)
	if err != nil {
		return fmt.Errorf("recalculation stopped after %d day(s): %w", written, err)
	}

	fmt.Printf("✓ Recalculated %d day(s)\n", written)
	return nil
}
