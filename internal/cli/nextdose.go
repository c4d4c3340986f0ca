package cli

import (
	"fmt"

	"github.com/1008surajshaw/meds-buddy/internal/domain/schedule"
)

type NextDoseCmd struct {
	Time      string   `arg:"" help:"Scheduled time (HH:MM)."`
	Frequency string   `arg:"" help:"Frequency value, see 'frequencies'."`
	Taken     []string `help:"Times already taken today (HH:MM). Repeatable." short:"t"`
}

func (c *NextDoseCmd) Run(ctx *Context) error {
	f, err := schedule.ParseFrequency(c.Frequency)
	if err != nil {
		return err
	}

	next, ok, err := schedule.NextDoseTime(c.Time, f, c.Taken)
	if err != nil {
		return err
	}
	if !ok {
		_, err = fmt.Fprintln(ctx.Out, "none: all doses taken for today")
		return err
	}
	_, err = fmt.Fprintln(ctx.Out, next)
	return err
}

type FrequenciesCmd struct{}

func (c *FrequenciesCmd) Run(ctx *Context) error {
	for _, f := range schedule.Frequencies() {
		if _, err := fmt.Fprintf(ctx.Out, "%-18s %d  %s\n", f, schedule.RequiredDosesPerDay(f), schedule.Label(f)); err != nil {
			return err
		}
	}
	return nil
}
