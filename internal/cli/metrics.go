package cli

import (
	"github.com/1008surajshaw/meds-buddy/internal/domain/adherence"
	"github.com/1008surajshaw/meds-buddy/internal/domain/doses"
	"github.com/1008surajshaw/meds-buddy/internal/domain/schedule"
)

type MetricsCmd struct {
	Medications string `help:"JSON file with the medication list." type:"existingfile" required:""`
	Activity    string `help:"JSON file with the activity log." type:"existingfile"`
	Today       string `help:"Reference date (YYYY-MM-DD). Defaults to today."`
}

func (c *MetricsCmd) Run(ctx *Context) error {
	meds, err := loadMedications(c.Medications)
	if err != nil {
		return err
	}
	acts, err := loadActivity(c.Activity)
	if err != nil {
		return err
	}

	today := c.Today
	if today == "" {
		today = ctx.today()
	}
	m, err := adherence.ComputeMetrics(meds, acts, today)
	if err != nil {
		return err
	}
	return ctx.printJSON(m)
}

type StatusCmd struct {
	Medications string `help:"JSON file with the medication list." type:"existingfile" required:""`
	Activity    string `help:"JSON file with the activity log." type:"existingfile"`
	Date        string `help:"Day to inspect (YYYY-MM-DD). Defaults to today."`
}

type statusLine struct {
	MedicationID string   `json:"medication_id"`
	Name         string   `json:"name"`
	Required     int      `json:"required_doses"`
	TakenTimes   []string `json:"taken_times"`
	NextDoseTime *string  `json:"next_dose_time"`
	Complete     bool     `json:"is_complete_for_day"`
}

func (c *StatusCmd) Run(ctx *Context) error {
	meds, err := loadMedications(c.Medications)
	if err != nil {
		return err
	}
	acts, err := loadActivity(c.Activity)
	if err != nil {
		return err
	}

	date := c.Date
	if date == "" {
		date = ctx.today()
	}
	day, err := schedule.ParseDate(date)
	if err != nil {
		return err
	}

	items, err := doses.BuildDailyStatus(day, meds, acts)
	if err != nil {
		return err
	}
	out := make([]statusLine, 0, len(items))
	for _, it := range items {
		line := statusLine{
			MedicationID: it.MedicationID,
			Name:         it.Name,
			Required:     it.RequiredDoses,
			TakenTimes:   it.TakenTimes,
			Complete:     it.Complete,
		}
		if it.HasNextDose {
			next := it.NextDoseTime
			line.NextDoseTime = &next
		}
		out = append(out, line)
	}
	return ctx.printJSON(out)
}
