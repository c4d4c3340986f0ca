// Package cli implementa los comandos de medsctl. Trabajan sobre archivos
// JSON locales, sin base de datos ni servidor.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/1008surajshaw/meds-buddy/internal/domain/doses"
	"github.com/1008surajshaw/meds-buddy/internal/domain/medications"
	"github.com/1008surajshaw/meds-buddy/internal/domain/schedule"
)

type Context struct {
	Out io.Writer
	Now func() time.Time
}

func (c *Context) today() string {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	return schedule.FormatDate(schedule.DayOf(now()))
}

func (c *Context) printJSON(v any) error {
	enc := json.NewEncoder(c.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// medicationRecord es el formato de archivo; created_at acepta fecha o RFC3339.
type medicationRecord struct {
	ID            string `json:"id"`
	PatientID     string `json:"patient_id"`
	Name          string `json:"name"`
	Dosage        string `json:"dosage"`
	Frequency     string `json:"frequency"`
	ScheduledTime string `json:"scheduled_time"`
	CreatedAt     string `json:"created_at"`
}

type activityRecord struct {
	MedicationID string `json:"medication_id"`
	Date         string `json:"date"`
	Taken        bool   `json:"taken"`
	TakenTime    string `json:"taken_time"`
}

func loadMedications(path string) ([]medications.Medication, error) {
	var recs []medicationRecord
	if err := readJSON(path, &recs); err != nil {
		return nil, err
	}

	out := make([]medications.Medication, 0, len(recs))
	for i, r := range recs {
		created, err := parseCreatedAt(r.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("%s: medication %d: %w", path, i, err)
		}
		id := r.ID
		if id == "" {
			id = fmt.Sprintf("med-%d", i+1)
		}
		out = append(out, medications.Medication{
			ID:            id,
			OwnerID:       r.PatientID,
			Name:          r.Name,
			Dosage:        r.Dosage,
			Frequency:     schedule.Frequency(strings.TrimSpace(r.Frequency)),
			ScheduledTime: r.ScheduledTime,
			CreatedAt:     created,
			UpdatedAt:     created,
		})
	}
	return out, nil
}

func loadActivity(path string) ([]doses.Activity, error) {
	if path == "" {
		return nil, nil
	}
	var recs []activityRecord
	if err := readJSON(path, &recs); err != nil {
		return nil, err
	}

	out := make([]doses.Activity, 0, len(recs))
	for _, r := range recs {
		out = append(out, doses.Activity{
			MedicationID: r.MedicationID,
			Date:         r.Date,
			Taken:        r.Taken,
			TakenTime:    r.TakenTime,
		})
	}
	return out, nil
}

func parseCreatedAt(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, strings.TrimSpace(s)); err == nil {
		return t.UTC(), nil
	}
	return schedule.ParseDate(s)
}

func readJSON(path string, v any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
