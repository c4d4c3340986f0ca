package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/1008surajshaw/meds-buddy/internal/domain/doses"
	"github.com/1008surajshaw/meds-buddy/internal/domain/schedule"
)

type DosesRepo struct {
	db *sql.DB
}

func NewDosesRepo(db *sql.DB) *DosesRepo {
	return &DosesRepo{db: db}
}

func (r *DosesRepo) Create(ctx context.Context, a doses.Activity) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO dose_activity (
			id, medication_id, owner_id, date, taken, taken_time, proof_image_url, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		a.ID,
		a.MedicationID,
		a.OwnerID,
		a.Date,
		a.Taken,
		nullString(a.TakenTime),
		nullString(a.ProofImageURL),
		a.CreatedAt,
	)
	return err
}

func (r *DosesRepo) List(ctx context.Context, ownerID string, f doses.ListFilter) ([]doses.Activity, error) {
	where := []string{"owner_id = $1"}
	args := []any{ownerID}

	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.MedicationID != "" {
		add("medication_id = $%d", f.MedicationID)
	}
	if f.From != "" {
		add("date >= $%d", f.From)
	}
	if f.To != "" {
		add("date <= $%d", f.To)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, medication_id, owner_id, date, taken, taken_time, proof_image_url, created_at
		FROM dose_activity
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY date ASC, taken_time ASC NULLS LAST, created_at ASC
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]doses.Activity, 0)
	for rows.Next() {
		var (
			a         doses.Activity
			day       time.Time
			takenTime sql.NullString
			proof     sql.NullString
		)
		if err := rows.Scan(
			&a.ID,
			&a.MedicationID,
			&a.OwnerID,
			&day,
			&a.Taken,
			&takenTime,
			&proof,
			&a.CreatedAt,
		); err != nil {
			return nil, err
		}
		a.Date = schedule.FormatDate(day)
		a.TakenTime = takenTime.String
		a.ProofImageURL = proof.String
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *DosesRepo) DeleteByMedication(ctx context.Context, medicationID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM dose_activity WHERE medication_id = $1`, medicationID)
	return err
}
