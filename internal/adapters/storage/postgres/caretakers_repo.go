package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/1008surajshaw/meds-buddy/internal/domain/caretakers"
)

type CaretakersRepo struct {
	db *sql.DB
}

func NewCaretakersRepo(db *sql.DB) *CaretakersRepo {
	return &CaretakersRepo{db: db}
}

const linkColumns = `id, patient_id, caretaker_id, scopes, status, created_at, updated_at, revoked_at`

func (r *CaretakersRepo) Create(ctx context.Context, l caretakers.Link) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO caretaker_links (`+linkColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		l.ID,
		l.PatientID,
		l.CaretakerID,
		scopesToTextArray(l.Scopes),
		string(l.Status),
		l.CreatedAt,
		l.UpdatedAt,
		toNullTime(l.RevokedAt),
	)
	return err
}

func (r *CaretakersRepo) Update(ctx context.Context, l caretakers.Link) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE caretaker_links
		SET scopes = $2, status = $3, updated_at = $4, revoked_at = $5
		WHERE id = $1
	`,
		l.ID,
		scopesToTextArray(l.Scopes),
		string(l.Status),
		l.UpdatedAt,
		toNullTime(l.RevokedAt),
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return caretakers.ErrNotFound
	}
	return nil
}

func (r *CaretakersRepo) GetByID(ctx context.Context, id string) (caretakers.Link, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+linkColumns+` FROM caretaker_links WHERE id = $1`, id)
	l, err := scanLink(row)
	if errors.Is(err, sql.ErrNoRows) {
		return caretakers.Link{}, caretakers.ErrNotFound
	}
	return l, err
}

func (r *CaretakersRepo) ListByPatient(ctx context.Context, patientID string) ([]caretakers.Link, error) {
	return r.list(ctx, `WHERE patient_id = $1 ORDER BY created_at ASC`, patientID)
}

func (r *CaretakersRepo) ListByCaretaker(ctx context.Context, caretakerID string) ([]caretakers.Link, error) {
	return r.list(ctx, `WHERE caretaker_id = $1 ORDER BY created_at ASC`, caretakerID)
}

func (r *CaretakersRepo) GetActiveLink(ctx context.Context, patientID, caretakerID string) (caretakers.Link, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+linkColumns+`
		FROM caretaker_links
		WHERE patient_id = $1 AND caretaker_id = $2 AND status = 'active'
		ORDER BY updated_at DESC, created_at DESC
		LIMIT 1
	`, patientID, caretakerID)

	l, err := scanLink(row)
	if errors.Is(err, sql.ErrNoRows) {
		return caretakers.Link{}, caretakers.ErrNotFound
	}
	return l, err
}

func (r *CaretakersRepo) list(ctx context.Context, clause string, arg string) ([]caretakers.Link, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+linkColumns+` FROM caretaker_links `+clause, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]caretakers.Link, 0)
	for rows.Next() {
		l, err := scanLink(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func scanLink(s rowScanner) (caretakers.Link, error) {
	var (
		l         caretakers.Link
		scopes    []string
		status    string
		revokedAt sql.NullTime
	)
	if err := s.Scan(
		&l.ID,
		&l.PatientID,
		&l.CaretakerID,
		arrayScanner(&scopes),
		&status,
		&l.CreatedAt,
		&l.UpdatedAt,
		&revokedAt,
	); err != nil {
		return caretakers.Link{}, err
	}

	l.Status = caretakers.Status(status)
	l.Scopes = textArrayToScopes(scopes)
	if revokedAt.Valid {
		t := revokedAt.Time
		l.RevokedAt = &t
	}
	return l, nil
}

func scopesToTextArray(in []caretakers.Scope) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, string(s))
	}
	return out
}

func textArrayToScopes(in []string) []caretakers.Scope {
	out := make([]caretakers.Scope, 0, len(in))
	for _, s := range in {
		out = append(out, caretakers.Scope(s))
	}
	return out
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
