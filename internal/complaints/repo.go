package complaints

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrComplaintNotFound = errors.New("complaint not found")

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Add(ctx context.Context, complaint *Complaint) error {
	if complaint.Query == "" || complaint.CreatedAt.IsZero() {
		return errors.New("complaint query or timestamp empty")
	}

	rows, err := r.db.Query(
		ctx,
		`INSERT INTO complaint (support_type, query, email, status, created_at)
			VALUES ($1, $2, $3, $4, $5) RETURNING id;`,
		complaint.SupportType, complaint.Query, complaint.Email, complaint.Status, complaint.CreatedAt,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return err
	}

	if !rows.Next() {
		return errors.New("unexpected error [no rows next]")
	}

	if err := rows.Scan(&complaint.ID); err != nil {
		return fmt.Errorf("rows scan: %w", err)
	}

	return nil
}

// All returns all complaints, newest first.
func (r *Repo) All(ctx context.Context) ([]Complaint, error) {
	rows, err := r.db.Query(
		ctx,
		`
			SELECT
				id, support_type, query, email, status, created_at
			FROM complaint
			ORDER BY created_at DESC;`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rows2complaints(rows)
}

func (r *Repo) Resolve(ctx context.Context, id int) error {
	tag, err := r.db.Exec(
		ctx,
		`UPDATE complaint SET status = $1 WHERE id = $2`,
		StatusResolved, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrComplaintNotFound
	}
	return nil
}

func rows2complaints(rows pgx.Rows) ([]Complaint, error) {
	var complaints []Complaint
	for rows.Next() {
		var complaint Complaint
		if err := rows.Scan(
			&complaint.ID, &complaint.SupportType, &complaint.Query,
			&complaint.Email, &complaint.Status, &complaint.CreatedAt,
		); err != nil {
			return nil, err
		}
		complaints = append(complaints, complaint)
	}
	return complaints, nil
}
