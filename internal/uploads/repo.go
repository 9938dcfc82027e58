package uploads

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Add(ctx context.Context, upload *Upload) error {
	if err := upload.Validate(); err != nil {
		return err
	}
	if upload.CreatedAt.IsZero() {
		return errors.New("upload timestamp empty")
	}

	rows, err := r.db.Query(
		ctx,
		`INSERT INTO admin_upload (type, title, url, description, category, created_at)
			VALUES ($1, $2, $3, $4, $5, $6) RETURNING id;`,
		upload.Type, upload.Title, upload.URL, upload.Description, upload.Category, upload.CreatedAt,
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

	if err := rows.Scan(&upload.ID); err != nil {
		return fmt.Errorf("rows scan: %w", err)
	}

	return nil
}

// All returns all uploads, newest first.
func (r *Repo) All(ctx context.Context) ([]Upload, error) {
	rows, err := r.db.Query(
		ctx,
		`
			SELECT
				id, type, title, url, description, category, created_at
			FROM admin_upload
			ORDER BY created_at DESC;`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rows2uploads(rows)
}

func rows2uploads(rows pgx.Rows) ([]Upload, error) {
	var uploads []Upload
	for rows.Next() {
		var upload Upload
		if err := rows.Scan(
			&upload.ID, &upload.Type, &upload.Title,
			&upload.URL, &upload.Description, &upload.Category, &upload.CreatedAt,
		); err != nil {
			return nil, err
		}
		uploads = append(uploads, upload)
	}
	return uploads, nil
}
