package articles

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrArticleNotFound = errors.New("article not found")

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Add(ctx context.Context, article *Article) error {
	if article.Title == "" || article.Content == "" {
		return errors.New("article title or content empty")
	}

	rows, err := r.db.Query(
		ctx,
		`INSERT INTO article (title, content, category, tags, views, created_at)
			VALUES ($1, $2, $3, $4, $5, $6) RETURNING id;`,
		article.Title, article.Content, article.Category, article.Tags, article.Views, article.CreatedAt,
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

	if err := rows.Scan(&article.ID); err != nil {
		return fmt.Errorf("rows scan: %w", err)
	}

	return nil
}

// All returns all articles, most viewed first.
func (r *Repo) All(ctx context.Context) ([]Article, error) {
	rows, err := r.db.Query(
		ctx,
		`
			SELECT
				id, title, content, category, tags, views, created_at
			FROM article
			ORDER BY views DESC;`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rows2articles(rows)
}

// MarkViewed bumps the view counter of an article.
func (r *Repo) MarkViewed(ctx context.Context, id int) error {
	tag, err := r.db.Exec(
		ctx,
		`UPDATE article SET views = views + 1 WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrArticleNotFound
	}
	return nil
}

func rows2articles(rows pgx.Rows) ([]Article, error) {
	var articles []Article
	for rows.Next() {
		var article Article
		if err := rows.Scan(
			&article.ID, &article.Title, &article.Content,
			&article.Category, &article.Tags, &article.Views, &article.CreatedAt,
		); err != nil {
			return nil, err
		}
		articles = append(articles, article)
	}
	return articles, nil
}
