package forum

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrPostNotFound = errors.New("forum post not found")

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) AddPost(ctx context.Context, post *Post) error {
	rows, err := r.db.Query(
		ctx,
		`INSERT INTO forum_post (title, content, category, author, created_at)
			VALUES ($1, $2, $3, $4, $5) RETURNING id;`,
		post.Title, post.Content, post.Category, post.Author, post.CreatedAt,
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

	if err := rows.Scan(&post.ID); err != nil {
		return fmt.Errorf("rows scan: %w", err)
	}

	return nil
}

func (r *Repo) AddReply(ctx context.Context, reply *Reply) error {
	rows, err := r.db.Query(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM forum_post WHERE id = $1);`,
		reply.PostID,
	)
	if err != nil {
		return err
	}

	var postExists bool
	if rows.Next() {
		if err := rows.Scan(&postExists); err != nil {
			rows.Close()
			return fmt.Errorf("rows scan: %w", err)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}
	if !postExists {
		return ErrPostNotFound
	}

	rows, err = r.db.Query(
		ctx,
		`INSERT INTO forum_reply (post_id, author, content, created_at)
			VALUES ($1, $2, $3, $4) RETURNING id;`,
		reply.PostID, reply.Author, reply.Content, reply.CreatedAt,
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

	if err := rows.Scan(&reply.ID); err != nil {
		return fmt.Errorf("rows scan: %w", err)
	}

	return nil
}

// All returns all posts, newest first, with their replies attached
// (replies oldest first, as displayed in a thread).
func (r *Repo) All(ctx context.Context) ([]Post, error) {
	rows, err := r.db.Query(
		ctx,
		`
			SELECT
				id, title, content, category, author, created_at
			FROM forum_post
			ORDER BY created_at DESC;`,
	)
	if err != nil {
		return nil, err
	}

	var posts []Post
	postIndex := make(map[int]int)
	for rows.Next() {
		var post Post
		if err := rows.Scan(
			&post.ID, &post.Title, &post.Content,
			&post.Category, &post.Author, &post.CreatedAt,
		); err != nil {
			rows.Close()
			return nil, err
		}
		posts = append(posts, post)
		postIndex[post.ID] = len(posts) - 1
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(posts) == 0 {
		return posts, nil
	}

	replyRows, err := r.db.Query(
		ctx,
		`
			SELECT
				id, post_id, author, content, created_at
			FROM forum_reply
			ORDER BY created_at ASC;`,
	)
	if err != nil {
		return nil, err
	}
	defer replyRows.Close()

	for replyRows.Next() {
		var reply Reply
		if err := replyRows.Scan(
			&reply.ID, &reply.PostID, &reply.Author, &reply.Content, &reply.CreatedAt,
		); err != nil {
			return nil, err
		}
		if i, ok := postIndex[reply.PostID]; ok {
			posts[i].Replies = append(posts[i].Replies, reply)
		}
	}
	if err := replyRows.Err(); err != nil {
		return nil, err
	}

	return posts, nil
}
