package uploads

import (
	"errors"
	"fmt"
	"time"
)

const (
	TypeFile  = "file"
	TypeVideo = "video"
	TypeLink  = "link"
)

// Upload is a piece of content published by an administrator: a hosted
// file, a video, or a plain link.
type Upload struct {
	ID          int       `json:"id"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	CreatedAt   time.Time `json:"created_at"`
}

func (u *Upload) Validate() error {
	if u.Title == "" {
		return errors.New("title empty")
	}
	if u.URL == "" {
		return errors.New("url empty")
	}
	switch u.Type {
	case TypeFile, TypeVideo, TypeLink:
		return nil
	default:
		return fmt.Errorf("unknown upload type: %q", u.Type)
	}
}
