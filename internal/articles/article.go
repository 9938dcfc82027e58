package articles

import "time"

// Article is a knowledge base entry, readable by anyone.
type Article struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Category  string    `json:"category"`
	Tags      []string  `json:"tags"`
	Views     int       `json:"views"`
	CreatedAt time.Time `json:"created_at"`
}
