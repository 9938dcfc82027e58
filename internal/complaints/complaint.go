package complaints

import "time"

const (
	StatusPending  = "pending"
	StatusResolved = "resolved"
)

// Complaint is a filed support request. It starts out pending and an
// administrator can mark it resolved.
type Complaint struct {
	ID          int       `json:"id"`
	SupportType string    `json:"support_type"`
	Query       string    `json:"query"`
	Email       string    `json:"email"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}
