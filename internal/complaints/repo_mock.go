package complaints

import (
	"context"
	"sort"
)

type repoMock struct {
	complaints map[int]*Complaint
	nextID     int
}

func NewMockComplaintsRepo() *repoMock {
	return &repoMock{
		complaints: make(map[int]*Complaint),
		nextID:     1,
	}
}

func (r *repoMock) Add(_ context.Context, complaint *Complaint) error {
	complaint.ID = r.nextID
	r.nextID++
	stored := *complaint
	r.complaints[complaint.ID] = &stored
	return nil
}

func (r *repoMock) All(context.Context) ([]Complaint, error) {
	var all []Complaint
	for _, c := range r.complaints {
		all = append(all, *c)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	return all, nil
}

func (r *repoMock) Resolve(_ context.Context, id int) error {
	complaint, ok := r.complaints[id]
	if !ok {
		return ErrComplaintNotFound
	}
	complaint.Status = StatusResolved
	return nil
}
