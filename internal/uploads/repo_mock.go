package uploads

import (
	"context"
	"sort"
)

type repoMock struct {
	uploads map[int]*Upload
	nextID  int
}

func NewMockUploadsRepo() *repoMock {
	return &repoMock{
		uploads: make(map[int]*Upload),
		nextID:  1,
	}
}

func (r *repoMock) Add(_ context.Context, upload *Upload) error {
	if err := upload.Validate(); err != nil {
		return err
	}
	upload.ID = r.nextID
	r.nextID++
	stored := *upload
	r.uploads[upload.ID] = &stored
	return nil
}

func (r *repoMock) All(context.Context) ([]Upload, error) {
	var all []Upload
	for _, u := range r.uploads {
		all = append(all, *u)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	return all, nil
}
