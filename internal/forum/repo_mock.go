package forum

import (
	"context"
	"sort"
)

type repoMock struct {
	posts       map[int]*Post
	nextID      int
	nextReplyID int
}

func NewMockForumRepo() *repoMock {
	return &repoMock{
		posts:       make(map[int]*Post),
		nextID:      1,
		nextReplyID: 1,
	}
}

func (r *repoMock) AddPost(_ context.Context, post *Post) error {
	post.ID = r.nextID
	r.nextID++
	stored := *post
	r.posts[post.ID] = &stored
	return nil
}

func (r *repoMock) AddReply(_ context.Context, reply *Reply) error {
	post, ok := r.posts[reply.PostID]
	if !ok {
		return ErrPostNotFound
	}
	reply.ID = r.nextReplyID
	r.nextReplyID++
	post.Replies = append(post.Replies, *reply)
	return nil
}

func (r *repoMock) All(context.Context) ([]Post, error) {
	var all []Post
	for _, p := range r.posts {
		all = append(all, *p)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	return all, nil
}
