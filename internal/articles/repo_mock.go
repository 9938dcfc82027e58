package articles

import (
	"context"
	"sort"
)

type repoMock struct {
	articles map[int]*Article
	nextID   int
}

func NewMockArticlesRepo() *repoMock {
	return &repoMock{
		articles: make(map[int]*Article),
		nextID:   1,
	}
}

func (r *repoMock) Add(_ context.Context, article *Article) error {
	article.ID = r.nextID
	r.nextID++
	stored := *article
	r.articles[article.ID] = &stored
	return nil
}

func (r *repoMock) All(context.Context) ([]Article, error) {
	var all []Article
	for _, a := range r.articles {
		all = append(all, *a)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].Views > all[j].Views
	})
	return all, nil
}

func (r *repoMock) MarkViewed(_ context.Context, id int) error {
	article, ok := r.articles[id]
	if !ok {
		return ErrArticleNotFound
	}
	article.Views++
	return nil
}
