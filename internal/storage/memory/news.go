package memory

import (
	"sort"
	"time"

	"csoportal/backend/internal/domain"
	"csoportal/backend/internal/storage"
)

// ========== 新闻 ==========

// CreateNews 创建新闻
func (s *Store) CreateNews(news *domain.News) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	news.ID = s.allocID("news")
	now := time.Now()
	news.CreatedAt = now
	news.UpdatedAt = now

	clone := *news
	s.news[news.ID] = &clone
	return nil
}

// GetNews 按 id 查询新闻
func (s *Store) GetNews(id int64) (*domain.News, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	news, ok := s.news[id]
	if !ok {
		return nil, storage.ErrNewsNotFound
	}
	clone := *news
	return &clone, nil
}

// ListNews 返回全部新闻，创建时间倒序
func (s *Store) ListNews() ([]domain.News, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]domain.News, 0, len(s.news))
	for _, news := range s.news {
		list = append(list, *news)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID > list[j].ID
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list, nil
}

// UpdateNews 更新新闻
func (s *Store) UpdateNews(news *domain.News) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.news[news.ID]
	if !ok {
		return storage.ErrNewsNotFound
	}

	news.CreatedAt = existing.CreatedAt
	news.UpdatedAt = time.Now()
	clone := *news
	s.news[news.ID] = &clone
	return nil
}

// DeleteNews 删除新闻及其全部评论
func (s *Store) DeleteNews(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.news[id]; !ok {
		return storage.ErrNewsNotFound
	}
	delete(s.news, id)
	for commentID, comment := range s.comments {
		if comment.NewsID == id {
			delete(s.comments, commentID)
		}
	}
	return nil
}

// ========== 评论 ==========

// CreateNewsComment 创建评论，新闻不存在时返回 ErrNewsNotFound
func (s *Store) CreateNewsComment(comment *domain.NewsComment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.news[comment.NewsID]; !ok {
		return storage.ErrNewsNotFound
	}

	comment.ID = s.allocID("news_comments")
	comment.CreatedAt = time.Now()

	clone := *comment
	s.comments[comment.ID] = &clone
	return nil
}

// GetNewsComment 按 id 查询评论
func (s *Store) GetNewsComment(id int64) (*domain.NewsComment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	comment, ok := s.comments[id]
	if !ok {
		return nil, storage.ErrCommentNotFound
	}
	clone := *comment
	return &clone, nil
}

// ListNewsComments 返回某新闻下全部评论，时间正序
func (s *Store) ListNewsComments(newsID int64) ([]domain.NewsComment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]domain.NewsComment, 0)
	for _, comment := range s.comments {
		if comment.NewsID == newsID {
			list = append(list, *comment)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list, nil
}

// DeleteNewsComment 删除评论
func (s *Store) DeleteNewsComment(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.comments[id]; !ok {
		return storage.ErrCommentNotFound
	}
	delete(s.comments, id)
	return nil
}
