package sql

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"csoportal/backend/internal/domain"
	"csoportal/backend/internal/storage"
)

// ========== News Repository ==========

const newsColumns = `id, title, description, image_path, author, read_time, tag, quotes,
       created_at, updated_at`

// CreateNews 创建新闻
func (s *Store) CreateNews(news *domain.News) error {
	now := time.Now()
	news.CreatedAt = now
	news.UpdatedAt = now

	query := `
		INSERT INTO news (title, description, image_path, author, read_time, tag, quotes,
		                  created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	id, err := s.insertReturningID(query,
		news.Title,
		news.Description,
		nullStr(news.ImagePath),
		news.Author,
		news.ReadTime,
		news.Tag,
		news.Quotes,
		news.CreatedAt,
		news.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert news: %w", err)
	}

	news.ID = id
	return nil
}

// GetNews 按 id 查询新闻
func (s *Store) GetNews(id int64) (*domain.News, error) {
	news, err := scanNews(s.queryRow(`SELECT `+newsColumns+` FROM news WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNewsNotFound
		}
		return nil, err
	}
	return news, nil
}

// ListNews 返回全部新闻，创建时间倒序
func (s *Store) ListNews() ([]domain.News, error) {
	rows, err := s.query(`SELECT ` + newsColumns + ` FROM news ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]domain.News, 0)
	for rows.Next() {
		news, err := scanNews(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *news)
	}
	return list, rows.Err()
}

// UpdateNews 更新新闻
func (s *Store) UpdateNews(news *domain.News) error {
	news.UpdatedAt = time.Now()

	query := `
		UPDATE news
		SET title = ?, description = ?, image_path = ?, author = ?, read_time = ?,
		    tag = ?, quotes = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := s.exec(query,
		news.Title,
		news.Description,
		nullStr(news.ImagePath),
		news.Author,
		news.ReadTime,
		news.Tag,
		news.Quotes,
		news.UpdatedAt,
		news.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update news: %w", err)
	}
	return requireAffected(result, storage.ErrNewsNotFound)
}

// DeleteNews 删除新闻及其全部评论
func (s *Store) DeleteNews(id int64) error {
	if _, err := s.exec(`DELETE FROM news_comments WHERE news_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete news comments: %w", err)
	}

	result, err := s.exec(`DELETE FROM news WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete news: %w", err)
	}
	return requireAffected(result, storage.ErrNewsNotFound)
}

func scanNews(row rowScanner) (*domain.News, error) {
	var news domain.News
	var imagePath sql.NullString

	err := row.Scan(
		&news.ID,
		&news.Title,
		&news.Description,
		&imagePath,
		&news.Author,
		&news.ReadTime,
		&news.Tag,
		&news.Quotes,
		&news.CreatedAt,
		&news.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	news.ImagePath = strFromNull(imagePath)
	return &news, nil
}

// ========== NewsComment Repository ==========

// CreateNewsComment 创建评论，新闻不存在时返回 ErrNewsNotFound
func (s *Store) CreateNewsComment(comment *domain.NewsComment) error {
	if _, err := s.GetNews(comment.NewsID); err != nil {
		return err
	}

	comment.CreatedAt = time.Now()

	query := `
		INSERT INTO news_comments (news_id, name, email, content, staff_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	id, err := s.insertReturningID(query,
		comment.NewsID,
		comment.Name,
		comment.Email,
		comment.Content,
		comment.StaffID,
		comment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert comment: %w", err)
	}

	comment.ID = id
	return nil
}

// GetNewsComment 按 id 查询评论
func (s *Store) GetNewsComment(id int64) (*domain.NewsComment, error) {
	query := `SELECT id, news_id, name, email, content, staff_id, created_at FROM news_comments WHERE id = ?`

	comment, err := scanComment(s.queryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrCommentNotFound
		}
		return nil, err
	}
	return comment, nil
}

// ListNewsComments 返回某新闻下全部评论，时间正序
func (s *Store) ListNewsComments(newsID int64) ([]domain.NewsComment, error) {
	query := `
		SELECT id, news_id, name, email, content, staff_id, created_at
		FROM news_comments
		WHERE news_id = ?
		ORDER BY created_at, id
	`
	rows, err := s.query(query, newsID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]domain.NewsComment, 0)
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *comment)
	}
	return list, rows.Err()
}

// DeleteNewsComment 删除评论
func (s *Store) DeleteNewsComment(id int64) error {
	result, err := s.exec(`DELETE FROM news_comments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return requireAffected(result, storage.ErrCommentNotFound)
}

func scanComment(row rowScanner) (*domain.NewsComment, error) {
	var comment domain.NewsComment
	var staffID sql.NullInt64

	err := row.Scan(
		&comment.ID,
		&comment.NewsID,
		&comment.Name,
		&comment.Email,
		&comment.Content,
		&staffID,
		&comment.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if staffID.Valid {
		comment.StaffID = &staffID.Int64
	}
	return &comment, nil
}
