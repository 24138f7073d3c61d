package sql

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"csoportal/backend/internal/domain"
	"csoportal/backend/internal/storage"
)

// ========== HeroSlide Repository ==========

// CreateHeroSlide 创建轮播图
func (s *Store) CreateHeroSlide(slide *domain.HeroSlide) error {
	now := time.Now()
	slide.CreatedAt = now
	slide.UpdatedAt = now

	query := `
		INSERT INTO hero_slides (image_url, title, subtitle, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`
	id, err := s.insertReturningID(query,
		slide.ImagePath, slide.Title, slide.Subtitle, slide.CreatedAt, slide.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert hero slide: %w", err)
	}

	slide.ID = id
	return nil
}

// GetHeroSlide 按 id 查询轮播图
func (s *Store) GetHeroSlide(id int64) (*domain.HeroSlide, error) {
	var slide domain.HeroSlide
	err := s.queryRow(
		`SELECT id, image_url, title, subtitle, created_at, updated_at FROM hero_slides WHERE id = ?`, id,
	).Scan(&slide.ID, &slide.ImagePath, &slide.Title, &slide.Subtitle, &slide.CreatedAt, &slide.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrHeroSlideNotFound
		}
		return nil, err
	}
	return &slide, nil
}

// ListHeroSlides 返回全部轮播图，id 升序
func (s *Store) ListHeroSlides() ([]domain.HeroSlide, error) {
	rows, err := s.query(`SELECT id, image_url, title, subtitle, created_at, updated_at FROM hero_slides ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]domain.HeroSlide, 0)
	for rows.Next() {
		var slide domain.HeroSlide
		if err := rows.Scan(&slide.ID, &slide.ImagePath, &slide.Title, &slide.Subtitle,
			&slide.CreatedAt, &slide.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, slide)
	}
	return list, rows.Err()
}

// UpdateHeroSlide 更新轮播图
func (s *Store) UpdateHeroSlide(slide *domain.HeroSlide) error {
	slide.UpdatedAt = time.Now()

	result, err := s.exec(
		`UPDATE hero_slides SET image_url = ?, title = ?, subtitle = ?, updated_at = ? WHERE id = ?`,
		slide.ImagePath, slide.Title, slide.Subtitle, slide.UpdatedAt, slide.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update hero slide: %w", err)
	}
	return requireAffected(result, storage.ErrHeroSlideNotFound)
}

// DeleteHeroSlide 删除轮播图
func (s *Store) DeleteHeroSlide(id int64) error {
	result, err := s.exec(`DELETE FROM hero_slides WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete hero slide: %w", err)
	}
	return requireAffected(result, storage.ErrHeroSlideNotFound)
}

// ========== 单例内容 ==========

// GetAbout 查询关于页内容
func (s *Store) GetAbout() (*domain.About, error) {
	var about domain.About
	err := s.queryRow(`
		SELECT id, introduction, mission, vision, purpose, core_values, created_at, updated_at
		FROM about_us ORDER BY id LIMIT 1
	`).Scan(&about.ID, &about.Introduction, &about.Mission, &about.Vision,
		&about.Purpose, &about.CoreValues, &about.CreatedAt, &about.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrAboutNotFound
		}
		return nil, err
	}
	return &about, nil
}

// SaveAbout 保存关于页内容（不存在则插入，存在则覆盖）
func (s *Store) SaveAbout(about *domain.About) error {
	existing, err := s.GetAbout()
	if errors.Is(err, storage.ErrAboutNotFound) {
		now := time.Now()
		about.CreatedAt = now
		about.UpdatedAt = now

		id, err := s.insertReturningID(`
			INSERT INTO about_us (introduction, mission, vision, purpose, core_values, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, about.Introduction, about.Mission, about.Vision, about.Purpose,
			about.CoreValues, about.CreatedAt, about.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert about content: %w", err)
		}
		about.ID = id
		return nil
	}
	if err != nil {
		return err
	}

	about.ID = existing.ID
	about.CreatedAt = existing.CreatedAt
	about.UpdatedAt = time.Now()

	_, err = s.exec(`
		UPDATE about_us
		SET introduction = ?, mission = ?, vision = ?, purpose = ?, core_values = ?, updated_at = ?
		WHERE id = ?
	`, about.Introduction, about.Mission, about.Vision, about.Purpose,
		about.CoreValues, about.UpdatedAt, about.ID)
	if err != nil {
		return fmt.Errorf("failed to update about content: %w", err)
	}
	return nil
}

// GetContactContent 查询联系页内容
func (s *Store) GetContactContent() (*domain.ContactContent, error) {
	var c domain.ContactContent
	err := s.queryRow(`
		SELECT id, page_title, description, email, phone, location, address,
		       map_embed_url, image_url, facebook_link, created_at, updated_at
		FROM contact_content ORDER BY id LIMIT 1
	`).Scan(&c.ID, &c.PageTitle, &c.Description, &c.Email, &c.Phone, &c.Location,
		&c.Address, &c.MapEmbedURL, &c.ImageURL, &c.Facebook, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrContactContentNotFound
		}
		return nil, err
	}
	return &c, nil
}

// SaveContactContent 保存联系页内容（不存在则插入，存在则覆盖）
func (s *Store) SaveContactContent(content *domain.ContactContent) error {
	existing, err := s.GetContactContent()
	if errors.Is(err, storage.ErrContactContentNotFound) {
		now := time.Now()
		content.CreatedAt = now
		content.UpdatedAt = now

		id, err := s.insertReturningID(`
			INSERT INTO contact_content (page_title, description, email, phone, location, address,
			                             map_embed_url, image_url, facebook_link, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, content.PageTitle, content.Description, content.Email, content.Phone,
			content.Location, content.Address, content.MapEmbedURL, content.ImageURL,
			content.Facebook, content.CreatedAt, content.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert contact content: %w", err)
		}
		content.ID = id
		return nil
	}
	if err != nil {
		return err
	}

	content.ID = existing.ID
	content.CreatedAt = existing.CreatedAt
	content.UpdatedAt = time.Now()

	_, err = s.exec(`
		UPDATE contact_content
		SET page_title = ?, description = ?, email = ?, phone = ?, location = ?, address = ?,
		    map_embed_url = ?, image_url = ?, facebook_link = ?, updated_at = ?
		WHERE id = ?
	`, content.PageTitle, content.Description, content.Email, content.Phone,
		content.Location, content.Address, content.MapEmbedURL, content.ImageURL,
		content.Facebook, content.UpdatedAt, content.ID)
	if err != nil {
		return fmt.Errorf("failed to update contact content: %w", err)
	}
	return nil
}

// ========== Service Repository ==========

// CreateService 创建服务条目
func (s *Store) CreateService(service *domain.Service) error {
	id, err := s.insertReturningID(
		`INSERT INTO services (title, summary) VALUES (?, ?)`,
		service.Title, service.Summary,
	)
	if err != nil {
		return fmt.Errorf("failed to insert service: %w", err)
	}

	service.ID = id
	return nil
}

// GetService 按 id 查询服务条目
func (s *Store) GetService(id int64) (*domain.Service, error) {
	var service domain.Service
	err := s.queryRow(`SELECT id, title, summary FROM services WHERE id = ?`, id).
		Scan(&service.ID, &service.Title, &service.Summary)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrServiceNotFound
		}
		return nil, err
	}
	return &service, nil
}

// ListServices 返回全部服务条目，id 升序
func (s *Store) ListServices() ([]domain.Service, error) {
	rows, err := s.query(`SELECT id, title, summary FROM services ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]domain.Service, 0)
	for rows.Next() {
		var service domain.Service
		if err := rows.Scan(&service.ID, &service.Title, &service.Summary); err != nil {
			return nil, err
		}
		list = append(list, service)
	}
	return list, rows.Err()
}

// UpdateService 更新服务条目
func (s *Store) UpdateService(service *domain.Service) error {
	result, err := s.exec(
		`UPDATE services SET title = ?, summary = ? WHERE id = ?`,
		service.Title, service.Summary, service.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update service: %w", err)
	}
	return requireAffected(result, storage.ErrServiceNotFound)
}

// DeleteService 删除服务条目
func (s *Store) DeleteService(id int64) error {
	result, err := s.exec(`DELETE FROM services WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete service: %w", err)
	}
	return requireAffected(result, storage.ErrServiceNotFound)
}
