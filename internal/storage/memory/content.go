package memory

import (
	"sort"
	"time"

	"csoportal/backend/internal/domain"
	"csoportal/backend/internal/storage"
)

// ========== 轮播图 ==========

// CreateHeroSlide 创建轮播图
func (s *Store) CreateHeroSlide(slide *domain.HeroSlide) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	slide.ID = s.allocID("hero_slides")
	now := time.Now()
	slide.CreatedAt = now
	slide.UpdatedAt = now

	clone := *slide
	s.heroSlides[slide.ID] = &clone
	return nil
}

// GetHeroSlide 按 id 查询轮播图
func (s *Store) GetHeroSlide(id int64) (*domain.HeroSlide, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slide, ok := s.heroSlides[id]
	if !ok {
		return nil, storage.ErrHeroSlideNotFound
	}
	clone := *slide
	return &clone, nil
}

// ListHeroSlides 返回全部轮播图，id 升序
func (s *Store) ListHeroSlides() ([]domain.HeroSlide, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]domain.HeroSlide, 0, len(s.heroSlides))
	for _, slide := range s.heroSlides {
		list = append(list, *slide)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

// UpdateHeroSlide 更新轮播图
func (s *Store) UpdateHeroSlide(slide *domain.HeroSlide) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.heroSlides[slide.ID]
	if !ok {
		return storage.ErrHeroSlideNotFound
	}

	slide.CreatedAt = existing.CreatedAt
	slide.UpdatedAt = time.Now()
	clone := *slide
	s.heroSlides[slide.ID] = &clone
	return nil
}

// DeleteHeroSlide 删除轮播图
func (s *Store) DeleteHeroSlide(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.heroSlides[id]; !ok {
		return storage.ErrHeroSlideNotFound
	}
	delete(s.heroSlides, id)
	return nil
}

// ========== 单例内容 ==========

// GetAbout 查询关于页内容
func (s *Store) GetAbout() (*domain.About, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.about == nil {
		return nil, storage.ErrAboutNotFound
	}
	clone := *s.about
	return &clone, nil
}

// SaveAbout 保存关于页内容（不存在则插入，存在则覆盖）
func (s *Store) SaveAbout(about *domain.About) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if s.about == nil {
		about.ID = s.allocID("about_us")
		about.CreatedAt = now
	} else {
		about.ID = s.about.ID
		about.CreatedAt = s.about.CreatedAt
	}
	about.UpdatedAt = now

	clone := *about
	s.about = &clone
	return nil
}

// GetContactContent 查询联系页内容
func (s *Store) GetContactContent() (*domain.ContactContent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.contact == nil {
		return nil, storage.ErrContactContentNotFound
	}
	clone := *s.contact
	return &clone, nil
}

// SaveContactContent 保存联系页内容（不存在则插入，存在则覆盖）
func (s *Store) SaveContactContent(content *domain.ContactContent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if s.contact == nil {
		content.ID = s.allocID("contact_content")
		content.CreatedAt = now
	} else {
		content.ID = s.contact.ID
		content.CreatedAt = s.contact.CreatedAt
	}
	content.UpdatedAt = now

	clone := *content
	s.contact = &clone
	return nil
}

// ========== 服务条目 ==========

// CreateService 创建服务条目
func (s *Store) CreateService(service *domain.Service) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	service.ID = s.allocID("services")
	clone := *service
	s.services[service.ID] = &clone
	return nil
}

// GetService 按 id 查询服务条目
func (s *Store) GetService(id int64) (*domain.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	service, ok := s.services[id]
	if !ok {
		return nil, storage.ErrServiceNotFound
	}
	clone := *service
	return &clone, nil
}

// ListServices 返回全部服务条目，id 升序
func (s *Store) ListServices() ([]domain.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]domain.Service, 0, len(s.services))
	for _, service := range s.services {
		list = append(list, *service)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

// UpdateService 更新服务条目
func (s *Store) UpdateService(service *domain.Service) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.services[service.ID]; !ok {
		return storage.ErrServiceNotFound
	}
	clone := *service
	s.services[service.ID] = &clone
	return nil
}

// DeleteService 删除服务条目
func (s *Store) DeleteService(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.services[id]; !ok {
		return storage.ErrServiceNotFound
	}
	delete(s.services, id)
	return nil
}
