package memory

import (
	"sort"
	"time"

	"csoportal/backend/internal/domain"
	"csoportal/backend/internal/storage"
)

// ========== 申请表模板 ==========

// CreateForm 创建申请表模板
func (s *Store) CreateForm(form *domain.Form) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	form.ID = s.allocID("forms")
	now := time.Now()
	form.CreatedAt = now
	form.UpdatedAt = now

	clone := *form
	s.forms[form.ID] = &clone
	return nil
}

// GetForm 按 id 查询模板
func (s *Store) GetForm(id int64) (*domain.Form, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	form, ok := s.forms[id]
	if !ok {
		return nil, storage.ErrFormNotFound
	}
	clone := *form
	return &clone, nil
}

// ListForms 返回全部模板，创建时间倒序
func (s *Store) ListForms() ([]domain.Form, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]domain.Form, 0, len(s.forms))
	for _, form := range s.forms {
		list = append(list, *form)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID > list[j].ID
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list, nil
}

// UpdateForm 更新模板
func (s *Store) UpdateForm(form *domain.Form) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.forms[form.ID]
	if !ok {
		return storage.ErrFormNotFound
	}

	form.CreatedAt = existing.CreatedAt
	form.UpdatedAt = time.Now()
	clone := *form
	s.forms[form.ID] = &clone
	return nil
}

// DeleteForm 删除模板及其名下全部申请
func (s *Store) DeleteForm(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.forms[id]; !ok {
		return storage.ErrFormNotFound
	}
	delete(s.forms, id)
	for appID, app := range s.applications {
		if app.FormID == id {
			delete(s.applications, appID)
		}
	}
	return nil
}

// ========== 申请 ==========

// CreateApplication 创建申请，同一组织对同一模板重复提交时返回 ErrApplicationExists
func (s *Store) CreateApplication(app *domain.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.applications {
		if existing.FormID == app.FormID && existing.CSOID == app.CSOID {
			return storage.ErrApplicationExists
		}
	}

	app.ID = s.allocID("applications")
	now := time.Now()
	app.CreatedAt = now
	app.UpdatedAt = now

	clone := *app
	s.applications[app.ID] = &clone
	return nil
}

// GetApplication 按 id 查询申请
func (s *Store) GetApplication(id int64) (*domain.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	app, ok := s.applications[id]
	if !ok {
		return nil, storage.ErrApplicationNotFound
	}
	clone := *app
	return &clone, nil
}

// GetApplicationByFormAndCSO 查询某组织对某模板的申请
func (s *Store) GetApplicationByFormAndCSO(formID, csoID int64) (*domain.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, app := range s.applications {
		if app.FormID == formID && app.CSOID == csoID {
			clone := *app
			return &clone, nil
		}
	}
	return nil, storage.ErrApplicationNotFound
}

// ListApplicationsByForm 返回某模板名下全部申请，提交时间倒序
func (s *Store) ListApplicationsByForm(formID int64) ([]domain.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.filterApplications(func(app *domain.Application) bool {
		return app.FormID == formID
	}), nil
}

// ListApplicationsByCSO 返回某组织提交的全部申请，提交时间倒序
func (s *Store) ListApplicationsByCSO(csoID int64) ([]domain.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.filterApplications(func(app *domain.Application) bool {
		return app.CSOID == csoID
	}), nil
}

func (s *Store) filterApplications(match func(*domain.Application) bool) []domain.Application {
	list := make([]domain.Application, 0)
	for _, app := range s.applications {
		if match(app) {
			list = append(list, *app)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID > list[j].ID
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list
}

// UpdateApplication 更新申请
func (s *Store) UpdateApplication(app *domain.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.applications[app.ID]
	if !ok {
		return storage.ErrApplicationNotFound
	}

	app.CreatedAt = existing.CreatedAt
	app.UpdatedAt = time.Now()
	clone := *app
	s.applications[app.ID] = &clone
	return nil
}

// DeleteApplication 删除申请
func (s *Store) DeleteApplication(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.applications[id]; !ok {
		return storage.ErrApplicationNotFound
	}
	delete(s.applications, id)
	return nil
}
