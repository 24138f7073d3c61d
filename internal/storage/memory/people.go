package memory

import (
	"sort"
	"time"

	"csoportal/backend/internal/domain"
	"csoportal/backend/internal/storage"
)

// ========== 员工 ==========

// CreateStaff 创建员工账号，邮箱或电话重复时返回 ErrStaffExists
func (s *Store) CreateStaff(staff *domain.Staff) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.staff {
		if existing.Email == staff.Email || (staff.Phone != "" && existing.Phone == staff.Phone) {
			return storage.ErrStaffExists
		}
	}

	staff.ID = s.allocID("staff")
	now := time.Now()
	staff.CreatedAt = now
	staff.UpdatedAt = now

	clone := *staff
	s.staff[staff.ID] = &clone
	return nil
}

// GetStaff 按 id 查询员工
func (s *Store) GetStaff(id int64) (*domain.Staff, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	staff, ok := s.staff[id]
	if !ok {
		return nil, storage.ErrStaffNotFound
	}
	clone := *staff
	return &clone, nil
}

// GetStaffByEmail 按邮箱查询员工
func (s *Store) GetStaffByEmail(email string) (*domain.Staff, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, staff := range s.staff {
		if staff.Email == email {
			clone := *staff
			return &clone, nil
		}
	}
	return nil, storage.ErrStaffNotFound
}

// FindStaffByContact 按邮箱或电话查重
func (s *Store) FindStaffByContact(email, phone string) (*domain.Staff, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, staff := range s.staff {
		if staff.Email == email || (phone != "" && staff.Phone == phone) {
			clone := *staff
			return &clone, nil
		}
	}
	return nil, storage.ErrStaffNotFound
}

// LatestStaffRegistrationID 返回最近分配的员工编号
func (s *Store) LatestStaffRegistrationID() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *domain.Staff
	for _, staff := range s.staff {
		if latest == nil || staff.ID > latest.ID {
			latest = staff
		}
	}
	if latest == nil {
		return "", nil
	}
	return latest.RegistrationID, nil
}

// StaffRegistrationIDExists 判断员工编号是否已被占用
func (s *Store) StaffRegistrationIDExists(registrationID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, staff := range s.staff {
		if staff.RegistrationID == registrationID {
			return true, nil
		}
	}
	return false, nil
}

// ListStaff 返回全部员工，id 升序
func (s *Store) ListStaff() ([]domain.Staff, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]domain.Staff, 0, len(s.staff))
	for _, staff := range s.staff {
		list = append(list, *staff)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

// UpdateStaff 更新员工信息
func (s *Store) UpdateStaff(staff *domain.Staff) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.staff[staff.ID]
	if !ok {
		return storage.ErrStaffNotFound
	}

	staff.CreatedAt = existing.CreatedAt
	staff.UpdatedAt = time.Now()
	clone := *staff
	s.staff[staff.ID] = &clone
	return nil
}

// DeleteStaff 删除员工
func (s *Store) DeleteStaff(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.staff[id]; !ok {
		return storage.ErrStaffNotFound
	}
	delete(s.staff, id)
	return nil
}

// ========== 社会组织 ==========

// CreateCSO 创建社会组织记录
func (s *Store) CreateCSO(cso *domain.CSO) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.csos {
		if existing.Email == cso.Email || (cso.Phone != "" && existing.Phone == cso.Phone) {
			return storage.ErrCSOExists
		}
	}

	cso.ID = s.allocID("cso")
	now := time.Now()
	cso.CreatedAt = now
	cso.UpdatedAt = now

	clone := *cso
	s.csos[cso.ID] = &clone
	return nil
}

// GetCSO 按 id 查询社会组织
func (s *Store) GetCSO(id int64) (*domain.CSO, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cso, ok := s.csos[id]
	if !ok {
		return nil, storage.ErrCSONotFound
	}
	clone := *cso
	return &clone, nil
}

// FindCSOByContact 按邮箱或电话查重
func (s *Store) FindCSOByContact(email, phone string) (*domain.CSO, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, cso := range s.csos {
		if cso.Email == email || (phone != "" && cso.Phone == phone) {
			clone := *cso
			return &clone, nil
		}
	}
	return nil, storage.ErrCSONotFound
}

// ListCSOs 返回全部社会组织，id 升序
func (s *Store) ListCSOs() ([]domain.CSO, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]domain.CSO, 0, len(s.csos))
	for _, cso := range s.csos {
		list = append(list, *cso)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

// ListCSOsByIDs 按 id 集合批量查询，忽略不存在的 id
func (s *Store) ListCSOsByIDs(ids []int64) ([]domain.CSO, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]domain.CSO, 0, len(ids))
	for _, id := range ids {
		if cso, ok := s.csos[id]; ok {
			list = append(list, *cso)
		}
	}
	return list, nil
}

// UpdateCSO 更新社会组织信息
func (s *Store) UpdateCSO(cso *domain.CSO) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.csos[cso.ID]
	if !ok {
		return storage.ErrCSONotFound
	}

	cso.CreatedAt = existing.CreatedAt
	cso.UpdatedAt = time.Now()
	clone := *cso
	s.csos[cso.ID] = &clone
	return nil
}

// DeleteCSO 删除社会组织
func (s *Store) DeleteCSO(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.csos[id]; !ok {
		return storage.ErrCSONotFound
	}
	delete(s.csos, id)
	return nil
}

// ========== 受益人 ==========

// CreateBeneficiary 创建受益人档案
func (s *Store) CreateBeneficiary(b *domain.Beneficiary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.benes {
		if (b.Email != "" && existing.Email == b.Email) || (b.Phone != "" && existing.Phone == b.Phone) {
			return storage.ErrBeneficiaryExists
		}
	}

	b.ID = s.allocID("beneficiaries")
	now := time.Now()
	b.CreatedAt = now
	b.UpdatedAt = now

	clone := *b
	s.benes[b.ID] = &clone
	return nil
}

// GetBeneficiary 按 id 查询受益人
func (s *Store) GetBeneficiary(id int64) (*domain.Beneficiary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.benes[id]
	if !ok {
		return nil, storage.ErrBeneficiaryNotFound
	}
	clone := *b
	return &clone, nil
}

// FindBeneficiaryByContact 按邮箱或电话查重
func (s *Store) FindBeneficiaryByContact(email, phone string) (*domain.Beneficiary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, b := range s.benes {
		if (email != "" && b.Email == email) || (phone != "" && b.Phone == phone) {
			clone := *b
			return &clone, nil
		}
	}
	return nil, storage.ErrBeneficiaryNotFound
}

// ListBeneficiaries 返回全部受益人，创建时间倒序
func (s *Store) ListBeneficiaries() ([]domain.Beneficiary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]domain.Beneficiary, 0, len(s.benes))
	for _, b := range s.benes {
		list = append(list, *b)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID > list[j].ID
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list, nil
}

// UpdateBeneficiary 更新受益人档案
func (s *Store) UpdateBeneficiary(b *domain.Beneficiary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.benes[b.ID]
	if !ok {
		return storage.ErrBeneficiaryNotFound
	}

	b.CreatedAt = existing.CreatedAt
	b.UpdatedAt = time.Now()
	clone := *b
	s.benes[b.ID] = &clone
	return nil
}

// DeleteBeneficiary 删除受益人档案
func (s *Store) DeleteBeneficiary(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.benes[id]; !ok {
		return storage.ErrBeneficiaryNotFound
	}
	delete(s.benes, id)
	return nil
}
