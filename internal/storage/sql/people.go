package sql

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"csoportal/backend/internal/domain"
	"csoportal/backend/internal/storage"
)

// ========== Staff Repository ==========

const staffColumns = `id, registration_id, name, email, phone, password, role, photo_path,
       email_verified, created_at, updated_at`

// CreateStaff 创建员工账号，邮箱或电话重复时返回 ErrStaffExists
func (s *Store) CreateStaff(staff *domain.Staff) error {
	if _, err := s.FindStaffByContact(staff.Email, staff.Phone); err == nil {
		return storage.ErrStaffExists
	} else if !errors.Is(err, storage.ErrStaffNotFound) {
		return err
	}

	now := time.Now()
	staff.CreatedAt = now
	staff.UpdatedAt = now

	query := `
		INSERT INTO staff (registration_id, name, email, phone, password, role, photo_path,
		                   email_verified, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	id, err := s.insertReturningID(query,
		staff.RegistrationID,
		staff.Name,
		staff.Email,
		staff.Phone,
		staff.Password,
		staff.Role,
		nullStr(staff.PhotoPath),
		staff.EmailVerified,
		staff.CreatedAt,
		staff.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert staff: %w", err)
	}

	staff.ID = id
	return nil
}

// GetStaff 按 id 查询员工
func (s *Store) GetStaff(id int64) (*domain.Staff, error) {
	query := `SELECT ` + staffColumns + ` FROM staff WHERE id = ?`
	return s.scanStaffRow(s.queryRow(query, id))
}

// GetStaffByEmail 按邮箱查询员工
func (s *Store) GetStaffByEmail(email string) (*domain.Staff, error) {
	query := `SELECT ` + staffColumns + ` FROM staff WHERE email = ?`
	return s.scanStaffRow(s.queryRow(query, email))
}

// FindStaffByContact 按邮箱或电话查重
func (s *Store) FindStaffByContact(email, phone string) (*domain.Staff, error) {
	if phone == "" {
		return s.GetStaffByEmail(email)
	}
	query := `SELECT ` + staffColumns + ` FROM staff WHERE email = ? OR phone = ?`
	return s.scanStaffRow(s.queryRow(query, email, phone))
}

// LatestStaffRegistrationID 返回最近分配的员工编号，无员工时返回空串
func (s *Store) LatestStaffRegistrationID() (string, error) {
	var regID string
	err := s.queryRow(`SELECT registration_id FROM staff ORDER BY id DESC LIMIT 1`).Scan(&regID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return regID, err
}

// StaffRegistrationIDExists 判断员工编号是否已被占用
func (s *Store) StaffRegistrationIDExists(registrationID string) (bool, error) {
	var count int
	err := s.queryRow(`SELECT COUNT(*) FROM staff WHERE registration_id = ?`, registrationID).Scan(&count)
	return count > 0, err
}

// ListStaff 返回全部员工，id 升序
func (s *Store) ListStaff() ([]domain.Staff, error) {
	rows, err := s.query(`SELECT ` + staffColumns + ` FROM staff ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]domain.Staff, 0)
	for rows.Next() {
		staff, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *staff)
	}
	return list, rows.Err()
}

// UpdateStaff 更新员工信息
func (s *Store) UpdateStaff(staff *domain.Staff) error {
	staff.UpdatedAt = time.Now()

	query := `
		UPDATE staff
		SET name = ?, email = ?, phone = ?, password = ?, role = ?, photo_path = ?,
		    email_verified = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := s.exec(query,
		staff.Name,
		staff.Email,
		staff.Phone,
		staff.Password,
		staff.Role,
		nullStr(staff.PhotoPath),
		staff.EmailVerified,
		staff.UpdatedAt,
		staff.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update staff: %w", err)
	}
	return requireAffected(result, storage.ErrStaffNotFound)
}

// DeleteStaff 删除员工
func (s *Store) DeleteStaff(id int64) error {
	result, err := s.exec(`DELETE FROM staff WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete staff: %w", err)
	}
	return requireAffected(result, storage.ErrStaffNotFound)
}

func (s *Store) scanStaffRow(row rowScanner) (*domain.Staff, error) {
	staff, err := scanStaff(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrStaffNotFound
		}
		return nil, err
	}
	return staff, nil
}

func scanStaff(row rowScanner) (*domain.Staff, error) {
	var staff domain.Staff
	var photoPath sql.NullString

	err := row.Scan(
		&staff.ID,
		&staff.RegistrationID,
		&staff.Name,
		&staff.Email,
		&staff.Phone,
		&staff.Password,
		&staff.Role,
		&photoPath,
		&staff.EmailVerified,
		&staff.CreatedAt,
		&staff.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	staff.PhotoPath = strFromNull(photoPath)
	return &staff, nil
}

// ========== CSO Repository ==========

const csoColumns = `id, name, email, phone, created_at, updated_at`

// CreateCSO 创建社会组织记录
func (s *Store) CreateCSO(cso *domain.CSO) error {
	if _, err := s.FindCSOByContact(cso.Email, cso.Phone); err == nil {
		return storage.ErrCSOExists
	} else if !errors.Is(err, storage.ErrCSONotFound) {
		return err
	}

	now := time.Now()
	cso.CreatedAt = now
	cso.UpdatedAt = now

	query := `
		INSERT INTO cso (name, email, phone, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`
	id, err := s.insertReturningID(query, cso.Name, cso.Email, cso.Phone, cso.CreatedAt, cso.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert cso: %w", err)
	}

	cso.ID = id
	return nil
}

// GetCSO 按 id 查询社会组织
func (s *Store) GetCSO(id int64) (*domain.CSO, error) {
	return s.scanCSORow(s.queryRow(`SELECT `+csoColumns+` FROM cso WHERE id = ?`, id))
}

// FindCSOByContact 按邮箱或电话查重
func (s *Store) FindCSOByContact(email, phone string) (*domain.CSO, error) {
	if phone == "" {
		return s.scanCSORow(s.queryRow(`SELECT `+csoColumns+` FROM cso WHERE email = ?`, email))
	}
	return s.scanCSORow(s.queryRow(`SELECT `+csoColumns+` FROM cso WHERE email = ? OR phone = ?`, email, phone))
}

// ListCSOs 返回全部社会组织，id 升序
func (s *Store) ListCSOs() ([]domain.CSO, error) {
	rows, err := s.query(`SELECT ` + csoColumns + ` FROM cso ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCSOs(rows)
}

// ListCSOsByIDs 按 id 集合批量查询，忽略不存在的 id
func (s *Store) ListCSOsByIDs(ids []int64) ([]domain.CSO, error) {
	if len(ids) == 0 {
		return []domain.CSO{}, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}

	query := `SELECT ` + csoColumns + ` FROM cso WHERE id IN (` +
		strings.Join(placeholders, ", ") + `) ORDER BY id`
	rows, err := s.query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCSOs(rows)
}

// UpdateCSO 更新社会组织信息
func (s *Store) UpdateCSO(cso *domain.CSO) error {
	cso.UpdatedAt = time.Now()

	result, err := s.exec(
		`UPDATE cso SET name = ?, email = ?, phone = ?, updated_at = ? WHERE id = ?`,
		cso.Name, cso.Email, cso.Phone, cso.UpdatedAt, cso.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update cso: %w", err)
	}
	return requireAffected(result, storage.ErrCSONotFound)
}

// DeleteCSO 删除社会组织
func (s *Store) DeleteCSO(id int64) error {
	result, err := s.exec(`DELETE FROM cso WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete cso: %w", err)
	}
	return requireAffected(result, storage.ErrCSONotFound)
}

func (s *Store) scanCSORow(row rowScanner) (*domain.CSO, error) {
	var cso domain.CSO
	err := row.Scan(&cso.ID, &cso.Name, &cso.Email, &cso.Phone, &cso.CreatedAt, &cso.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrCSONotFound
		}
		return nil, err
	}
	return &cso, nil
}

func scanCSOs(rows *sql.Rows) ([]domain.CSO, error) {
	list := make([]domain.CSO, 0)
	for rows.Next() {
		var cso domain.CSO
		if err := rows.Scan(&cso.ID, &cso.Name, &cso.Email, &cso.Phone, &cso.CreatedAt, &cso.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, cso)
	}
	return list, rows.Err()
}

// ========== Beneficiary Repository ==========

const beneficiaryColumns = `id, beneficiary_id, full_name, email, phone, address, id_file,
       photo_path, created_at, updated_at`

// CreateBeneficiary 创建受益人档案
func (s *Store) CreateBeneficiary(b *domain.Beneficiary) error {
	if _, err := s.FindBeneficiaryByContact(b.Email, b.Phone); err == nil {
		return storage.ErrBeneficiaryExists
	} else if !errors.Is(err, storage.ErrBeneficiaryNotFound) {
		return err
	}

	now := time.Now()
	b.CreatedAt = now
	b.UpdatedAt = now

	query := `
		INSERT INTO beneficiaries (beneficiary_id, full_name, email, phone, address, id_file,
		                           photo_path, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	id, err := s.insertReturningID(query,
		b.BeneficiaryID,
		b.FullName,
		b.Email,
		b.Phone,
		b.Address,
		nullStr(b.IDFilePath),
		nullStr(b.PhotoPath),
		b.CreatedAt,
		b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert beneficiary: %w", err)
	}

	b.ID = id
	return nil
}

// GetBeneficiary 按 id 查询受益人
func (s *Store) GetBeneficiary(id int64) (*domain.Beneficiary, error) {
	return s.scanBeneficiaryRow(s.queryRow(`SELECT `+beneficiaryColumns+` FROM beneficiaries WHERE id = ?`, id))
}

// FindBeneficiaryByContact 按邮箱或电话查重
func (s *Store) FindBeneficiaryByContact(email, phone string) (*domain.Beneficiary, error) {
	switch {
	case email == "" && phone == "":
		return nil, storage.ErrBeneficiaryNotFound
	case phone == "":
		return s.scanBeneficiaryRow(s.queryRow(`SELECT `+beneficiaryColumns+` FROM beneficiaries WHERE email = ?`, email))
	case email == "":
		return s.scanBeneficiaryRow(s.queryRow(`SELECT `+beneficiaryColumns+` FROM beneficiaries WHERE phone = ?`, phone))
	default:
		return s.scanBeneficiaryRow(s.queryRow(`SELECT `+beneficiaryColumns+` FROM beneficiaries WHERE email = ? OR phone = ?`, email, phone))
	}
}

// ListBeneficiaries 返回全部受益人，创建时间倒序
func (s *Store) ListBeneficiaries() ([]domain.Beneficiary, error) {
	rows, err := s.query(`SELECT ` + beneficiaryColumns + ` FROM beneficiaries ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]domain.Beneficiary, 0)
	for rows.Next() {
		b, err := scanBeneficiary(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *b)
	}
	return list, rows.Err()
}

// UpdateBeneficiary 更新受益人档案
func (s *Store) UpdateBeneficiary(b *domain.Beneficiary) error {
	b.UpdatedAt = time.Now()

	query := `
		UPDATE beneficiaries
		SET beneficiary_id = ?, full_name = ?, email = ?, phone = ?, address = ?,
		    id_file = ?, photo_path = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := s.exec(query,
		b.BeneficiaryID,
		b.FullName,
		b.Email,
		b.Phone,
		b.Address,
		nullStr(b.IDFilePath),
		nullStr(b.PhotoPath),
		b.UpdatedAt,
		b.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update beneficiary: %w", err)
	}
	return requireAffected(result, storage.ErrBeneficiaryNotFound)
}

// DeleteBeneficiary 删除受益人档案
func (s *Store) DeleteBeneficiary(id int64) error {
	result, err := s.exec(`DELETE FROM beneficiaries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete beneficiary: %w", err)
	}
	return requireAffected(result, storage.ErrBeneficiaryNotFound)
}

func (s *Store) scanBeneficiaryRow(row rowScanner) (*domain.Beneficiary, error) {
	b, err := scanBeneficiary(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrBeneficiaryNotFound
		}
		return nil, err
	}
	return b, nil
}

func scanBeneficiary(row rowScanner) (*domain.Beneficiary, error) {
	var b domain.Beneficiary
	var idFile, photoPath sql.NullString

	err := row.Scan(
		&b.ID,
		&b.BeneficiaryID,
		&b.FullName,
		&b.Email,
		&b.Phone,
		&b.Address,
		&idFile,
		&photoPath,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.IDFilePath = strFromNull(idFile)
	b.PhotoPath = strFromNull(photoPath)
	return &b, nil
}

// requireAffected 把"零行受影响"映射为给定的未找到错误
func requireAffected(result sql.Result, notFound error) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return notFound
	}
	return nil
}
