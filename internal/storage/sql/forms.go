package sql

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"csoportal/backend/internal/domain"
	"csoportal/backend/internal/storage"
)

// ========== Form Repository ==========

const formColumns = `id, form_name, form_schema, expires_at, created_by, created_at, updated_at`

// CreateForm 创建申请表模板
func (s *Store) CreateForm(form *domain.Form) error {
	now := time.Now()
	form.CreatedAt = now
	form.UpdatedAt = now

	query := `
		INSERT INTO forms (form_name, form_schema, expires_at, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	id, err := s.insertReturningID(query,
		form.FormName,
		form.Schema,
		form.ExpiresAt,
		form.CreatedBy,
		form.CreatedAt,
		form.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert form: %w", err)
	}

	form.ID = id
	return nil
}

// GetForm 按 id 查询模板
func (s *Store) GetForm(id int64) (*domain.Form, error) {
	form, err := scanForm(s.queryRow(`SELECT `+formColumns+` FROM forms WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrFormNotFound
		}
		return nil, err
	}
	return form, nil
}

// ListForms 返回全部模板，创建时间倒序
func (s *Store) ListForms() ([]domain.Form, error) {
	rows, err := s.query(`SELECT ` + formColumns + ` FROM forms ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]domain.Form, 0)
	for rows.Next() {
		form, err := scanForm(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *form)
	}
	return list, rows.Err()
}

// UpdateForm 更新模板
func (s *Store) UpdateForm(form *domain.Form) error {
	form.UpdatedAt = time.Now()

	result, err := s.exec(
		`UPDATE forms SET form_name = ?, form_schema = ?, expires_at = ?, updated_at = ? WHERE id = ?`,
		form.FormName, form.Schema, form.ExpiresAt, form.UpdatedAt, form.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update form: %w", err)
	}
	return requireAffected(result, storage.ErrFormNotFound)
}

// DeleteForm 删除模板及其名下全部申请
func (s *Store) DeleteForm(id int64) error {
	if _, err := s.exec(`DELETE FROM applications WHERE form_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete form applications: %w", err)
	}

	result, err := s.exec(`DELETE FROM forms WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete form: %w", err)
	}
	return requireAffected(result, storage.ErrFormNotFound)
}

func scanForm(row rowScanner) (*domain.Form, error) {
	var form domain.Form
	var expiresAt sql.NullTime

	err := row.Scan(
		&form.ID,
		&form.FormName,
		&form.Schema,
		&expiresAt,
		&form.CreatedBy,
		&form.CreatedAt,
		&form.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	form.ExpiresAt = timeFromNull(expiresAt)
	return &form, nil
}

// ========== Application Repository ==========

const applicationColumns = `id, form_id, cso_id, payload, file_path, file_name, status,
       update_permission, created_at, updated_at`

// CreateApplication 创建申请，同一组织对同一模板重复提交时返回 ErrApplicationExists
func (s *Store) CreateApplication(app *domain.Application) error {
	if _, err := s.GetApplicationByFormAndCSO(app.FormID, app.CSOID); err == nil {
		return storage.ErrApplicationExists
	} else if !errors.Is(err, storage.ErrApplicationNotFound) {
		return err
	}

	now := time.Now()
	app.CreatedAt = now
	app.UpdatedAt = now
	if app.Status == "" {
		app.Status = domain.ApplicationStatusPending
	}

	query := `
		INSERT INTO applications (form_id, cso_id, payload, file_path, file_name, status,
		                          update_permission, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	id, err := s.insertReturningID(query,
		app.FormID,
		app.CSOID,
		app.Payload,
		nullStr(app.FilePath),
		nullStr(app.FileName),
		app.Status,
		app.UpdatePermission,
		app.CreatedAt,
		app.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert application: %w", err)
	}

	app.ID = id
	return nil
}

// GetApplication 按 id 查询申请
func (s *Store) GetApplication(id int64) (*domain.Application, error) {
	return s.scanApplicationRow(s.queryRow(`SELECT `+applicationColumns+` FROM applications WHERE id = ?`, id))
}

// GetApplicationByFormAndCSO 查询某组织对某模板的申请
func (s *Store) GetApplicationByFormAndCSO(formID, csoID int64) (*domain.Application, error) {
	return s.scanApplicationRow(s.queryRow(
		`SELECT `+applicationColumns+` FROM applications WHERE form_id = ? AND cso_id = ?`,
		formID, csoID,
	))
}

// ListApplicationsByForm 返回某模板名下全部申请，提交时间倒序
func (s *Store) ListApplicationsByForm(formID int64) ([]domain.Application, error) {
	rows, err := s.query(
		`SELECT `+applicationColumns+` FROM applications WHERE form_id = ? ORDER BY created_at DESC, id DESC`,
		formID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanApplications(rows)
}

// ListApplicationsByCSO 返回某组织提交的全部申请，提交时间倒序
func (s *Store) ListApplicationsByCSO(csoID int64) ([]domain.Application, error) {
	rows, err := s.query(
		`SELECT `+applicationColumns+` FROM applications WHERE cso_id = ? ORDER BY created_at DESC, id DESC`,
		csoID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanApplications(rows)
}

// UpdateApplication 更新申请
func (s *Store) UpdateApplication(app *domain.Application) error {
	app.UpdatedAt = time.Now()

	query := `
		UPDATE applications
		SET payload = ?, file_path = ?, file_name = ?, status = ?, update_permission = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := s.exec(query,
		app.Payload,
		nullStr(app.FilePath),
		nullStr(app.FileName),
		app.Status,
		app.UpdatePermission,
		app.UpdatedAt,
		app.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update application: %w", err)
	}
	return requireAffected(result, storage.ErrApplicationNotFound)
}

// DeleteApplication 删除申请
func (s *Store) DeleteApplication(id int64) error {
	result, err := s.exec(`DELETE FROM applications WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete application: %w", err)
	}
	return requireAffected(result, storage.ErrApplicationNotFound)
}

func (s *Store) scanApplicationRow(row rowScanner) (*domain.Application, error) {
	app, err := scanApplication(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrApplicationNotFound
		}
		return nil, err
	}
	return app, nil
}

func scanApplication(row rowScanner) (*domain.Application, error) {
	var app domain.Application
	var filePath, fileName sql.NullString

	err := row.Scan(
		&app.ID,
		&app.FormID,
		&app.CSOID,
		&app.Payload,
		&filePath,
		&fileName,
		&app.Status,
		&app.UpdatePermission,
		&app.CreatedAt,
		&app.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	app.FilePath = strFromNull(filePath)
	app.FileName = strFromNull(fileName)
	return &app, nil
}

func scanApplications(rows *sql.Rows) ([]domain.Application, error) {
	list := make([]domain.Application, 0)
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *app)
	}
	return list, rows.Err()
}
