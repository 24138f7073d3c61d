package sql

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"csoportal/backend/internal/domain"
	"csoportal/backend/internal/storage"
)

// ========== Letter Repository ==========

const letterColumns = `id, title, summary, type, attachment_path, attachment_name, mimetype,
       send_to_all, selected_csos, created_by, created_at, updated_at`

// SaveLetter 保存新信函并回填自增 id
func (s *Store) SaveLetter(letter *domain.Letter) error {
	now := time.Now()
	if letter.CreatedAt.IsZero() {
		letter.CreatedAt = now
	}
	letter.UpdatedAt = now

	query := `
		INSERT INTO letters (title, summary, type, attachment_path, attachment_name, mimetype,
		                     send_to_all, selected_csos, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	id, err := s.insertReturningID(query,
		letter.Title,
		letter.Summary,
		letter.Type,
		nullStr(letter.AttachmentPath),
		nullStr(letter.AttachmentName),
		nullStr(letter.Mimetype),
		letter.SendToAll,
		nullStr(letter.SelectedCSOs),
		letter.CreatedBy,
		letter.CreatedAt,
		letter.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert letter: %w", err)
	}

	letter.ID = id
	return nil
}

// GetLetter 按 id 查询信函
func (s *Store) GetLetter(id int64) (*domain.Letter, error) {
	query := `SELECT ` + letterColumns + ` FROM letters WHERE id = ?`

	letter, err := scanLetter(s.queryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrLetterNotFound
		}
		return nil, err
	}
	return letter, nil
}

// ListLetters 返回全部信函，创建时间倒序
func (s *Store) ListLetters() ([]domain.Letter, error) {
	query := `SELECT ` + letterColumns + ` FROM letters ORDER BY created_at DESC, id DESC`

	rows, err := s.query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanLetters(rows)
}

// UpdateLetter 更新已存在的信函
func (s *Store) UpdateLetter(letter *domain.Letter) error {
	letter.UpdatedAt = time.Now()

	query := `
		UPDATE letters
		SET title = ?, summary = ?, type = ?, attachment_path = ?, attachment_name = ?,
		    mimetype = ?, send_to_all = ?, selected_csos = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := s.exec(query,
		letter.Title,
		letter.Summary,
		letter.Type,
		nullStr(letter.AttachmentPath),
		nullStr(letter.AttachmentName),
		nullStr(letter.Mimetype),
		letter.SendToAll,
		nullStr(letter.SelectedCSOs),
		letter.UpdatedAt,
		letter.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update letter: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return storage.ErrLetterNotFound
	}
	return nil
}

// DeleteLetter 删除信函
func (s *Store) DeleteLetter(id int64) error {
	result, err := s.exec(`DELETE FROM letters WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete letter: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return storage.ErrLetterNotFound
	}
	return nil
}

// ListLettersForCSO 返回广播信函和 selected_csos 疑似包含该组织的候选信函。
// LIKE 预筛选允许误报（子串匹配会命中包含相同数字的其他 id），
// 最终归属由调用方解码确认。
func (s *Store) ListLettersForCSO(csoID int64) ([]domain.Letter, error) {
	query := `
		SELECT ` + letterColumns + `
		FROM letters
		WHERE send_to_all = ? OR selected_csos LIKE ?
		ORDER BY created_at DESC, id DESC
	`
	rows, err := s.query(query, true, likePattern(csoID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanLetters(rows)
}

// ListTargetedLetters 返回定向信函中疑似包含该组织的候选集
func (s *Store) ListTargetedLetters(csoID int64) ([]domain.Letter, error) {
	query := `
		SELECT ` + letterColumns + `
		FROM letters
		WHERE send_to_all = ? AND selected_csos LIKE ?
		ORDER BY created_at DESC, id DESC
	`
	rows, err := s.query(query, false, likePattern(csoID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanLetters(rows)
}

func likePattern(csoID int64) string {
	return fmt.Sprintf("%%%d%%", csoID)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLetter(row rowScanner) (*domain.Letter, error) {
	var letter domain.Letter
	var attachmentPath, attachmentName, mimetype, selectedCSOs sql.NullString

	err := row.Scan(
		&letter.ID,
		&letter.Title,
		&letter.Summary,
		&letter.Type,
		&attachmentPath,
		&attachmentName,
		&mimetype,
		&letter.SendToAll,
		&selectedCSOs,
		&letter.CreatedBy,
		&letter.CreatedAt,
		&letter.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	letter.AttachmentPath = strFromNull(attachmentPath)
	letter.AttachmentName = strFromNull(attachmentName)
	letter.Mimetype = strFromNull(mimetype)
	letter.SelectedCSOs = strFromNull(selectedCSOs)
	return &letter, nil
}

func scanLetters(rows *sql.Rows) ([]domain.Letter, error) {
	letters := make([]domain.Letter, 0)
	for rows.Next() {
		letter, err := scanLetter(rows)
		if err != nil {
			return nil, err
		}
		letters = append(letters, *letter)
	}
	return letters, rows.Err()
}
