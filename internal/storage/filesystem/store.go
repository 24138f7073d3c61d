package filesystem

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// 上传文件分类子目录
const (
	CategoryLetters = "letters"
	CategoryStaff   = "staff"
	CategoryIDFiles = "idFiles"
	CategoryPhotos  = "photoFiles"
	CategoryNews    = "news"
	CategoryHero    = "hero"
	CategoryForms   = "forms"
)

// ErrUnsafePath 路径包含遍历成分错误
var ErrUnsafePath = errors.New("unsafe file path")

// Store 文件系统上传存储。
// 所有文件保存在 basePath 下的分类子目录中，
// 数据库只持久化相对路径。
type Store struct {
	basePath string
}

// NewStore 创建上传存储实例，确保根目录存在
func NewStore(basePath string) (*Store, error) {
	if strings.Contains(basePath, "..") {
		return nil, fmt.Errorf("invalid base path: %w", ErrUnsafePath)
	}

	absPath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base path: %w", err)
	}

	if err := os.MkdirAll(absPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	return &Store{basePath: absPath}, nil
}

// BasePath 返回上传根目录的绝对路径
func (s *Store) BasePath() string { return s.basePath }

// Save 保存上传内容并返回相对存储路径。
//
// 文件名由随机前缀加清理后的原始名组成，避免覆盖同名上传；
// O_EXCL 打开，派生路径已存在时报错而不是静默覆盖。
func (s *Store) Save(category, originalName string, data []byte) (string, error) {
	dir := filepath.Join(s.basePath, category)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create category directory: %w", err)
	}

	filename := fmt.Sprintf("%s_%s", uuid.NewString()[:8], sanitizeFilename(originalName))
	fullPath := filepath.Join(dir, filename)

	f, err := os.OpenFile(fullPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to close upload file: %w", err)
	}

	return filepath.ToSlash(filepath.Join(category, filename)), nil
}

// Delete 删除相对路径指向的文件。幂等：文件不存在视为成功。
func (s *Store) Delete(relPath string) error {
	if relPath == "" {
		return nil
	}

	fullPath, err := s.Resolve(relPath)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Exists 判断相对路径指向的文件是否存在
func (s *Store) Exists(relPath string) bool {
	fullPath, err := s.Resolve(relPath)
	if err != nil {
		return false
	}
	_, err = os.Stat(fullPath)
	return err == nil
}

// Resolve 将相对存储路径解析为根目录下的绝对路径，
// 拒绝逃出根目录的路径。
func (s *Store) Resolve(relPath string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(relPath))
	if strings.Contains(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", ErrUnsafePath
	}
	return filepath.Join(s.basePath, cleaned), nil
}

// sanitizeFilename 清理原始文件名中的路径成分、非法字符和控制字符
func sanitizeFilename(filename string) string {
	filename = filepath.Base(filename)

	for _, char := range []string{"<", ">", ":", "\"", "|", "?", "*", "\\", "/", "\x00"} {
		filename = strings.ReplaceAll(filename, char, "_")
	}

	filename = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, filename)

	filename = strings.Trim(filename, " .")

	if len(filename) > 200 {
		ext := filepath.Ext(filename)
		filename = filename[:200-len(ext)] + ext
	}

	if filename == "" {
		filename = "unnamed"
	}

	return filename
}
