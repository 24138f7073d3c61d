package memory

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"csoportal/backend/internal/domain"
	"csoportal/backend/internal/storage"
)

// Store 内存存储实现，用于开发环境和测试。
// 所有读写都在互斥锁保护下对 map 进行，返回值均为副本。
type Store struct {
	mu sync.RWMutex

	letters      map[int64]*domain.Letter
	staff        map[int64]*domain.Staff
	csos         map[int64]*domain.CSO
	benes        map[int64]*domain.Beneficiary
	forms        map[int64]*domain.Form
	applications map[int64]*domain.Application
	news         map[int64]*domain.News
	comments     map[int64]*domain.NewsComment
	heroSlides   map[int64]*domain.HeroSlide
	services     map[int64]*domain.Service
	about        *domain.About
	contact      *domain.ContactContent

	nextID map[string]int64
}

// NewStore 创建内存存储实例
func NewStore() *Store {
	return &Store{
		letters:      make(map[int64]*domain.Letter),
		staff:        make(map[int64]*domain.Staff),
		csos:         make(map[int64]*domain.CSO),
		benes:        make(map[int64]*domain.Beneficiary),
		forms:        make(map[int64]*domain.Form),
		applications: make(map[int64]*domain.Application),
		news:         make(map[int64]*domain.News),
		comments:     make(map[int64]*domain.NewsComment),
		heroSlides:   make(map[int64]*domain.HeroSlide),
		services:     make(map[int64]*domain.Service),
		nextID:       make(map[string]int64),
	}
}

// 编译期确认实现了完整存储接口
var _ storage.Store = (*Store)(nil)

func (s *Store) allocID(table string) int64 {
	s.nextID[table]++
	return s.nextID[table]
}

// Close 关闭存储（内存实现为空操作）
func (s *Store) Close() error { return nil }

// Health 检查存储健康状态（内存实现始终健康）
func (s *Store) Health() error { return nil }

// ========== 信函 ==========

// SaveLetter 保存新信函并分配自增 id
func (s *Store) SaveLetter(letter *domain.Letter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	letter.ID = s.allocID("letters")
	now := time.Now()
	if letter.CreatedAt.IsZero() {
		letter.CreatedAt = now
	}
	letter.UpdatedAt = now

	clone := *letter
	s.letters[letter.ID] = &clone
	return nil
}

// GetLetter 按 id 查询信函
func (s *Store) GetLetter(id int64) (*domain.Letter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	letter, ok := s.letters[id]
	if !ok {
		return nil, storage.ErrLetterNotFound
	}
	clone := *letter
	return &clone, nil
}

// ListLetters 返回全部信函，创建时间倒序
func (s *Store) ListLetters() ([]domain.Letter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	letters := make([]domain.Letter, 0, len(s.letters))
	for _, letter := range s.letters {
		letters = append(letters, *letter)
	}
	sortLettersDesc(letters)
	return letters, nil
}

// UpdateLetter 更新已存在的信函
func (s *Store) UpdateLetter(letter *domain.Letter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.letters[letter.ID]
	if !ok {
		return storage.ErrLetterNotFound
	}

	letter.CreatedAt = existing.CreatedAt
	letter.UpdatedAt = time.Now()
	clone := *letter
	s.letters[letter.ID] = &clone
	return nil
}

// DeleteLetter 删除信函
func (s *Store) DeleteLetter(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.letters[id]; !ok {
		return storage.ErrLetterNotFound
	}
	delete(s.letters, id)
	return nil
}

// ListLettersForCSO 返回广播信函和 selected_csos 疑似包含该组织的候选信函。
// 预筛选只做子串匹配，与 SQL 实现的 LIKE 语义一致，误报由调用方解码确认。
func (s *Store) ListLettersForCSO(csoID int64) ([]domain.Letter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strconv.FormatInt(csoID, 10)
	letters := make([]domain.Letter, 0)
	for _, letter := range s.letters {
		if letter.SendToAll || containsID(letter.SelectedCSOs, needle) {
			letters = append(letters, *letter)
		}
	}
	sortLettersDesc(letters)
	return letters, nil
}

// ListTargetedLetters 返回定向信函中疑似包含该组织的候选集
func (s *Store) ListTargetedLetters(csoID int64) ([]domain.Letter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strconv.FormatInt(csoID, 10)
	letters := make([]domain.Letter, 0)
	for _, letter := range s.letters {
		if !letter.SendToAll && containsID(letter.SelectedCSOs, needle) {
			letters = append(letters, *letter)
		}
	}
	sortLettersDesc(letters)
	return letters, nil
}

func containsID(stored *string, needle string) bool {
	return stored != nil && strings.Contains(*stored, needle)
}

func sortLettersDesc(letters []domain.Letter) {
	sort.Slice(letters, func(i, j int) bool {
		if letters[i].CreatedAt.Equal(letters[j].CreatedAt) {
			return letters[i].ID > letters[j].ID
		}
		return letters[i].CreatedAt.After(letters[j].CreatedAt)
	})
}
