package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"csoportal/backend/internal/config"
	"csoportal/backend/internal/domain"
	"csoportal/backend/internal/monitoring"
	"csoportal/backend/internal/storage"
	"csoportal/backend/internal/storage/filesystem"
	"csoportal/backend/internal/storage/redis"
)

var (
	// ErrInvalidLetterType 非法信函类型错误
	ErrInvalidLetterType = errors.New("letter type must be Meeting, Announcement or Warning")
	// ErrLetterTitleRequired 信函标题缺失错误
	ErrLetterTitleRequired = errors.New("letter title is required")
)

// LetterEventPublisher 向已连接客户端推送信函事件
type LetterEventPublisher interface {
	PublishLetterCreated(letter *domain.Letter, recipientIDs []int64)
	PublishLetterRead(letterID, csoID int64)
}

// LetterNotifier 发送信函的邮件通知
type LetterNotifier interface {
	NotifyLetter(letter *domain.Letter, recipients []domain.CSO)
}

// LetterService 封装信函与已读状态的业务逻辑。
//
// selected_csos 的解码始终走修复路径（见 domain.DecodeRecipients）；
// 写路径重新编码为规范 JSON，历史损坏数据随更新逐步被纠正。
type LetterService struct {
	repo  storage.LetterRepository
	csos  storage.CSORepository
	files *filesystem.Store
	log   *zap.Logger

	uploadCfg config.UploadConfig
	letterCfg config.LetterConfig

	cache    *redis.Cache         // 可选：未读数旁路缓存
	events   LetterEventPublisher // 可选：websocket 推送
	notifier LetterNotifier       // 可选：邮件通知

	// 按信函 id 串行化 mark-read 的读-改-写，
	// 避免并发标记互相覆盖对方写入的状态
	locks sync.Map
}

// NewLetterService 创建信函业务服务
func NewLetterService(
	repo storage.LetterRepository,
	csos storage.CSORepository,
	files *filesystem.Store,
	uploadCfg config.UploadConfig,
	letterCfg config.LetterConfig,
	log *zap.Logger,
) *LetterService {
	return &LetterService{
		repo:      repo,
		csos:      csos,
		files:     files,
		uploadCfg: uploadCfg,
		letterCfg: letterCfg,
		log:       log,
	}
}

// SetCache 设置未读数缓存
func (s *LetterService) SetCache(cache *redis.Cache) { s.cache = cache }

// SetEventPublisher 设置事件推送
func (s *LetterService) SetEventPublisher(events LetterEventPublisher) { s.events = events }

// SetNotifier 设置邮件通知
func (s *LetterService) SetNotifier(notifier LetterNotifier) { s.notifier = notifier }

// CreateLetterInput 定义创建信函的输入。
// SelectedCSOs 接受任意形态（数组、数字、JSON 字符串），
// 无法识别时降级为无收件人而不报错。
type CreateLetterInput struct {
	Title        string
	Summary      string
	Type         string
	SendToAll    bool
	SelectedCSOs any
	CreatedBy    int64
	Attachment   *Upload
}

// Create 创建信函。
// 附件先落盘再写库，写库失败时删除已保存的孤儿文件。
func (s *LetterService) Create(ctx context.Context, input CreateLetterInput) (*domain.LetterWithReads, error) {
	if input.Title == "" {
		return nil, ErrLetterTitleRequired
	}
	if !domain.IsValidLetterType(input.Type) {
		return nil, ErrInvalidLetterType
	}
	if err := validateUpload(input.Attachment, s.uploadCfg); err != nil {
		return nil, err
	}

	var recipients []domain.RecipientState
	if !input.SendToAll {
		recipients = domain.NormalizeRecipients(input.SelectedCSOs)
	}

	encoded, err := domain.EncodeRecipients(recipients)
	if err != nil {
		return nil, err
	}

	letter := &domain.Letter{
		Title:        input.Title,
		Summary:      input.Summary,
		Type:         input.Type,
		SendToAll:    input.SendToAll,
		SelectedCSOs: encoded,
		CreatedBy:    input.CreatedBy,
	}

	var savedPath string
	if input.Attachment != nil {
		savedPath, err = s.files.Save(filesystem.CategoryLetters, input.Attachment.Filename, input.Attachment.Data)
		if err != nil {
			return nil, err
		}
		letter.AttachmentPath = &savedPath
		letter.AttachmentName = &input.Attachment.Filename
		letter.Mimetype = &input.Attachment.Mimetype
	}

	if err := s.repo.SaveLetter(letter); err != nil {
		if savedPath != "" {
			if cleanupErr := s.files.Delete(savedPath); cleanupErr != nil {
				s.log.Warn("failed to clean up orphan attachment",
					zap.String("path", savedPath), zap.Error(cleanupErr))
			}
		}
		return nil, err
	}

	monitoring.LettersCreated.Inc()
	s.invalidateUnreadCounts(ctx, letter, recipients)
	s.publishCreated(letter, recipients)
	s.notifyRecipients(letter, recipients)

	s.log.Info("letter created",
		zap.Int64("id", letter.ID),
		zap.String("type", letter.Type),
		zap.Bool("send_to_all", letter.SendToAll),
		zap.Int("recipients", len(recipients)),
	)

	return s.withReads(letter), nil
}

// List 返回全部信函的管理端视图，创建时间倒序
func (s *LetterService) List(ctx context.Context) ([]domain.LetterWithReads, error) {
	letters, err := s.repo.ListLetters()
	if err != nil {
		return nil, err
	}

	views := make([]domain.LetterWithReads, 0, len(letters))
	for i := range letters {
		views = append(views, *s.withReads(&letters[i]))
	}
	return views, nil
}

// Get 返回单封信函的管理端视图
func (s *LetterService) Get(ctx context.Context, id int64) (*domain.LetterWithReads, error) {
	letter, err := s.repo.GetLetter(id)
	if err != nil {
		return nil, err
	}
	return s.withReads(letter), nil
}

// UpdateLetterInput 定义更新信函的输入。
// 指针字段为 nil 表示该字段保持不变；
// SelectedCSOs 为 nil 表示收件列表保持不变。
type UpdateLetterInput struct {
	Title        *string
	Summary      *string
	Type         *string
	SendToAll    *bool
	SelectedCSOs any
	Attachment   *Upload
}

// Update 更新信函。
// 新收件列表与已存状态合并：保留的 id 继承已读状态，移除的 id 连同状态消失。
// 新附件先落盘，写库成功后再删除旧文件。
func (s *LetterService) Update(ctx context.Context, id int64, input UpdateLetterInput) (*domain.LetterWithReads, error) {
	// 与 MarkRead 同一把锁，避免改收件列表时覆盖并发写入的已读状态
	lock := s.letterLock(id)
	lock.Lock()
	defer lock.Unlock()

	letter, err := s.repo.GetLetter(id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		if *input.Title == "" {
			return nil, ErrLetterTitleRequired
		}
		letter.Title = *input.Title
	}
	if input.Summary != nil {
		letter.Summary = *input.Summary
	}
	if input.Type != nil {
		if !domain.IsValidLetterType(*input.Type) {
			return nil, ErrInvalidLetterType
		}
		letter.Type = *input.Type
	}
	if input.SendToAll != nil {
		letter.SendToAll = *input.SendToAll
	}
	if err := validateUpload(input.Attachment, s.uploadCfg); err != nil {
		return nil, err
	}

	previous, ok := domain.DecodeRecipients(letter.SelectedCSOs)
	if !ok {
		s.warnUndecodable(letter)
	}

	recipients := previous
	if input.SelectedCSOs != nil {
		next := domain.NormalizeRecipients(input.SelectedCSOs)
		recipients = domain.MergeRecipients(next, previous)
	}
	if letter.SendToAll {
		recipients = nil
	}

	encoded, err := domain.EncodeRecipients(recipients)
	if err != nil {
		return nil, err
	}
	letter.SelectedCSOs = encoded

	oldPath := ""
	if letter.AttachmentPath != nil {
		oldPath = *letter.AttachmentPath
	}

	newPath := ""
	if input.Attachment != nil {
		newPath, err = s.files.Save(filesystem.CategoryLetters, input.Attachment.Filename, input.Attachment.Data)
		if err != nil {
			return nil, err
		}
		letter.AttachmentPath = &newPath
		letter.AttachmentName = &input.Attachment.Filename
		letter.Mimetype = &input.Attachment.Mimetype
	}

	if err := s.repo.UpdateLetter(letter); err != nil {
		if newPath != "" {
			if cleanupErr := s.files.Delete(newPath); cleanupErr != nil {
				s.log.Warn("failed to clean up orphan attachment",
					zap.String("path", newPath), zap.Error(cleanupErr))
			}
		}
		return nil, err
	}

	// 写库成功后再删旧文件，避免更新失败时附件丢失
	if newPath != "" && oldPath != "" {
		if err := s.files.Delete(oldPath); err != nil {
			s.log.Warn("failed to delete replaced attachment",
				zap.String("path", oldPath), zap.Error(err))
		}
	}

	s.invalidateUnreadCounts(ctx, letter, recipients)

	s.log.Info("letter updated", zap.Int64("id", letter.ID))
	return s.withReads(letter), nil
}

// Delete 删除信函。
// 先删数据库行，成功后再删附件文件；文件删除失败只记日志，
// 数据库此时已是事实来源。
func (s *LetterService) Delete(ctx context.Context, id int64) error {
	lock := s.letterLock(id)
	lock.Lock()
	defer lock.Unlock()

	letter, err := s.repo.GetLetter(id)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteLetter(id); err != nil {
		return err
	}

	// 信函已删，释放对应的锁条目
	s.locks.Delete(id)

	if letter.AttachmentPath != nil {
		if err := s.files.Delete(*letter.AttachmentPath); err != nil {
			s.log.Warn("failed to delete letter attachment",
				zap.Int64("id", id), zap.String("path", *letter.AttachmentPath), zap.Error(err))
		}
	}

	recipients, _ := domain.DecodeRecipients(letter.SelectedCSOs)
	s.invalidateUnreadCounts(ctx, letter, recipients)

	s.log.Info("letter deleted", zap.Int64("id", id))
	return nil
}

// ListForCSO 返回某组织视角的信函列表：广播信函加定向给它的信函。
// 广播信函默认不跟踪已读，isRead 恒为 false。
func (s *LetterService) ListForCSO(ctx context.Context, csoID int64) ([]domain.CSOLetterView, error) {
	candidates, err := s.repo.ListLettersForCSO(csoID)
	if err != nil {
		return nil, err
	}

	views := make([]domain.CSOLetterView, 0, len(candidates))
	for i := range candidates {
		letter := &candidates[i]
		view := domain.CSOLetterView{Letter: *letter}

		if letter.SendToAll {
			if s.letterCfg.TrackBroadcastReads {
				if entry := s.findRecipient(letter, csoID); entry != nil {
					view.IsRead = entry.Read
					view.ReadAt = entry.ReadAt
				}
			}
			views = append(views, view)
			continue
		}

		// 预筛选允许误报，解码确认归属
		entry := s.findRecipient(letter, csoID)
		if entry == nil {
			continue
		}
		view.IsRead = entry.Read
		view.ReadAt = entry.ReadAt
		views = append(views, view)
	}
	return views, nil
}

// MarkReadResult 返回标记已读后的最新状态
type MarkReadResult struct {
	LetterID int64              `json:"letterId"`
	CSOID    int64              `json:"csoId"`
	IsRead   bool               `json:"isRead"`
	ReadAt   *time.Time         `json:"readAt,omitempty"`
	Summary  domain.ReadSummary `json:"summary"`
}

// MarkRead 把某组织对某信函标记为已读。
//
// 幂等：重复标记保持首次的 read_at。组织不在收件列表时补一条已读记录；
// 存储的列表损坏到无法修复时，重建为仅含该组织的已读单条。
func (s *LetterService) MarkRead(ctx context.Context, letterID, csoID int64) (*MarkReadResult, error) {
	lock := s.letterLock(letterID)
	lock.Lock()
	defer lock.Unlock()

	letter, err := s.repo.GetLetter(letterID)
	if err != nil {
		return nil, err
	}

	// 广播信函默认不跟踪已读：标记成功但不改写收件列表
	if letter.SendToAll && !s.letterCfg.TrackBroadcastReads {
		recipients, _ := domain.DecodeRecipients(letter.SelectedCSOs)
		return &MarkReadResult{
			LetterID: letterID,
			CSOID:    csoID,
			IsRead:   true,
			Summary:  domain.Summarize(recipients),
		}, nil
	}

	recipients, ok := domain.DecodeRecipients(letter.SelectedCSOs)
	if !ok {
		s.warnUndecodable(letter)
		recipients = nil
	}

	now := time.Now()
	found := false
	for i := range recipients {
		if recipients[i].ID != csoID {
			continue
		}
		found = true
		if !recipients[i].Read {
			recipients[i].Read = true
			recipients[i].ReadAt = &now
		}
		break
	}
	if !found {
		recipients = append(recipients, domain.RecipientState{ID: csoID, Read: true, ReadAt: &now})
	}

	encoded, err := domain.EncodeRecipients(recipients)
	if err != nil {
		return nil, err
	}
	letter.SelectedCSOs = encoded

	if err := s.repo.UpdateLetter(letter); err != nil {
		return nil, err
	}

	monitoring.LettersMarkedRead.Inc()
	if s.cache != nil {
		if err := s.cache.InvalidateUnreadCount(ctx, csoID); err != nil {
			s.log.Warn("failed to invalidate unread cache", zap.Int64("cso_id", csoID), zap.Error(err))
		}
	}
	if s.events != nil {
		s.events.PublishLetterRead(letterID, csoID)
	}

	entry := s.findRecipient(letter, csoID)
	result := &MarkReadResult{
		LetterID: letterID,
		CSOID:    csoID,
		IsRead:   true,
		Summary:  domain.Summarize(recipients),
	}
	if entry != nil {
		result.ReadAt = entry.ReadAt
	}
	return result, nil
}

// UnreadCount 统计某组织的未读定向信函数量。
// 广播信函不参与统计。配置了 Redis 时走旁路缓存。
func (s *LetterService) UnreadCount(ctx context.Context, csoID int64) (int, error) {
	if s.cache != nil {
		if count, err := s.cache.GetUnreadCount(ctx, csoID); err == nil {
			return count, nil
		} else if !errors.Is(err, redis.ErrCacheMiss) {
			s.log.Warn("unread cache read failed", zap.Int64("cso_id", csoID), zap.Error(err))
		}
	}

	candidates, err := s.repo.ListTargetedLetters(csoID)
	if err != nil {
		return 0, err
	}

	count := 0
	for i := range candidates {
		entry := s.findRecipient(&candidates[i], csoID)
		if entry != nil && !entry.Read {
			count++
		}
	}

	if s.cache != nil {
		if err := s.cache.SetUnreadCount(ctx, csoID, count); err != nil {
			s.log.Warn("unread cache write failed", zap.Int64("cso_id", csoID), zap.Error(err))
		}
	}
	return count, nil
}

// withReads 组装管理端视图，解码失败按空收件列表处理
func (s *LetterService) withReads(letter *domain.Letter) *domain.LetterWithReads {
	recipients, ok := domain.DecodeRecipients(letter.SelectedCSOs)
	if !ok {
		s.warnUndecodable(letter)
	}
	if recipients == nil {
		recipients = []domain.RecipientState{}
	}
	return &domain.LetterWithReads{
		Letter:      *letter,
		Recipients:  recipients,
		ReadSummary: domain.Summarize(recipients),
	}
}

func (s *LetterService) findRecipient(letter *domain.Letter, csoID int64) *domain.RecipientState {
	recipients, _ := domain.DecodeRecipients(letter.SelectedCSOs)
	for i := range recipients {
		if recipients[i].ID == csoID {
			return &recipients[i]
		}
	}
	return nil
}

func (s *LetterService) letterLock(letterID int64) *sync.Mutex {
	lock, _ := s.locks.LoadOrStore(letterID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

func (s *LetterService) warnUndecodable(letter *domain.Letter) {
	monitoring.RecipientDecodeFailures.Inc()
	s.log.Warn("selected_csos column is undecodable, treating as empty",
		zap.Int64("letter_id", letter.ID))
}

func (s *LetterService) invalidateUnreadCounts(ctx context.Context, letter *domain.Letter, recipients []domain.RecipientState) {
	if s.cache == nil {
		return
	}

	var err error
	if letter.SendToAll {
		err = s.cache.InvalidateAllUnreadCounts(ctx)
	} else {
		ids := make([]int64, 0, len(recipients))
		for _, r := range recipients {
			ids = append(ids, r.ID)
		}
		err = s.cache.InvalidateUnreadCount(ctx, ids...)
	}
	if err != nil {
		s.log.Warn("failed to invalidate unread cache", zap.Int64("letter_id", letter.ID), zap.Error(err))
	}
}

func (s *LetterService) publishCreated(letter *domain.Letter, recipients []domain.RecipientState) {
	if s.events == nil {
		return
	}
	ids := make([]int64, 0, len(recipients))
	for _, r := range recipients {
		ids = append(ids, r.ID)
	}
	s.events.PublishLetterCreated(letter, ids)
}

func (s *LetterService) notifyRecipients(letter *domain.Letter, recipients []domain.RecipientState) {
	if s.notifier == nil || !s.letterCfg.NotifyByMail {
		return
	}

	var csoList []domain.CSO
	var err error
	if letter.SendToAll {
		csoList, err = s.csos.ListCSOs()
	} else {
		ids := make([]int64, 0, len(recipients))
		for _, r := range recipients {
			ids = append(ids, r.ID)
		}
		csoList, err = s.csos.ListCSOsByIDs(ids)
	}
	if err != nil {
		s.log.Warn("failed to resolve letter recipients for mail notice",
			zap.Int64("letter_id", letter.ID), zap.Error(err))
		return
	}
	if len(csoList) == 0 {
		return
	}
	s.notifier.NotifyLetter(letter, csoList)
}
