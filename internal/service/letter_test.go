package service

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"csoportal/backend/internal/config"
	"csoportal/backend/internal/domain"
	"csoportal/backend/internal/security"
	"csoportal/backend/internal/storage/filesystem"
	"csoportal/backend/internal/storage/memory"
)

func newLetterTestService(t *testing.T) (*LetterService, *memory.Store, *filesystem.Store) {
	t.Helper()

	store := memory.NewStore()
	files, err := filesystem.NewStore(t.TempDir())
	require.NoError(t, err)

	uploadCfg := config.UploadConfig{
		MaxSizeBytes: 5 * 1024 * 1024,
		AllowedExts:  []string{"pdf", "doc", "docx", "jpg", "jpeg", "png"},
	}
	svc := NewLetterService(store, store, files, uploadCfg, config.LetterConfig{}, zap.NewNop())
	return svc, store, files
}

func TestCreateLetterWithRecipients(t *testing.T) {
	svc, store, _ := newLetterTestService(t)
	ctx := context.Background()

	view, err := svc.Create(ctx, CreateLetterInput{
		Title:        "Quarterly coordination meeting",
		Summary:      "Agenda attached",
		Type:         domain.LetterTypeMeeting,
		SelectedCSOs: []int64{5, 9},
		CreatedBy:    1,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, view.TotalCount)
	assert.Equal(t, 0, view.ReadCount)
	assert.Equal(t, 2, view.UnreadCount)
	for _, r := range view.Recipients {
		assert.False(t, r.Read)
		assert.Nil(t, r.ReadAt)
	}

	// 落库编码为规范 JSON
	stored, err := store.GetLetter(view.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.SelectedCSOs)
	assert.JSONEq(t,
		`[{"id":5,"read":0,"read_at":null},{"id":9,"read":0,"read_at":null}]`,
		*stored.SelectedCSOs)
}

func TestCreateLetterRejectsInvalidType(t *testing.T) {
	svc, _, _ := newLetterTestService(t)

	_, err := svc.Create(context.Background(), CreateLetterInput{
		Title: "x",
		Type:  "Gossip",
	})
	assert.ErrorIs(t, err, ErrInvalidLetterType)

	_, err = svc.Create(context.Background(), CreateLetterInput{Type: domain.LetterTypeWarning})
	assert.ErrorIs(t, err, ErrLetterTitleRequired)
}

func TestMarkReadIsIdempotent(t *testing.T) {
	svc, _, _ := newLetterTestService(t)
	ctx := context.Background()

	view, err := svc.Create(ctx, CreateLetterInput{
		Title:        "Notice",
		Type:         domain.LetterTypeAnnouncement,
		SelectedCSOs: []int64{5, 9},
		CreatedBy:    1,
	})
	require.NoError(t, err)

	first, err := svc.MarkRead(ctx, view.ID, 5)
	require.NoError(t, err)
	assert.True(t, first.IsRead)
	require.NotNil(t, first.ReadAt)
	assert.Equal(t, 1, first.Summary.ReadCount)
	assert.Equal(t, 1, first.Summary.UnreadCount)

	// 重复标记保持首次 read_at
	second, err := svc.MarkRead(ctx, view.ID, 5)
	require.NoError(t, err)
	require.NotNil(t, second.ReadAt)
	assert.Equal(t, first.ReadAt.Unix(), second.ReadAt.Unix())
	assert.Equal(t, 1, second.Summary.ReadCount)
}

func TestMarkReadAppendsMissingRecipient(t *testing.T) {
	svc, _, _ := newLetterTestService(t)
	ctx := context.Background()

	view, err := svc.Create(ctx, CreateLetterInput{
		Title:        "Notice",
		Type:         domain.LetterTypeAnnouncement,
		SelectedCSOs: []int64{5},
		CreatedBy:    1,
	})
	require.NoError(t, err)

	result, err := svc.MarkRead(ctx, view.ID, 99)
	require.NoError(t, err)
	assert.True(t, result.IsRead)
	assert.Equal(t, 2, result.Summary.TotalCount)
	assert.Equal(t, 1, result.Summary.ReadCount)
}

func TestMarkReadRebuildsCorruptedColumn(t *testing.T) {
	svc, store, _ := newLetterTestService(t)
	ctx := context.Background()

	view, err := svc.Create(ctx, CreateLetterInput{
		Title:        "Notice",
		Type:         domain.LetterTypeWarning,
		SelectedCSOs: []int64{5, 9},
		CreatedBy:    1,
	})
	require.NoError(t, err)

	// 模拟历史脏数据
	letter, err := store.GetLetter(view.ID)
	require.NoError(t, err)
	garbage := "total garbage"
	letter.SelectedCSOs = &garbage
	require.NoError(t, store.UpdateLetter(letter))

	result, err := svc.MarkRead(ctx, view.ID, 5)
	require.NoError(t, err)
	assert.True(t, result.IsRead)
	assert.Equal(t, 1, result.Summary.TotalCount)
	assert.Equal(t, 1, result.Summary.ReadCount)
}

func TestUpdateRecipientsPreservesReadState(t *testing.T) {
	svc, _, _ := newLetterTestService(t)
	ctx := context.Background()

	view, err := svc.Create(ctx, CreateLetterInput{
		Title:        "Notice",
		Type:         domain.LetterTypeAnnouncement,
		SelectedCSOs: []int64{5, 9},
		CreatedBy:    1,
	})
	require.NoError(t, err)

	_, err = svc.MarkRead(ctx, view.ID, 9)
	require.NoError(t, err)

	updated, err := svc.Update(ctx, view.ID, UpdateLetterInput{
		SelectedCSOs: []int64{9, 12},
	})
	require.NoError(t, err)

	require.Len(t, updated.Recipients, 2)
	byID := map[int64]domain.RecipientState{}
	for _, r := range updated.Recipients {
		byID[r.ID] = r
	}
	assert.NotContains(t, byID, int64(5))
	assert.True(t, byID[9].Read)
	assert.NotNil(t, byID[9].ReadAt)
	assert.False(t, byID[12].Read)
	assert.Equal(t, 1, updated.ReadCount)
}

func TestListForCSOFiltersTargetedLetters(t *testing.T) {
	svc, _, _ := newLetterTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateLetterInput{
		Title:     "Broadcast",
		Type:      domain.LetterTypeAnnouncement,
		SendToAll: true,
		CreatedBy: 1,
	})
	require.NoError(t, err)

	targeted, err := svc.Create(ctx, CreateLetterInput{
		Title:        "Targeted",
		Type:         domain.LetterTypeMeeting,
		SelectedCSOs: []int64{5},
		CreatedBy:    1,
	})
	require.NoError(t, err)

	_, err = svc.MarkRead(ctx, targeted.ID, 5)
	require.NoError(t, err)

	views, err := svc.ListForCSO(ctx, 5)
	require.NoError(t, err)
	require.Len(t, views, 2)
	for _, v := range views {
		if v.SendToAll {
			// 广播信函不跟踪已读
			assert.False(t, v.IsRead)
		} else {
			assert.True(t, v.IsRead)
			assert.NotNil(t, v.ReadAt)
		}
	}

	// 不在收件列表的组织只看到广播
	views, err = svc.ListForCSO(ctx, 7)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.True(t, views[0].SendToAll)
}

func TestMarkReadBroadcastLeavesColumnUntouched(t *testing.T) {
	svc, store, _ := newLetterTestService(t)
	ctx := context.Background()

	view, err := svc.Create(ctx, CreateLetterInput{
		Title:     "Annual notice",
		Type:      domain.LetterTypeAnnouncement,
		SendToAll: true,
		CreatedBy: 1,
	})
	require.NoError(t, err)

	result, err := svc.MarkRead(ctx, view.ID, 5)
	require.NoError(t, err)
	assert.True(t, result.IsRead)
	assert.Equal(t, 0, result.Summary.TotalCount)

	stored, err := store.GetLetter(view.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.SelectedCSOs)
}

func TestMarkReadBroadcastTrackedWhenEnabled(t *testing.T) {
	store := memory.NewStore()
	files, err := filesystem.NewStore(t.TempDir())
	require.NoError(t, err)

	uploadCfg := config.UploadConfig{
		MaxSizeBytes: 5 * 1024 * 1024,
		AllowedExts:  []string{"pdf"},
	}
	letterCfg := config.LetterConfig{TrackBroadcastReads: true}
	svc := NewLetterService(store, store, files, uploadCfg, letterCfg, zap.NewNop())
	ctx := context.Background()

	view, err := svc.Create(ctx, CreateLetterInput{
		Title:     "Annual notice",
		Type:      domain.LetterTypeAnnouncement,
		SendToAll: true,
		CreatedBy: 1,
	})
	require.NoError(t, err)

	result, err := svc.MarkRead(ctx, view.ID, 5)
	require.NoError(t, err)
	assert.True(t, result.IsRead)
	assert.Equal(t, 1, result.Summary.ReadCount)

	stored, err := store.GetLetter(view.ID)
	require.NoError(t, err)
	recipients, ok := domain.DecodeRecipients(stored.SelectedCSOs)
	require.True(t, ok)
	require.Len(t, recipients, 1)
	assert.Equal(t, int64(5), recipients[0].ID)
	assert.True(t, recipients[0].Read)
}

func TestConcurrentUpdateKeepsReadReceipts(t *testing.T) {
	svc, store, _ := newLetterTestService(t)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		view, err := svc.Create(ctx, CreateLetterInput{
			Title:        "Meeting",
			Type:         domain.LetterTypeMeeting,
			SelectedCSOs: []int64{5, 9},
			CreatedBy:    1,
		})
		require.NoError(t, err)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, markErr := svc.MarkRead(ctx, view.ID, 5)
			assert.NoError(t, markErr)
		}()
		go func() {
			defer wg.Done()
			_, updateErr := svc.Update(ctx, view.ID, UpdateLetterInput{SelectedCSOs: "[5,9]"})
			assert.NoError(t, updateErr)
		}()
		wg.Wait()

		// 无论哪边先写，组织 5 的回执都不能丢
		stored, err := store.GetLetter(view.ID)
		require.NoError(t, err)
		recipients, ok := domain.DecodeRecipients(stored.SelectedCSOs)
		require.True(t, ok)
		for _, r := range recipients {
			if r.ID == 5 {
				assert.True(t, r.Read)
			}
		}
	}
}

func TestDeleteReleasesLetterLock(t *testing.T) {
	svc, _, _ := newLetterTestService(t)
	ctx := context.Background()

	view, err := svc.Create(ctx, CreateLetterInput{
		Title:        "Meeting",
		Type:         domain.LetterTypeMeeting,
		SelectedCSOs: []int64{5},
		CreatedBy:    1,
	})
	require.NoError(t, err)

	_, err = svc.MarkRead(ctx, view.ID, 5)
	require.NoError(t, err)
	_, held := svc.locks.Load(view.ID)
	assert.True(t, held)

	require.NoError(t, svc.Delete(ctx, view.ID))
	_, held = svc.locks.Load(view.ID)
	assert.False(t, held)
}

func TestUnreadCountIgnoresBroadcasts(t *testing.T) {
	svc, _, _ := newLetterTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateLetterInput{
		Title:     "Broadcast",
		Type:      domain.LetterTypeAnnouncement,
		SendToAll: true,
		CreatedBy: 1,
	})
	require.NoError(t, err)

	first, err := svc.Create(ctx, CreateLetterInput{
		Title:        "One",
		Type:         domain.LetterTypeMeeting,
		SelectedCSOs: []int64{5, 9},
		CreatedBy:    1,
	})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateLetterInput{
		Title:        "Two",
		Type:         domain.LetterTypeWarning,
		SelectedCSOs: []int64{5},
		CreatedBy:    1,
	})
	require.NoError(t, err)

	count, err := svc.UnreadCount(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	_, err = svc.MarkRead(ctx, first.ID, 5)
	require.NoError(t, err)

	count, err = svc.UnreadCount(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = svc.UnreadCount(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestLetterAttachmentLifecycle(t *testing.T) {
	svc, _, files := newLetterTestService(t)
	ctx := context.Background()

	view, err := svc.Create(ctx, CreateLetterInput{
		Title:     "With attachment",
		Type:      domain.LetterTypeMeeting,
		SendToAll: true,
		CreatedBy: 1,
		Attachment: &Upload{
			Filename: "agenda.pdf",
			Mimetype: "application/pdf",
			Data:     []byte("%PDF-1.4 fake"),
		},
	})
	require.NoError(t, err)
	require.NotNil(t, view.AttachmentPath)
	assert.True(t, files.Exists(*view.AttachmentPath))

	abs, err := files.Resolve(*view.AttachmentPath)
	require.NoError(t, err)
	_, err = os.Stat(abs)
	require.NoError(t, err)
	assert.Equal(t, "letters", filepath.Base(filepath.Dir(abs)))

	require.NoError(t, svc.Delete(ctx, view.ID))
	assert.False(t, files.Exists(*view.AttachmentPath))
}

func TestLetterAttachmentValidation(t *testing.T) {
	svc, _, _ := newLetterTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateLetterInput{
		Title:     "Bad type",
		Type:      domain.LetterTypeMeeting,
		SendToAll: true,
		Attachment: &Upload{
			Filename: "malware.exe",
			Mimetype: "application/octet-stream",
			Data:     []byte("MZ"),
		},
	})
	assert.ErrorIs(t, err, ErrFileTypeNotAllowed)

	big := make([]byte, 6*1024*1024)
	_, err = svc.Create(ctx, CreateLetterInput{
		Title:     "Too big",
		Type:      domain.LetterTypeMeeting,
		SendToAll: true,
		Attachment: &Upload{
			Filename: "huge.pdf",
			Mimetype: "application/pdf",
			Data:     big,
		},
	})
	assert.ErrorIs(t, err, ErrFileTooLarge)

	// 白名单扩展名但内容是可执行文件
	_, err = svc.Create(ctx, CreateLetterInput{
		Title:     "Disguised executable",
		Type:      domain.LetterTypeMeeting,
		SendToAll: true,
		Attachment: &Upload{
			Filename: "report.pdf",
			Mimetype: "application/pdf",
			Data:     []byte{0x4D, 0x5A, 0x90, 0x00},
		},
	})
	assert.ErrorIs(t, err, security.ErrUnsafeUpload)
}
