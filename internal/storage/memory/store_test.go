package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csoportal/backend/internal/domain"
	"csoportal/backend/internal/storage"
)

func strPtr(s string) *string { return &s }

func TestLetterCRUD(t *testing.T) {
	store := NewStore()

	letter := &domain.Letter{
		Title:        "Quarterly meeting",
		Summary:      "Agenda attached",
		Type:         domain.LetterTypeMeeting,
		SelectedCSOs: strPtr(`[{"id":5,"read":0,"read_at":null}]`),
	}
	require.NoError(t, store.SaveLetter(letter))
	assert.Equal(t, int64(1), letter.ID)

	got, err := store.GetLetter(letter.ID)
	require.NoError(t, err)
	assert.Equal(t, "Quarterly meeting", got.Title)

	got.Title = "Updated title"
	require.NoError(t, store.UpdateLetter(got))
	got, err = store.GetLetter(letter.ID)
	require.NoError(t, err)
	assert.Equal(t, "Updated title", got.Title)

	require.NoError(t, store.DeleteLetter(letter.ID))
	_, err = store.GetLetter(letter.ID)
	assert.ErrorIs(t, err, storage.ErrLetterNotFound)
	assert.ErrorIs(t, store.DeleteLetter(letter.ID), storage.ErrLetterNotFound)
}

func TestListLettersNewestFirst(t *testing.T) {
	store := NewStore()

	for _, title := range []string{"first", "second", "third"} {
		require.NoError(t, store.SaveLetter(&domain.Letter{
			Title: title,
			Type:  domain.LetterTypeAnnouncement,
		}))
	}

	letters, err := store.ListLetters()
	require.NoError(t, err)
	require.Len(t, letters, 3)
	assert.Equal(t, "third", letters[0].Title)
	assert.Equal(t, "first", letters[2].Title)
}

func TestListLettersForCSOCandidates(t *testing.T) {
	store := NewStore()

	broadcast := &domain.Letter{Title: "to all", Type: domain.LetterTypeAnnouncement, SendToAll: true}
	targeted := &domain.Letter{
		Title:        "to five",
		Type:         domain.LetterTypeMeeting,
		SelectedCSOs: strPtr(`[{"id":5,"read":0,"read_at":null}]`),
	}
	other := &domain.Letter{
		Title:        "to nine",
		Type:         domain.LetterTypeMeeting,
		SelectedCSOs: strPtr(`[{"id":9,"read":0,"read_at":null}]`),
	}
	for _, l := range []*domain.Letter{broadcast, targeted, other} {
		require.NoError(t, store.SaveLetter(l))
	}

	candidates, err := store.ListLettersForCSO(5)
	require.NoError(t, err)
	titles := make([]string, 0, len(candidates))
	for _, l := range candidates {
		titles = append(titles, l.Title)
	}
	assert.Contains(t, titles, "to all")
	assert.Contains(t, titles, "to five")
	assert.NotContains(t, titles, "to nine")

	onlyTargeted, err := store.ListTargetedLetters(5)
	require.NoError(t, err)
	require.Len(t, onlyTargeted, 1)
	assert.Equal(t, "to five", onlyTargeted[0].Title)
}

func TestStaffDuplicateContact(t *testing.T) {
	store := NewStore()

	first := &domain.Staff{Name: "A", Email: "a@office.org", Phone: "111", Password: "x"}
	require.NoError(t, store.CreateStaff(first))

	err := store.CreateStaff(&domain.Staff{Name: "B", Email: "a@office.org", Phone: "222", Password: "x"})
	assert.ErrorIs(t, err, storage.ErrStaffExists)

	err = store.CreateStaff(&domain.Staff{Name: "C", Email: "c@office.org", Phone: "111", Password: "x"})
	assert.ErrorIs(t, err, storage.ErrStaffExists)

	found, err := store.FindStaffByContact("a@office.org", "")
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)
}

func TestApplicationUniquePerFormAndCSO(t *testing.T) {
	store := NewStore()

	form := &domain.Form{FormName: "Grant 2026", Schema: `{"type":"object"}`}
	require.NoError(t, store.CreateForm(form))

	app := &domain.Application{FormID: form.ID, CSOID: 5, Payload: `{}`}
	require.NoError(t, store.CreateApplication(app))

	dup := &domain.Application{FormID: form.ID, CSOID: 5, Payload: `{}`}
	assert.ErrorIs(t, store.CreateApplication(dup), storage.ErrApplicationExists)

	// 删除模板级联删除申请
	require.NoError(t, store.DeleteForm(form.ID))
	_, err := store.GetApplication(app.ID)
	assert.ErrorIs(t, err, storage.ErrApplicationNotFound)
}

func TestAboutSingletonUpsert(t *testing.T) {
	store := NewStore()

	_, err := store.GetAbout()
	assert.ErrorIs(t, err, storage.ErrAboutNotFound)

	require.NoError(t, store.SaveAbout(&domain.About{Introduction: "v1", Mission: "m", Vision: "v", Purpose: "p", CoreValues: `["a"]`}))
	first, err := store.GetAbout()
	require.NoError(t, err)

	require.NoError(t, store.SaveAbout(&domain.About{Introduction: "v2", Mission: "m", Vision: "v", Purpose: "p", CoreValues: `["a"]`}))
	second, err := store.GetAbout()
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "singleton keeps its id across saves")
	assert.Equal(t, "v2", second.Introduction)
}

func TestNewsCommentsCascade(t *testing.T) {
	store := NewStore()

	news := &domain.News{Title: "t", Description: "d", Author: "office"}
	require.NoError(t, store.CreateNews(news))

	comment := &domain.NewsComment{NewsID: news.ID, Name: "visitor", Content: "nice"}
	require.NoError(t, store.CreateNewsComment(comment))

	orphan := &domain.NewsComment{NewsID: 999, Name: "x", Content: "y"}
	assert.ErrorIs(t, store.CreateNewsComment(orphan), storage.ErrNewsNotFound)

	require.NoError(t, store.DeleteNews(news.ID))
	_, err := store.GetNewsComment(comment.ID)
	assert.ErrorIs(t, err, storage.ErrCommentNotFound)
}
