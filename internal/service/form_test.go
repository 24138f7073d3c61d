package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"csoportal/backend/internal/config"
	"csoportal/backend/internal/storage"
	"csoportal/backend/internal/storage/filesystem"
	"csoportal/backend/internal/storage/memory"
)

const grantSchema = `{
	"type": "object",
	"required": ["orgName", "budget"],
	"properties": {
		"orgName": {"type": "string"},
		"budget": {"type": "number", "minimum": 0}
	}
}`

func newFormTestService(t *testing.T) (*FormService, *memory.Store) {
	t.Helper()

	store := memory.NewStore()
	files, err := filesystem.NewStore(t.TempDir())
	require.NoError(t, err)

	uploadCfg := config.UploadConfig{
		MaxSizeBytes: 5 * 1024 * 1024,
		AllowedExts:  []string{"pdf"},
	}
	return NewFormService(store, files, uploadCfg, zap.NewNop()), store
}

func TestCreateFormValidatesSchema(t *testing.T) {
	svc, _ := newFormTestService(t)

	form, err := svc.CreateForm(CreateFormInput{
		FormName:  "Grant application",
		Schema:    grantSchema,
		CreatedBy: 1,
	})
	require.NoError(t, err)
	assert.NotZero(t, form.ID)

	_, err = svc.CreateForm(CreateFormInput{
		FormName: "Broken",
		Schema:   `{"type": "not-a-type"}`,
	})
	assert.ErrorIs(t, err, ErrInvalidFormSchema)

	_, err = svc.CreateForm(CreateFormInput{
		FormName: "Not JSON",
		Schema:   `{{`,
	})
	assert.ErrorIs(t, err, ErrInvalidFormSchema)
}

func TestSubmitApplicationValidatesPayload(t *testing.T) {
	svc, _ := newFormTestService(t)

	form, err := svc.CreateForm(CreateFormInput{FormName: "Grant", Schema: grantSchema, CreatedBy: 1})
	require.NoError(t, err)

	app, err := svc.SubmitApplication(SubmitApplicationInput{
		FormID:  form.ID,
		CSOID:   5,
		Payload: `{"orgName": "Helping Hands", "budget": 12000}`,
	})
	require.NoError(t, err)
	assert.Equal(t, "pending", app.Status)

	_, err = svc.SubmitApplication(SubmitApplicationInput{
		FormID:  form.ID,
		CSOID:   9,
		Payload: `{"orgName": "Missing Budget"}`,
	})
	assert.ErrorIs(t, err, ErrInvalidApplicationPayload)

	// 同一组织对同一模板只能提交一次
	_, err = svc.SubmitApplication(SubmitApplicationInput{
		FormID:  form.ID,
		CSOID:   5,
		Payload: `{"orgName": "Helping Hands", "budget": 500}`,
	})
	assert.ErrorIs(t, err, storage.ErrApplicationExists)
}

func TestSubmitApplicationRejectsExpiredForm(t *testing.T) {
	svc, _ := newFormTestService(t)

	past := time.Now().Add(-time.Hour)
	form, err := svc.CreateForm(CreateFormInput{
		FormName:  "Closed round",
		Schema:    grantSchema,
		ExpiresAt: &past,
		CreatedBy: 1,
	})
	require.NoError(t, err)

	_, err = svc.SubmitApplication(SubmitApplicationInput{
		FormID:  form.ID,
		CSOID:   5,
		Payload: `{"orgName": "Late", "budget": 1}`,
	})
	assert.ErrorIs(t, err, ErrFormExpired)
}

func TestApplicationUpdatePermissionFlow(t *testing.T) {
	svc, _ := newFormTestService(t)

	form, err := svc.CreateForm(CreateFormInput{FormName: "Grant", Schema: grantSchema, CreatedBy: 1})
	require.NoError(t, err)

	app, err := svc.SubmitApplication(SubmitApplicationInput{
		FormID:  form.ID,
		CSOID:   5,
		Payload: `{"orgName": "Helping Hands", "budget": 12000}`,
	})
	require.NoError(t, err)

	// 默认锁定，不允许组织修改
	newPayload := `{"orgName": "Helping Hands", "budget": 9000}`
	_, err = svc.UpdateApplication(app.ID, UpdateApplicationInput{Payload: &newPayload})
	assert.ErrorIs(t, err, ErrApplicationLocked)

	// 管理端驳回并开放修改
	_, err = svc.SetApplicationStatus(app.ID, "rejected")
	require.NoError(t, err)
	_, err = svc.SetUpdatePermission(app.ID, true)
	require.NoError(t, err)

	updated, err := svc.UpdateApplication(app.ID, UpdateApplicationInput{Payload: &newPayload})
	require.NoError(t, err)
	assert.Equal(t, newPayload, updated.Payload)
	assert.False(t, updated.UpdatePermission)
	assert.Equal(t, "pending", updated.Status)

	_, err = svc.SetApplicationStatus(app.ID, "archived")
	assert.ErrorIs(t, err, ErrInvalidApplicationStatus)
}
