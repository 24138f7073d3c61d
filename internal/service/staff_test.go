package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"csoportal/backend/internal/auth"
	"csoportal/backend/internal/auth/jwt"
	"csoportal/backend/internal/config"
	"csoportal/backend/internal/domain"
	"csoportal/backend/internal/storage"
	"csoportal/backend/internal/storage/filesystem"
	"csoportal/backend/internal/storage/memory"
)

func newStaffTestService(t *testing.T) (*StaffService, *memory.Store) {
	t.Helper()

	store := memory.NewStore()
	files, err := filesystem.NewStore(t.TempDir())
	require.NoError(t, err)

	tokens := jwt.NewManager("test-secret-that-is-long-enough-0001", "csoportal-test", 15*time.Minute, 24*time.Hour)
	uploadCfg := config.UploadConfig{
		MaxSizeBytes: 5 * 1024 * 1024,
		AllowedExts:  []string{"jpg", "png"},
	}
	return NewStaffService(store, store, files, tokens, uploadCfg, zap.NewNop()), store
}

func TestRegisterStaffAssignsSequentialIDs(t *testing.T) {
	svc, _ := newStaffTestService(t)

	first, err := svc.Register(RegisterStaffInput{
		Name:     "Amina Yusuf",
		Email:    "amina@example.org",
		Phone:    "0911000001",
		Password: "long-enough-password",
	})
	require.NoError(t, err)
	assert.Equal(t, "Staff-0001", first.RegistrationID)
	assert.Equal(t, domain.RoleStaff, first.Role)
	assert.NotEqual(t, "long-enough-password", first.Password)

	second, err := svc.Register(RegisterStaffInput{
		Name:     "Daniel Bekele",
		Email:    "daniel@example.org",
		Phone:    "0911000002",
		Password: "long-enough-password",
		Role:     domain.RoleAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, "Staff-0002", second.RegistrationID)
	assert.Equal(t, domain.RoleAdmin, second.Role)
}

func TestRegisterStaffRejectsDuplicateContact(t *testing.T) {
	svc, store := newStaffTestService(t)

	_, err := svc.Register(RegisterStaffInput{
		Name:     "Amina Yusuf",
		Email:    "amina@example.org",
		Phone:    "0911000001",
		Password: "long-enough-password",
	})
	require.NoError(t, err)

	_, err = svc.Register(RegisterStaffInput{
		Name:     "Impostor",
		Email:    "amina@example.org",
		Phone:    "0911999999",
		Password: "long-enough-password",
	})
	assert.ErrorIs(t, err, storage.ErrStaffExists)

	// 联系方式也不能与组织名录冲突
	require.NoError(t, store.CreateCSO(&domain.CSO{
		Name:  "Helping Hands",
		Email: "org@example.org",
		Phone: "0911555555",
	}))
	_, err = svc.Register(RegisterStaffInput{
		Name:     "Someone",
		Email:    "org@example.org",
		Phone:    "0911777777",
		Password: "long-enough-password",
	})
	assert.ErrorIs(t, err, storage.ErrStaffExists)
}

func TestRegisterStaffValidatesInput(t *testing.T) {
	svc, _ := newStaffTestService(t)

	_, err := svc.Register(RegisterStaffInput{
		Name:     "No Email",
		Email:    "not-an-email",
		Password: "long-enough-password",
	})
	assert.ErrorIs(t, err, auth.ErrInvalidEmail)

	_, err = svc.Register(RegisterStaffInput{
		Name:     "Weak Password",
		Email:    "weak@example.org",
		Password: "short",
	})
	assert.Error(t, err)

	_, err = svc.Register(RegisterStaffInput{
		Name:     "Bad Role",
		Email:    "role@example.org",
		Password: "long-enough-password",
		Role:     "overlord",
	})
	assert.ErrorIs(t, err, ErrInvalidStaffRole)
}

func TestStaffLogin(t *testing.T) {
	svc, _ := newStaffTestService(t)

	_, err := svc.Register(RegisterStaffInput{
		Name:     "Amina Yusuf",
		Email:    "amina@example.org",
		Phone:    "0911000001",
		Password: "long-enough-password",
		Role:     domain.RoleAdmin,
	})
	require.NoError(t, err)

	staff, pair, err := svc.Login("Amina@Example.org", "long-enough-password")
	require.NoError(t, err)
	assert.Equal(t, "amina@example.org", staff.Email)
	require.NotNil(t, pair)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	_, _, err = svc.Login("amina@example.org", "wrong-password")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, _, err = svc.Login("nobody@example.org", "long-enough-password")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}
