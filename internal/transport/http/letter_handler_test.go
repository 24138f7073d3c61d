package httptransport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	jwtpkg "csoportal/backend/internal/auth/jwt"
	"csoportal/backend/internal/config"
	"csoportal/backend/internal/domain"
	"csoportal/backend/internal/health"
	"csoportal/backend/internal/service"
	"csoportal/backend/internal/storage/filesystem"
	"csoportal/backend/internal/storage/memory"
)

func newTestRouter(t *testing.T) (*gin.Engine, *memory.Store, *jwtpkg.Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	files, err := filesystem.NewStore(t.TempDir())
	require.NoError(t, err)

	cfg := &config.Config{
		Upload: config.UploadConfig{
			PublicDir:    t.TempDir(),
			MaxSizeBytes: 5 * 1024 * 1024,
			AllowedExts:  []string{"pdf", "jpg", "png"},
		},
		CORS: config.CORSConfig{AllowedOrigins: []string{"*"}},
	}

	log := zap.NewNop()
	tokens := jwtpkg.NewManager("test-secret-at-least-32-characters!!", "csoportal", 15*time.Minute, 24*time.Hour)

	letterService := service.NewLetterService(store, store, files, cfg.Upload, config.LetterConfig{}, log)
	staffService := service.NewStaffService(store, store, files, tokens, cfg.Upload, log)
	csoService := service.NewCSOService(store, store, log)
	beneficiaryService := service.NewBeneficiaryService(store, files, cfg.Upload, log)
	formService := service.NewFormService(store, files, cfg.Upload, log)
	newsService := service.NewNewsService(store, store, files, cfg.Upload, log)
	contentService := service.NewContentService(store, files, cfg.Upload, log)

	router := NewRouter(RouterDependencies{
		Config:             cfg,
		LetterService:      letterService,
		StaffService:       staffService,
		CSOService:         csoService,
		BeneficiaryService: beneficiaryService,
		FormService:        formService,
		NewsService:        newsService,
		ContentService:     contentService,
		JWTManager:         tokens,
		HealthChecker:      health.NewHealthChecker(store, nil, log),
		Logger:             log,
	})
	return router, store, tokens
}

func adminToken(t *testing.T, tokens *jwtpkg.Manager) string {
	t.Helper()
	pair, err := tokens.GenerateTokenPair(1, "admin@csoportal.local", domain.RoleAdmin)
	require.NoError(t, err)
	return pair.AccessToken
}

func submitLetter(t *testing.T, router *gin.Engine, token string, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/letters/submit", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestSubmitLetterRequiresAuth(t *testing.T) {
	router, _, _ := newTestRouter(t)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	require.NoError(t, writer.WriteField("title", "Quarterly meeting"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/letters/submit", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
}

func TestLetterReadFlow(t *testing.T) {
	router, store, tokens := newTestRouter(t)
	token := adminToken(t, tokens)

	require.NoError(t, store.CreateCSO(&domain.CSO{Name: "Hope Org", Email: "hope@example.org"}))
	require.NoError(t, store.CreateCSO(&domain.CSO{Name: "Unity Org", Email: "unity@example.org"}))

	rec := submitLetter(t, router, token, map[string]string{
		"title":        "Quarterly meeting",
		"type":         domain.LetterTypeMeeting,
		"selectedCsos": "[1,2]",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		Success bool `json:"success"`
		Data    struct {
			ID int64 `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.True(t, created.Success)
	require.NotZero(t, created.Data.ID)

	// 组织 1 标记已读
	markURL := fmt.Sprintf("/letters/%d/mark-read/1", created.Data.ID)
	req := httptest.NewRequest(http.MethodPut, markURL, nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// 组织 2 仍有一封未读
	req = httptest.NewRequest(http.MethodGet, "/letters/cso/2/unread-count", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var unread struct {
		Success bool `json:"success"`
		Data    struct {
			CSOID       int64 `json:"csoId"`
			UnreadCount int64 `json:"unreadCount"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &unread))
	assert.True(t, unread.Success)
	assert.Equal(t, int64(2), unread.Data.CSOID)
	assert.Equal(t, int64(1), unread.Data.UnreadCount)

	// 组织 1 未读归零
	req = httptest.NewRequest(http.MethodGet, "/letters/cso/1/unread-count", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &unread))
	assert.Equal(t, int64(0), unread.Data.UnreadCount)
}

func TestListForCSOMarksReadState(t *testing.T) {
	router, store, tokens := newTestRouter(t)
	token := adminToken(t, tokens)

	require.NoError(t, store.CreateCSO(&domain.CSO{Name: "Hope Org", Email: "hope@example.org"}))

	rec := submitLetter(t, router, token, map[string]string{
		"title":     "Annual notice",
		"type":      domain.LetterTypeAnnouncement,
		"sendToAll": "true",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/letters/cso/1", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var list struct {
		Success bool `json:"success"`
		Data    []struct {
			Title  string `json:"title"`
			IsRead bool   `json:"isRead"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Data, 1)
	assert.Equal(t, "Annual notice", list.Data[0].Title)
	assert.False(t, list.Data[0].IsRead)
}

func TestUnreadCountRejectsBadID(t *testing.T) {
	router, _, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/letters/cso/abc/unread-count", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
