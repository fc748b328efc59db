package routes

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/halcyonweb/mediakit/internal/auth"
	"github.com/halcyonweb/mediakit/internal/catalog"
	"github.com/halcyonweb/mediakit/internal/common"
	"github.com/halcyonweb/mediakit/internal/upload"
	"github.com/halcyonweb/mediakit/pkg/config"
	"github.com/halcyonweb/mediakit/pkg/types"
	"github.com/halcyonweb/mediakit/pkg/utils"
)

type testEnv struct {
	router    *gin.Engine
	db        *common.Database
	uploadCfg *config.UploadConfig
	token     string
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	wrapped := &common.Database{DB: db}
	require.NoError(t, wrapped.Migrate())

	hash, err := utils.HashPassword("hunter22", 4)
	require.NoError(t, err)
	admin := &types.User{Name: "Root", Email: "root@example.com", Password: hash, Role: "admin", IsActive: true}
	require.NoError(t, wrapped.Create(admin).Error)

	authCfg := &config.AuthConfig{JWTSecret: "test-secret", JWTExpiration: time.Hour, BCryptCost: 4}
	uploadCfg := &config.UploadConfig{
		TempDir:        filepath.Join(t.TempDir(), "chunks"),
		MediaRoot:      filepath.Join(t.TempDir(), "public"),
		ChunkSize:      1024 * 1024,
		MaxFileSize:    5 * 1024 * 1024,
		SessionTimeout: time.Hour,
		SweepInterval:  time.Hour,
		CompletionTTL:  5 * time.Minute,
	}

	users := catalog.NewUsers(catalog.NewGormUserSource(wrapped), 5*time.Minute)
	services := catalog.NewServices(catalog.NewGormServiceSource(wrapped), 5*time.Minute)
	gallery := catalog.NewGallery(filepath.Join(uploadCfg.MediaRoot, "images/Projects"), "/images/Projects/", time.Minute)
	authService := auth.NewService(wrapped, users, authCfg)

	uploadService, err := upload.NewService(uploadCfg)
	require.NoError(t, err)
	t.Cleanup(uploadService.Stop)

	router := NewRouter(authService, uploadService, services, gallery, uploadCfg)

	env := &testEnv{router: router, db: wrapped, uploadCfg: uploadCfg}
	env.token = env.login(t, "root@example.com", "hunter22")
	return env
}

func (e *testEnv) login(t *testing.T, email, password string) string {
	t.Helper()
	body, _ := json.Marshal(gin.H{"email": email, "password": password})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	e.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var token types.AuthToken
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &token))
	return token.Token
}

func (e *testEnv) do(t *testing.T, method, path string, payload any, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func smallPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 80, 60))
	for y := 0; y < 60; y++ {
		for x := 0; x < 80; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: uint8(x), B: uint8(y), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestUploadRoutes_RequireAuth(t *testing.T) {
	env := setupEnv(t)

	w := env.do(t, http.MethodGet, "/api/uploads/id", nil, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUploadFlow(t *testing.T) {
	env := setupEnv(t)

	// issue an upload id
	w := env.do(t, http.MethodGet, "/api/uploads/id", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	var idResp struct {
		UploadID string `json:"uploadId"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &idResp))
	require.NotEmpty(t, idResp.UploadID)

	// send the image in two chunks, out of order
	data := smallPNG(t)
	half := len(data) / 2
	chunks := [][]byte{data[:half], data[half:]}

	for _, idx := range []int{1, 0} {
		payload := gin.H{
			"uploadId":    idResp.UploadID,
			"chunkIndex":  idx,
			"totalChunks": 2,
			"fileName":    "photo.png",
			"fileSize":    len(data),
			"chunkData":   base64.StdEncoding.EncodeToString(chunks[idx]),
		}
		w = env.do(t, http.MethodPost, "/api/uploads/chunk", payload, true)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	var progress struct {
		Received   int  `json:"received"`
		IsComplete bool `json:"isComplete"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &progress))
	assert.Equal(t, 2, progress.Received)
	assert.True(t, progress.IsComplete)

	// complete as an avatar upload
	w = env.do(t, http.MethodPost, "/api/uploads/complete", gin.H{
		"uploadId": idResp.UploadID,
		"fileName": "photo.png",
		"type":     "avatar",
	}, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result upload.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.Success)
	assert.Contains(t, result.URL, "/profiles/profile_")

	_, err := os.Stat(filepath.Join(env.uploadCfg.MediaRoot, "profiles", result.Filename))
	assert.NoError(t, err, "transcoded asset must exist on disk")

	// a retried complete returns the identical payload
	w2 := env.do(t, http.MethodPost, "/api/uploads/complete", gin.H{
		"uploadId": idResp.UploadID,
		"fileName": "photo.png",
		"type":     "avatar",
	}, true)
	require.Equal(t, http.StatusOK, w2.Code)
	assert.JSONEq(t, w.Body.String(), w2.Body.String())
}

func TestUploadFlow_RejectsBadRequests(t *testing.T) {
	env := setupEnv(t)

	// oversized declared file
	w := env.do(t, http.MethodPost, "/api/uploads/chunk", gin.H{
		"uploadId":    "big",
		"chunkIndex":  0,
		"totalChunks": 1,
		"fileName":    "huge.png",
		"fileSize":    10 * 1024 * 1024,
		"chunkData":   base64.StdEncoding.EncodeToString([]byte("x")),
	}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// chunk count alone would let the fragments exceed the file size limit
	w = env.do(t, http.MethodPost, "/api/uploads/chunk", gin.H{
		"uploadId":    "shredded",
		"chunkIndex":  0,
		"totalChunks": 100,
		"fileName":    "huge.png",
		"fileSize":    1024,
		"chunkData":   base64.StdEncoding.EncodeToString([]byte("x")),
	}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// invalid base64
	w = env.do(t, http.MethodPost, "/api/uploads/chunk", gin.H{
		"uploadId":    "bad64",
		"chunkIndex":  0,
		"totalChunks": 1,
		"fileName":    "a.png",
		"fileSize":    10,
		"chunkData":   "!!!not-base64!!!",
	}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// completing an unknown upload
	w = env.do(t, http.MethodPost, "/api/uploads/complete", gin.H{
		"uploadId": "missing",
		"fileName": "a.png",
		"type":     "blog",
	}, true)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// non-image extension
	payload := gin.H{
		"uploadId":    "exe",
		"chunkIndex":  0,
		"totalChunks": 1,
		"fileName":    "tool.exe",
		"fileSize":    4,
		"chunkData":   base64.StdEncoding.EncodeToString([]byte("MZxx")),
	}
	w = env.do(t, http.MethodPost, "/api/uploads/chunk", payload, true)
	require.Equal(t, http.StatusOK, w.Code)
	w = env.do(t, http.MethodPost, "/api/uploads/complete", gin.H{
		"uploadId": "exe",
		"fileName": "tool.exe",
		"type":     "blog",
	}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// unknown use case
	w = env.do(t, http.MethodPost, "/api/uploads/chunk", payload, true)
	require.Equal(t, http.StatusOK, w.Code)
	w = env.do(t, http.MethodPost, "/api/uploads/complete", gin.H{
		"uploadId": "exe",
		"fileName": "pic.png",
		"type":     "banner",
	}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCatalogRoutes(t *testing.T) {
	env := setupEnv(t)

	require.NoError(t, env.db.Create(&types.SiteService{
		Title: "Design", Slug: "design", DisplayOrder: 0, IsActive: true,
	}).Error)

	w := env.do(t, http.MethodGet, "/api/services", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Services []types.SiteService `json:"services"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Services, 1)
	assert.Equal(t, "Design", resp.Services[0].Title)

	// gallery endpoint: empty for unknown projects
	w = env.do(t, http.MethodGet, "/api/projects/12/images", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	var gal struct {
		Images []string `json:"images"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &gal))
	assert.Empty(t, gal.Images)
}

func TestLogin_BadCredentials(t *testing.T) {
	env := setupEnv(t)

	body, _ := json.Marshal(gin.H{"email": "root@example.com", "password": "wrong"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
