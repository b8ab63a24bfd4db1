package photos

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/anoixa/photo-manager/api/middleware"
	"github.com/anoixa/photo-manager/database/models"
	"github.com/anoixa/photo-manager/internal/audit"
	photosvc "github.com/anoixa/photo-manager/internal/photos"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memPhotoStore struct {
	mu     sync.Mutex
	photos map[string]*models.Photo
}

func newMemPhotoStore() *memPhotoStore {
	return &memPhotoStore{photos: make(map[string]*models.Photo)}
}

func (m *memPhotoStore) Save(ctx context.Context, photo *models.Photo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.photos[photo.PhotoID] = photo.Clone()
	return nil
}

func (m *memPhotoStore) FindByID(ctx context.Context, photoID string) (*models.Photo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.photos[photoID].Clone(), nil
}

func (m *memPhotoStore) FindAll(ctx context.Context) ([]*models.Photo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*models.Photo
	for _, p := range m.photos {
		result = append(result, p.Clone())
	}
	return result, nil
}

func (m *memPhotoStore) FindByAuthor(ctx context.Context, authorID string) ([]*models.Photo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*models.Photo
	for _, p := range m.photos {
		if p.AuthorID == authorID {
			result = append(result, p.Clone())
		}
	}
	return result, nil
}

func (m *memPhotoStore) CountByAuthor(ctx context.Context, authorID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, p := range m.photos {
		if p.AuthorID == authorID {
			count++
		}
	}
	return count, nil
}

func (m *memPhotoStore) Delete(ctx context.Context, photoID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.photos, photoID)
	return nil
}

type memUserStore struct{}

func (memUserStore) Save(ctx context.Context, user *models.User) error { return nil }
func (memUserStore) FindByID(ctx context.Context, userID string) (*models.User, error) {
	return nil, nil
}

type memStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	seq     int
}

func newMemStorage() *memStorage {
	return &memStorage{objects: make(map[string][]byte)}
}

func (m *memStorage) Upload(ctx context.Context, ownerID, filename string, file io.Reader) (string, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	path := fmt.Sprintf("%s/obj_%d", ownerID, m.seq)
	m.objects[path] = data
	return path, nil
}

func (m *memStorage) UploadTo(ctx context.Context, storagePath string, file io.Reader) error {
	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[storagePath] = data
	return nil
}

func (m *memStorage) Download(ctx context.Context, storagePath string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[storagePath]
	if !ok {
		return nil, errors.New("file not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memStorage) Delete(ctx context.Context, storagePath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, storagePath)
	return nil
}

func (m *memStorage) Exists(ctx context.Context, storagePath string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[storagePath]
	return ok, nil
}

func (m *memStorage) Health(ctx context.Context) error { return nil }
func (m *memStorage) Name() string                     { return "memory" }

// testEnv 测试环境：认证中间件替换为直接注入用户
type testEnv struct {
	router  *gin.Engine
	handler *Handler
	store   *memPhotoStore
	user    *models.User
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := newMemPhotoStore()
	auditLog := audit.NewLog()
	service := photosvc.NewService(store, memUserStore{}, newMemStorage(), auditLog, nil)
	handler := NewHandler(service, auditLog, nil)

	env := &testEnv{
		handler: handler,
		store:   store,
		user: &models.User{
			UserID:              "USER_1",
			Username:            "alice",
			UserType:            models.UserTypeRegistered,
			SubscriptionPackage: models.PackageFree,
			RegistrationDate:    time.Now(),
		},
	}

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserKey, env.user)
		c.Next()
	})
	router.POST("/photos", handler.Upload)
	router.GET("/photos", handler.Search)
	router.GET("/photos/:id", handler.Get)
	router.GET("/files/:id", handler.GetFile)
	router.PATCH("/photos/:id", handler.Update)
	router.DELETE("/photos/:id", handler.Delete)
	router.POST("/photos/undo", handler.Undo)
	env.router = router
	return env
}

func multipartUpload(t *testing.T, fields map[string]string, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &body, writer.FormDataContentType()
}

func (e *testEnv) do(t *testing.T, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) uploadPhoto(t *testing.T, filename string) string {
	t.Helper()
	body, contentType := multipartUpload(t, map[string]string{"description": "d"}, filename, []byte("image bytes"))
	w := e.do(t, http.MethodPost, "/photos", body, contentType)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Data models.Photo `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data.PhotoID
}

func TestUploadHandler(t *testing.T) {
	env := setupEnv(t)

	body, contentType := multipartUpload(t, map[string]string{
		"description": "my cat",
		"hashtags":    "cat,pet",
		"stages":      "resize:300x200,sepia",
	}, "cat.jpg", []byte("image bytes"))

	w := env.do(t, http.MethodPost, "/photos", body, contentType)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Data models.Photo `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "cat.jpg", resp.Data.Filename)
	assert.Equal(t, []string{"cat", "pet"}, resp.Data.Hashtags)
	assert.Equal(t, 300, resp.Data.Width)
	assert.Equal(t, "USER_1", resp.Data.AuthorID)
}

func TestUploadHandler_InvalidStage(t *testing.T) {
	env := setupEnv(t)

	body, contentType := multipartUpload(t, map[string]string{"stages": "rotate:90"}, "cat.jpg", []byte("x"))
	w := env.do(t, http.MethodPost, "/photos", body, contentType)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadHandler_MissingFile(t *testing.T) {
	env := setupEnv(t)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	require.NoError(t, writer.Close())

	w := env.do(t, http.MethodPost, "/photos", &body, writer.FormDataContentType())
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchHandler(t *testing.T) {
	env := setupEnv(t)
	env.uploadPhoto(t, "cat.jpg")

	w := env.do(t, http.MethodGet, "/photos?author=alice", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":1`)

	w = env.do(t, http.MethodGet, "/photos?author=nobody", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":0`)

	w = env.do(t, http.MethodGet, "/photos?min_size=abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateHandler_ForbiddenForNonOwner(t *testing.T) {
	env := setupEnv(t)
	photoID := env.uploadPhoto(t, "cat.jpg")

	// 切换到另一个用户
	env.user = &models.User{UserID: "USER_2", Username: "mallory", UserType: models.UserTypeRegistered, SubscriptionPackage: models.PackageFree}

	payload := bytes.NewBufferString(`{"description":"hacked"}`)
	w := env.do(t, http.MethodPatch, "/photos/"+photoID, payload, "application/json")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDeleteHandler_NotFound(t *testing.T) {
	env := setupEnv(t)

	w := env.do(t, http.MethodDelete, "/photos/PHOTO_missing", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// TestGetHandler_NotFound 读取不存在的图片返回 404 而非 500
func TestGetHandler_NotFound(t *testing.T) {
	env := setupEnv(t)

	w := env.do(t, http.MethodGet, "/photos/PHOTO_missing", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodGet, "/files/PHOTO_missing", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetFileHandler_StreamsBytes(t *testing.T) {
	env := setupEnv(t)
	photoID := env.uploadPhoto(t, "cat.jpg")

	w := env.do(t, http.MethodGet, "/files/"+photoID, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image bytes", w.Body.String())
}

func TestUndoHandler(t *testing.T) {
	env := setupEnv(t)

	// 空历史
	w := env.do(t, http.MethodPost, "/photos/undo", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	// 上传后撤销应删除图片
	photoID := env.uploadPhoto(t, "cat.jpg")
	w = env.do(t, http.MethodPost, "/photos/undo", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	photo, err := env.store.FindByID(context.Background(), photoID)
	require.NoError(t, err)
	assert.Nil(t, photo)
}

func TestUndoHandler_DeleteNotReversible(t *testing.T) {
	env := setupEnv(t)
	photoID := env.uploadPhoto(t, "cat.jpg")

	w := env.do(t, http.MethodDelete, "/photos/"+photoID, nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, "/photos/undo", nil, "")
	assert.Equal(t, http.StatusConflict, w.Code)
}
