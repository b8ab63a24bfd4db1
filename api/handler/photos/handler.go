package photos

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/anoixa/photo-manager/api/common"
	"github.com/anoixa/photo-manager/api/middleware"
	"github.com/anoixa/photo-manager/internal/audit"
	"github.com/anoixa/photo-manager/internal/command"
	photosvc "github.com/anoixa/photo-manager/internal/photos"
	"github.com/anoixa/photo-manager/internal/processing"
	"github.com/anoixa/photo-manager/internal/search"
	"github.com/anoixa/photo-manager/internal/thumbnail"
	"github.com/gin-gonic/gin"
)

// Handler 图片接口处理器
type Handler struct {
	service    *photosvc.Service
	auditLog   *audit.Log
	thumbnails *thumbnail.Service

	mu       sync.Mutex
	invokers map[string]*command.Invoker
}

// NewHandler 创建图片处理器，thumbnails 可为 nil
func NewHandler(service *photosvc.Service, auditLog *audit.Log, thumbnails *thumbnail.Service) *Handler {
	return &Handler{
		service:    service,
		auditLog:   auditLog,
		thumbnails: thumbnails,
		invokers:   make(map[string]*command.Invoker),
	}
}

// invokerFor 每个用户一个命令历史栈
func (h *Handler) invokerFor(userID string) *command.Invoker {
	h.mu.Lock()
	defer h.mu.Unlock()
	inv, ok := h.invokers[userID]
	if !ok {
		inv = command.NewInvoker()
		h.invokers[userID] = inv
	}
	return inv
}

// Upload 上传单个文件
// POST /api/v1/photos
func (h *Handler) Upload(c *gin.Context) {
	user := middleware.CurrentUser(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "missing file field")
		return
	}

	upload, err := readUpload(fileHeader)
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "failed to read uploaded file")
		return
	}

	pipeline, err := buildPipeline(h.auditLog, c.PostForm("stages"))
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	cmd := command.NewUploadCommand(h.service, user, upload,
		c.PostForm("description"), splitList(c.PostForm("hashtags")), pipeline)

	if err := h.invokerFor(user.UserID).Execute(c.Request.Context(), cmd); err != nil {
		respondDomainError(c, err)
		return
	}

	photo := cmd.Result()
	if h.thumbnails != nil {
		h.thumbnails.Enqueue(photo.PhotoID, photo.StoragePath)
	}

	common.RespondCreated(c, photo)
}

// UploadBatch 批量上传
// POST /api/v1/photos/batch
func (h *Handler) UploadBatch(c *gin.Context) {
	user := middleware.CurrentUser(c)

	form, err := c.MultipartForm()
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "invalid multipart form")
		return
	}
	fileHeaders := form.File["files"]
	if len(fileHeaders) == 0 {
		common.RespondError(c, http.StatusBadRequest, "no files provided")
		return
	}

	pipeline, err := buildPipeline(h.auditLog, c.PostForm("stages"))
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	uploads := make([]photosvc.FileUpload, 0, len(fileHeaders))
	for _, fh := range fileHeaders {
		upload, err := readUpload(fh)
		if err != nil {
			common.RespondError(c, http.StatusBadRequest, "failed to read uploaded file: "+fh.Filename)
			return
		}
		uploads = append(uploads, upload)
	}

	results := h.service.UploadBatch(c.Request.Context(), user, uploads,
		c.PostForm("description"), splitList(c.PostForm("hashtags")), pipeline)

	if h.thumbnails != nil {
		for _, result := range results {
			if result.Photo != nil {
				h.thumbnails.Enqueue(result.Photo.PhotoID, result.Photo.StoragePath)
			}
		}
	}

	common.RespondSuccess(c, results)
}

// Search 按条件检索
// GET /api/v1/photos
func (h *Handler) Search(c *gin.Context) {
	criteria, err := criteriaFromQuery(c)
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	results, err := h.service.Search(c.Request.Context(), criteria)
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, "search failed")
		return
	}

	common.RespondSuccess(c, gin.H{"count": len(results), "photos": results})
}

type updateRequest struct {
	Description string   `json:"description"`
	Hashtags    []string `json:"hashtags"`
}

// Update 更新描述和标签
// PATCH /api/v1/photos/:id
func (h *Handler) Update(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	cmd := command.NewUpdateCommand(h.service, user, c.Param("id"), req.Description, req.Hashtags)
	if err := h.invokerFor(user.UserID).Execute(c.Request.Context(), cmd); err != nil {
		respondDomainError(c, err)
		return
	}

	common.RespondSuccessMessage(c, "photo updated", nil)
}

// Delete 删除图片
// DELETE /api/v1/photos/:id
func (h *Handler) Delete(c *gin.Context) {
	user := middleware.CurrentUser(c)

	cmd := command.NewDeleteCommand(h.service, h.auditLog, user, c.Param("id"))
	if err := h.invokerFor(user.UserID).Execute(c.Request.Context(), cmd); err != nil {
		respondDomainError(c, err)
		return
	}

	common.RespondSuccessMessage(c, "photo deleted", nil)
}

// Get 返回图片元数据
// GET /api/v1/photos/:id
func (h *Handler) Get(c *gin.Context) {
	photo, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	common.RespondSuccess(c, photo)
}

// GetFile 返回图片文件内容，公共接口
// GET /photos/:id
func (h *Handler) GetFile(c *gin.Context) {
	photo, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondDomainError(c, err)
		return
	}

	storagePath := photo.StoragePath
	if c.Query("thumbnail") == "true" && photo.ThumbnailPath != "" {
		storagePath = photo.ThumbnailPath
	}

	reader, err := h.service.Storage().Download(c.Request.Context(), storagePath)
	if err != nil {
		common.RespondError(c, http.StatusNotFound, "file not found")
		return
	}
	defer reader.Close()

	c.Header("Content-Disposition", `inline; filename="`+photo.Filename+`"`)
	c.Header("Content-Type", "application/octet-stream")
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, reader)
}

// Undo 撤销当前用户最近一次操作
// POST /api/v1/photos/undo
func (h *Handler) Undo(c *gin.Context) {
	user := middleware.CurrentUser(c)

	err := h.invokerFor(user.UserID).UndoLast(c.Request.Context())
	if err != nil {
		switch {
		case errors.Is(err, command.ErrNothingToUndo):
			common.RespondError(c, http.StatusNotFound, "nothing to undo")
		case errors.Is(err, command.ErrUndoUnsupported):
			common.RespondError(c, http.StatusConflict, "operation cannot be undone")
		default:
			respondDomainError(c, err)
		}
		return
	}

	common.RespondSuccessMessage(c, "operation undone", nil)
}

// readUpload 读取上传文件内容
func readUpload(fh *multipart.FileHeader) (photosvc.FileUpload, error) {
	file, err := fh.Open()
	if err != nil {
		return photosvc.FileUpload{}, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return photosvc.FileUpload{}, err
	}

	return photosvc.FileUpload{
		Filename: fh.Filename,
		Size:     fh.Size,
		Data:     data,
	}, nil
}

// buildPipeline 从形如 "resize:300x200,sepia,blur" 的参数构建处理管线
func buildPipeline(auditLog *audit.Log, expr string) (*processing.Pipeline, error) {
	parts := splitList(expr)
	if len(parts) == 0 {
		return nil, nil
	}

	stages, err := processing.ParseStages(parts)
	if err != nil {
		return nil, err
	}
	return processing.NewPipeline(auditLog, stages...), nil
}

// criteriaFromQuery 从查询参数构建检索条件
func criteriaFromQuery(c *gin.Context) (search.Criteria, error) {
	criteria := search.Criteria{
		Hashtags: splitList(c.Query("hashtags")),
		Author:   c.Query("author"),
	}

	if v := c.Query("min_size"); v != "" {
		size, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return criteria, errors.New("invalid min_size")
		}
		criteria.MinSize = &size
	}
	if v := c.Query("max_size"); v != "" {
		size, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return criteria, errors.New("invalid max_size")
		}
		criteria.MaxSize = &size
	}
	if v := c.Query("start_date"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return criteria, errors.New("invalid start_date, expected RFC3339")
		}
		criteria.StartDate = &ts
	}
	if v := c.Query("end_date"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return criteria, errors.New("invalid end_date, expected RFC3339")
		}
		criteria.EndDate = &ts
	}

	return criteria, nil
}

// splitList 解析逗号分隔的参数
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// respondDomainError 把领域错误映射为 HTTP 状态
func respondDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, photosvc.ErrQuotaExceeded):
		common.RespondError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, photosvc.ErrForbidden):
		common.RespondError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, photosvc.ErrPhotoNotFound):
		common.RespondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, photosvc.ErrProcessingFailed):
		common.RespondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, photosvc.ErrStorageFailed):
		common.RespondError(c, http.StatusBadGateway, err.Error())
	default:
		common.RespondError(c, http.StatusInternalServerError, err.Error())
	}
}
