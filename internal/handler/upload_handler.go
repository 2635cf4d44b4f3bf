package handler

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	appErrors "github.com/TravisChandler1/ewaede/pkg/errors"
	"github.com/TravisChandler1/ewaede/pkg/response"
	"github.com/TravisChandler1/ewaede/pkg/storage"
)

const maxCVSizeBytes = 10 << 20 // 10 MiB

var allowedCVExtensions = map[string]struct{}{
	".pdf":  {},
	".doc":  {},
	".docx": {},
}

// UploadHandler stores CV uploads and serves them back through signed links.
type UploadHandler struct {
	store  *storage.LocalStorage
	signer *storage.SignedURLSigner
	logger *zap.Logger
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(store *storage.LocalStorage, signer *storage.SignedURLSigner, logger *zap.Logger) *UploadHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UploadHandler{store: store, signer: signer, logger: logger}
}

// UploadCV godoc
// @Summary Upload CV
// @Description Upload a CV file for a teacher application. Returns a signed URL to submit as cv_url.
// @Tags Applications
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CV file (pdf, doc, docx)"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /applications/cv [post]
func (h *UploadHandler) UploadCV(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "file is required"))
		return
	}
	if fileHeader.Size > maxCVSizeBytes {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file exceeds the 10MB limit"))
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if _, ok := allowedCVExtensions[ext]; !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "only pdf, doc and docx files are accepted"))
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload"))
		return
	}
	defer src.Close() //nolint:errcheck

	relPath := fmt.Sprintf("cv/%s/%s%s", claims.UserID, uuid.NewString(), ext)
	if _, err := h.store.SaveStream(relPath, src); err != nil {
		h.logger.Error("cv upload failed", zap.String("user_id", claims.UserID), zap.Error(err))
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store upload"))
		return
	}

	token, expiresAt, err := h.signer.Generate(claims.UserID, relPath)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download link"))
		return
	}

	response.Created(c, gin.H{
		"cv_url":     "/api/v1/files/download?token=" + token,
		"expires_at": expiresAt,
	})
}

// Download godoc
// @Summary Download file
// @Description Stream a stored file referenced by a signed token
// @Tags Applications
// @Produce application/octet-stream
// @Param token query string true "Signed download token"
// @Success 200 {file} file
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /files/download [get]
func (h *UploadHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}

	_, relPath, _, err := h.signer.Parse(token, false)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, http.StatusUnauthorized, "invalid or expired download link"))
		return
	}

	file, err := h.store.Open(relPath)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "file not found"))
		return
	}
	defer file.Close() //nolint:errcheck

	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stat file"))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(relPath)))
	c.DataFromReader(http.StatusOK, info.Size(), "application/octet-stream", file, nil)
}
