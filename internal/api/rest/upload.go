package rest

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kamilakurskaa/TrustFlow/internal/api/middleware"
	"github.com/kamilakurskaa/TrustFlow/internal/api/rest/dto"
	"github.com/kamilakurskaa/TrustFlow/internal/domain"
	"github.com/kamilakurskaa/TrustFlow/internal/logger"
	"github.com/kamilakurskaa/TrustFlow/internal/store/schema"
)

// UploadDocument stores a PDF under the upload directory. The client-supplied
// name is kept only as metadata; the stored name is collision-free.
func (h *handler) UploadDocument(c *gin.Context) {
	user := middleware.CurrentUser(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondValidationError(c, "A file field is required")
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !h.extensionAllowed(ext) {
		respondBadRequest(c, fmt.Sprintf("File extension %q is not allowed", ext))
		return
	}
	if fileHeader.Size > h.upload.MaxSize {
		respondBadRequest(c, fmt.Sprintf("File exceeds the maximum size of %d bytes", h.upload.MaxSize))
		return
	}

	documentType := domain.DocumentTypeGosuslugi
	if v := c.PostForm("document_type"); v != "" {
		dt := domain.DocumentType(v)
		switch dt {
		case domain.DocumentTypeGosuslugi, domain.DocumentTypeBankStatement, domain.DocumentTypePassport:
			documentType = dt
		default:
			respondBadRequest(c, fmt.Sprintf("Unknown document type %q", v))
			return
		}
	}

	if err := os.MkdirAll(h.upload.Dir, 0o755); err != nil {
		respondInternalError(c, err, "Failed to store file")
		return
	}

	storedName := fmt.Sprintf("%d_%d_%s%s", user.ID, time.Now().Unix(), uuid.NewString(), ext)
	storedPath := filepath.Join(h.upload.Dir, storedName)
	if err := c.SaveUploadedFile(fileHeader, storedPath); err != nil {
		respondInternalError(c, err, "Failed to store file")
		return
	}

	// Extension checks are advisory; the content decides.
	mtype, err := mimetype.DetectFile(storedPath)
	if err != nil || !mtype.Is("application/pdf") {
		if removeErr := os.Remove(storedPath); removeErr != nil {
			logger.Warn("failed to remove rejected upload",
				zap.String("path", storedPath), zap.Error(removeErr))
		}
		respondBadRequest(c, "File is not a valid PDF")
		return
	}

	doc := &schema.UploadedDocument{
		UserID:       user.ID,
		Filename:     filepath.Base(fileHeader.Filename),
		StoredPath:   storedPath,
		FileSize:     fileHeader.Size,
		MimeType:     mtype.String(),
		DocumentType: documentType,
	}
	if err := h.store.CreateUploadedDocument(c.Request.Context(), doc); err != nil {
		respondInternalError(c, err, "Failed to store document")
		return
	}

	logger.Info("document uploaded",
		zap.Uint64("userID", user.ID),
		zap.Uint64("documentID", doc.ID),
		zap.Int64("size", doc.FileSize))

	c.JSON(http.StatusCreated, dto.FromDocument(doc))
}

// DeleteDocument soft-deletes an uploaded document
func (h *handler) DeleteDocument(c *gin.Context) {
	user := middleware.CurrentUser(c)

	documentID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.store.DeleteDocument(c.Request.Context(), user.ID, documentID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			respondNotFound(c, "Document not found")
			return
		}
		respondInternalError(c, err, "Failed to delete document")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *handler) extensionAllowed(ext string) bool {
	for _, allowed := range h.upload.AllowedExtensions {
		if strings.EqualFold(allowed, ext) {
			return true
		}
	}
	return false
}
