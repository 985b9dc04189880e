package upload

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skillora/skillora-server/pkg/response"
	"github.com/skillora/skillora-server/pkg/storage"
)

// Handler serves generic content file uploads.
type Handler struct {
	logger  *slog.Logger
	storage *storage.Client
}

// NewHandler creates an upload handler.
func NewHandler(logger *slog.Logger, storageClient *storage.Client) *Handler {
	return &Handler{logger: logger, storage: storageClient}
}

// Content stores a multipart "file" upload and returns its public URL.
func (h *Handler) Content(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "No file uploaded", nil)
		return
	}

	url, err := h.storage.Save(file, "file", storage.KindContent)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "Failed to store file", err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"fileUrl": url}, "File uploaded successfully", nil)
}
