package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/maintenance-planner/internal/backup"
	"github.com/yungbote/maintenance-planner/internal/http/response"
	"github.com/yungbote/maintenance-planner/internal/pkg/apperr"
	"github.com/yungbote/maintenance-planner/internal/services"
)

const maxBackupBytes = 32 << 20

type BackupHandler struct {
	snapshots services.SnapshotService
}

func NewBackupHandler(snapshots services.SnapshotService) *BackupHandler {
	return &BackupHandler{snapshots: snapshots}
}

// GET /api/backup/export
func (h *BackupHandler) Export(c *gin.Context) {
	doc, err := h.snapshots.Export(c.Request.Context())
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	body, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		response.RespondAppError(c, apperr.Internal("snapshot_encode", err))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", backup.DownloadName))
	c.Data(http.StatusOK, "application/json", body)
}

// POST /api/backup/import
func (h *BackupHandler) Import(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBackupBytes)

	src, closeFn, err := backupSource(c)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	defer closeFn()

	doc, err := h.snapshots.Decode(src)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	res, err := h.snapshots.Import(c.Request.Context(), doc)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// backupSource reads the upload from the backup_file form field, or the raw
// body when the request is not multipart.
func backupSource(c *gin.Context) (io.Reader, func(), error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return c.Request.Body, func() {}, nil
	}
	fh, err := c.FormFile("backup_file")
	if err != nil {
		return nil, nil, apperr.Validation("backup_file_missing", "Upload a backup file in the backup_file field.")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, nil, apperr.Internal("backup_file_open", err)
	}
	return f, func() { _ = f.Close() }, nil
}
