package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"finbook/internal/service"
)

// FileHandler handles document storage endpoints.
type FileHandler struct {
	fileService service.FileService
}

// NewFileHandler creates a new FileHandler.
func NewFileHandler(fileService service.FileService) *FileHandler {
	return &FileHandler{fileService: fileService}
}

// CreateFolder handles POST /api/v1/folders
func (h *FileHandler) CreateFolder(c *gin.Context) {
	businessID, userID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}

	var input service.FolderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	folder, err := h.fileService.CreateFolder(c.Request.Context(), businessID, userID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, folder)
}

// ListFolders handles GET /api/v1/folders
func (h *FileHandler) ListFolders(c *gin.Context) {
	businessID, _, _, ok := extractAuthContext(c)
	if !ok {
		return
	}

	folders, err := h.fileService.ListFolders(c.Request.Context(), businessID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, folders)
}

// DeleteFolder handles DELETE /api/v1/folders/:id
func (h *FileHandler) DeleteFolder(c *gin.Context) {
	businessID, _, _, ok := extractAuthContext(c)
	if !ok {
		return
	}
	folderID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.fileService.DeleteFolder(c.Request.Context(), businessID, folderID); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "folder deleted"})
}

// Upload handles POST /api/v1/files/upload
// @Summary Upload a document
// @Description Upload a business document (pdf, jpg, png, csv, xlsx) into an optional folder
// @Tags files
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File to upload"
// @Param folder_id formData string false "Folder UUID"
// @Success 201 {object} APIResponse{data=domain.FileMeta}
// @Failure 400 {object} APIResponse "Missing file or unsupported type"
// @Failure 413 {object} APIResponse "File too large"
// @Security BearerAuth
// @Router /files/upload [post]
func (h *FileHandler) Upload(c *gin.Context) {
	businessID, userID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	input := service.UploadFileInput{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}
	if folderIDStr := c.PostForm("folder_id"); folderIDStr != "" {
		folderID, parseErr := uuid.Parse(folderIDStr)
		if parseErr != nil {
			RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid folder_id: must be a valid UUID")
			return
		}
		input.FolderID = &folderID
	}

	meta, err := h.fileService.Upload(c.Request.Context(), businessID, userID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, meta)
}

// List handles GET /api/v1/files
func (h *FileHandler) List(c *gin.Context) {
	businessID, _, _, ok := extractAuthContext(c)
	if !ok {
		return
	}

	offset, limit := parsePagination(c)
	var folderID *uuid.UUID
	if folderIDStr := c.Query("folder_id"); folderIDStr != "" {
		fid, err := uuid.Parse(folderIDStr)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid folder_id: must be a valid UUID")
			return
		}
		folderID = &fid
	}

	files, total, err := h.fileService.List(c.Request.Context(), businessID, folderID, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, files, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/files/:id
func (h *FileHandler) GetByID(c *gin.Context) {
	businessID, _, _, ok := extractAuthContext(c)
	if !ok {
		return
	}
	fileID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	meta, err := h.fileService.Get(c.Request.Context(), businessID, fileID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, meta)
}

// DownloadURL handles GET /api/v1/files/:id/download
func (h *FileHandler) DownloadURL(c *gin.Context) {
	businessID, _, _, ok := extractAuthContext(c)
	if !ok {
		return
	}
	fileID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	url, err := h.fileService.DownloadURL(c.Request.Context(), businessID, fileID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"url": url})
}

// Delete handles DELETE /api/v1/files/:id
func (h *FileHandler) Delete(c *gin.Context) {
	businessID, _, _, ok := extractAuthContext(c)
	if !ok {
		return
	}
	fileID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.fileService.Delete(c.Request.Context(), businessID, fileID); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "file deleted"})
}
