package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/codenest-dev/codenest/db"
	"github.com/codenest-dev/codenest/internal/models"
	"github.com/codenest-dev/codenest/internal/storage"
	"github.com/codenest-dev/codenest/internal/types"
	"github.com/codenest-dev/codenest/internal/utils"
	"github.com/codenest-dev/codenest/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Media is the process-wide blob store, assigned in main (and by tests).
var Media *storage.Store

func UploadFile(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	project, ok := loadOwnedProject(ctx, userID)

	if !ok {
		return
	}

	fileHeader, err := ctx.FormFile("file")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "No file was provided in the request"})
		return
	}

	src, err := fileHeader.Open()

	if err != nil {
		logger.L.Error("Failed to open uploaded file", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
		return
	}
	defer src.Close()

	relPath := Media.ProjectPath(project.OwnerID, project.Title, fileHeader.Filename)

	if _, err := Media.Save(relPath, src); err != nil {
		logger.L.Error("Failed to store uploaded file", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
		return
	}

	// Inference only runs when the caller did not pin an explicit,
	// non-default type.
	fileType := ctx.PostForm("file_type")
	if !types.IsValidFileType(fileType) || fileType == types.FileTypeOther {
		fileType = utils.InferFileType(fileHeader.Filename)
	}

	projectFile := models.ProjectFile{
		ProjectID:        project.ID,
		StoredPath:       relPath,
		FileType:         fileType,
		OriginalFilename: fileHeader.Filename,
	}

	if err := db.DB.Create(&projectFile).Error; err != nil {
		logger.L.Error("Failed to create file record", zap.Error(err))

		if err := Media.Delete(relPath); err != nil {
			logger.L.Error("Failed to clean up stored file", zap.Error(err))
		}

		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
		return
	}

	BroadcastProjectRefresh(fmt.Sprint(project.ID), "File uploaded")

	ctx.JSON(http.StatusCreated, fileResponse(projectFile))
}

func ListFiles(ctx *gin.Context) {
	var project models.Project

	if err := db.DB.First(&project, "id = ?", ctx.Param("project_id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		} else {
			logger.L.Error("Failed to fetch project", zap.Error(err))
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
		}
		return
	}

	var files []models.ProjectFile

	if err := db.DB.Where("project_id = ?", project.ID).Order("created_at").Find(&files).Error; err != nil {
		logger.L.Error("Failed to list files", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve files"})
		return
	}

	response := make([]types.ProjectFileResponse, 0, len(files))

	for _, file := range files {
		response = append(response, fileResponse(file))
	}

	ctx.JSON(http.StatusOK, response)
}

func DeleteFile(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	project, ok := loadOwnedProject(ctx, userID)

	if !ok {
		return
	}

	var file models.ProjectFile

	if err := db.DB.Where("id = ? AND project_id = ?", ctx.Param("file_id"), project.ID).First(&file).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		} else {
			logger.L.Error("Failed to fetch file", zap.Error(err))
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve file"})
		}
		return
	}

	// Record first, then blob.
	if err := db.DB.Delete(&file).Error; err != nil {
		logger.L.Error("Failed to delete file record", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete file"})
		return
	}

	if err := Media.Delete(file.StoredPath); err != nil {
		logger.L.Error("Failed to delete stored file", zap.String("path", file.StoredPath), zap.Error(err))
	}

	BroadcastProjectRefresh(fmt.Sprint(project.ID), "File deleted")

	ctx.Status(http.StatusNoContent)
}

func fileResponse(file models.ProjectFile) types.ProjectFileResponse {
	metadata := map[string]interface{}(file.ExtractedMetadata)
	if metadata == nil {
		metadata = map[string]interface{}{}
	}

	return types.ProjectFileResponse{
		ID:                file.ID,
		FileType:          file.FileType,
		OriginalFilename:  file.OriginalFilename,
		ExtractedMetadata: metadata,
		UploadedAt:        file.CreatedAt,
		FileURL:           Media.URL(file.StoredPath),
	}
}
