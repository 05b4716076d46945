package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/codenest-dev/codenest/db"
	"github.com/codenest-dev/codenest/internal/models"
	"github.com/codenest-dev/codenest/internal/types"
	"github.com/codenest-dev/codenest/internal/utils"
	"github.com/codenest-dev/codenest/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CreateProjectRequest struct {
	Title           string `json:"title" binding:"required"`
	Description     string `json:"description"`
	Type            string `json:"type"`
	Department      string `json:"department"`
	Year            *int   `json:"year"`
	CollaboratorIDs []uint `json:"collaborator_ids"`
}

type UpdateProjectRequest struct {
	Title           *string `json:"title"`
	Description     *string `json:"description"`
	Type            *string `json:"type"`
	Department      *string `json:"department"`
	Year            *int    `json:"year"`
	CollaboratorIDs *[]uint `json:"collaborator_ids"`
}

func CreateProject(ctx *gin.Context) {
	var body CreateProjectRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if body.Type == "" {
		body.Type = types.ProjectTypeOther
	}

	if !types.IsValidProjectType(body.Type) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project type"})
		return
	}

	// Owner always comes from the authenticated caller, never the body.
	project := models.Project{
		Title:       body.Title,
		Description: body.Description,
		Type:        body.Type,
		Department:  body.Department,
		Year:        body.Year,
		OwnerID:     userID,
	}

	if err := db.DB.Create(&project).Error; err != nil {
		logger.L.Error("Failed to create project", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create project"})
		return
	}

	if len(body.CollaboratorIDs) > 0 {
		if err := setCollaborators(project.ID, body.CollaboratorIDs); err != nil {
			logger.L.Error("Failed to set collaborators", zap.Error(err))
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create project"})
			return
		}
	}

	respondWithProject(ctx, http.StatusCreated, project.ID)
}

func ListProjects(ctx *gin.Context) {
	var projects []models.Project

	err := db.DB.
		Preload("Owner").
		Preload("Collaborators.User").
		Preload("Files").
		Order("created_at DESC").
		Find(&projects).Error

	if err != nil {
		logger.L.Error("Failed to list projects", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve projects"})
		return
	}

	response := make([]types.ProjectResponse, 0, len(projects))

	for _, project := range projects {
		response = append(response, projectResponse(project))
	}

	ctx.JSON(http.StatusOK, response)
}

func GetProject(ctx *gin.Context) {
	var project models.Project

	err := db.DB.
		Preload("Owner").
		Preload("Collaborators.User").
		Preload("Files").
		First(&project, "id = ?", ctx.Param("project_id")).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		} else {
			logger.L.Error("Failed to fetch project", zap.Error(err))
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
		}
		return
	}

	ctx.JSON(http.StatusOK, projectResponse(project))
}

func UpdateProject(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body UpdateProjectRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	project, ok := loadOwnedProject(ctx, userID)

	if !ok {
		return
	}

	if body.Title != nil {
		project.Title = *body.Title
	}

	if body.Description != nil {
		project.Description = *body.Description
	}

	if body.Type != nil {
		if !types.IsValidProjectType(*body.Type) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project type"})
			return
		}
		project.Type = *body.Type
	}

	if body.Department != nil {
		project.Department = *body.Department
	}

	if body.Year != nil {
		project.Year = body.Year
	}

	if err := db.DB.Save(&project).Error; err != nil {
		logger.L.Error("Failed to update project", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update project"})
		return
	}

	// Collaborators are replaced wholesale, and only when the caller sent an
	// explicit list. An absent field leaves the set untouched.
	if body.CollaboratorIDs != nil {
		if err := setCollaborators(project.ID, *body.CollaboratorIDs); err != nil {
			logger.L.Error("Failed to set collaborators", zap.Error(err))
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update project"})
			return
		}
	}

	BroadcastProjectRefresh(fmt.Sprint(project.ID), "Project updated")

	respondWithProject(ctx, http.StatusOK, project.ID)
}

func DeleteProject(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	project, ok := loadOwnedProject(ctx, userID)

	if !ok {
		return
	}

	var files []models.ProjectFile

	if err := db.DB.Where("project_id = ?", project.ID).Find(&files).Error; err != nil {
		logger.L.Error("Failed to fetch project files", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete project"})
		return
	}

	// Record first, then blob, so a failed record delete never orphans a
	// blob deletion.
	for _, file := range files {
		if err := db.DB.Delete(&file).Error; err != nil {
			logger.L.Error("Failed to delete project file record", zap.Error(err))
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete project"})
			return
		}

		if err := Media.Delete(file.StoredPath); err != nil {
			logger.L.Error("Failed to delete stored file", zap.String("path", file.StoredPath), zap.Error(err))
		}
	}

	if err := db.DB.Where("project_id = ?", project.ID).Delete(&models.ProjectCollaborator{}).Error; err != nil {
		logger.L.Error("Failed to delete collaborators", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete project"})
		return
	}

	if err := db.DB.Delete(&project).Error; err != nil {
		logger.L.Error("Failed to delete project", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete project"})
		return
	}

	ctx.Status(http.StatusNoContent)
}

// loadOwnedProject fetches the project from the route param and enforces the
// owner-only write rule: unknown id is 404, someone else's project is 403.
func loadOwnedProject(ctx *gin.Context, userID uint) (models.Project, bool) {
	var project models.Project

	if err := db.DB.First(&project, "id = ?", ctx.Param("project_id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		} else {
			logger.L.Error("Failed to fetch project", zap.Error(err))
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
		}
		return models.Project{}, false
	}

	if project.OwnerID != userID {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to modify this project"})
		return models.Project{}, false
	}

	return project, true
}

func setCollaborators(projectID uint, collaboratorIDs []uint) error {
	if err := db.DB.Where("project_id = ?", projectID).Delete(&models.ProjectCollaborator{}).Error; err != nil {
		return err
	}

	for _, collaboratorID := range collaboratorIDs {
		collaborator := models.ProjectCollaborator{
			UserID:    collaboratorID,
			ProjectID: projectID,
		}

		if err := db.DB.Create(&collaborator).Error; err != nil {
			return err
		}
	}

	return nil
}

func respondWithProject(ctx *gin.Context, status int, projectID uint) {
	var project models.Project

	err := db.DB.
		Preload("Owner").
		Preload("Collaborators.User").
		Preload("Files").
		First(&project, projectID).Error

	if err != nil {
		logger.L.Error("Failed to reload project", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
		return
	}

	ctx.JSON(status, projectResponse(project))
}

func projectResponse(project models.Project) types.ProjectResponse {
	collaborators := make([]types.UserResponse, 0, len(project.Collaborators))

	for _, collaborator := range project.Collaborators {
		collaborators = append(collaborators, userResponse(collaborator.User))
	}

	files := make([]types.ProjectFileResponse, 0, len(project.Files))

	for _, file := range project.Files {
		files = append(files, fileResponse(file))
	}

	return types.ProjectResponse{
		ID:            project.ID,
		Owner:         userResponse(project.Owner),
		Collaborators: collaborators,
		Title:         project.Title,
		Description:   project.Description,
		Type:          project.Type,
		Department:    project.Department,
		Year:          project.Year,
		CreatedAt:     project.CreatedAt,
		UpdatedAt:     project.UpdatedAt,
		Files:         files,
	}
}
