package handlers

import (
	"github.com/samber/lo"

	"github.com/monocle-dev/taskhub/internal/models"
	"github.com/monocle-dev/taskhub/internal/services"
	"github.com/monocle-dev/taskhub/internal/types"
)

func userResponse(u models.User) types.UserResponse {
	return types.UserResponse{
		UserID:    u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

func projectResponse(p models.Project) types.ProjectResponse {
	return types.ProjectResponse{
		ProjectID:   p.ID,
		Title:       p.Title,
		Description: p.Description,
		Status:      p.Status,
		OwnerID:     p.OwnerID,
		CreatedAt:   p.CreatedAt,
	}
}

func taskResponse(t models.Task) types.TaskResponse {
	return types.TaskResponse{
		TaskID:      t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		DueDate:     t.DueDate,
		ProjectID:   t.ProjectID,
		AssignedTo:  t.AssignedTo,
	}
}

func taskViewResponse(v services.TaskView) types.TaskResponse {
	resp := taskResponse(v.Task)
	resp.ProjectTitle = v.ProjectTitle
	resp.ProjectStatus = v.ProjectStatus
	return resp
}

func membershipResponse(m models.Membership) types.MembershipResponse {
	return types.MembershipResponse{
		MembershipID: m.ID,
		UserID:       m.UserID,
		ProjectID:    m.ProjectID,
		Role:         m.Role,
		IsActive:     m.IsActive,
		JoinedAt:     m.CreatedAt,
	}
}

func commentResponse(c models.Comment) types.CommentResponse {
	return types.CommentResponse{
		CommentID: c.ID,
		Content:   c.Content,
		ProjectID: c.ProjectID,
		UserID:    c.UserID,
		CreatedAt: c.CreatedAt,
	}
}

func fileResponse(f models.File) types.FileResponse {
	return types.FileResponse{
		FileID:     f.ID,
		FileName:   f.FileName,
		FileURL:    f.FileURL,
		ProjectID:  f.ProjectID,
		UserID:     f.UserID,
		UploadedAt: f.CreatedAt,
	}
}

// mapAll adapts a single-item mapper for lo.Map and never returns nil.
func mapAll[T, R any](items []T, fn func(T) R) []R {
	if len(items) == 0 {
		return []R{}
	}
	return lo.Map(items, func(item T, _ int) R { return fn(item) })
}

func projectDetailsResponse(d *services.ProjectDetails) types.ProjectDetailsResponse {
	return types.ProjectDetailsResponse{
		ProjectResponse: projectResponse(d.Project),
		Owner:           userResponse(d.Owner),
		Members:         mapAll(d.Members, userResponse),
		Tasks:           mapAll(d.Tasks, taskResponse),
		Comments:        mapAll(d.Comments, commentResponse),
		Files:           mapAll(d.Files, fileResponse),
	}
}
