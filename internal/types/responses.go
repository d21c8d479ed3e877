package types

import "time"

type UserResponse struct {
	UserID    uint      `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      UserRole  `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	UserID      uint   `json:"user_id"`
	Name        string `json:"name"`
}

type ProjectResponse struct {
	ProjectID   uint          `json:"project_id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Status      ProjectStatus `json:"status"`
	OwnerID     uint          `json:"owner_id"`
	CreatedAt   time.Time     `json:"created_at"`
}

type ProjectDetailsResponse struct {
	ProjectResponse
	Owner    UserResponse      `json:"owner"`
	Members  []UserResponse    `json:"members"`
	Tasks    []TaskResponse    `json:"tasks"`
	Comments []CommentResponse `json:"comments"`
	Files    []FileResponse    `json:"files"`
}

// TaskResponse carries the parent project's title and status when the lookup asked for them.
type TaskResponse struct {
	TaskID        uint          `json:"task_id"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	Status        TaskStatus    `json:"status"`
	DueDate       time.Time     `json:"due_date"`
	ProjectID     uint          `json:"project_id"`
	AssignedTo    *uint         `json:"assigned_to"`
	ProjectTitle  string        `json:"project_title,omitempty"`
	ProjectStatus ProjectStatus `json:"project_status,omitempty"`
}

type MembershipResponse struct {
	MembershipID uint           `json:"membership_id"`
	UserID       uint           `json:"user_id"`
	ProjectID    uint           `json:"project_id"`
	Role         MembershipRole `json:"role"`
	IsActive     bool           `json:"is_active"`
	JoinedAt     time.Time      `json:"joined_at"`
}

type CommentResponse struct {
	CommentID uint      `json:"comment_id"`
	Content   string    `json:"content"`
	ProjectID uint      `json:"project_id"`
	UserID    uint      `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

type FileResponse struct {
	FileID     uint      `json:"file_id"`
	FileName   string    `json:"file_name"`
	FileURL    string    `json:"file_url"`
	ProjectID  uint      `json:"project_id"`
	UserID     uint      `json:"user_id"`
	UploadedAt time.Time `json:"uploaded_at"`
}
