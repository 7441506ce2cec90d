// Package models defines the data types exchanged with the Ajudaê backend.
package models

import "time"

// Role distinguishes the two account types the backend knows about.
// Authorization decisions in calling code are gated on this value.
type Role string

const (
	RoleTeacher Role = "professor"
	RoleStudent Role = "student"
)

// User is the authenticated account profile, mirrored alongside the token
// pair in the credential vault.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Post is a feed entry authored by a teacher or student.
type Post struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Description string    `json:"description,omitempty"`
	AuthorID    string    `json:"authorId"`
	Author      *User     `json:"author,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Comment belongs to a post.
type Comment struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	AuthorID  string    `json:"authorId"`
	Author    *User     `json:"author,omitempty"`
	PostID    string    `json:"postId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Teacher is the user projection returned by the teacher listing endpoints.
type Teacher struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Subject    string    `json:"subject,omitempty"`
	Department string    `json:"department,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Student is the user projection returned by the student listing endpoints.
type Student struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Registration string    `json:"registration,omitempty"`
	Course       string    `json:"course,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// LoginResponse is the payload of POST /auth/login. The refresh token is
// optional: backends without rotation may omit it.
type LoginResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
	User         *User  `json:"user"`
}

// Page is a paginated listing envelope.
type Page[T any] struct {
	Data       []T `json:"data"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
}
