package services

import (
	"context"
	"net/http"
	"net/url"

	"github.com/ajudae/go-client/internal/client/models"
)

// CreateUserInput is the payload for creating an account through the admin
// user endpoints. Role is fixed by the calling service.
type CreateUserInput struct {
	Email    string      `json:"email"`
	Name     string      `json:"name"`
	Password string      `json:"password"`
	Role     models.Role `json:"role"`
}

// UpdateUserInput carries the editable profile fields.
type UpdateUserInput struct {
	Name string `json:"name,omitempty"`
}

// TeacherService wraps the teacher listing and admin endpoints.
type TeacherService struct {
	api Doer
}

// NewTeacherService constructs a TeacherService.
func NewTeacherService(api Doer) *TeacherService {
	return &TeacherService{api: api}
}

// List returns a page of teachers.
func (s *TeacherService) List(ctx context.Context, page, pageSize int, search string) ([]models.Teacher, error) {
	var teachers []models.Teacher
	err := s.api.Do(ctx, http.MethodGet, "/users/professores", pageQuery(page, pageSize, search), nil, &teachers)
	return teachers, err
}

// Get returns one teacher by id.
func (s *TeacherService) Get(ctx context.Context, id string) (*models.Teacher, error) {
	var teacher models.Teacher
	if err := s.api.Do(ctx, http.MethodGet, "/users/"+url.PathEscape(id), nil, nil, &teacher); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// Create registers a new teacher account.
func (s *TeacherService) Create(ctx context.Context, email, name, password string) (*models.Teacher, error) {
	in := CreateUserInput{Email: email, Name: name, Password: password, Role: models.RoleTeacher}
	var teacher models.Teacher
	if err := s.api.Do(ctx, http.MethodPost, "/users", nil, in, &teacher); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// Update edits a teacher profile.
func (s *TeacherService) Update(ctx context.Context, id string, in UpdateUserInput) (*models.Teacher, error) {
	var teacher models.Teacher
	if err := s.api.Do(ctx, http.MethodPatch, "/users/"+url.PathEscape(id), nil, in, &teacher); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// Delete removes a teacher account.
func (s *TeacherService) Delete(ctx context.Context, id string) error {
	return s.api.Do(ctx, http.MethodDelete, "/users/"+url.PathEscape(id), nil, nil, nil)
}

// StudentService wraps the student listing and admin endpoints.
type StudentService struct {
	api Doer
}

// NewStudentService constructs a StudentService.
func NewStudentService(api Doer) *StudentService {
	return &StudentService{api: api}
}

// List returns a page of students.
func (s *StudentService) List(ctx context.Context, page, pageSize int, search string) ([]models.Student, error) {
	var students []models.Student
	err := s.api.Do(ctx, http.MethodGet, "/users/estudantes", pageQuery(page, pageSize, search), nil, &students)
	return students, err
}

// Get returns one student by id.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	var student models.Student
	if err := s.api.Do(ctx, http.MethodGet, "/users/"+url.PathEscape(id), nil, nil, &student); err != nil {
		return nil, err
	}
	return &student, nil
}

// Create registers a new student account.
func (s *StudentService) Create(ctx context.Context, email, name, password string) (*models.Student, error) {
	in := CreateUserInput{Email: email, Name: name, Password: password, Role: models.RoleStudent}
	var student models.Student
	if err := s.api.Do(ctx, http.MethodPost, "/users", nil, in, &student); err != nil {
		return nil, err
	}
	return &student, nil
}

// Update edits a student profile.
func (s *StudentService) Update(ctx context.Context, id string, in UpdateUserInput) (*models.Student, error) {
	var student models.Student
	if err := s.api.Do(ctx, http.MethodPatch, "/users/"+url.PathEscape(id), nil, in, &student); err != nil {
		return nil, err
	}
	return &student, nil
}

// Delete removes a student account.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	return s.api.Do(ctx, http.MethodDelete, "/users/"+url.PathEscape(id), nil, nil, nil)
}
