package devserver

import (
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ajudae/go-client/internal/client/models"
)

type credentialsBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(c echo.Context) error {
	var body credentialsBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "malformed body"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byEmail[body.Email]
	if !ok || s.passwords[id] != body.Password {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid credentials"})
	}

	access, refreshToken, err := s.issueTokensLocked(id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to issue tokens"})
	}

	return c.JSON(http.StatusOK, models.LoginResponse{
		AccessToken:  access,
		RefreshToken: refreshToken,
		User:         s.users[id],
	})
}

func (s *Server) handleRefresh(c echo.Context) error {
	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "malformed body"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	userID, ok := s.refresh[body.RefreshToken]
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid refresh token"})
	}

	// one-time use: the presented token is burned and replaced
	delete(s.refresh, body.RefreshToken)

	access, rotated, err := s.issueTokensLocked(userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to issue tokens"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"accessToken":  access,
		"refreshToken": rotated,
	})
}

func (s *Server) handleRegister(c echo.Context) error {
	var body struct {
		Name     string      `json:"name"`
		Email    string      `json:"email"`
		Password string      `json:"password"`
		Role     models.Role `json:"role"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "malformed body"})
	}
	if body.Email == "" || body.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "email and password are required"})
	}
	if body.Role == "" {
		body.Role = models.RoleStudent
	}

	s.mu.Lock()
	if _, exists := s.byEmail[body.Email]; exists {
		s.mu.Unlock()
		return c.JSON(http.StatusConflict, echo.Map{"message": "email already registered"})
	}
	s.mu.Unlock()

	u := s.AddUser(body.Email, body.Name, body.Password, body.Role)

	s.mu.Lock()
	access, refreshToken, err := s.issueTokensLocked(u.ID)
	s.mu.Unlock()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to issue tokens"})
	}

	return c.JSON(http.StatusCreated, models.LoginResponse{
		AccessToken:  access,
		RefreshToken: refreshToken,
		User:         u,
	})
}

func pageParams(c echo.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ = strconv.Atoi(c.QueryParam("pageSize"))
	if pageSize < 1 {
		pageSize = 10
	}
	return page, pageSize
}

func paginate[T any](items []T, page, pageSize int) []T {
	start := (page - 1) * pageSize
	if start >= len(items) {
		return []T{}
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func (s *Server) handleListPosts(c echo.Context) error {
	page, pageSize := pageParams(c)
	search := strings.ToLower(c.QueryParam("search"))

	s.mu.Lock()
	posts := make([]models.Post, 0, len(s.posts))
	for _, p := range s.posts {
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Title), search) &&
			!strings.Contains(strings.ToLower(p.Content), search) {
			continue
		}
		posts = append(posts, *p)
	}
	s.mu.Unlock()

	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return posts[i].ID < posts[j].ID
	})

	return c.JSON(http.StatusOK, paginate(posts, page, pageSize))
}

func (s *Server) handleCreatePost(c echo.Context) error {
	var body struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "malformed body"})
	}
	if body.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "title is required"})
	}

	authorID := c.Get("userID").(string)
	now := time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	p := &models.Post{
		ID:        uuid.NewString(),
		Title:     body.Title,
		Content:   body.Content,
		AuthorID:  authorID,
		Author:    s.users[authorID],
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.posts[p.ID] = p
	return c.JSON(http.StatusCreated, p)
}

func (s *Server) handleGetPost(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[c.Param("id")]
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "post not found"})
	}
	return c.JSON(http.StatusOK, p)
}

func (s *Server) handleUpdatePost(c echo.Context) error {
	var body struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "malformed body"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[c.Param("id")]
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "post not found"})
	}
	if body.Title != "" {
		p.Title = body.Title
	}
	if body.Content != "" {
		p.Content = body.Content
	}
	p.UpdatedAt = time.Now().UTC()
	return c.JSON(http.StatusOK, p)
}

func (s *Server) handleDeletePost(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := c.Param("id")
	if _, ok := s.posts[id]; !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "post not found"})
	}
	delete(s.posts, id)
	delete(s.comments, id)
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleListComments(c echo.Context) error {
	page, pageSize := pageParams(c)
	postID := c.Param("id")

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[postID]; !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "post not found"})
	}

	all := s.comments[postID]
	total := len(all)
	totalPages := (total + pageSize - 1) / pageSize

	return c.JSON(http.StatusOK, models.Page[models.Comment]{
		Data:       paginate(all, page, pageSize),
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	})
}

func (s *Server) handleAddComment(c echo.Context) error {
	var body struct {
		Content string `json:"content"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "malformed body"})
	}

	postID := c.Param("id")
	authorID := c.Get("userID").(string)
	now := time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[postID]; !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "post not found"})
	}

	comment := models.Comment{
		ID:        uuid.NewString(),
		Content:   body.Content,
		AuthorID:  authorID,
		Author:    s.users[authorID],
		PostID:    postID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.comments[postID] = append(s.comments[postID], comment)
	return c.JSON(http.StatusCreated, comment)
}

func (s *Server) handleDeleteComment(c echo.Context) error {
	postID, commentID := c.Param("id"), c.Param("cid")

	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.comments[postID]
	for i, comment := range list {
		if comment.ID == commentID {
			s.comments[postID] = append(list[:i], list[i+1:]...)
			return c.NoContent(http.StatusNoContent)
		}
	}
	return c.JSON(http.StatusNotFound, echo.Map{"message": "comment not found"})
}

func (s *Server) handleListByRole(role models.Role) echo.HandlerFunc {
	return func(c echo.Context) error {
		page, pageSize := pageParams(c)
		search := strings.ToLower(c.QueryParam("search"))

		s.mu.Lock()
		users := make([]models.User, 0, len(s.users))
		for _, u := range s.users {
			if u.Role != role {
				continue
			}
			if search != "" &&
				!strings.Contains(strings.ToLower(u.Name), search) &&
				!strings.Contains(strings.ToLower(u.Email), search) {
				continue
			}
			users = append(users, *u)
		}
		s.mu.Unlock()

		sort.Slice(users, func(i, j int) bool { return users[i].Name < users[j].Name })
		return c.JSON(http.StatusOK, paginate(users, page, pageSize))
	}
}

func (s *Server) handleCreateUser(c echo.Context) error {
	var body struct {
		Email    string      `json:"email"`
		Name     string      `json:"name"`
		Password string      `json:"password"`
		Role     models.Role `json:"role"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "malformed body"})
	}
	if body.Email == "" || body.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "email and password are required"})
	}

	s.mu.Lock()
	_, exists := s.byEmail[body.Email]
	s.mu.Unlock()
	if exists {
		return c.JSON(http.StatusConflict, echo.Map{"message": "email already registered"})
	}

	u := s.AddUser(body.Email, body.Name, body.Password, body.Role)
	return c.JSON(http.StatusCreated, u)
}

func (s *Server) handleGetUser(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[c.Param("id")]
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
	}
	return c.JSON(http.StatusOK, u)
}

func (s *Server) handleUpdateUser(c echo.Context) error {
	var body struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "malformed body"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[c.Param("id")]
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
	}
	if body.Name != "" {
		u.Name = body.Name
	}
	u.UpdatedAt = time.Now().UTC()
	return c.JSON(http.StatusOK, u)
}

func (s *Server) handleDeleteUser(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := c.Param("id")
	u, ok := s.users[id]
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
	}
	delete(s.byEmail, u.Email)
	delete(s.users, id)
	delete(s.passwords, id)
	return c.NoContent(http.StatusNoContent)
}
