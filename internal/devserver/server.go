// Package devserver is an in-memory implementation of the Ajudaê backend
// auth contract, used for local development and end-to-end tests of the
// client. It issues HS256 access tokens with a configurable TTL and rotates
// refresh tokens on every exchange.
package devserver

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ajudae/go-client/internal/client/models"
	"github.com/ajudae/go-client/internal/shared"
)

const defaultAccessTTL = 15 * time.Minute

// Options configures the dev server. A nil Secret gets a random one; a zero
// AccessTTL defaults to 15 minutes.
type Options struct {
	Secret    []byte
	AccessTTL time.Duration
}

// Server holds the in-memory state behind the REST handlers. All maps are
// guarded by mu; handlers may run on parallel connections.
type Server struct {
	e         *echo.Echo
	secret    []byte
	accessTTL time.Duration

	mu        sync.Mutex
	users     map[string]*models.User // id -> user
	byEmail   map[string]string       // email -> id
	passwords map[string]string       // id -> password
	refresh   map[string]string       // refresh token -> user id
	posts     map[string]*models.Post
	comments  map[string][]models.Comment // post id -> comments
}

// New builds a Server with two seeded demo accounts:
// teacher@ajudae.dev/teacher123 and student@ajudae.dev/student123.
func New(opts Options) *Server {
	secret := opts.Secret
	if secret == nil {
		secret = shared.RandBytes(32)
	}
	ttl := opts.AccessTTL
	if ttl == 0 {
		ttl = defaultAccessTTL
	}

	s := &Server{
		e:         echo.New(),
		secret:    secret,
		accessTTL: ttl,
		users:     make(map[string]*models.User),
		byEmail:   make(map[string]string),
		passwords: make(map[string]string),
		refresh:   make(map[string]string),
		posts:     make(map[string]*models.Post),
		comments:  make(map[string][]models.Comment),
	}
	s.e.HideBanner = true
	s.routes()

	s.AddUser("teacher@ajudae.dev", "Ana Souza", "teacher123", models.RoleTeacher)
	s.AddUser("student@ajudae.dev", "Bruno Lima", "student123", models.RoleStudent)
	return s
}

func (s *Server) routes() {
	s.e.POST("/auth/login", s.handleLogin)
	s.e.POST("/auth/refresh", s.handleRefresh)
	s.e.POST("/auth/register", s.handleRegister)

	authed := s.e.Group("", s.requireAuth)
	authed.GET("/posts", s.handleListPosts)
	authed.POST("/posts", s.handleCreatePost)
	authed.GET("/posts/:id", s.handleGetPost)
	authed.PATCH("/posts/:id", s.handleUpdatePost)
	authed.DELETE("/posts/:id", s.handleDeletePost)
	authed.GET("/posts/:id/comments", s.handleListComments)
	authed.POST("/posts/:id/comments", s.handleAddComment)
	authed.DELETE("/posts/:id/comments/:cid", s.handleDeleteComment)

	authed.GET("/users/professores", s.handleListByRole(models.RoleTeacher))
	authed.GET("/users/estudantes", s.handleListByRole(models.RoleStudent))
	authed.POST("/users", s.handleCreateUser)
	authed.GET("/users/:id", s.handleGetUser)
	authed.PATCH("/users/:id", s.handleUpdateUser)
	authed.DELETE("/users/:id", s.handleDeleteUser)
}

// Handler exposes the server as an http.Handler for httptest.
func (s *Server) Handler() http.Handler {
	return s.e
}

// Start serves on addr until the process exits.
func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

// AddUser creates an account and returns it. Used for seeding and tests.
func (s *Server) AddUser(email, name, password string, role models.Role) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	u := &models.User{
		ID:        uuid.NewString(),
		Email:     email,
		Name:      name,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.users[u.ID] = u
	s.byEmail[email] = u.ID
	s.passwords[u.ID] = password
	return u
}

// mintAccessToken signs a short-lived HS256 token for the user.
func (s *Server) mintAccessToken(userID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// issueTokens mints an access token and a fresh refresh token for userID.
// Caller must hold mu.
func (s *Server) issueTokensLocked(userID string) (access, refreshToken string, err error) {
	access, err = s.mintAccessToken(userID)
	if err != nil {
		return "", "", err
	}
	refreshToken = uuid.NewString()
	s.refresh[refreshToken] = userID
	return access, refreshToken, nil
}

// requireAuth validates the bearer token and stores the caller's user id in
// the request context.
func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "missing token"})
		}

		claims := &jwt.RegisteredClaims{}
		_, err := jwt.ParseWithClaims(strings.TrimPrefix(header, "Bearer "), claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, echo.NewHTTPError(http.StatusUnauthorized)
			}
			return s.secret, nil
		})
		if err != nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "token expired"})
		}

		s.mu.Lock()
		_, known := s.users[claims.Subject]
		s.mu.Unlock()
		if !known {
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unknown user"})
		}

		c.Set("userID", claims.Subject)
		return next(c)
	}
}
