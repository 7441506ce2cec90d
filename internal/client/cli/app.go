// Package cli is the interactive terminal front end of the Ajudaê client.
// It wires the credential vault, session manager and API client together and
// runs a small REPL over the application services.
package cli

import (
	"bufio"
	"context"
	"os"

	"github.com/ajudae/go-client/internal/client/api"
	"github.com/ajudae/go-client/internal/client/config"
	"github.com/ajudae/go-client/internal/client/credstore"
	"github.com/ajudae/go-client/internal/client/models"
	"github.com/ajudae/go-client/internal/client/services"
	"github.com/ajudae/go-client/internal/client/session"
	"github.com/ajudae/go-client/internal/logging"
)

// authService and the listing interfaces below define the command surface
// the REPL needs. The real services satisfy them; tests provide stubs.
type authService interface {
	Login(ctx context.Context, email, password string) (*models.User, error)
	Register(ctx context.Context, name, email, password string, role models.Role) (*models.User, error)
	Logout(ctx context.Context)
	Restore(ctx context.Context) *models.User
	Current() session.Session
	IsSignedIn() bool
}

type postService interface {
	List(ctx context.Context, page, pageSize int, search string) ([]models.Post, error)
	Get(ctx context.Context, id string) (*models.Post, error)
	Create(ctx context.Context, in services.PostInput) (*models.Post, error)
	Comments(ctx context.Context, postID string, page, pageSize int) (*models.Page[models.Comment], error)
	AddComment(ctx context.Context, postID, content string) (*models.Comment, error)
}

type teacherService interface {
	List(ctx context.Context, page, pageSize int, search string) ([]models.Teacher, error)
}

type studentService interface {
	List(ctx context.Context, page, pageSize int, search string) ([]models.Student, error)
}

type App struct {
	config   *config.Config
	auth     authService
	posts    postService
	teachers teacherService
	students studentService
	store    *credstore.SQLiteStore
	log      logging.Logger
	reader   *bufio.Reader
}

func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	store, err := credstore.Open(ctx, c.VaultDSN, c.KeyPath)
	if err != nil {
		log.Error(ctx, "failed to open credential vault", "error", err)
		return nil, err
	}

	sessions := session.NewManager(store, log)
	apiClient := api.New(api.Options{
		BaseURL:     c.APIBaseURL,
		Timeout:     c.RequestTimeout,
		Credentials: sessions,
		Logger:      log,
	})

	return &App{
		config:   c,
		auth:     services.NewAuthService(apiClient, sessions, log),
		posts:    services.NewPostService(apiClient),
		teachers: services.NewTeacherService(apiClient),
		students: services.NewStudentService(apiClient),
		store:    store,
		log:      log,
		reader:   bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.store.Close()
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.auth.IsSignedIn()
}
