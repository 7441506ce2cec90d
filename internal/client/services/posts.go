package services

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ajudae/go-client/internal/client/models"
)

// Doer dispatches one JSON request. Implemented by api.Client.
type Doer interface {
	Do(ctx context.Context, method, path string, query url.Values, in, out any) error
}

// PostService wraps the post and comment endpoints. No auth or retry logic
// lives here; all of that belongs to the dispatcher.
type PostService struct {
	api Doer
}

// NewPostService constructs a PostService.
func NewPostService(api Doer) *PostService {
	return &PostService{api: api}
}

func pageQuery(page, pageSize int, search string) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("pageSize", strconv.Itoa(pageSize))
	if search != "" {
		q.Set("search", search)
	}
	return q
}

// List returns a page of posts, optionally filtered by search.
func (s *PostService) List(ctx context.Context, page, pageSize int, search string) ([]models.Post, error) {
	var posts []models.Post
	err := s.api.Do(ctx, http.MethodGet, "/posts", pageQuery(page, pageSize, search), nil, &posts)
	return posts, err
}

// Get returns a single post.
func (s *PostService) Get(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	if err := s.api.Do(ctx, http.MethodGet, "/posts/"+url.PathEscape(id), nil, nil, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// PostInput is the payload for creating or updating a post.
type PostInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Create publishes a new post.
func (s *PostService) Create(ctx context.Context, in PostInput) (*models.Post, error) {
	var post models.Post
	if err := s.api.Do(ctx, http.MethodPost, "/posts", nil, in, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// Update edits an existing post.
func (s *PostService) Update(ctx context.Context, id string, in PostInput) (*models.Post, error) {
	var post models.Post
	if err := s.api.Do(ctx, http.MethodPatch, "/posts/"+url.PathEscape(id), nil, in, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// Delete removes a post.
func (s *PostService) Delete(ctx context.Context, id string) error {
	return s.api.Do(ctx, http.MethodDelete, "/posts/"+url.PathEscape(id), nil, nil, nil)
}

// Comments returns a page of comments for a post.
func (s *PostService) Comments(ctx context.Context, postID string, page, pageSize int) (*models.Page[models.Comment], error) {
	var out models.Page[models.Comment]
	path := "/posts/" + url.PathEscape(postID) + "/comments"
	if err := s.api.Do(ctx, http.MethodGet, path, pageQuery(page, pageSize, ""), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AddComment attaches a comment to a post.
func (s *PostService) AddComment(ctx context.Context, postID, content string) (*models.Comment, error) {
	var comment models.Comment
	path := "/posts/" + url.PathEscape(postID) + "/comments"
	in := map[string]string{"content": content}
	if err := s.api.Do(ctx, http.MethodPost, path, nil, in, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// DeleteComment removes a comment from a post.
func (s *PostService) DeleteComment(ctx context.Context, postID, commentID string) error {
	path := "/posts/" + url.PathEscape(postID) + "/comments/" + url.PathEscape(commentID)
	return s.api.Do(ctx, http.MethodDelete, path, nil, nil, nil)
}
