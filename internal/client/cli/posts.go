package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ajudae/go-client/internal/client/api"
	"github.com/ajudae/go-client/internal/client/services"
)

const pageSize = 20

func (a *App) list(ctx context.Context, search string) {
	posts, err := a.posts.List(ctx, 1, pageSize, search)
	if err != nil {
		a.printErr(ctx, err)
		return
	}
	if len(posts) == 0 {
		fmt.Println("No posts")
		return
	}

	for _, p := range posts {
		author := p.AuthorID
		if p.Author != nil {
			author = p.Author.Name
		}
		fmt.Printf("%s  %s  (%s)\n", p.ID, p.Title, author)
	}
}

func (a *App) show(ctx context.Context, id string) {
	post, err := a.posts.Get(ctx, id)
	if err != nil {
		a.printErr(ctx, err)
		return
	}

	fmt.Printf("%s\n\n%s\n", post.Title, post.Content)

	comments, err := a.posts.Comments(ctx, id, 1, pageSize)
	if err != nil {
		a.printErr(ctx, err)
		return
	}
	if comments.Total > 0 {
		fmt.Printf("\nComments (%d):\n", comments.Total)
		for _, c := range comments.Data {
			author := c.AuthorID
			if c.Author != nil {
				author = c.Author.Name
			}
			fmt.Printf("  %s: %s\n", author, c.Content)
		}
	}
}

func (a *App) createPost(ctx context.Context) error {
	title, err := getSimpleText(a.reader, "Title", os.Stdout)
	if err != nil {
		return err
	}

	content, err := GetMultiline(a.reader, "Content", os.Stdout)
	if err != nil {
		return err
	}

	post, err := a.posts.Create(ctx, services.PostInput{Title: title, Content: content})
	if err != nil {
		a.printErr(ctx, err)
		return err
	}

	fmt.Println("Created post", post.ID)
	return nil
}

func (a *App) addComment(ctx context.Context, postID string) error {
	content, err := getSimpleText(a.reader, "Comment", os.Stdout)
	if err != nil {
		return err
	}

	if _, err := a.posts.AddComment(ctx, postID, content); err != nil {
		a.printErr(ctx, err)
		return err
	}

	fmt.Println("Comment added")
	return nil
}

// printErr translates client errors into user-facing messages. A session
// that could not be refreshed has already been cleared, so the user is told
// to sign in again.
func (a *App) printErr(ctx context.Context, err error) {
	switch {
	case errors.Is(err, api.ErrSessionExpired):
		fmt.Println("Session expired, please login again")
	case errors.Is(err, api.ErrUnauthorized):
		fmt.Println("Not authorized, please login")
	case errors.Is(err, api.ErrUnavailable):
		fmt.Println("Server unavailable, try again later")
	default:
		fmt.Println("Error:", err.Error())
	}
	a.log.Debug(ctx, "command failed", "error", err)
}
