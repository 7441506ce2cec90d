package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

func (a *App) getStatus() string {
	current := a.auth.Current()
	if current.User == nil {
		return ""
	}
	return fmt.Sprintf("(%s %s)", current.User.Email, current.User.Role)
}

func (a *App) Root(ctx context.Context) {

	fmt.Println("Welcome to Ajudaê CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	// pick a persisted session back up before prompting for credentials
	if user := a.auth.Restore(ctx); user != nil {
		fmt.Printf("Restored session for %s\n", user.Email)
	}

	for {
		fmt.Printf("ajudae %s> ", a.getStatus())
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Println("Available commands: (l)ist, show, post, comment, teachers, students, logout, exit")
			} else {
				fmt.Println("Available commands: register, login, exit")
			}

		case "register":
			_ = a.Register(ctx)
		case "login":
			_ = a.Login(ctx)
		case "l", "list":
			a.list(ctx, strings.Join(args, " "))
		case "show":
			if len(args) == 0 {
				fmt.Println("Usage: show <id>")
				continue
			}
			a.show(ctx, args[0])
		case "post":
			_ = a.createPost(ctx)
		case "comment":
			if len(args) == 0 {
				fmt.Println("Usage: comment <post-id>")
				continue
			}
			_ = a.addComment(ctx, args[0])
		case "teachers":
			a.listTeachers(ctx, strings.Join(args, " "))
		case "students":
			a.listStudents(ctx, strings.Join(args, " "))
		case "logout":
			a.Logout(ctx)
		case "exit", "quit":
			fmt.Println("Bye!")
			return
		default:
			fmt.Println("Unknown command:", cmd)
		}
	}

}
