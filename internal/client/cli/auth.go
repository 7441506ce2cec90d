package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ajudae/go-client/internal/client/api"
	"github.com/ajudae/go-client/internal/client/models"
	"github.com/ajudae/go-client/internal/shared"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for the new account's details and signs the user in on
// success. The password byte slice is wiped before returning.
func (a *App) Register(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter name", os.Stdout)
	if err != nil {
		return err
	}

	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	role, err := getSimpleText(a.reader, "Role (professor/student, default student)", os.Stdout)
	if err != nil {
		return err
	}
	if role == "" {
		role = string(models.RoleStudent)
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(password)

	user, err := a.auth.Register(ctx, name, email, string(password), models.Role(role))
	if err != nil {
		fmt.Println("Registration failed:", err.Error())
		return err
	}

	fmt.Printf("Welcome, %s!\n", user.Name)
	return nil
}

// Login prompts for credentials and authenticates. Backend rejections and
// connectivity failures are reported differently so the user knows whether
// to retry the password or the network.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(password)

	user, err := a.auth.Login(ctx, email, string(password))
	if err != nil {
		switch {
		case errors.Is(err, api.ErrUnauthorized):
			fmt.Println("Invalid email or password")
		case errors.Is(err, api.ErrUnavailable):
			fmt.Println("Server unavailable, try again later")
		default:
			fmt.Println("Login failed:", err.Error())
		}
		return err
	}

	fmt.Printf("Signed in as %s (%s)\n", user.Name, user.Role)
	return nil
}

// Logout ends the session. Safe to call when already signed out.
func (a *App) Logout(ctx context.Context) {
	a.auth.Logout(ctx)
	fmt.Println("Signed out")
}
