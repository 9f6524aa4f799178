package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/levelquest/sessiongate/internal/client/session"
	"github.com/levelquest/sessiongate/internal/client/transport"
)

func (a *App) Login(ctx context.Context) {

	email, err := GetSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	password, err := GetPassword(os.Stdout)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	remember, err := GetSimpleText(a.reader, "Remember me? (y/n)", os.Stdout)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	rememberMe := strings.EqualFold(remember, "y")

	res := a.service.Login(ctx, email, password, rememberMe)
	printOutcome(res, "Logged in")
}

func (a *App) Register(ctx context.Context) {

	email, err := GetSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	name, err := GetSimpleText(a.reader, "Enter name", os.Stdout)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	password, err := GetPassword(os.Stdout)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	res := a.service.Register(ctx, transport.RegisterRequest{
		Email:    email,
		Name:     name,
		Password: password,
	})
	printOutcome(res, "Registered")
}

func (a *App) Logout(ctx context.Context) {
	res := a.service.Logout(ctx)
	printOutcome(res, "Logged out")
}

func printOutcome(res session.Result, successText string) {
	switch {
	case res.Success:
		if res.Redirect != "" {
			fmt.Printf("%s, next stop: %s\n", successText, res.Redirect)
		} else {
			fmt.Println(successText)
		}
	case res.PendingApproval:
		msg := res.Message
		if msg == "" {
			msg = "account pending approval"
		}
		fmt.Println(msg)
	default:
		fmt.Println("Failed:", res.Err)
	}
}
