package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

func (a *App) getStatus() string {
	user := a.service.CurrentUser()
	if user == nil {
		return ""
	}
	s := user.Email
	if mode := user.Flow.SelectedMode; mode != "" {
		s = s + " " + string(mode)
	}
	return fmt.Sprintf("(%s)", s)
}

func (a *App) Root(ctx context.Context) {

	fmt.Println("Welcome to LevelQuest CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	// Pick up a session persisted by a previous run.
	if res := a.service.Restore(ctx); res.Success {
		fmt.Printf("Session restored, next stop: %s\n", res.Redirect)
	}

	for {
		fmt.Printf("lq %s> ", a.getStatus())
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
				fmt.Println("Available commands: status, sync, accept-policy, select-mode, avatar, logout, exit")
			} else {
				fmt.Println("Available commands: register, login, exit")
			}

		case "register":
			a.Register(ctx)

		case "login":
			a.Login(ctx)

		case "logout":
			a.Logout(ctx)

		case "status":
			a.Status(ctx)

		case "sync":
			a.Sync(ctx)

		case "accept-policy":
			a.AcceptPolicy(ctx)

		case "select-mode":
			a.SelectMode(ctx, args)

		case "avatar":
			a.Avatar(ctx, args)

		case "exit":
			return

		default:
			fmt.Println("Unknown command:", cmd)
		}
	}
}
