package cli

import (
	"context"
	"fmt"

	"github.com/levelquest/sessiongate/internal/client/models"
)

func (a *App) Status(ctx context.Context) {
	user := a.service.CurrentUser()
	if user == nil {
		fmt.Println("Not signed in")
		return
	}

	fmt.Printf("Signed in as %s (%s)\n", user.Name, user.Email)
	if user.Department != "" {
		fmt.Println("Department:", user.Department)
	}
	fmt.Printf("Mode: %s\n", modeLabel(user.Flow.SelectedMode))
	fmt.Printf("Level %d, %d XP, %d coins, %d tokens, streak %d\n",
		user.Stats.Level, user.TotalXP(), user.Stats.Coins, user.Stats.Tokens, user.Stats.Streak)

	status := a.service.FlowStatus(ctx)
	fmt.Println("Next stop:", status.Redirect())
}

func (a *App) Sync(ctx context.Context) {
	res := a.service.RefreshUserData(ctx)
	printOutcome(res, "Profile synced")
}

func modeLabel(m models.Mode) string {
	if m == "" {
		return "not chosen"
	}
	return string(m)
}
