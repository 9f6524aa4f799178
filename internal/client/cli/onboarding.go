package cli

import (
	"context"
	"fmt"

	"github.com/levelquest/sessiongate/internal/client/models"
)

func (a *App) AcceptPolicy(ctx context.Context) {
	res := a.service.AcceptPolicy(ctx)
	printOutcome(res, "Policy accepted")
}

func (a *App) SelectMode(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Printf("Usage: select-mode <%s|%s>\n", models.ModeGamified, models.ModeStandard)
		return
	}

	mode := models.Mode(args[0])
	if mode != models.ModeGamified && mode != models.ModeStandard {
		fmt.Println("Unknown mode:", args[0])
		return
	}

	res := a.service.SelectMode(ctx, mode)
	printOutcome(res, fmt.Sprintf("Mode set to %s", mode))
}

func (a *App) Avatar(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Println("Usage: avatar <url>")
		return
	}

	res := a.service.CompleteAvatarSetup(ctx, args[0])
	printOutcome(res, "Avatar saved")
}
