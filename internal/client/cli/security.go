package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/velora-digital/siteauth/internal/common"
)

// Passwd changes the account password. The session stays valid afterwards.
func (a *App) Passwd(ctx context.Context) error {
	current, err := getPassword("Enter current password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(current)

	password, err := getPassword("Enter new password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirmation, err := getPassword("Confirm new password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirmation)

	if err := a.security.ChangePassword(ctx, string(current), string(password), string(confirmation)); err != nil {
		printlnFn("Password change failed:", err)
		return err
	}
	printlnFn("Password changed.")
	return nil
}

func (a *App) History(ctx context.Context) error {
	answer, err := getSimpleText(a.reader, "How many events? (Enter for default)", os.Stdout)
	if err != nil {
		return err
	}
	limit := 0
	if answer != "" {
		limit, err = strconv.Atoi(answer)
		if err != nil {
			printlnFn("Not a number:", answer)
			return err
		}
	}

	events, err := a.security.LoginHistory(ctx, limit)
	if err != nil {
		printlnFn("Could not fetch login history:", err)
		return err
	}
	if len(events) == 0 {
		printlnFn("No login events.")
		return nil
	}

	for _, e := range events {
		outcome := "ok"
		if !e.Succeeded {
			outcome = "FAILED"
		}
		printlnFn(fmt.Sprintf("%s  %-15s  %-6s  %s",
			e.CreatedAt.Format("2006-01-02 15:04"), e.IPAddress, outcome, e.UserAgent))
	}
	return nil
}

func (a *App) Sessions(ctx context.Context) error {
	sessions, err := a.security.Sessions(ctx)
	if err != nil {
		printlnFn("Could not fetch sessions:", err)
		return err
	}
	if len(sessions) == 0 {
		printlnFn("No active sessions.")
		return nil
	}

	for _, s := range sessions {
		marker := " "
		if s.Current {
			marker = "*"
		}
		printlnFn(fmt.Sprintf("%s %-12s  %-15s  last active %s",
			marker, s.ID, s.IPAddress, s.LastActive.Format("2006-01-02 15:04")))
	}
	printlnFn("(* marks this session; use 'revoke <id>' to terminate one)")
	return nil
}

func (a *App) Revoke(ctx context.Context, id string) error {
	if err := a.security.RevokeSession(ctx, id); err != nil {
		printlnFn("Could not revoke session:", err)
		return err
	}
	printlnFn("Session revoked:", id)
	return nil
}
