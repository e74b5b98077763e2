package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/admin"
	"github.com/dmitrijs2005/gophauth/internal/api"
)

var ErrUsage = errors.New("usage")

type command struct {
	usage string
	args  int
	auth  bool
	run   func(a *App, ctx context.Context, args []string) error
}

var commands = map[string]command{
	"login":    {usage: "login", run: (*App).Login},
	"logout":   {usage: "logout", auth: true, run: (*App).Logout},
	"refresh":  {usage: "refresh", auth: true, run: (*App).RefreshTokens},
	"forgot":   {usage: "forgot <email>", args: 1, run: (*App).Forgot},
	"reset":    {usage: "reset <token>", args: 1, run: (*App).Reset},
	"users":    {usage: "users [page] [size]", auth: true, run: (*App).Users},
	"user":     {usage: "user <id>", args: 1, auth: true, run: (*App).User},
	"adduser":  {usage: "adduser", auth: true, run: (*App).AddUser},
	"deluser":  {usage: "deluser <id>", args: 1, auth: true, run: (*App).DeleteUser},
	"grant":    {usage: "grant <user id> <scope>", args: 2, auth: true, run: (*App).Grant},
	"revoke":   {usage: "revoke <user id> <scope>", args: 2, auth: true, run: (*App).Revoke},
	"scopes":   {usage: "scopes", auth: true, run: (*App).Scopes},
	"addscope": {usage: "addscope <id>", args: 1, auth: true, run: (*App).AddScope},
	"delscope": {usage: "delscope <id>", args: 1, auth: true, run: (*App).DeleteScope},
}

func (a *App) Login(ctx context.Context, _ []string) error {
	email, err := admin.GetSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	password, err := a.password("Password")
	if err != nil {
		return err
	}

	pair, err := a.client.Login(ctx, email, password)
	if err != nil {
		return err
	}

	a.email, a.userID = email, pair.UserID
	fmt.Fprintf(a.out, "Logged in as %s (session valid until %s)\n", pair.UserID, pair.RefreshTokenExpiresAt.Format(time.RFC3339))
	return nil
}

func (a *App) Logout(_ context.Context, _ []string) error {
	a.client.SetTokens("", "")
	a.email, a.userID = "", ""
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) RefreshTokens(ctx context.Context, _ []string) error {
	pair, err := a.client.Refresh(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Access token renewed until %s\n", pair.AccessTokenExpiresAt.Format(time.RFC3339))
	return nil
}

func (a *App) Forgot(ctx context.Context, args []string) error {
	resp, err := a.client.ForgottenPassword(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Reset link sent, valid until %s\n", resp.ExpiresAt.Format(time.RFC3339))
	return nil
}

func (a *App) Reset(ctx context.Context, args []string) error {
	password, err := a.newPassword()
	if err != nil {
		return err
	}
	if err := a.client.UpdatePassword(ctx, args[0], password); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Password updated")
	return nil
}

func (a *App) Users(ctx context.Context, args []string) error {
	req := &api.ListUsersRequest{}
	var err error
	if len(args) > 0 {
		if req.Page, err = strconv.Atoi(args[0]); err != nil {
			return fmt.Errorf("%w: page must be a number", ErrUsage)
		}
	}
	if len(args) > 1 {
		if req.Size, err = strconv.Atoi(args[1]); err != nil {
			return fmt.Errorf("%w: size must be a number", ErrUsage)
		}
	}

	resp, err := a.client.ListUsers(ctx, req)
	if err != nil {
		return err
	}
	for _, u := range resp.Data {
		fmt.Fprintf(a.out, "%s  %s  %s %s\n", u.ID, u.Email, u.Firstname, u.Lastname)
	}
	fmt.Fprintf(a.out, "%d of %d users\n", len(resp.Data), resp.Total)
	return nil
}

func (a *App) User(ctx context.Context, args []string) error {
	u, err := a.client.GetUser(ctx, args[0])
	if err != nil {
		return err
	}
	scopes, err := a.client.GetUserScopes(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s  %s  %s %s\nscopes: %s\n", u.ID, u.Email, u.Firstname, u.Lastname, strings.Join(scopes, ", "))
	return nil
}

func (a *App) AddUser(ctx context.Context, _ []string) error {
	req := &api.CreateUserRequest{}
	var err error

	if req.Lastname, err = admin.GetSimpleText(a.reader, "Lastname", a.out); err != nil {
		return err
	}
	if req.Firstname, err = admin.GetSimpleText(a.reader, "Firstname", a.out); err != nil {
		return err
	}
	if req.Email, err = admin.GetSimpleText(a.reader, "Email", a.out); err != nil {
		return err
	}
	if req.Password, err = a.newPassword(); err != nil {
		return err
	}
	scopes, err := admin.GetSimpleText(a.reader, "Scopes, comma separated", a.out)
	if err != nil {
		return err
	}
	req.Scopes = admin.ParseScopes(scopes)

	u, err := a.client.CreateUser(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "User %s created with id %s\n", u.Email, u.ID)
	return nil
}

func (a *App) DeleteUser(ctx context.Context, args []string) error {
	if err := a.client.DeleteUser(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "User %s deleted\n", args[0])
	return nil
}

func (a *App) Grant(ctx context.Context, args []string) error {
	if err := a.client.AddUserScope(ctx, args[0], args[1]); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Scope %s granted to %s\n", args[1], args[0])
	return nil
}

func (a *App) Revoke(ctx context.Context, args []string) error {
	if err := a.client.RemoveUserScope(ctx, args[0], args[1]); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Scope %s revoked from %s\n", args[1], args[0])
	return nil
}

func (a *App) Scopes(ctx context.Context, _ []string) error {
	scopes, err := a.client.ListScopes(ctx)
	if err != nil {
		return err
	}
	for _, s := range scopes {
		fmt.Fprintf(a.out, "%s  (since %s)\n", s.ID, s.CreatedAt.Format(time.DateOnly))
	}
	return nil
}

func (a *App) AddScope(ctx context.Context, args []string) error {
	s, err := a.client.CreateScope(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Scope %s created\n", s.ID)
	return nil
}

func (a *App) DeleteScope(ctx context.Context, args []string) error {
	if err := a.client.DeleteScope(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Scope %s deleted\n", args[0])
	return nil
}

func (a *App) newPassword() (string, error) {
	password, err := a.password("New password")
	if err != nil {
		return "", err
	}
	confirm, err := a.password("Confirm password")
	if err != nil {
		return "", err
	}
	if password != confirm {
		return "", admin.ErrPasswordMismatch
	}
	return password, nil
}
