// Package admin implements the interactive bootstrap of the first accounts:
// it prompts for the user's details and creates the user directly through
// the user service, bypassing the network front ends.
package admin

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
)

var ErrPasswordMismatch = errors.New("passwords do not match")

// DefaultScopes are granted when the scope prompt is left empty.
var DefaultScopes = []string{auth.ScopeAdmin, auth.ScopeUsers}

type UserCreator interface {
	Create(ctx context.Context, in services.CreateUserInput) (*models.User, error)
}

// Prompt collects the new user's details from reader, echoing prompts to w.
func Prompt(reader *bufio.Reader, w io.Writer) (services.CreateUserInput, error) {
	var in services.CreateUserInput
	var err error

	if in.Lastname, err = GetSimpleText(reader, "Lastname", w); err != nil {
		return in, err
	}
	if in.Firstname, err = GetSimpleText(reader, "Firstname", w); err != nil {
		return in, err
	}
	if in.Email, err = GetSimpleText(reader, "Email", w); err != nil {
		return in, err
	}

	if in.Password, err = GetPassword("Password", w); err != nil {
		return in, err
	}
	confirm, err := GetPassword("Confirm password", w)
	if err != nil {
		return in, err
	}
	if confirm != in.Password {
		return in, ErrPasswordMismatch
	}

	prompt := fmt.Sprintf("Scopes, comma separated (empty for %s)", strings.Join(DefaultScopes, ","))
	scopes, err := GetSimpleText(reader, prompt, w)
	if err != nil && !errors.Is(err, io.EOF) {
		return in, err
	}
	in.Scopes = ParseScopes(scopes)
	if len(in.Scopes) == 0 {
		in.Scopes = DefaultScopes
	}

	return in, nil
}

// Run prompts for a user and creates it with c.
func Run(ctx context.Context, c UserCreator, reader *bufio.Reader, w io.Writer) error {
	in, err := Prompt(reader, w)
	if err != nil {
		return err
	}

	u, err := c.Create(ctx, in)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	fmt.Fprintf(w, "User %s created with id %s (scopes: %s)\n", u.Email, u.ID, strings.Join(in.Scopes, ", "))
	return nil
}
