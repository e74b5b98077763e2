package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/api"
)

// runREPL reads one command per line from r and dispatches it to a. Command
// errors are reported and the loop goes on; it ends on EOF, "exit" or "quit".
func runREPL(ctx context.Context, a *App, r *bufio.Reader) {
	for {
		fmt.Fprint(a.out, a.status())

		line, err := r.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		name, args := parts[0], parts[1:]

		switch name {
		case "help":
			printHelp(a)
			continue
		case "exit", "quit":
			fmt.Fprintln(a.out, "Bye!")
			return
		}

		cmd, ok := commands[name]
		if !ok {
			fmt.Fprintln(a.out, "Unknown command:", name)
			continue
		}
		if len(args) < cmd.args {
			fmt.Fprintln(a.out, "Usage:", cmd.usage)
			continue
		}
		if cmd.auth && !a.isLoggedIn() {
			fmt.Fprintln(a.out, "Please login first")
			continue
		}

		if err := cmd.run(a, ctx, args); err != nil {
			reportError(a, err)
		}
	}
}

func reportError(a *App, err error) {
	switch {
	case errors.Is(err, api.ErrUnauthorized):
		// the client already tried to refresh; the session is gone or lacks scope
		fmt.Fprintln(a.out, "Not authorized. Login again or ask for the required scope.")
	case errors.Is(err, api.ErrUnavailable):
		fmt.Fprintln(a.out, "Server unavailable, try again later.")
	default:
		fmt.Fprintln(a.out, "Error:", err)
	}
}

func printHelp(a *App) {
	names := make([]string, 0, len(commands))
	for _, cmd := range commands {
		if !cmd.auth || a.isLoggedIn() {
			names = append(names, cmd.usage)
		}
	}
	sort.Strings(names)
	fmt.Fprintln(a.out, "Available commands:")
	for _, n := range names {
		fmt.Fprintln(a.out, "  "+n)
	}
	fmt.Fprintln(a.out, "  exit")
}
