package commands

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"chessdb/internal/client/display"
	"chessdb/internal/position"
)

func (r *Registry) registerDebugCommands() {
	r.Register(&Command{
		Name:        "canon",
		ShortName:   "k",
		Description: "Show the canonical key of a position or of the board",
		Usage:       "canon [fen]",
		Handler:     canonHandler,
	})

	r.Register(&Command{
		Name:        "url",
		ShortName:   "/",
		Description: "Show or set API base URL",
		Usage:       "url [apiUrl]",
		Handler:     urlHandler,
	})

	r.Register(&Command{
		Name:        "raw",
		ShortName:   ":",
		Description: "Send raw API GET request",
		Usage:       "raw <path>",
		Handler:     rawRequestHandler,
	})

	r.Register(&Command{
		Name:        "clear",
		ShortName:   "-",
		Description: "Clear screen",
		Usage:       "clear",
		Handler:     clearHandler,
	})
}

func canonHandler(_ context.Context, sh *Shell, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(sh.Out, sh.Session.Board().Key())
		return nil
	}
	p, err := position.Parse(strings.Join(args, " "))
	if err != nil {
		return err
	}
	fmt.Fprintln(sh.Out, position.Canonicalize(p))
	return nil
}

func urlHandler(_ context.Context, sh *Shell, args []string) error {
	if len(args) == 0 {
		fmt.Fprintf(sh.Out, "Current API URL: %s\n", sh.Client.BaseURL)
		return nil
	}

	url := args[0]
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "http://" + url
	}

	sh.Client.SetBaseURL(url)
	fmt.Fprintf(sh.Out, "%sAPI URL set to: %s%s\n", display.Cyan, sh.Client.BaseURL, display.Reset)
	return nil
}

func rawRequestHandler(ctx context.Context, sh *Shell, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: raw <path>")
	}
	raw, err := sh.Client.Raw(ctx, args[0])
	if err != nil {
		return err
	}
	display.PrettyPrintJSON(sh.Out, raw)
	return nil
}

func clearHandler(_ context.Context, sh *Shell, _ []string) error {
	cmd := exec.Command("clear")
	cmd.Stdout = os.Stdout
	return cmd.Run()
}
