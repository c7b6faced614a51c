package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/diogo/nexus-go/internal/app"
	"github.com/diogo/nexus-go/pkg/models"
)

const shellHelp = `Start an interactive session. Mode and tone stick between queries.

Commands:
  :mode [name]          show or set the mode
  :tone [name]          show or set the tone
  :image <path> [text]  search with an attached image
  :save                 save the last query
  :history              list recent queries
  :saved                list saved searches
  :theme                toggle light/dark
  :clear                clear history
  :quit                 leave`

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive search session",
	Long:  shellHelp,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		s, err := openSession(ctx, true)
		if err != nil {
			return err
		}
		defer s.Close()

		return runShell(ctx, s.app, os.Stdin, os.Stdout)
	},
}

// parseShellCommand splits a ":name arg" line. isCommand is false for queries.
func parseShellCommand(line string) (name, arg string, isCommand bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, ":") {
		return "", line, false
	}
	name, arg, _ = strings.Cut(line[1:], " ")
	return strings.ToLower(name), strings.TrimSpace(arg), true
}

// runShell reads queries and commands from in until EOF, :quit or ctx ends.
func runShell(ctx context.Context, a *app.App, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)

	for {
		st := a.State()
		fmt.Fprintf(out, "nexus [%s/%s]> ", st.Mode, st.Tone)

		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}

		name, arg, isCommand := parseShellCommand(scanner.Text())
		if !isCommand {
			if arg == "" {
				continue
			}
			shellSearch(ctx, a, arg, nil)
			continue
		}

		if quit := shellCommand(ctx, a, name, arg, out); quit {
			return nil
		}
	}
}

func shellSearch(ctx context.Context, a *app.App, raw string, visual *models.VisualInput) {
	if _, err := search(ctx, a, raw, visual); err != nil && !errors.Is(err, errReported) {
		render.RenderError(err)
	}
}

// shellCommand runs one ":" command and reports whether to quit.
func shellCommand(ctx context.Context, a *app.App, name, arg string, out io.Writer) bool {
	switch name {
	case "q", "quit", "exit":
		return true

	case "mode":
		if arg == "" {
			fmt.Fprintln(out, a.State().Mode)
			return false
		}
		mode := models.Mode(arg)
		if mode == models.ModeLive {
			render.RenderWarning("live mode runs through 'nexus live'")
			return false
		}
		if err := a.SetMode(mode); err != nil {
			render.RenderError(err)
		}

	case "tone":
		if arg == "" {
			fmt.Fprintln(out, a.State().Tone)
			return false
		}
		if err := a.SetTone(models.Tone(arg)); err != nil {
			render.RenderError(err)
		}

	case "image":
		path, text, _ := strings.Cut(arg, " ")
		if path == "" {
			render.RenderError(fmt.Errorf("usage: :image <path> [text]"))
			return false
		}
		visual, err := loadVisual(path)
		if err != nil {
			render.RenderError(err)
			return false
		}
		shellSearch(ctx, a, text, visual)

	case "save":
		if err := a.SaveCurrent(); err != nil {
			if errors.Is(err, app.ErrNoCurrentQuery) {
				render.RenderWarning("nothing to save yet")
				return false
			}
			render.RenderError(err)
			return false
		}
		render.RenderSuccess("Added to saved searches")

	case "history":
		render.RenderHistory(a.State().History)

	case "saved":
		render.RenderSaved(a.State().Saved)

	case "theme":
		theme, err := a.ToggleTheme()
		if err != nil {
			render.RenderError(err)
			return false
		}
		setTheme(theme)
		render.RenderSuccess(fmt.Sprintf("Theme set to %s", theme))

	case "clear":
		if err := a.ClearHistory(); err != nil {
			render.RenderError(err)
			return false
		}
		render.RenderSuccess("History cleared")

	case "help", "?":
		fmt.Fprintln(out, shellHelp)

	default:
		render.RenderWarning(fmt.Sprintf("unknown command :%s (try :help)", name))
	}
	return false
}
