// Package ui handles terminal output and formatting.
package ui

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/nexus-go/internal/live"
	"github.com/diogo/nexus-go/pkg/models"
)

// Renderer handles terminal output formatting.
type Renderer struct {
	out       io.Writer
	mdRender  *glamour.TermRenderer
	width     int
	useColors bool
	theme     models.Theme
}

// Styles for different output elements.
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")).
			MarginBottom(1)

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))

	SuccessStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("82"))

	WarningStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	CitationStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Underline(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	TagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212"))

	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("99")).
			Padding(0, 1)
)

// ResolveTheme returns t when set, otherwise the terminal background's theme.
func ResolveTheme(t models.Theme) models.Theme {
	if models.IsValidTheme(t) {
		return t
	}
	if lipgloss.HasDarkBackground() {
		return models.ThemeDark
	}
	return models.ThemeLight
}

// NewRenderer creates a new output renderer.
func NewRenderer() (*Renderer, error) {
	return NewRendererWithOptions(os.Stdout, 80, true, "")
}

// NewRendererWithOptions creates a renderer with custom options. An unset
// theme follows the terminal background.
func NewRendererWithOptions(out io.Writer, width int, useColors bool, theme models.Theme) (*Renderer, error) {
	theme = ResolveTheme(theme)

	style := string(theme)
	if !useColors {
		style = "notty"
	}

	mdRender, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		// Fallback to basic renderer
		mdRender, _ = glamour.NewTermRenderer(
			glamour.WithWordWrap(width),
		)
	}

	return &Renderer{
		out:       out,
		mdRender:  mdRender,
		width:     width,
		useColors: useColors,
		theme:     theme,
	}, nil
}

// WithTheme returns a renderer with the same output and width using theme.
func (r *Renderer) WithTheme(theme models.Theme) (*Renderer, error) {
	return NewRendererWithOptions(r.out, r.width, r.useColors, theme)
}

// Theme returns the theme the renderer was built with.
func (r *Renderer) Theme() models.Theme {
	return r.theme
}

// Writer returns the output writer.
func (r *Renderer) Writer() io.Writer {
	return r.out
}

// RenderMarkdown renders markdown content.
func (r *Renderer) RenderMarkdown(content string) error {
	if r.mdRender == nil {
		// Fallback: print raw content
		fmt.Fprintln(r.out, content)
		return nil
	}

	rendered, err := r.mdRender.Render(content)
	if err != nil {
		// Fallback to raw content on error
		fmt.Fprintln(r.out, content)
		return nil
	}

	fmt.Fprint(r.out, rendered)
	return nil
}

// RenderResult renders a complete search result.
func (r *Renderer) RenderResult(result *models.SearchResult) error {
	if result == nil {
		return nil
	}
	if result.IsError {
		r.RenderError(errors.New(result.ErrorMessage))
		return nil
	}

	if err := r.RenderMarkdown(result.Answer); err != nil {
		return err
	}
	r.RenderTransparency(result.Transparency)
	r.RenderSources(result.Sources)
	return nil
}

// RenderTransparency renders the confidence panel.
func (r *Renderer) RenderTransparency(t *models.Transparency) {
	if t == nil {
		return
	}

	lines := []string{
		fmt.Sprintf("Confidence: %d%%", t.Confidence),
		"Reasoning: " + t.Reasoning,
	}
	if t.BiasWarning != "" {
		lines = append(lines, "Bias warning: "+t.BiasWarning)
	}

	fmt.Fprintln(r.out)
	if r.useColors {
		width := r.width - 4
		if width < 20 {
			width = 20
		}
		fmt.Fprintln(r.out, PanelStyle.Width(width).Render(strings.Join(lines, "\n")))
		return
	}
	fmt.Fprintln(r.out, "Transparency:")
	for _, line := range lines {
		fmt.Fprintln(r.out, "  "+line)
	}
}

// RenderSources renders grounding sources, dropping repeated URIs.
func (r *Renderer) RenderSources(sources []models.Source) {
	unique := models.UniqueSources(sources)
	if len(unique) == 0 {
		return
	}

	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, DimStyle.Render("Sources:"))

	for i, src := range unique {
		title := src.Title
		if title == "" {
			title = src.URI
		}

		num := fmt.Sprintf("[%d]", i+1)
		tag := fmt.Sprintf("(%s)", src.Type)
		fmt.Fprintf(r.out, "%s %s %s\n", DimStyle.Render(num), TagStyle.Render(tag), CitationStyle.Render(title))
		if src.URI != "" && src.URI != title {
			fmt.Fprintf(r.out, "    %s\n", DimStyle.Render(src.URI))
		}
	}
}

// RenderImages lists image files written for a result.
func (r *Renderer) RenderImages(paths []string) {
	if len(paths) == 0 {
		return
	}

	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, DimStyle.Render("Images:"))
	for _, p := range paths {
		fmt.Fprintf(r.out, "  %s\n", p)
	}
}

// RenderHistory renders history entries, newest first.
func (r *Renderer) RenderHistory(entries []models.HistoryEntry) {
	if len(entries) == 0 {
		r.RenderInfo("No history")
		return
	}
	for i, e := range entries {
		r.renderEntry(i+1, e.Query, e.Mode, e.Timestamp)
	}
}

// RenderSaved renders saved searches, newest first.
func (r *Renderer) RenderSaved(entries []models.SavedSearch) {
	if len(entries) == 0 {
		r.RenderInfo("No saved searches")
		return
	}
	for i, e := range entries {
		r.renderEntry(i+1, e.Query, e.Mode, e.Timestamp)
	}
}

func (r *Renderer) renderEntry(n int, query string, mode models.Mode, ts time.Time) {
	num := fmt.Sprintf("%3d.", n)
	tag := fmt.Sprintf("[%s]", mode)
	when := ts.Local().Format("2006-01-02 15:04")
	fmt.Fprintf(r.out, "%s %s %s %s\n", DimStyle.Render(num), TagStyle.Render(tag), query, DimStyle.Render(when))
}

// RenderLiveState renders a live session status line.
func (r *Renderer) RenderLiveState(s live.State) {
	label := strings.ToUpper(s.String())
	if !r.useColors {
		fmt.Fprintf(r.out, "[%s]\n", label)
		return
	}

	var style lipgloss.Style
	switch s {
	case live.StateListening:
		style = SuccessStyle
	case live.StateSpeaking:
		style = CitationStyle
	case live.StateError:
		style = ErrorStyle
	case live.StateConnecting:
		style = WarningStyle
	default:
		style = DimStyle
	}
	fmt.Fprintln(r.out, style.Render("● "+label))
}

// RenderTranscript writes a transcript fragment as it arrives.
func (r *Renderer) RenderTranscript(fragment string) {
	fmt.Fprint(r.out, fragment)
}

// RenderError renders an error message.
func (r *Renderer) RenderError(err error) {
	if r.useColors {
		fmt.Fprintln(r.out, ErrorStyle.Render("Error: "+err.Error()))
	} else {
		fmt.Fprintln(r.out, "Error: "+err.Error())
	}
}

// RenderSuccess renders a success message.
func (r *Renderer) RenderSuccess(msg string) {
	if r.useColors {
		fmt.Fprintln(r.out, SuccessStyle.Render(msg))
	} else {
		fmt.Fprintln(r.out, msg)
	}
}

// RenderWarning renders a warning message.
func (r *Renderer) RenderWarning(msg string) {
	if r.useColors {
		fmt.Fprintln(r.out, WarningStyle.Render("Warning: "+msg))
	} else {
		fmt.Fprintln(r.out, "Warning: "+msg)
	}
}

// RenderInfo renders an info message.
func (r *Renderer) RenderInfo(msg string) {
	if r.useColors {
		fmt.Fprintln(r.out, InfoStyle.Render(msg))
	} else {
		fmt.Fprintln(r.out, msg)
	}
}

// RenderTitle renders a title.
func (r *Renderer) RenderTitle(title string) {
	if r.useColors {
		fmt.Fprintln(r.out, TitleStyle.Render(title))
	} else {
		fmt.Fprintln(r.out, strings.ToUpper(title))
		fmt.Fprintln(r.out, strings.Repeat("=", len(title)))
	}
}

// ClearLine clears the current line.
func (r *Renderer) ClearLine() {
	fmt.Fprint(r.out, "\r\033[K")
}

// NewLine prints a newline.
func (r *Renderer) NewLine() {
	fmt.Fprintln(r.out)
}
