package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/diogo/nexus-go/internal/app"
	"github.com/diogo/nexus-go/internal/config"
	"github.com/diogo/nexus-go/internal/logger"
	"github.com/diogo/nexus-go/internal/ui"
	"github.com/diogo/nexus-go/pkg/client"
	"github.com/diogo/nexus-go/pkg/models"
)

var (
	// Flags
	flagMode       string
	flagTone       string
	flagImage      string
	flagImagesDir  string
	flagLocation   string
	flagSave       bool
	flagIncognito  bool
	flagOutputFile string
	flagAPIKey     string
	flagVerbose    bool

	// Global config
	cfg    *config.Config
	cfgMgr *config.Manager
	render *ui.Renderer
	appLog *slog.Logger
)

// errReported marks errors the renderer has already shown.
var errReported = errors.New("reported")

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "nexus [query]",
	Short: "Nexus - grounded AI search from your terminal",
	Long: `Nexus is a command-line AI search client backed by Gemini.

Answers are grounded in web search (or maps for local queries) and come
with their sources. Prefix a query to switch mode or tone for one search.

Examples:
  nexus "What is the capital of France?"
  nexus "research: history of the transistor"
  nexus --mode local "coffee near me"
  nexus --image photo.jpg "what is this building?"
  nexus "img: a lighthouse at dusk, watercolor" --images-dir ./out`,
	Args:          cobra.ArbitraryArgs,
	RunE:          runQuery,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, errReported) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}

func init() {
	cobra.OnInitialize(initConfig)

	// Shared flags
	rootCmd.PersistentFlags().StringVarP(&flagMode, "mode", "m", "", "Search mode (all, local, images, research, explainable, ...)")
	rootCmd.PersistentFlags().StringVarP(&flagTone, "tone", "t", "", "Answer tone (standard, academic, concise, eli5)")
	rootCmd.PersistentFlags().StringVar(&flagLocation, "location", "", "Location for local mode (lat,lng)")
	rootCmd.PersistentFlags().BoolVarP(&flagIncognito, "incognito", "i", false, "Don't save to history")
	rootCmd.PersistentFlags().StringVar(&flagAPIKey, "api-key", "", "Gemini API key")
	rootCmd.PersistentFlags().StringVar(&flagImagesDir, "images-dir", "", "Directory for generated images")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Verbose output")

	// Query flags
	rootCmd.Flags().StringVarP(&flagImage, "image", "f", "", "Attach an image (file path or data URL)")
	rootCmd.Flags().BoolVar(&flagSave, "save", false, "Add the query to saved searches")
	rootCmd.Flags().StringVarP(&flagOutputFile, "output", "o", "", "Save answer to file")

	// Add subcommands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(savedCmd)
	rootCmd.AddCommand(themeCmd)
	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(liveCmd)
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	var err error

	appLog = logger.New(logger.FromFlags(flagVerbose))

	// Initialize config manager
	cfgMgr, err = config.NewManager()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing config: %v\n", err)
		os.Exit(1)
	}

	// Load configuration
	cfg, err = cfgMgr.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Initialize renderer; the stored theme is applied once storage is open
	setTheme("")
}

// setTheme rebuilds the renderer for theme, keeping its output.
func setTheme(theme models.Theme) {
	var (
		r   *ui.Renderer
		err error
	)
	if render != nil {
		r, err = render.WithTheme(theme)
	} else {
		r, err = ui.NewRendererWithOptions(os.Stdout, renderWidth(), ui.ColorsEnabled(os.Stdout), theme)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing renderer: %v\n", err)
		os.Exit(1)
	}
	render = r
}

func renderWidth() int {
	if cfg == nil || cfg.RenderWidth <= 0 {
		return 80
	}
	return cfg.RenderWidth
}

// signalContext is cancelled on interrupt.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func runQuery(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	// Check if query provided
	if strings.TrimSpace(query) == "" && flagImage == "" {
		return cmd.Help()
	}

	visual, err := loadVisual(flagImage)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	s, err := openSession(ctx, true)
	if err != nil {
		return err
	}
	defer s.Close()

	if flagVerbose {
		st := s.app.State()
		render.RenderInfo(fmt.Sprintf("Query: %s", query))
		render.RenderInfo(fmt.Sprintf("Mode: %s, Tone: %s, Model: %s", st.Mode, st.Tone, s.client.Models().For(st.Mode)))
		render.NewLine()
	}

	result, err := search(ctx, s.app, query, visual)
	if err != nil || result == nil {
		return err
	}

	// Save to output file if specified
	if flagOutputFile != "" {
		if err := os.WriteFile(flagOutputFile, []byte(result.Answer), 0644); err != nil {
			render.RenderError(fmt.Errorf("failed to save output: %w", err))
		} else {
			render.RenderSuccess(fmt.Sprintf("Saved to %s", flagOutputFile))
		}
	}

	if flagSave {
		if err := s.app.SaveCurrent(); err != nil {
			return fmt.Errorf("failed to save search: %w", err)
		}
		render.RenderSuccess("Added to saved searches")
	}

	return nil
}

// loadVisual reads the --image value as a data URL or a file path.
func loadVisual(value string) (*models.VisualInput, error) {
	if value == "" {
		return nil, nil
	}
	if strings.HasPrefix(value, "data:") {
		return client.ParseDataURL(value)
	}
	return client.LoadVisualInput(value)
}

// search submits raw through the app and renders the outcome. A nil result
// with a nil error means there was nothing to show.
func search(ctx context.Context, a *app.App, raw string, visual *models.VisualInput) (*models.SearchResult, error) {
	if !a.Accepts(raw, visual) {
		render.RenderInfo("Nothing to search")
		return nil, nil
	}

	stop := render.StartSpinner("Searching...")
	result, err := a.Submit(ctx, raw, visual)
	stop()

	switch {
	case errors.Is(err, app.ErrEmptySubmission):
		render.RenderInfo("Nothing to search")
		return nil, nil
	case errors.Is(err, app.ErrStaleResult):
		return nil, nil
	case err != nil:
		return nil, err
	}

	if ctx.Err() != nil {
		render.RenderWarning("Search cancelled")
		return nil, nil
	}

	if err := showResult(result); err != nil {
		return result, err
	}
	return result, nil
}

// showResult renders a result and writes its images.
func showResult(result *models.SearchResult) error {
	if err := render.RenderResult(result); err != nil {
		return err
	}
	if result.IsError {
		return errReported
	}

	if len(result.Images) > 0 {
		prefix := "nexus-" + time.Now().Format("20060102-150405")
		paths, err := ui.SaveImages(result.Images, imagesDir(), prefix)
		render.RenderImages(paths)
		if err != nil {
			render.RenderError(err)
		}
	}
	return nil
}

func imagesDir() string {
	if flagImagesDir != "" {
		return flagImagesDir
	}
	return filepath.Join(cfg.DataDir, "images")
}
