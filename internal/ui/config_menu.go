package ui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/huh"

	"github.com/diogo/nexus-go/internal/config"
	"github.com/diogo/nexus-go/internal/storage"
	"github.com/diogo/nexus-go/pkg/models"
)

// customKeyMap returns a keymap that includes ESC as a quit key.
func customKeyMap() *huh.KeyMap {
	km := huh.NewDefaultKeyMap()
	km.Quit = key.NewBinding(
		key.WithKeys("esc", "ctrl+c"),
		key.WithHelp("esc", "back"),
	)
	return km
}

// ConfigMenuItem represents a configuration option in the menu.
type ConfigMenuItem struct {
	Key         string
	Label       string
	Description string
	Value       string
}

var menuLabels = map[string][2]string{
	"default_mode":     {"Mode", "Default search mode"},
	"default_tone":     {"Tone", "Answer style"},
	"default_language": {"Language", "Live speech language (e.g., en-US)"},
	"incognito":        {"Incognito", "Don't save to history"},
	"storage_backend":  {"Storage", "Where history and saved searches live"},
	"data_dir":         {"Data dir", "Storage directory"},
	"key_file":         {"Key file", "Path to API key file"},
	"geolocation":      {"Geolocation", "Look up location for local mode"},
	"geolocation_url":  {"Geo URL", "IP geolocation endpoint"},
	"location":         {"Location", "Fixed location (lat,lng)"},
	"model_default":    {"Model", "Default model"},
	"model_pro":        {"Pro model", "Research and expert model"},
	"model_image":      {"Image model", "Image generation model"},
	"model_live":       {"Live model", "Voice session model"},
	"live_voice":       {"Live voice", "Prebuilt voice name"},
	"render_width":     {"Width", "Markdown wrap width"},
}

// RunInteractiveConfig displays an interactive configuration menu.
func RunInteractiveConfig(cfg *config.Config, cfgMgr *config.Manager) error {
	for {
		// Build menu items with current values
		items := buildConfigMenuItems(cfg)

		// Create options for the select menu
		options := make([]huh.Option[string], len(items)+2)
		for i, item := range items {
			label := fmt.Sprintf("%-14s %s", item.Label, DimStyle.Render(item.Value))
			options[i] = huh.NewOption(label, item.Key)
		}
		options[len(items)] = huh.NewOption(SuccessStyle.Render("Save and exit"), "save")
		options[len(items)+1] = huh.NewOption(WarningStyle.Render("Reset to defaults"), "reset")

		var selected string
		selectForm := huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[string]().
					Title("Configuration").
					Description("Select an option to modify").
					Options(options...).
					Value(&selected),
			),
		)

		if err := selectForm.Run(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil // User pressed ESC, exit the loop to return
			}
			return err
		}

		switch selected {
		case "save":
			if err := cfgMgr.Save(cfg); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}
			fmt.Println(SuccessStyle.Render("Configuration saved!"))
			return nil

		case "reset":
			if err := handleReset(cfg, cfgMgr.GetConfigDir()); err != nil {
				return err
			}

		default:
			if err := handleConfigEdit(cfg, selected); err != nil {
				return err
			}
		}
	}
}

func buildConfigMenuItems(cfg *config.Config) []ConfigMenuItem {
	items := make([]ConfigMenuItem, 0, len(config.Keys))
	for _, k := range config.Keys {
		value, err := cfg.Get(k)
		if err != nil {
			continue
		}
		label := menuLabels[k]
		items = append(items, ConfigMenuItem{
			Key:         k,
			Label:       label[0],
			Description: label[1],
			Value:       value,
		})
	}
	return items
}

func handleConfigEdit(cfg *config.Config, key string) error {
	switch key {
	case "default_mode":
		return editMode(cfg)
	case "default_tone":
		return editTone(cfg)
	case "default_language":
		return editLanguage(cfg)
	case "storage_backend":
		return editBackend(cfg)
	case "incognito":
		return editBool("Enable incognito mode?", &cfg.Incognito)
	case "geolocation":
		return editBool("Look up location for local searches?", &cfg.Geolocation)
	}
	return editValue(cfg, key)
}

// runSelect shows a single select form. ok is false when the user backed out.
func runSelect(title, description string, options []huh.Option[string], selected *string) (ok bool, err error) {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(title).
				Description(description + " (Esc to go back)").
				Options(options...).
				Value(selected),
		),
	).WithKeyMap(customKeyMap())

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// searchModes lists the modes a one-shot search can default to.
func searchModes() []models.Mode {
	modes := make([]models.Mode, 0, len(models.AvailableModes))
	for _, m := range models.AvailableModes {
		if m != models.ModeLive {
			modes = append(modes, m)
		}
	}
	return modes
}

func editMode(cfg *config.Config) error {
	modes := searchModes()
	options := make([]huh.Option[string], len(modes))
	for i, m := range modes {
		desc := getModeDescription(m)
		options[i] = huh.NewOption(fmt.Sprintf("%-12s %s", string(m), DimStyle.Render(desc)), string(m))
	}

	selected := string(cfg.DefaultMode)
	ok, err := runSelect("Select Mode", "Choose the default search mode", options, &selected)
	if err != nil || !ok {
		return err
	}
	cfg.DefaultMode = models.Mode(selected)
	return nil
}

func getModeDescription(m models.Mode) string {
	switch m {
	case models.ModeAll:
		return "Grounded web search"
	case models.ModeLocal:
		return "Places near you"
	case models.ModeImages:
		return "Generate images"
	case models.ModeResearch:
		return "Deep research with extended thinking"
	case models.ModeLive:
		return "Voice conversation"
	case models.ModeExplainable:
		return "Show reasoning and confidence"
	case models.ModeOutcome:
		return "Actionable outcomes"
	case models.ModeTemporal:
		return "Timeline of events"
	case models.ModeExpert:
		return "Expert-level depth"
	case models.ModeBiasAware:
		return "Balanced perspectives"
	case models.ModeSEOFree:
		return "Skip SEO content"
	case models.ModePersonal:
		return "Tailored to you"
	default:
		return ""
	}
}

func editTone(cfg *config.Config) error {
	options := make([]huh.Option[string], len(models.AvailableTones))
	for i, t := range models.AvailableTones {
		options[i] = huh.NewOption(string(t), string(t))
	}

	selected := string(cfg.DefaultTone)
	ok, err := runSelect("Select Tone", "Choose the answer style", options, &selected)
	if err != nil || !ok {
		return err
	}
	cfg.DefaultTone = models.Tone(selected)
	return nil
}

func editBackend(cfg *config.Config) error {
	options := []huh.Option[string]{
		huh.NewOption("file    "+DimStyle.Render("JSON files in the data dir"), string(storage.BackendFile)),
		huh.NewOption("sqlite  "+DimStyle.Render("Single SQLite database"), string(storage.BackendSQLite)),
	}

	selected := string(cfg.StorageBackend)
	ok, err := runSelect("Select Storage", "Choose the storage backend", options, &selected)
	if err != nil || !ok {
		return err
	}
	cfg.StorageBackend = storage.Backend(selected)
	return nil
}

func editLanguage(cfg *config.Config) error {
	commonLanguages := []struct {
		code string
		name string
	}{
		{"en-US", "English (US)"},
		{"en-GB", "English (UK)"},
		{"pt-BR", "Portuguese (Brazil)"},
		{"es-ES", "Spanish (Spain)"},
		{"es-MX", "Spanish (Mexico)"},
		{"fr-FR", "French"},
		{"de-DE", "German"},
		{"it-IT", "Italian"},
		{"ja-JP", "Japanese"},
		{"ko-KR", "Korean"},
		{"zh-CN", "Chinese (Simplified)"},
	}

	options := make([]huh.Option[string], len(commonLanguages)+1)
	for i, lang := range commonLanguages {
		options[i] = huh.NewOption(fmt.Sprintf("%-7s %s", lang.code, lang.name), lang.code)
	}
	options[len(commonLanguages)] = huh.NewOption("Other (enter custom)", "custom")

	var selected string
	ok, err := runSelect("Select Language", "Choose the live speech language", options, &selected)
	if err != nil || !ok {
		return err
	}

	if selected == "custom" {
		return editValue(cfg, "default_language")
	}
	cfg.DefaultLanguage = selected
	return nil
}

func editBool(title string, value *bool) error {
	options := []huh.Option[bool]{
		huh.NewOption("Yes", true),
		huh.NewOption("No", false),
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[bool]().
				Title(title + " (Esc to go back)").
				Options(options...).
				Value(value),
		),
	).WithKeyMap(customKeyMap())

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		return err
	}

	return nil
}

// editValue prompts for a free-form value, validated by Config.Set.
func editValue(cfg *config.Config, key string) error {
	current, err := cfg.Get(key)
	if err != nil {
		return err
	}
	label := menuLabels[key]

	value := current
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(label[0] + " (Esc to go back)").
				Description(label[1]).
				Value(&value).
				Validate(validatorFor(cfg, key)),
		),
	).WithKeyMap(customKeyMap())

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		return err
	}

	return cfg.Set(key, value)
}

// validatorFor checks a value against a scratch copy of cfg.
func validatorFor(cfg *config.Config, key string) func(string) error {
	return func(s string) error {
		scratch := *cfg
		return scratch.Set(key, s)
	}
}

func handleReset(cfg *config.Config, cfgDir string) error {
	var confirm bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Reset Configuration (Esc to go back)").
				Description("Are you sure you want to reset all settings to defaults?").
				Affirmative("Yes, reset").
				Negative("Cancel").
				Value(&confirm),
		),
	).WithKeyMap(customKeyMap())

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		return err
	}

	if confirm {
		*cfg = *config.Defaults(cfgDir)
		fmt.Println(WarningStyle.Render("Configuration reset to defaults"))
	}

	return nil
}
