package ui

import (
	"testing"

	"github.com/diogo/nexus-go/internal/config"
	"github.com/diogo/nexus-go/internal/storage"
	"github.com/diogo/nexus-go/pkg/models"
)

func TestBuildConfigMenuItems(t *testing.T) {
	cfg := config.Defaults("/home/u/.nexus-cli")
	cfg.DefaultMode = models.ModeResearch
	cfg.DefaultTone = models.ToneConcise
	cfg.DefaultLanguage = "pt-BR"
	cfg.StorageBackend = storage.BackendSQLite
	cfg.Location = "40.7,-74"
	cfg.RenderWidth = 120

	items := buildConfigMenuItems(cfg)

	if len(items) != len(config.Keys) {
		t.Errorf("Expected %d menu items, got %d", len(config.Keys), len(items))
	}

	expectedItems := map[string]string{
		"default_mode":     "research",
		"default_tone":     "concise",
		"default_language": "pt-BR",
		"incognito":        "false",
		"storage_backend":  "sqlite",
		"location":         "40.7,-74",
		"render_width":     "120",
		"key_file":         "/home/u/.nexus-cli/api_key",
	}

	for _, item := range items {
		expected, ok := expectedItems[item.Key]
		if !ok {
			continue
		}
		if item.Value != expected {
			t.Errorf("Item %s: expected value %q, got %q", item.Key, expected, item.Value)
		}
	}
}

func TestBuildConfigMenuItems_Order(t *testing.T) {
	items := buildConfigMenuItems(&config.Config{})
	for i, item := range items {
		if item.Key != config.Keys[i] {
			t.Errorf("items[%d].Key = %q, want %q", i, item.Key, config.Keys[i])
		}
	}
}

func TestConfigMenuItemLabels(t *testing.T) {
	items := buildConfigMenuItems(&config.Config{})

	for _, item := range items {
		if item.Label == "" {
			t.Errorf("Item %s has no label", item.Key)
		}
		if item.Description == "" {
			t.Errorf("Item %s has no description", item.Key)
		}
	}

	expectedLabels := map[string]string{
		"default_mode":    "Mode",
		"default_tone":    "Tone",
		"storage_backend": "Storage",
		"model_live":      "Live model",
	}
	for _, item := range items {
		if expected, ok := expectedLabels[item.Key]; ok && item.Label != expected {
			t.Errorf("Item %s: expected label %q, got %q", item.Key, expected, item.Label)
		}
	}
}

func TestBuildConfigMenuItems_BooleanValues(t *testing.T) {
	tests := []struct {
		name        string
		incognito   bool
		geolocation bool
		expIncog    string
		expGeo      string
	}{
		{"both_true", true, true, "true", "true"},
		{"both_false", false, false, "false", "false"},
		{"mixed", false, true, "false", "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{
				Incognito:   tt.incognito,
				Geolocation: tt.geolocation,
			}

			var incognitoValue, geoValue string
			for _, item := range buildConfigMenuItems(cfg) {
				switch item.Key {
				case "incognito":
					incognitoValue = item.Value
				case "geolocation":
					geoValue = item.Value
				}
			}

			if incognitoValue != tt.expIncog {
				t.Errorf("Incognito = %q, want %q", incognitoValue, tt.expIncog)
			}
			if geoValue != tt.expGeo {
				t.Errorf("Geolocation = %q, want %q", geoValue, tt.expGeo)
			}
		})
	}
}

func TestGetModeDescription(t *testing.T) {
	for _, m := range models.AvailableModes {
		if getModeDescription(m) == "" {
			t.Errorf("getModeDescription(%s) is empty", m)
		}
	}
	if got := getModeDescription(models.Mode("unknown")); got != "" {
		t.Errorf("getModeDescription(unknown) = %q, want empty", got)
	}
}

func TestSearchModes(t *testing.T) {
	modes := searchModes()
	if len(modes) != len(models.AvailableModes)-1 {
		t.Errorf("len(searchModes()) = %d, want %d", len(modes), len(models.AvailableModes)-1)
	}
	for _, m := range modes {
		if m == models.ModeLive {
			t.Error("searchModes() should not include live")
		}
	}
}

func TestValidatorFor(t *testing.T) {
	cfg := config.Defaults("/tmp/nexus")

	validate := validatorFor(cfg, "location")
	if err := validate("12.5,-3"); err != nil {
		t.Errorf("validate(valid) error = %v", err)
	}
	if err := validate("somewhere"); err == nil {
		t.Error("validate(invalid) should fail")
	}
	if cfg.Location != "" {
		t.Errorf("validator changed config: Location = %q", cfg.Location)
	}

	widthCheck := validatorFor(cfg, "render_width")
	if err := widthCheck("wide"); err == nil {
		t.Error("render_width validator should reject non-numbers")
	}
}
