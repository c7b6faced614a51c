package models

import (
	"errors"
	"testing"
)

func TestDefaultSearchOptions(t *testing.T) {
	query := "test query"
	opts := DefaultSearchOptions(query)

	if opts.Query != query {
		t.Errorf("Query = %q, want %q", opts.Query, query)
	}
	if opts.Mode != ModeAll {
		t.Errorf("Mode = %q, want %q", opts.Mode, ModeAll)
	}
	if opts.Tone != ToneStandard {
		t.Errorf("Tone = %q, want %q", opts.Tone, ToneStandard)
	}
	if opts.Location != nil {
		t.Error("Location should be nil by default")
	}
	if opts.Visual != nil {
		t.Error("Visual should be nil by default")
	}
}

func TestVisualInputRawData(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"plain base64", "aGVsbG8=", "aGVsbG8="},
		{"data url", "data:image/png;base64,aGVsbG8=", "aGVsbG8="},
		{"comma without data prefix", "abc,def", "abc,def"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := VisualInput{Data: tt.data, MIMEType: "image/png"}
			if got := v.RawData(); got != tt.want {
				t.Errorf("RawData() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseLocation(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Location
		wantErr bool
	}{
		{"valid", "48.8566,2.3522", Location{48.8566, 2.3522}, false},
		{"with spaces", " -33.86 , 151.2 ", Location{-33.86, 151.2}, false},
		{"missing part", "48.8566", Location{}, true},
		{"not a number", "north,2.35", Location{}, true},
		{"latitude out of range", "91,0", Location{}, true},
		{"longitude out of range", "0,181", Location{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLocation(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLocation(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && *got != tt.want {
				t.Errorf("ParseLocation(%q) = %+v, want %+v", tt.input, *got, tt.want)
			}
		})
	}
}

func TestLocationString(t *testing.T) {
	loc := Location{Latitude: 48.8566, Longitude: 2.3522}
	if loc.String() != "48.8566,2.3522" {
		t.Errorf("String() = %q", loc.String())
	}
}

func TestErrorResult(t *testing.T) {
	r := ErrorResult(errors.New("quota exceeded"))

	if !r.IsError {
		t.Error("IsError should be true")
	}
	if r.Answer != "" {
		t.Errorf("Answer = %q, want empty", r.Answer)
	}
	if r.Sources == nil || len(r.Sources) != 0 {
		t.Errorf("Sources = %v, want empty non-nil slice", r.Sources)
	}
	if r.ErrorMessage != "quota exceeded" {
		t.Errorf("ErrorMessage = %q", r.ErrorMessage)
	}
}

func TestDecodeDataURI(t *testing.T) {
	mime, data, err := DecodeDataURI("data:image/png;base64,aGVsbG8=")
	if err != nil {
		t.Fatalf("DecodeDataURI() error = %v", err)
	}
	if mime != "image/png" {
		t.Errorf("mime = %q, want image/png", mime)
	}
	if string(data) != "hello" {
		t.Errorf("data = %q, want hello", data)
	}

	for _, bad := range []string{"http://x", "data:image/png;base64", "data:image/png,aGVsbG8=", "data:image/png;base64,!!!"} {
		if _, _, err := DecodeDataURI(bad); err == nil {
			t.Errorf("DecodeDataURI(%q) should fail", bad)
		}
	}
}
