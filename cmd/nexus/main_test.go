package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diogo/nexus-go/internal/app"
	"github.com/diogo/nexus-go/internal/config"
	"github.com/diogo/nexus-go/internal/history"
	"github.com/diogo/nexus-go/internal/storage"
	"github.com/diogo/nexus-go/internal/ui"
	"github.com/diogo/nexus-go/pkg/models"
)

type recordingSearcher struct {
	mu     sync.Mutex
	calls  []models.SearchOptions
	result *models.SearchResult
}

func (s *recordingSearcher) Search(ctx context.Context, opts models.SearchOptions) *models.SearchResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, opts)
	if s.result != nil {
		return s.result
	}
	return &models.SearchResult{Answer: "answer to " + opts.Query, Sources: []models.Source{}}
}

// setupGlobals points the package globals at test values.
func setupGlobals(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	r, err := ui.NewRendererWithOptions(&buf, 80, false, models.ThemeDark)
	require.NoError(t, err)

	prevRender, prevCfg := render, cfg
	prevMode, prevTone, prevLoc, prevDir := flagMode, flagTone, flagLocation, flagImagesDir
	t.Cleanup(func() {
		render, cfg = prevRender, prevCfg
		flagMode, flagTone, flagLocation, flagImagesDir = prevMode, prevTone, prevLoc, prevDir
	})

	render = r
	cfg = config.Defaults(t.TempDir())
	flagMode, flagTone, flagLocation, flagImagesDir = "", "", "", ""
	return &buf
}

func newShellApp(t *testing.T, searcher app.Searcher) *app.App {
	t.Helper()
	store := history.NewStore(storage.NewMemoryStore(), nil)
	return app.New(app.Options{
		Searcher: searcher,
		Store:    store,
		Mode:     models.ModeAll,
		Tone:     models.ToneStandard,
	})
}

func TestParseShellCommand(t *testing.T) {
	tests := []struct {
		line      string
		name      string
		arg       string
		isCommand bool
	}{
		{"what is go", "", "what is go", false},
		{"  padded  ", "", "padded", false},
		{":quit", "quit", "", true},
		{":MODE research", "mode", "research", true},
		{":image a.png what is this", "image", "a.png what is this", true},
		{"", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			name, arg, isCommand := parseShellCommand(tt.line)
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.arg, arg)
			assert.Equal(t, tt.isCommand, isCommand)
		})
	}
}

func TestParseIndex(t *testing.T) {
	idx, err := parseIndex("2", 3)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	_, err = parseIndex("0", 3)
	assert.Error(t, err)
	_, err = parseIndex("x", 3)
	assert.Error(t, err)
	_, err = parseIndex("4", 3)
	assert.ErrorContains(t, err, "out of range")
}

func TestLoadVisual(t *testing.T) {
	v, err := loadVisual("")
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = loadVisual("data:image/png;base64,aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, "image/png", v.MIMEType)

	path := filepath.Join(t.TempDir(), "pic.jpg")
	require.NoError(t, os.WriteFile(path, []byte{0xff, 0xd8, 0xff, 0xe0}, 0600))
	v, err = loadVisual(path)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", v.MIMEType)

	_, err = loadVisual(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}

func TestSearchDefaults(t *testing.T) {
	setupGlobals(t)

	mode, tone, err := searchDefaults()
	require.NoError(t, err)
	assert.Equal(t, models.ModeAll, mode)
	assert.Equal(t, models.ToneStandard, tone)

	flagMode, flagTone = "research", "eli5"
	mode, tone, err = searchDefaults()
	require.NoError(t, err)
	assert.Equal(t, models.ModeResearch, mode)
	assert.Equal(t, models.ToneELI5, tone)

	flagMode = "live"
	_, _, err = searchDefaults()
	assert.Error(t, err)

	flagMode, flagTone = "", "shouty"
	_, _, err = searchDefaults()
	assert.Error(t, err)
}

func TestFixedLocation(t *testing.T) {
	setupGlobals(t)

	loc, err := fixedLocation()
	require.NoError(t, err)
	assert.Nil(t, loc)

	cfg.Location = "1,2"
	loc, err = fixedLocation()
	require.NoError(t, err)
	assert.Equal(t, &models.Location{Latitude: 1, Longitude: 2}, loc)

	flagLocation = "3.5,-4"
	loc, err = fixedLocation()
	require.NoError(t, err)
	assert.Equal(t, &models.Location{Latitude: 3.5, Longitude: -4}, loc)

	flagLocation = "nowhere"
	_, err = fixedLocation()
	assert.Error(t, err)
}

func TestRunShell(t *testing.T) {
	out := setupGlobals(t)
	searcher := &recordingSearcher{}
	a := newShellApp(t, searcher)

	input := strings.Join([]string{
		":save",
		":mode research",
		"what is go",
		"",
		":save",
		":tone eli5",
		"eli5: why is the sky blue",
		":history",
		":saved",
		":mode live",
		":bogus",
		":quit",
		"never submitted",
	}, "\n")

	var prompt bytes.Buffer
	err := runShell(context.Background(), a, strings.NewReader(input), &prompt)
	require.NoError(t, err)

	require.Len(t, searcher.calls, 2)
	assert.Equal(t, "what is go", searcher.calls[0].Query)
	assert.Equal(t, models.ModeResearch, searcher.calls[0].Mode)
	assert.Equal(t, "why is the sky blue", searcher.calls[1].Query)
	assert.Equal(t, models.ToneELI5, searcher.calls[1].Tone)

	st := a.State()
	assert.Equal(t, models.ModeResearch, st.Mode)
	assert.Equal(t, models.ToneELI5, st.Tone)
	require.Len(t, st.Saved, 1)
	assert.Equal(t, "what is go", st.Saved[0].Query)
	assert.Len(t, st.History, 2)

	output := out.String()
	assert.Contains(t, output, "nothing to save yet")
	assert.Contains(t, output, "answer to what is go")
	assert.Contains(t, output, "Added to saved searches")
	assert.Contains(t, output, "[research] what is go")
	assert.Contains(t, output, "nexus live")
	assert.Contains(t, output, "unknown command :bogus")
	assert.Contains(t, prompt.String(), "nexus [all/standard]> ")
	assert.Contains(t, prompt.String(), "nexus [research/eli5]> ")
}

func TestRunShellStopsAtEOF(t *testing.T) {
	setupGlobals(t)
	searcher := &recordingSearcher{}
	a := newShellApp(t, searcher)

	var prompt bytes.Buffer
	err := runShell(context.Background(), a, strings.NewReader("first\nsecond"), &prompt)
	require.NoError(t, err)
	assert.Len(t, searcher.calls, 2)
}

func TestSearchErrorResult(t *testing.T) {
	out := setupGlobals(t)
	searcher := &recordingSearcher{result: models.ErrorResult(assert.AnError)}
	a := newShellApp(t, searcher)

	result, err := search(context.Background(), a, "anything", nil)
	assert.ErrorIs(t, err, errReported)
	require.NotNil(t, result)
	assert.True(t, result.IsError)
	assert.Contains(t, out.String(), "Error: "+assert.AnError.Error())
	assert.Empty(t, a.State().History)
}

func TestSearchEmpty(t *testing.T) {
	out := setupGlobals(t)
	searcher := &recordingSearcher{}
	a := newShellApp(t, searcher)

	for _, raw := range []string{"   ", "research:"} {
		result, err := search(context.Background(), a, raw, nil)
		require.NoError(t, err)
		assert.Nil(t, result)
	}
	assert.Empty(t, searcher.calls)
	assert.Contains(t, out.String(), "Nothing to search")
	assert.NotContains(t, out.String(), "Searching...", "no loading state for an empty submission")
}

func TestShellHelpAndImageErrors(t *testing.T) {
	out := setupGlobals(t)
	searcher := &recordingSearcher{}
	a := newShellApp(t, searcher)

	missing := filepath.Join(t.TempDir(), "missing.png")
	input := strings.Join([]string{
		":help",
		":image",
		":image " + missing + " what is this",
	}, "\n")

	var prompt bytes.Buffer
	require.NoError(t, runShell(context.Background(), a, strings.NewReader(input), &prompt))

	assert.Empty(t, searcher.calls)
	assert.Contains(t, prompt.String(), ":image <path> [text]  search with an attached image")
	assert.Contains(t, out.String(), "usage: :image <path> [text]")
	assert.Contains(t, out.String(), "missing.png")
	assert.Equal(t, 1, strings.Count(out.String(), "usage:"), "a load failure reports its own error")
}

func TestShowResultWritesImages(t *testing.T) {
	out := setupGlobals(t)
	flagImagesDir = t.TempDir()

	err := showResult(&models.SearchResult{
		Answer:  "Here you go",
		Sources: []models.Source{},
		Images:  []string{"data:image/png;base64,aGVsbG8="},
	})
	require.NoError(t, err)

	entries, err := os.ReadDir(flagImagesDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasSuffix(entries[0].Name(), "-1.png"))
	assert.Contains(t, out.String(), "Images:")
}

func TestImagesDirDefault(t *testing.T) {
	setupGlobals(t)
	assert.Equal(t, filepath.Join(cfg.DataDir, "images"), imagesDir())
}

func TestLiveOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reply.pcm")
	w, pad, closeFn, err := liveOutput(path)
	require.NoError(t, err)
	defer closeFn()

	assert.True(t, pad)
	_, err = w.Write([]byte{1, 2})
	require.NoError(t, err)
}

func TestLiveInputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "question.pcm")
	require.NoError(t, os.WriteFile(path, []byte{0, 0, 1, 0}, 0600))

	open, pace := liveInput(path)
	assert.True(t, pace)

	rc, err := open()
	require.NoError(t, err)
	defer rc.Close()

	_, pace = liveInput("-")
	assert.False(t, pace)

	open, _ = liveInput(filepath.Join(t.TempDir(), "missing.pcm"))
	_, err = open()
	assert.Error(t, err)
}
