package history

import (
	"fmt"
	"testing"
	"time"

	"github.com/diogo/nexus-go/pkg/models"
)

func entry(q string) models.HistoryEntry {
	return models.HistoryEntry{Query: q, Mode: models.ModeAll, Timestamp: time.Now()}
}

func TestLabel(t *testing.T) {
	if got := Label(""); got != "Visual Inquiry" {
		t.Errorf("Label(\"\") = %q, want %q", got, "Visual Inquiry")
	}
	if got := Label("golang"); got != "golang" {
		t.Errorf("Label(golang) = %q", got)
	}
}

func TestPushPrepends(t *testing.T) {
	var h []models.HistoryEntry
	h = Push(h, entry("a"))
	h = Push(h, entry("b"))
	h = Push(h, entry("c"))

	want := []string{"c", "b", "a"}
	if len(h) != len(want) {
		t.Fatalf("len = %d, want %d", len(h), len(want))
	}
	for i, q := range want {
		if h[i].Query != q {
			t.Errorf("h[%d] = %q, want %q", i, h[i].Query, q)
		}
	}
}

func TestPushMovesDuplicateToFront(t *testing.T) {
	h := []models.HistoryEntry{entry("c"), entry("b"), entry("a")}

	h = Push(h, models.HistoryEntry{Query: "a", Mode: models.ModeResearch})

	want := []string{"a", "c", "b"}
	if len(h) != len(want) {
		t.Fatalf("len = %d, want %d", len(h), len(want))
	}
	for i, q := range want {
		if h[i].Query != q {
			t.Errorf("h[%d] = %q, want %q", i, h[i].Query, q)
		}
	}
	if h[0].Mode != models.ModeResearch {
		t.Errorf("front entry mode = %q, want research", h[0].Mode)
	}
}

func TestPushCapsAtMaxEntries(t *testing.T) {
	var h []models.HistoryEntry
	for i := 0; i < 25; i++ {
		h = Push(h, entry(fmt.Sprintf("q%d", i)))
	}

	if len(h) != MaxEntries {
		t.Fatalf("len = %d, want %d", len(h), MaxEntries)
	}
	if h[0].Query != "q24" {
		t.Errorf("newest = %q, want q24", h[0].Query)
	}
	if h[MaxEntries-1].Query != "q5" {
		t.Errorf("oldest = %q, want q5", h[MaxEntries-1].Query)
	}
}

func TestPushDoesNotMutateInput(t *testing.T) {
	h := []models.HistoryEntry{entry("a"), entry("b")}
	_ = Push(h, entry("c"))

	if h[0].Query != "a" || h[1].Query != "b" {
		t.Errorf("input mutated: %+v", h)
	}
}

func TestPrependSaved(t *testing.T) {
	var s []models.SavedSearch
	s = PrependSaved(s, models.SavedSearch{Query: "x"})
	s = PrependSaved(s, models.SavedSearch{Query: "y"})
	s = PrependSaved(s, models.SavedSearch{Query: "x"})

	want := []string{"x", "y", "x"}
	if len(s) != len(want) {
		t.Fatalf("len = %d, want %d", len(s), len(want))
	}
	for i, q := range want {
		if s[i].Query != q {
			t.Errorf("s[%d] = %q, want %q", i, s[i].Query, q)
		}
	}
}

func TestSearch(t *testing.T) {
	entries := []models.HistoryEntry{
		entry("how to cook pasta"),
		entry("best restaurants nearby"),
		entry("Pasta recipes italian"),
		entry("weather tomorrow"),
	}

	if got := Search(entries, "pasta"); len(got) != 2 {
		t.Errorf("len(Search(pasta)) = %d, want 2", len(got))
	}
	if got := Search(entries, "PASTA"); len(got) != 2 {
		t.Errorf("len(Search(PASTA)) = %d, want 2", len(got))
	}
	if got := Search(entries, "xyz"); len(got) != 0 {
		t.Errorf("len(Search(xyz)) = %d, want 0", len(got))
	}
}
