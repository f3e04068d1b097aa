package history

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"predtrack-go/internal/sample"
)

func newTestStore(t *testing.T, limit int) *FileStore {
	t.Helper()
	store, err := NewFileStore(t.TempDir(), limit, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewFileStore returned error: %v", err)
	}
	return store
}

func TestAppendLoadRoundTrip(t *testing.T) {
	store := newTestStore(t, 10)

	store.Append(7, sample.Sample{T: 1000, V: 1.5})
	got := store.Append(7, sample.Sample{T: 2000, V: 2.5})
	if len(got) != 2 {
		t.Fatalf("expected 2 samples returned, got %d", len(got))
	}

	loaded := store.Load(7)
	if len(loaded) != 2 {
		t.Fatalf("expected 2 samples loaded, got %d", len(loaded))
	}
	if loaded[0] != (sample.Sample{T: 1000, V: 1.5}) || loaded[1] != (sample.Sample{T: 2000, V: 2.5}) {
		t.Fatalf("round trip mismatch: %+v", loaded)
	}
}

func TestAppendTruncatesToBound(t *testing.T) {
	store := newTestStore(t, 3)
	for i := 1; i <= 5; i++ {
		store.Append(1, sample.Sample{T: int64(i * 1000), V: float64(i)})
	}
	got := store.Load(1)
	if len(got) != 3 {
		t.Fatalf("expected bound of 3, got %d", len(got))
	}
	if got[0].T != 3000 {
		t.Fatalf("expected oldest evicted first, got %+v", got)
	}
}

func TestLoadMissingIsEmpty(t *testing.T) {
	store := newTestStore(t, 10)
	if got := store.Load(42); len(got) != 0 {
		t.Fatalf("expected empty history, got %d entries", len(got))
	}
}

func TestLoadFiltersMalformedEntries(t *testing.T) {
	store := newTestStore(t, 10)
	payload := `[{"t":1000,"v":1.5},{"t":"bad","v":2},{"v":3},{"t":2000,"v":"oops"},{"t":3000,"v":3.5},"junk"]`
	if err := os.WriteFile(store.path(9), []byte(payload), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	got := store.Load(9)
	if len(got) != 2 {
		t.Fatalf("expected 2 valid samples, got %d (%+v)", len(got), got)
	}
	if got[0].T != 1000 || got[1].T != 3000 {
		t.Fatalf("unexpected survivors: %+v", got)
	}
}

func TestLoadGarbagePayloadIsEmpty(t *testing.T) {
	store := newTestStore(t, 10)
	if err := os.WriteFile(store.path(9), []byte(`{"not":"an array"}`), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}
	if got := store.Load(9); len(got) != 0 {
		t.Fatalf("expected empty history for non-array payload, got %d", len(got))
	}
}

func TestClearIsIdempotent(t *testing.T) {
	store := newTestStore(t, 10)
	store.Append(5, sample.Sample{T: 1000, V: 1})

	if err := store.Clear(5); err != nil {
		t.Fatalf("Clear returned error: %v", err)
	}
	if got := store.Load(5); len(got) != 0 {
		t.Fatalf("expected empty after clear, got %d", len(got))
	}
	// Clearing again, with nothing stored, is not an error.
	if err := store.Clear(5); err != nil {
		t.Fatalf("second Clear returned error: %v", err)
	}
}

func TestAppendSurvivesWriteFailure(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, 10, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewFileStore returned error: %v", err)
	}
	// Make the target path unwritable by occupying it with a directory.
	if err := os.Mkdir(filepath.Join(dir, "history_3.json"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	got := store.Append(3, sample.Sample{T: 1000, V: 1})
	if len(got) != 1 {
		t.Fatalf("expected in-memory result despite write failure, got %d", len(got))
	}
}

func TestKeyPattern(t *testing.T) {
	if got := Key(14); got != "history:14" {
		t.Fatalf("unexpected key %q", got)
	}
	if got := Key(1); got != fmt.Sprintf("history:%d", 1) {
		t.Fatalf("unexpected key %q", got)
	}
}
