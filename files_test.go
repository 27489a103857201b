package main

import (
	"encoding/json"
	"errors"
	"slices"
	"sync"
	"testing"

	"github.com/spf13/afero"
)

func readScores(t *testing.T, fs afero.Fs, path string) []int {
	t.Helper()

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}

	var scores []int
	if err := json.Unmarshal(data, &scores); err != nil {
		t.Fatalf("decode %s: %v (%q)", path, err, data)
	}

	return scores
}

func TestFileStoreLoadFallsBackToEmpty(t *testing.T) {
	tests := []struct {
		name     string
		contents *string
	}{
		{name: "missing file", contents: nil},
		{name: "empty file", contents: ptr("")},
		{name: "invalid json", contents: ptr("[1, 2,")},
		{name: "json null", contents: ptr("null")},
		{name: "json object", contents: ptr(`{"score": 1}`)},
		{name: "array of strings", contents: ptr(`["a", "b"]`)},
		{name: "array of floats", contents: ptr(`[1.5, 2]`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			if tt.contents != nil {
				if err := afero.WriteFile(fs, "score.json", []byte(*tt.contents), 0o644); err != nil {
					t.Fatal(err)
				}
			}

			got := newFileStore(fs, "score.json").Load()
			if got == nil || len(got) != 0 {
				t.Errorf("Load() = %#v, want empty non-nil slice", got)
			}
		})
	}
}

func TestFileStoreLoadKeepsStoredOrder(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "score.json", []byte("[9, 1, 5]"), 0o644); err != nil {
		t.Fatal(err)
	}

	got := newFileStore(fs, "score.json").Load()
	if want := []int{9, 1, 5}; !slices.Equal(got, want) {
		t.Errorf("Load() = %v, want %v", got, want)
	}
}

func TestFileStoreAppendPrepends(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "score.json", []byte("[5, 3]"), 0o644); err != nil {
		t.Fatal(err)
	}

	store := newFileStore(fs, "score.json")

	got, err := store.Append(7)
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	want := []int{7, 5, 3}
	if !slices.Equal(got, want) {
		t.Errorf("Append() = %v, want %v", got, want)
	}
	if onDisk := readScores(t, fs, "score.json"); !slices.Equal(onDisk, want) {
		t.Errorf("file = %v, want %v", onDisk, want)
	}
}

func TestFileStoreAppendCreatesFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := newFileStore(fs, "score.json")

	if fileExists(fs, "score.json") {
		t.Fatal("score.json exists before first append")
	}

	if _, err := store.Append(12); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	if got := readScores(t, fs, "score.json"); !slices.Equal(got, []int{12}) {
		t.Errorf("file = %v, want [12]", got)
	}
}

func TestFileStoreAppendReplacesCorruptFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "score.json", []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := newFileStore(fs, "score.json").Append(4); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	if got := readScores(t, fs, "score.json"); !slices.Equal(got, []int{4}) {
		t.Errorf("file = %v, want [4]", got)
	}
}

func TestFileStoreAppendWriteFailure(t *testing.T) {
	base := afero.NewMemMapFs()
	if err := afero.WriteFile(base, "score.json", []byte("[1]"), 0o644); err != nil {
		t.Fatal(err)
	}

	store := newFileStore(afero.NewReadOnlyFs(base), "score.json")

	_, err := store.Append(2)
	if err == nil {
		t.Fatal("Append() on read-only fs succeeded, want error")
	}
	if errors.Is(err, errInvalidScore) {
		t.Errorf("Append() error = %v, should not be a validation error", err)
	}

	if got := store.Load(); !slices.Equal(got, []int{1}) {
		t.Errorf("Load() after failed append = %v, want [1]", got)
	}
}

func TestFileStoreConcurrentAppendsKeepEveryScore(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := newFileStore(fs, "score.json")

	const writers = 50

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(score int) {
			defer wg.Done()
			if _, err := store.Append(score); err != nil {
				t.Errorf("Append(%d) error = %v", score, err)
			}
		}(i)
	}
	wg.Wait()

	got := readScores(t, fs, "score.json")
	if len(got) != writers {
		t.Fatalf("stored %d scores, want %d", len(got), writers)
	}

	slices.Sort(got)
	for i, score := range got {
		if score != i {
			t.Fatalf("sorted scores[%d] = %d, want %d", i, score, i)
		}
	}
}

func TestHumanReadableSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{999, "999 B"},
		{1000, "1.0 kB"},
		{1500, "1.5 kB"},
		{2_000_000, "2.0 MB"},
	}

	for _, tt := range tests {
		if got := humanReadableSize(tt.bytes); got != tt.want {
			t.Errorf("humanReadableSize(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}

func ptr[T any](v T) *T {
	return &v
}
