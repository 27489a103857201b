/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/spf13/afero"
)

// ScoreStore holds the score history, most recent first.
//
// Load never fails: a store that is missing or unreadable is treated as empty.
type ScoreStore interface {
	Load() []int
	Append(score int) ([]int, error)
}

// FileStore keeps the history as a JSON array in a single file.
// The whole file is read and rewritten on every Append.
type FileStore struct {
	fs   afero.Fs
	path string

	// serializes read-modify-write cycles within this process
	mu sync.Mutex

	onAppend func([]int)
}

func newFileStore(fs afero.Fs, path string) *FileStore {
	return &FileStore{
		fs:   fs,
		path: path,
	}
}

func (s *FileStore) Path() string {
	return s.path
}

// OnAppend registers fn to receive the new list after every successful Append.
// fn runs with the store locked, so calls arrive in write order and must not block
// or touch the store.
func (s *FileStore) OnAppend(fn func([]int)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.onAppend = fn
}

func (s *FileStore) Load() []int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load()
}

func (s *FileStore) Append(score int) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.load()

	scores := make([]int, 0, len(current)+1)
	scores = append(scores, score)
	scores = append(scores, current...)

	data, err := json.Marshal(scores)
	if err != nil {
		return nil, fmt.Errorf("encode scores: %w", err)
	}

	err = afero.WriteFile(s.fs, s.path, data, 0o644)
	if err != nil {
		return nil, fmt.Errorf("write %s: %w", s.path, err)
	}

	if s.onAppend != nil {
		s.onAppend(scores)
	}

	return scores, nil
}

// load applies the fallback-to-empty policy. Callers must hold mu.
func (s *FileStore) load() []int {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		return []int{}
	}

	var scores []int

	err = json.Unmarshal(data, &scores)
	if err != nil || scores == nil {
		return []int{}
	}

	return scores
}

func humanReadableSize(bytes int64) string {
	const unit int64 = 1000
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := unit, 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB",
		float64(bytes)/float64(div),
		"kMGTPE"[exp])
}

func fileExists(fs afero.Fs, path string) bool {
	_, err := fs.Stat(path)

	return !os.IsNotExist(err)
}
