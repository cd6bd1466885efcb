// File: cmd/main_test.go
package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/outbreak-cli/internal/config"
	"github.com/xkilldash9x/outbreak-cli/internal/epidemic"
	"github.com/xkilldash9x/outbreak-cli/internal/store"
)

// -- Fakes --

type fakeStore struct {
	mu         sync.Mutex
	migrated   bool
	runs       []store.Run
	daily      map[uuid.UUID][]epidemic.DailyCounts
	persistErr error
}

func (f *fakeStore) Migrate(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.migrated = true
	return nil
}

func (f *fakeStore) PersistRun(ctx context.Context, run store.Run) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.persistErr != nil {
		return f.persistErr
	}
	f.runs = append(f.runs, run)
	return nil
}

func (f *fakeStore) GetDailyCounts(ctx context.Context, runID uuid.UUID) ([]epidemic.DailyCounts, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rows, ok := f.daily[runID]
	if !ok {
		return nil, store.ErrRunNotFound
	}
	return rows, nil
}

type fakeProvider struct {
	store     *fakeStore
	createErr error
	created   int
	cleaned   int
}

func (p *fakeProvider) Create(ctx context.Context, cfg *config.Config) (runStore, func(), error) {
	p.created++
	if p.createErr != nil {
		return nil, nil, p.createErr
	}
	return p.store, func() { p.cleaned++ }, nil
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{store: &fakeStore{daily: map[uuid.UUID][]epidemic.DailyCounts{}}}
}

// -- Helpers --

// executeCommand runs a fresh command tree and returns what it printed.
func executeCommand(t *testing.T, provider storeProvider, args ...string) (string, error) {
	t.Helper()
	// Keep the test output quiet.
	t.Setenv("OUTBREAK_LOGGER_LEVEL", "error")

	root := newRootCmd(provider)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func createTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

var errBoom = errors.New("boom")
