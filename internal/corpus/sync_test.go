package corpus

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ludobot/ludo/internal/knowledge"
	"github.com/ludobot/ludo/internal/log"
	"github.com/ludobot/ludo/internal/testutil"
)

// recordingSyncer captures staged entries handed to the store.
type recordingSyncer struct {
	staged  []knowledge.GuidanceEntry
	calls   int
	syncErr error
}

func (r *recordingSyncer) SyncGuidance(_ context.Context, entries []knowledge.GuidanceEntry) error {
	r.calls++
	r.staged = entries
	return r.syncErr
}

// failingEmbedder always errors.
type failingEmbedder struct{}

func (failingEmbedder) Embed(context.Context, []string) ([][]float32, error) {
	return nil, errors.New("embedder offline")
}

func TestNewSynchronizer_Validation(t *testing.T) {
	if _, err := NewSynchronizer(nil, &recordingSyncer{}, log.NewNop()); err == nil {
		t.Error("NewSynchronizer(nil embedder) expected error")
	}
	if _, err := NewSynchronizer(testutil.NewEmbedder(), nil, log.NewNop()); err == nil {
		t.Error("NewSynchronizer(nil store) expected error")
	}
}

func TestSync_StagesSeedEntries(t *testing.T) {
	store := &recordingSyncer{}
	sync, err := NewSynchronizer(testutil.NewEmbedder(), store, log.NewNop())
	if err != nil {
		t.Fatalf("NewSynchronizer: %v", err)
	}

	if err := sync.Sync(context.Background(), ""); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if store.calls != 1 {
		t.Fatalf("SyncGuidance called %d times, want 1", store.calls)
	}
	if len(store.staged) == 0 {
		t.Fatal("no entries staged")
	}

	for _, e := range store.staged {
		if e.Text == "" || e.Info == "" {
			t.Errorf("staged entry missing text or info: %+v", e)
		}
		if len(e.Embedding) != knowledge.VectorDimension {
			t.Errorf("staged embedding has %d dims, want %d", len(e.Embedding), knowledge.VectorDimension)
		}
	}
}

func TestSync_BadSeedIsLoggedNoOp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("writing seed file: %v", err)
	}

	store := &recordingSyncer{}
	sync, err := NewSynchronizer(testutil.NewEmbedder(), store, log.NewNop())
	if err != nil {
		t.Fatalf("NewSynchronizer: %v", err)
	}

	if err := sync.Sync(context.Background(), path); err != nil {
		t.Fatalf("Sync with bad seed = %v, want nil (logged no-op)", err)
	}
	if store.calls != 0 {
		t.Errorf("SyncGuidance called %d times for a bad seed, want 0", store.calls)
	}
}

func TestSync_EmbedderFailurePropagates(t *testing.T) {
	store := &recordingSyncer{}
	sync, err := NewSynchronizer(failingEmbedder{}, store, log.NewNop())
	if err != nil {
		t.Fatalf("NewSynchronizer: %v", err)
	}

	if err := sync.Sync(context.Background(), ""); err == nil {
		t.Fatal("Sync with failing embedder expected error")
	}
	if store.calls != 0 {
		t.Errorf("SyncGuidance called despite embed failure")
	}
}

func TestSync_StoreFailurePropagates(t *testing.T) {
	store := &recordingSyncer{syncErr: errors.New("db down")}
	sync, err := NewSynchronizer(testutil.NewEmbedder(), store, log.NewNop())
	if err != nil {
		t.Fatalf("NewSynchronizer: %v", err)
	}

	if err := sync.Sync(context.Background(), ""); err == nil {
		t.Fatal("Sync with failing store expected error")
	}
}
