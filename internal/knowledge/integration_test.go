package knowledge_test

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/ludobot/ludo/internal/knowledge"
	"github.com/ludobot/ludo/internal/log"
	"github.com/ludobot/ludo/internal/testutil"
)

func setupStore(t *testing.T) (*knowledge.Store, func()) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	db, cleanup := testutil.SetupTestDB(t)
	store, err := knowledge.NewStore(db.Pool, log.NewNop())
	if err != nil {
		cleanup()
		t.Fatalf("NewStore: %v", err)
	}
	return store, cleanup
}

func seedEntries() []knowledge.GuidanceEntry {
	return []knowledge.GuidanceEntry{
		{
			Text:      "How do I get started? How do I begin playing?",
			Info:      "Guidance for Getting Started: Click Play Choose a game",
			Embedding: testutil.BasisVector(0),
		},
		{
			Text:      "How do I deposit money? How do I add funds?",
			Info:      "Guidance for Deposits: Open wallet Add funds",
			Embedding: testutil.BasisVector(1),
		},
	}
}

func TestSyncGuidance_Populates(t *testing.T) {
	store, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	if err := store.SyncGuidance(ctx, seedEntries()); err != nil {
		t.Fatalf("SyncGuidance: %v", err)
	}

	count, err := store.CountByTopic(ctx, knowledge.TopicGuidance)
	if err != nil {
		t.Fatalf("CountByTopic: %v", err)
	}
	if count != 2 {
		t.Errorf("guidance count = %d, want 2", count)
	}
}

func TestSyncGuidance_Idempotent(t *testing.T) {
	store, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	entries := seedEntries()
	if err := store.SyncGuidance(ctx, entries); err != nil {
		t.Fatalf("first SyncGuidance: %v", err)
	}
	if err := store.SyncGuidance(ctx, entries); err != nil {
		t.Fatalf("second SyncGuidance: %v", err)
	}

	count, err := store.CountByTopic(ctx, knowledge.TopicGuidance)
	if err != nil {
		t.Fatalf("CountByTopic: %v", err)
	}
	if count != 2 {
		t.Errorf("guidance count after double sync = %d, want 2", count)
	}

	// Content set unchanged: retrieval by the seeded vector still returns
	// the seeded info text.
	info, err := store.ClosestInfo(ctx, testutil.BasisVector(0))
	if err != nil {
		t.Fatalf("ClosestInfo: %v", err)
	}
	if info != entries[0].Info {
		t.Errorf("ClosestInfo = %q, want %q", info, entries[0].Info)
	}
}

func TestSyncGuidance_RemovesStaleAndRefreshes(t *testing.T) {
	store, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	if err := store.SyncGuidance(ctx, seedEntries()); err != nil {
		t.Fatalf("initial SyncGuidance: %v", err)
	}

	// New revision: deposits entry dropped, getting-started example
	// queries reworded, one new topic added.
	updated := []knowledge.GuidanceEntry{
		{
			Text:      "How do I get started? How do I begin? How do I join a lobby?",
			Info:      "Guidance for Getting Started: Click Play Choose a game",
			Embedding: testutil.BasisVector(0),
		},
		{
			Text:      "How do I change my avatar?",
			Info:      "Guidance for Profiles: Open settings Edit avatar",
			Embedding: testutil.BasisVector(2),
		},
	}
	if err := store.SyncGuidance(ctx, updated); err != nil {
		t.Fatalf("second SyncGuidance: %v", err)
	}

	count, err := store.CountByTopic(ctx, knowledge.TopicGuidance)
	if err != nil {
		t.Fatalf("CountByTopic: %v", err)
	}
	if count != 2 {
		t.Errorf("guidance count = %d, want 2 (stale entry removed, new added)", count)
	}

	// The deposits entry is gone; its vector now matches something else.
	info, err := store.ClosestInfo(ctx, testutil.BasisVector(1))
	if err != nil {
		t.Fatalf("ClosestInfo: %v", err)
	}
	if info == "Guidance for Deposits: Open wallet Add funds" {
		t.Error("stale guidance entry survived synchronization")
	}
}

func TestSyncGuidance_LeavesRulesPartitionAlone(t *testing.T) {
	store, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	// A rules record whose info is absent from the guidance seed.
	rulesInfo := "Rules for Catan: Settlements cost resources. Longest road scores."
	if err := store.Upload(ctx, "catan example queries", rulesInfo, testutil.BasisVector(400), knowledge.TopicRules); err != nil {
		t.Fatalf("Upload rules record: %v", err)
	}

	if err := store.SyncGuidance(ctx, seedEntries()); err != nil {
		t.Fatalf("SyncGuidance: %v", err)
	}

	count, err := store.CountByTopic(ctx, knowledge.TopicRules)
	if err != nil {
		t.Fatalf("CountByTopic(rules): %v", err)
	}
	if count != 1 {
		t.Fatalf("rules count after sync = %d, want 1", count)
	}

	info, err := store.ClosestInfo(ctx, testutil.BasisVector(400))
	if err != nil {
		t.Fatalf("ClosestInfo: %v", err)
	}
	if info != rulesInfo {
		t.Errorf("rules record altered by sync: got %q", info)
	}
}

func TestClassifyTopic(t *testing.T) {
	store, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	t.Run("empty store classifies unknown", func(t *testing.T) {
		label, err := store.ClassifyTopic(ctx, testutil.BasisVector(0))
		if err != nil {
			t.Fatalf("ClassifyTopic: %v", err)
		}
		if label != knowledge.LabelUnknown {
			t.Errorf("label = %q, want %q", label, knowledge.LabelUnknown)
		}
	})

	if err := store.SyncGuidance(ctx, seedEntries()); err != nil {
		t.Fatalf("SyncGuidance: %v", err)
	}
	if err := store.Upload(ctx, "catan queries", "Rules for Catan: ...", testutil.BasisVector(400), knowledge.TopicRules); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	t.Run("close query classifies by nearest partition", func(t *testing.T) {
		label, err := store.ClassifyTopic(ctx, testutil.BasisVector(0))
		if err != nil {
			t.Fatalf("ClassifyTopic: %v", err)
		}
		if label != knowledge.LabelGuidance {
			t.Errorf("label = %q, want %q", label, knowledge.LabelGuidance)
		}

		label, err = store.ClassifyTopic(ctx, testutil.BasisVector(400))
		if err != nil {
			t.Fatalf("ClassifyTopic: %v", err)
		}
		if label != knowledge.LabelRules {
			t.Errorf("label = %q, want %q", label, knowledge.LabelRules)
		}
	})

	t.Run("distant query classifies unknown", func(t *testing.T) {
		// Orthogonal to every stored vector: similarity 0 ≤ threshold.
		label, err := store.ClassifyTopic(ctx, testutil.BasisVector(700))
		if err != nil {
			t.Fatalf("ClassifyTopic: %v", err)
		}
		if label != knowledge.LabelUnknown {
			t.Errorf("label = %q, want %q", label, knowledge.LabelUnknown)
		}
	})

	t.Run("similarity just above threshold is accepted", func(t *testing.T) {
		// Blend of the guidance axis and an unused axis: cosine similarity
		// to the seed is 0.35 > 0.3.
		q := testutil.BlendVectors(testutil.BasisVector(0), testutil.BasisVector(699), 0.35, 0.9367)
		label, err := store.ClassifyTopic(ctx, q)
		if err != nil {
			t.Fatalf("ClassifyTopic: %v", err)
		}
		if label != knowledge.LabelGuidance {
			t.Errorf("label = %q, want %q", label, knowledge.LabelGuidance)
		}
	})
}

func TestClosestInfo_EmptyStore(t *testing.T) {
	store, cleanup := setupStore(t)
	defer cleanup()

	_, err := store.ClosestInfo(context.Background(), testutil.BasisVector(0))
	if !errors.Is(err, knowledge.ErrNoRecords) {
		t.Fatalf("ClosestInfo on empty store = %v, want ErrNoRecords", err)
	}
}

func TestGameRegistry(t *testing.T) {
	store, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	names, err := store.ListGameNames(ctx)
	if err != nil {
		t.Fatalf("ListGameNames: %v", err)
	}
	if len(names) != 0 {
		t.Fatalf("fresh registry has %d names, want 0", len(names))
	}

	for _, name := range []string{"Catan", "Chess"} {
		if err := store.RegisterGameName(ctx, name); err != nil {
			t.Fatalf("RegisterGameName(%q): %v", name, err)
		}
	}

	names, err = store.ListGameNames(ctx)
	if err != nil {
		t.Fatalf("ListGameNames: %v", err)
	}
	if !slices.Contains(names, "Catan") || !slices.Contains(names, "Chess") {
		t.Errorf("ListGameNames = %v, want Catan and Chess", names)
	}

	err = store.RegisterGameName(ctx, "Catan")
	if !errors.Is(err, knowledge.ErrDuplicateGame) {
		t.Errorf("duplicate RegisterGameName = %v, want ErrDuplicateGame", err)
	}
}
