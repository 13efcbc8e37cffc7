package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ludobot/ludo/internal/knowledge"
	"github.com/ludobot/ludo/internal/log"
	"github.com/ludobot/ludo/internal/testutil"
)

type upload struct {
	text  string
	info  string
	topic knowledge.Topic
}

type recordingUploader struct {
	uploads     []upload
	registered  []string
	uploadErr   error
	registerErr error
}

func (u *recordingUploader) Upload(_ context.Context, text, info string, _ []float32, topic knowledge.Topic) error {
	if u.uploadErr != nil {
		return u.uploadErr
	}
	u.uploads = append(u.uploads, upload{text: text, info: info, topic: topic})
	return nil
}

func (u *recordingUploader) RegisterGameName(_ context.Context, name string) error {
	if u.registerErr != nil {
		return u.registerErr
	}
	u.registered = append(u.registered, name)
	return nil
}

const catanEvent = `{
	"gameName": "Catan",
	"price": 9.99,
	"currency": "EUR",
	"maxLobbyPlayersAmount": 4,
	"rules": [
		{"rule": "Setup", "description": "Each player places two settlements and two roads."},
		{"rule": "Turns", "description": "Roll the dice and collect resources."}
	]
}`

func newHandler(t *testing.T, store Uploader) *Handler {
	t.Helper()
	h, err := NewHandler(store, testutil.NewEmbedder(), log.NewNop())
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}
	return h
}

func TestExampleQueries(t *testing.T) {
	queries := ExampleQueries("Catan")
	if len(queries) != 5 {
		t.Fatalf("got %d queries, want 5", len(queries))
	}
	if queries[0] != "How do I play Catan?" {
		t.Errorf("queries[0] = %q", queries[0])
	}
	for _, q := range queries {
		if !strings.Contains(q, "Catan") {
			t.Errorf("query %q does not mention the game", q)
		}
	}
}

func TestProcess(t *testing.T) {
	store := &recordingUploader{}
	h := newHandler(t, store)

	if err := h.Process(context.Background(), []byte(catanEvent)); err != nil {
		t.Fatalf("Process: %v", err)
	}

	if len(store.uploads) != 1 {
		t.Fatalf("got %d uploads, want 1", len(store.uploads))
	}
	up := store.uploads[0]
	if up.topic != knowledge.TopicRules {
		t.Errorf("topic = %v, want rules", up.topic)
	}
	if up.info != "Rules for Catan: Setup Each player places two settlements and two roads. Turns Roll the dice and collect resources." {
		t.Errorf("info = %q", up.info)
	}
	if !strings.Contains(up.text, "How do I play Catan?") {
		t.Errorf("embedded text missing example query: %q", up.text)
	}

	if len(store.registered) != 1 || store.registered[0] != "Catan" {
		t.Errorf("registered = %v, want [Catan]", store.registered)
	}
}

func TestProcess_MalformedPayload(t *testing.T) {
	store := &recordingUploader{}
	h := newHandler(t, store)

	if err := h.Process(context.Background(), []byte("not json")); err == nil {
		t.Error("Process(malformed) should fail")
	}
	if len(store.uploads) != 0 {
		t.Errorf("malformed payload reached the store: %v", store.uploads)
	}
}

func TestProcess_MissingGameName(t *testing.T) {
	store := &recordingUploader{}
	h := newHandler(t, store)

	err := h.Process(context.Background(), []byte(`{"rules": []}`))
	if !errors.Is(err, ErrMissingGameName) {
		t.Errorf("Process = %v, want ErrMissingGameName", err)
	}
}

func TestProcess_DuplicateGameIsIgnored(t *testing.T) {
	store := &recordingUploader{registerErr: knowledge.ErrDuplicateGame}
	h := newHandler(t, store)

	if err := h.Process(context.Background(), []byte(catanEvent)); err != nil {
		t.Errorf("Process(duplicate) = %v, want nil", err)
	}
	if len(store.uploads) != 1 {
		t.Errorf("got %d uploads, want 1", len(store.uploads))
	}
}

func TestProcess_UploadFailure(t *testing.T) {
	store := &recordingUploader{uploadErr: errors.New("connection refused")}
	h := newHandler(t, store)

	if err := h.Process(context.Background(), []byte(catanEvent)); err == nil {
		t.Error("Process should surface upload failure")
	}
	if len(store.registered) != 0 {
		t.Errorf("game registered despite upload failure: %v", store.registered)
	}
}

func TestProcess_NoRules(t *testing.T) {
	store := &recordingUploader{}
	h := newHandler(t, store)

	if err := h.Process(context.Background(), []byte(`{"gameName": "Go"}`)); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if store.uploads[0].info != "Rules for Go: " {
		t.Errorf("info = %q", store.uploads[0].info)
	}
}
