package content

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	types "github.com/modulearn/backend/internal/domain"
	"github.com/modulearn/backend/internal/platform/logger"
)

type fakeSource struct {
	displays map[uuid.UUID]Display
	err      error
	calls    int
}

func (f *fakeSource) FindDisplayByIDs(ctx context.Context, tenantID uuid.UUID, referenceIDs []uuid.UUID) ([]Display, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var out []Display
	for _, id := range referenceIDs {
		if d, ok := f.displays[id]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}
	return log
}

func item(kind types.ItemKind, refID uuid.UUID) *types.CourseItem {
	return &types.CourseItem{ID: uuid.New(), Kind: kind, ReferenceID: refID}
}

func TestResolveBatchesOneLookupPerKind(t *testing.T) {
	contentRef1, contentRef2, quizRef := uuid.New(), uuid.New(), uuid.New()
	contentSrc := &fakeSource{displays: map[uuid.UUID]Display{
		contentRef1: {ID: contentRef1, Title: "Intro"},
		contentRef2: {ID: contentRef2, Title: "Basics"},
	}}
	quizSrc := &fakeSource{displays: map[uuid.UUID]Display{
		quizRef: {ID: quizRef, Title: "Checkpoint", KindFields: map[string]any{"question_count": 5}},
	}}

	r := NewResolver(testLogger(t), Registry{
		types.ItemKindContent: contentSrc,
		types.ItemKindQuiz:    quizSrc,
	})

	items := []*types.CourseItem{
		item(types.ItemKindContent, contentRef1),
		item(types.ItemKindQuiz, quizRef),
		item(types.ItemKindContent, contentRef2),
	}
	resolved, err := r.Resolve(context.Background(), uuid.New(), items)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if len(resolved) != 3 {
		t.Fatalf("expected 3 resolved items, got %d", len(resolved))
	}
	if contentSrc.calls != 1 || quizSrc.calls != 1 {
		t.Fatalf("expected one batched lookup per kind, got content=%d quiz=%d", contentSrc.calls, quizSrc.calls)
	}
	if got := resolved[items[0].ID].Title; got != "Intro" {
		t.Fatalf("expected Intro, got %q", got)
	}
	if kf := resolved[items[1].ID].KindFields; kf == nil || kf["question_count"] != 5 {
		t.Fatalf("kind fields should carry through, got %v", kf)
	}
}

func TestResolveMissingReferenceGetsFallback(t *testing.T) {
	present := uuid.New()
	src := &fakeSource{displays: map[uuid.UUID]Display{
		present: {ID: present, Title: "Exists"},
	}}
	r := NewResolver(testLogger(t), Registry{types.ItemKindContent: src})

	items := []*types.CourseItem{
		item(types.ItemKindContent, present),
		item(types.ItemKindContent, uuid.New()),
	}
	resolved, err := r.Resolve(context.Background(), uuid.New(), items)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	got := resolved[items[1].ID]
	if !got.Fallback {
		t.Fatalf("missing reference should resolve to a fallback entry")
	}
	if got.Title != types.FallbackTitle {
		t.Fatalf("fallback title should be %q, got %q", types.FallbackTitle, got.Title)
	}
	if resolved[items[0].ID].Fallback {
		t.Fatalf("present reference must not be marked fallback")
	}
}

func TestResolveFailedKindDegradesWithoutBlockingOthers(t *testing.T) {
	okRef := uuid.New()
	okSrc := &fakeSource{displays: map[uuid.UUID]Display{
		okRef: {ID: okRef, Title: "Survives"},
	}}
	brokenSrc := &fakeSource{err: errors.New("subsystem down")}

	r := NewResolver(testLogger(t), Registry{
		types.ItemKindContent: okSrc,
		types.ItemKindForum:   brokenSrc,
	})

	items := []*types.CourseItem{
		item(types.ItemKindContent, okRef),
		item(types.ItemKindForum, uuid.New()),
	}
	resolved, err := r.Resolve(context.Background(), uuid.New(), items)
	if err != nil {
		t.Fatalf("one failed kind must not fail the batch: %v", err)
	}
	if resolved[items[0].ID].Title != "Survives" {
		t.Fatalf("healthy kind should still resolve")
	}
	if !resolved[items[1].ID].Fallback {
		t.Fatalf("failed kind partition should degrade to fallbacks")
	}
}

func TestResolveSkipsUnknownKinds(t *testing.T) {
	r := NewResolver(testLogger(t), Registry{})

	items := []*types.CourseItem{item(types.ItemKind("hologram"), uuid.New())}
	resolved, err := r.Resolve(context.Background(), uuid.New(), items)
	if err != nil {
		t.Fatalf("unknown kind must not error: %v", err)
	}
	if len(resolved) != 0 {
		t.Fatalf("unknown kinds are skipped, got %d entries", len(resolved))
	}
}

func TestResolveEmptyInput(t *testing.T) {
	r := NewResolver(testLogger(t), Registry{})
	resolved, err := r.Resolve(context.Background(), uuid.New(), nil)
	if err != nil {
		t.Fatalf("empty input must not error: %v", err)
	}
	if len(resolved) != 0 {
		t.Fatalf("expected empty result, got %d", len(resolved))
	}
}

func TestFallbackCarriesItemIdentity(t *testing.T) {
	it := item(types.ItemKindTask, uuid.New())
	fb := Fallback(it)
	if fb.ItemID != it.ID || fb.ReferenceID != it.ReferenceID || fb.Kind != it.Kind {
		t.Fatalf("fallback must keep the item's identity: %+v", fb)
	}
	if !fb.Fallback || fb.Title != types.FallbackTitle {
		t.Fatalf("fallback must be marked and titled %q", types.FallbackTitle)
	}
}
