package session

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"sync"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/go-cmp/cmp"

	"github.com/xob0t/posterkit/pkg/portfolio"
	"github.com/xob0t/posterkit/pkg/poster"
	"github.com/xob0t/posterkit/pkg/render"
)

// stubSuggester answers every request immediately.
type stubSuggester struct {
	mu   sync.Mutex
	sug  poster.StyleSuggestion
	err  error
	reqs []poster.SuggestionRequest
}

func (s *stubSuggester) Suggest(_ context.Context, req poster.SuggestionRequest) (poster.StyleSuggestion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reqs = append(s.reqs, req)
	return s.sug, s.err
}

// gatedSuggester hands each request to the test, which decides when and
// with what it is answered.
type gatedSuggester struct {
	calls chan *pendingCall
}

type pendingCall struct {
	ctx   context.Context
	req   poster.SuggestionRequest
	reply chan poster.StyleSuggestion
}

func newGatedSuggester() *gatedSuggester {
	return &gatedSuggester{calls: make(chan *pendingCall)}
}

// Suggest ignores cancellation on purpose: the response arrives late even
// if the caller gave up.
func (g *gatedSuggester) Suggest(ctx context.Context, req poster.SuggestionRequest) (poster.StyleSuggestion, error) {
	c := &pendingCall{ctx: ctx, req: req, reply: make(chan poster.StyleSuggestion)}
	g.calls <- c
	return <-c.reply, nil
}

func (g *gatedSuggester) next(t *testing.T) *pendingCall {
	t.Helper()
	select {
	case c := <-g.calls:
		return c
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for suggestion request")
		return nil
	}
}

var claySuggestion = poster.StyleSuggestion{
	Headline:        "Clay Dreams",
	Tagline:         "Shaped by hand",
	PrimaryColor:    "#fefefe",
	AccentColor:     "#f59e0b",
	OverlayPosition: poster.OverlayBottom,
}

func photoBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := imaging.New(w, h, color.NRGBA{180, 90, 40, 255})
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func newTestSession(s Suggester) *Session {
	return New(Options{
		Suggester: s,
		Engine:    render.NewEngine(render.Options{MaxDimension: 120}),
		Now:       func() time.Time { return time.UnixMilli(1718000000000) },
	})
}

func TestHeritageEditUndoRegenerate(t *testing.T) {
	ctx := context.Background()
	stub := &stubSuggester{sug: claySuggestion}
	s := newTestSession(stub)

	if err := s.UploadImage(photoBytes(t, 80, 60)); err != nil {
		t.Fatal(err)
	}
	if s.Phase() != PhaseImageLoaded {
		t.Fatalf("phase = %v, want image_loaded", s.Phase())
	}

	st, err := s.Generate(ctx, GenerateRequest{Description: "terracotta pots", Category: "heritage"})
	if err != nil {
		t.Fatal(err)
	}
	if st.LayoutStyle != poster.LayoutOrnate || st.BgMode != poster.BackgroundPattern {
		t.Errorf("layout = %s/%s, want ornate/pattern", st.LayoutStyle, st.BgMode)
	}
	if st.HeadlineFont != poster.FontSerif {
		t.Errorf("headline font = %s, want serif", st.HeadlineFont)
	}
	if s.Phase() != PhaseComposed {
		t.Fatalf("phase = %v, want composed", s.Phase())
	}

	if _, err := s.EditField(poster.StylePatch{HeadlineScale: poster.Ptr(1.5)}); err != nil {
		t.Fatal(err)
	}
	if got, want := s.Position(), (Position{Index: 1, Len: 2, CanUndo: true}); got != want {
		t.Errorf("after edit position = %+v, want %+v", got, want)
	}

	st, moved, err := s.Undo()
	if err != nil || !moved {
		t.Fatalf("Undo = %v, %v", moved, err)
	}
	if st.HeadlineScale != 1.0 {
		t.Errorf("HeadlineScale after undo = %v, want 1.0", st.HeadlineScale)
	}
	if got := s.Position().Index; got != 0 {
		t.Errorf("index after undo = %d, want 0", got)
	}

	if _, err := s.Generate(ctx, GenerateRequest{Category: "heritage"}); err != nil {
		t.Fatal(err)
	}
	if got, want := s.Position(), (Position{Index: 1, Len: 2, CanUndo: true}); got != want {
		t.Errorf("after regenerate position = %+v, want %+v", got, want)
	}
	if _, moved, _ := s.Redo(); moved {
		t.Error("redo moved after regenerate; the edited branch should be gone")
	}
	for _, h := range s.History() {
		if h.HeadlineScale == 1.5 {
			t.Error("discarded edit still in history")
		}
	}
}

func TestManualBrandNameWins(t *testing.T) {
	stub := &stubSuggester{sug: claySuggestion}
	s := newTestSession(stub)
	if err := s.UploadImage(photoBytes(t, 40, 40)); err != nil {
		t.Fatal(err)
	}

	st, err := s.Generate(context.Background(), GenerateRequest{
		Category:        "modern",
		ManualBrandName: "Ritu's Pottery",
		Language:        "Hindi",
	})
	if err != nil {
		t.Fatal(err)
	}
	if st.Headline != "Ritu's Pottery" || st.BrandName != "Ritu's Pottery" {
		t.Errorf("headline/brand = %q/%q, want Ritu's Pottery", st.Headline, st.BrandName)
	}
	if st.Tagline != "Shaped by hand" {
		t.Errorf("tagline = %q, want the suggestion", st.Tagline)
	}

	req := stub.reqs[0]
	if req.ManualBrandName != "Ritu's Pottery" || req.Language != "Hindi" || req.MIMEType != "image/png" {
		t.Errorf("unexpected service request: %+v", req)
	}
	if len(req.ImageBytes) == 0 {
		t.Error("image bytes not forwarded")
	}
}

func TestOverlappingGenerateKeepsNewest(t *testing.T) {
	gated := newGatedSuggester()
	s := newTestSession(gated)
	if err := s.UploadImage(photoBytes(t, 40, 40)); err != nil {
		t.Fatal(err)
	}

	type result struct {
		st  poster.StyleState
		err error
	}
	first, second := make(chan result, 1), make(chan result, 1)

	go func() {
		st, err := s.Generate(context.Background(), GenerateRequest{Category: "modern"})
		first <- result{st, err}
	}()
	call1 := gated.next(t)

	go func() {
		st, err := s.Generate(context.Background(), GenerateRequest{Category: "modern"})
		second <- result{st, err}
	}()
	call2 := gated.next(t)

	select {
	case <-call1.ctx.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("first request was not cancelled")
	}

	newer := claySuggestion
	newer.Headline = "Second"
	call2.reply <- newer
	r2 := <-second
	if r2.err != nil || r2.st.Headline != "Second" {
		t.Fatalf("second Generate = %+v, %v", r2.st, r2.err)
	}

	stale := claySuggestion
	stale.Headline = "First"
	call1.reply <- stale
	r1 := <-first
	if !errors.Is(r1.err, ErrSuperseded) {
		t.Fatalf("first Generate err = %v, want ErrSuperseded", r1.err)
	}

	hist := s.History()
	if len(hist) != 1 || hist[0].Headline != "Second" {
		t.Errorf("history = %+v, want only the second suggestion", hist)
	}
}

func TestUploadSupersedesGenerate(t *testing.T) {
	gated := newGatedSuggester()
	s := newTestSession(gated)
	if err := s.UploadImage(photoBytes(t, 40, 40)); err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := s.Generate(context.Background(), GenerateRequest{Category: "modern"})
		done <- err
	}()
	call := gated.next(t)

	if err := s.UploadImage(photoBytes(t, 50, 30)); err != nil {
		t.Fatal(err)
	}
	call.reply <- claySuggestion

	if err := <-done; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("err = %v, want ErrSuperseded", err)
	}
	if s.Phase() != PhaseImageLoaded {
		t.Errorf("phase = %v, want image_loaded", s.Phase())
	}
}

func TestServiceFailureLeavesStateUnchanged(t *testing.T) {
	stub := &stubSuggester{sug: claySuggestion}
	s := newTestSession(stub)
	if err := s.UploadImage(photoBytes(t, 40, 40)); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Generate(context.Background(), GenerateRequest{Category: "bold"}); err != nil {
		t.Fatal(err)
	}
	before := s.History()

	stub.err = errors.New("quota exceeded")
	_, err := s.Generate(context.Background(), GenerateRequest{Category: "bold"})

	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("err = %v, want *ServiceError", err)
	}
	if !svcErr.IsRetryable() {
		t.Error("service errors should be retryable")
	}
	if diff := cmp.Diff(before, s.History()); diff != "" {
		t.Errorf("history changed after failure (-before +after):\n%s", diff)
	}
}

func TestMalformedApplySuggestionRejected(t *testing.T) {
	s := newTestSession(nil)
	if err := s.UploadImage(photoBytes(t, 40, 40)); err != nil {
		t.Fatal(err)
	}
	var svcErr *ServiceError
	if _, err := s.ApplySuggestion(poster.StyleSuggestion{Headline: "only"}, GenerateRequest{}); !errors.As(err, &svcErr) {
		t.Fatalf("err = %v, want *ServiceError", err)
	}
	if s.Phase() != PhaseImageLoaded {
		t.Errorf("phase = %v, want image_loaded", s.Phase())
	}

	st, err := s.ApplySuggestion(claySuggestion, GenerateRequest{Category: "luxury"})
	if err != nil {
		t.Fatal(err)
	}
	if st.LayoutStyle != poster.LayoutOrnate {
		t.Errorf("layout = %s, want ornate", st.LayoutStyle)
	}
}

func TestDecodeErrorKeepsState(t *testing.T) {
	s := newTestSession(&stubSuggester{sug: claySuggestion})

	var decErr *DecodeError
	if err := s.UploadImage([]byte("definitely not a photo")); !errors.As(err, &decErr) {
		t.Fatalf("err = %v, want *DecodeError", err)
	}
	if s.Phase() != PhaseEmpty {
		t.Errorf("phase = %v, want empty", s.Phase())
	}

	if err := s.UploadImage(photoBytes(t, 40, 40)); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Generate(context.Background(), GenerateRequest{Category: "modern"}); err != nil {
		t.Fatal(err)
	}
	if err := s.UploadImage(nil); !errors.As(err, &decErr) {
		t.Fatalf("err = %v, want *DecodeError", err)
	}
	if s.Phase() != PhaseComposed {
		t.Errorf("phase = %v, want composed after rejected upload", s.Phase())
	}
}

func TestInputErrors(t *testing.T) {
	s := newTestSession(&stubSuggester{sug: claySuggestion})

	if _, err := s.Generate(context.Background(), GenerateRequest{}); !errors.Is(err, ErrNoImage) {
		t.Errorf("Generate without image: %v", err)
	}
	if _, err := s.Render(); !errors.Is(err, ErrNoImage) {
		t.Errorf("Render without image: %v", err)
	}
	if _, err := s.EditField(poster.StylePatch{}); !errors.Is(err, ErrNoImage) {
		t.Errorf("EditField without image: %v", err)
	}

	if err := s.UploadImage(photoBytes(t, 40, 40)); err != nil {
		t.Fatal(err)
	}
	if _, _, err := s.Undo(); !errors.Is(err, ErrNotComposed) {
		t.Errorf("Undo before generate: %v", err)
	}
	if _, err := s.Render(); !errors.Is(err, ErrNotComposed) {
		t.Errorf("Render before generate: %v", err)
	}
}

func TestUndoRedoAtEdgesAreNoOps(t *testing.T) {
	s := newTestSession(&stubSuggester{sug: claySuggestion})
	if err := s.UploadImage(photoBytes(t, 40, 40)); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Generate(context.Background(), GenerateRequest{Category: "modern"}); err != nil {
		t.Fatal(err)
	}

	if _, moved, err := s.Undo(); err != nil || moved {
		t.Errorf("Undo at start = %v, %v; want no move", moved, err)
	}
	if _, moved, err := s.Redo(); err != nil || moved {
		t.Errorf("Redo at end = %v, %v; want no move", moved, err)
	}
}

func TestRenderReflectsCurrentState(t *testing.T) {
	s := newTestSession(&stubSuggester{sug: claySuggestion})
	if err := s.UploadImage(photoBytes(t, 200, 100)); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Generate(context.Background(), GenerateRequest{Category: "modern"}); err != nil {
		t.Fatal(err)
	}

	first, err := s.Render()
	if err != nil {
		t.Fatal(err)
	}
	if got := first.Bounds(); got != image.Rect(0, 0, 120, 60) {
		t.Errorf("bounds = %v, want 120x60", got)
	}
	again, _ := s.Render()
	if !bytes.Equal(first.Pix, again.Pix) {
		t.Error("render is not deterministic")
	}

	if _, err := s.EditField(poster.StylePatch{BgMode: poster.Ptr(poster.BackgroundSolid), BgColor: poster.Ptr("#00ff00")}); err != nil {
		t.Fatal(err)
	}
	edited, _ := s.Render()
	if bytes.Equal(first.Pix, edited.Pix) {
		t.Error("render did not change after edit")
	}

	if _, _, err := s.Undo(); err != nil {
		t.Fatal(err)
	}
	undone, _ := s.Render()
	if !bytes.Equal(first.Pix, undone.Pix) {
		t.Error("render after undo differs from the original")
	}
}

func TestEventsFollowTransitions(t *testing.T) {
	s := newTestSession(&stubSuggester{sug: claySuggestion})
	var kinds []EventKind
	s.Subscribe(func(ev Event) { kinds = append(kinds, ev.Kind) })

	if err := s.UploadImage(photoBytes(t, 40, 40)); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Generate(context.Background(), GenerateRequest{Category: "modern"}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.EditField(poster.StylePatch{Headline: poster.Ptr("New")}); err != nil {
		t.Fatal(err)
	}
	s.Undo()
	s.Undo() // no move, no event
	s.Redo()

	want := []EventKind{EventImage, EventGenerated, EventEdited, EventUndo, EventRedo}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestDownloadAndSave(t *testing.T) {
	s := newTestSession(&stubSuggester{sug: claySuggestion})
	if err := s.UploadImage(photoBytes(t, 40, 40)); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Generate(context.Background(), GenerateRequest{Category: "festival"}); err != nil {
		t.Fatal(err)
	}

	name, data, err := s.Download()
	if err != nil {
		t.Fatal(err)
	}
	if name != "kala-sahayak-poster.png" {
		t.Errorf("filename = %q", name)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Error("download is not a PNG")
	}

	store := portfolio.NewMemoryStore()
	rec, err := s.Save(context.Background(), store)
	if err != nil {
		t.Fatal(err)
	}
	if rec.ID != 1718000000000 {
		t.Errorf("ID = %d, want the clock's millisecond timestamp", rec.ID)
	}
	cur, _ := s.Current()
	if diff := cmp.Diff(cur, rec.Details); diff != "" {
		t.Errorf("saved details mismatch (-current +saved):\n%s", diff)
	}
	list, _ := store.List(context.Background())
	if len(list) != 1 {
		t.Errorf("store has %d records, want 1", len(list))
	}
}

func TestSavesInSameMillisecondGetDistinctIDs(t *testing.T) {
	s := newTestSession(&stubSuggester{sug: claySuggestion})
	if err := s.UploadImage(photoBytes(t, 40, 40)); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Generate(context.Background(), GenerateRequest{Category: "festival"}); err != nil {
		t.Fatal(err)
	}

	store := portfolio.NewMemoryStore()
	var ids []int64
	for range 3 {
		rec, err := s.Save(context.Background(), store)
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, rec.ID)
	}

	want := []int64{1718000000000, 1718000000001, 1718000000002}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Errorf("IDs mismatch (-want +got):\n%s", diff)
	}
	for _, id := range ids {
		if _, err := store.Get(context.Background(), id); err != nil {
			t.Errorf("Get(%d): %v", id, err)
		}
	}
}
