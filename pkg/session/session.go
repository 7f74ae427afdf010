// Package session implements the poster editing controller: one source image,
// one edit history and the transitions between them.
//
// A Session moves from Empty (no image) to ImageLoaded (image, empty history)
// to Composed (at least one StyleState). Every committed transition notifies
// listeners with the new current state. Mutators are serialised; only the
// style-suggestion request runs without the lock, and a newer Generate or
// upload supersedes any request still in flight.
package session

import (
	"bytes"
	"context"
	"image"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/xob0t/posterkit/pkg/generator"
	"github.com/xob0t/posterkit/pkg/history"
	"github.com/xob0t/posterkit/pkg/portfolio"
	"github.com/xob0t/posterkit/pkg/poster"
	"github.com/xob0t/posterkit/pkg/render"
)

// Phase is the controller state.
type Phase int

const (
	PhaseEmpty Phase = iota
	PhaseImageLoaded
	PhaseComposed
)

func (p Phase) String() string {
	switch p {
	case PhaseImageLoaded:
		return "image_loaded"
	case PhaseComposed:
		return "composed"
	default:
		return "empty"
	}
}

// Suggester is the style-suggestion service.
type Suggester interface {
	Suggest(ctx context.Context, req poster.SuggestionRequest) (poster.StyleSuggestion, error)
}

// GenerateRequest carries the user's inputs for a generation.
type GenerateRequest struct {
	Description     string `json:"description"`
	Category        string `json:"category"`
	Language        string `json:"language,omitempty"`
	ManualBrandName string `json:"manualBrandName,omitempty"`
	ManualTagline   string `json:"manualTagline,omitempty"`
}

// Position describes where the session is in its history.
type Position struct {
	Index   int  `json:"index"`
	Len     int  `json:"length"`
	CanUndo bool `json:"canUndo"`
	CanRedo bool `json:"canRedo"`
}

// EventKind names the transition that produced an Event.
type EventKind string

const (
	EventImage     EventKind = "image"
	EventGenerated EventKind = "generated"
	EventEdited    EventKind = "edited"
	EventUndo      EventKind = "undo"
	EventRedo      EventKind = "redo"
)

// Event is delivered to listeners after a committed transition. State is the
// new current snapshot; it is the zero value for EventImage.
type Event struct {
	Kind     EventKind
	Phase    Phase
	State    poster.StyleState
	Position Position
}

// Options configure a Session.
type Options struct {
	Suggester Suggester
	Engine    *render.Engine // default: render.NewEngine with defaults
	Language  string         // default generation language
	Now       func() time.Time
}

// Session is one editing context. It is safe for concurrent use, but its
// model is a single editor: calls are applied in lock order.
type Session struct {
	suggester Suggester
	engine    *render.Engine
	language  string
	now       func() time.Time

	mu        sync.Mutex
	img       image.Image
	imgBytes  []byte
	mimeType  string
	hist      *history.Store
	ticket    uint64
	cancel    context.CancelFunc
	lastSaved int64

	listenerMu   sync.Mutex
	listeners    []listener
	nextListener uint64
}

type listener struct {
	id uint64
	fn func(Event)
}

// New creates an empty session.
func New(opts Options) *Session {
	if opts.Engine == nil {
		opts.Engine = render.NewEngine(render.Options{})
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Session{
		suggester: opts.Suggester,
		engine:    opts.Engine,
		language:  opts.Language,
		now:       opts.Now,
		hist:      history.New(),
	}
}

// Subscribe registers fn to receive every committed transition and returns
// a func that removes it. Listeners run on the mutating goroutine after the
// session lock is released.
func (s *Session) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.listenerMu.Lock()
	defer s.listenerMu.Unlock()
	s.nextListener++
	id := s.nextListener
	s.listeners = append(s.listeners, listener{id: id, fn: fn})

	return func() {
		s.listenerMu.Lock()
		defer s.listenerMu.Unlock()
		s.listeners = slices.DeleteFunc(s.listeners, func(l listener) bool { return l.id == id })
	}
}

func (s *Session) emit(ev Event) {
	s.listenerMu.Lock()
	listeners := slices.Clone(s.listeners)
	s.listenerMu.Unlock()

	for _, l := range listeners {
		l.fn(ev)
	}
}

// phase and position must be called with s.mu held.
func (s *Session) phase() Phase {
	switch {
	case s.img == nil:
		return PhaseEmpty
	case s.hist.Index() < 0:
		return PhaseImageLoaded
	default:
		return PhaseComposed
	}
}

func (s *Session) position() Position {
	return Position{
		Index:   s.hist.Index(),
		Len:     s.hist.Len(),
		CanUndo: s.hist.CanUndo(),
		CanRedo: s.hist.CanRedo(),
	}
}

// event builds an Event for the current state. Must be called with s.mu held.
func (s *Session) event(kind EventKind) Event {
	st, _ := s.hist.Current()
	return Event{Kind: kind, Phase: s.phase(), State: st, Position: s.position()}
}

// Phase returns the controller state.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase()
}

// Position returns the history position.
func (s *Session) Position() Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.position()
}

// Current returns the current StyleState, or false before the first generation.
func (s *Session) Current() (poster.StyleState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.Current()
}

// History returns a copy of every stored snapshot.
func (s *Session) History() []poster.StyleState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.Snapshot()
}

// Image returns the decoded source image, or nil.
func (s *Session) Image() image.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.img
}

// UploadImage decodes data and makes it the source image, starting a fresh
// lineage: history is cleared and any in-flight generation is superseded.
// On a DecodeError nothing changes.
func (s *Session) UploadImage(data []byte) error {
	img, mimeType, err := decodeImage(data)
	if err != nil {
		slog.Warn("image upload rejected", "bytes", len(data), "error", err)
		return err
	}

	s.mu.Lock()
	s.img = img
	s.imgBytes = bytes.Clone(data)
	s.mimeType = mimeType
	s.supersede()
	s.hist.Reset()
	ev := s.event(EventImage)
	s.mu.Unlock()

	b := img.Bounds()
	slog.Info("image loaded", "mime", mimeType, "width", b.Dx(), "height", b.Dy())
	s.emit(ev)
	return nil
}

// supersede cancels the in-flight generation, if any. Must be called with
// s.mu held.
func (s *Session) supersede() {
	s.ticket++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Generate asks the suggestion service for copy and colours, derives the
// initial StyleState for req.Category and pushes it. It is valid once an
// image is loaded, and again after composing (regeneration truncates any
// redo branch like every other push).
//
// A second Generate while one is outstanding cancels the first; the first
// then returns ErrSuperseded and never touches history. Service failures
// return a *ServiceError and leave history unchanged.
func (s *Session) Generate(ctx context.Context, req GenerateRequest) (poster.StyleState, error) {
	s.mu.Lock()
	if s.img == nil {
		s.mu.Unlock()
		return poster.StyleState{}, ErrNoImage
	}
	if s.suggester == nil {
		s.mu.Unlock()
		return poster.StyleState{}, &ServiceError{Err: errNoSuggester}
	}

	s.supersede()
	ticket := s.ticket
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	sreq := poster.SuggestionRequest{
		ImageBytes:      s.imgBytes,
		MIMEType:        s.mimeType,
		Description:     req.Description,
		StyleCategory:   req.Category,
		Language:        firstNonEmpty(req.Language, s.language),
		ManualBrandName: req.ManualBrandName,
		ManualTagline:   req.ManualTagline,
	}
	s.mu.Unlock()
	defer cancel()

	sug, err := s.suggester.Suggest(ctx, sreq)

	s.mu.Lock()
	if ticket != s.ticket {
		s.mu.Unlock()
		slog.Info("discarding superseded suggestion", "ticket", ticket)
		return poster.StyleState{}, ErrSuperseded
	}
	s.cancel = nil
	if err != nil {
		s.mu.Unlock()
		slog.Error("style suggestion failed", "category", req.Category, "error", err)
		return poster.StyleState{}, &ServiceError{Err: err}
	}

	st := s.pushSuggestion(sug, req)
	ev := s.event(EventGenerated)
	s.mu.Unlock()

	s.emit(ev)
	return st, nil
}

// ApplySuggestion pushes the initial state derived from a suggestion obtained
// elsewhere (for example by a browser client talking to the service
// directly). It supersedes any in-flight Generate.
func (s *Session) ApplySuggestion(sug poster.StyleSuggestion, req GenerateRequest) (poster.StyleState, error) {
	if err := sug.Validate(); err != nil {
		return poster.StyleState{}, &ServiceError{Err: err}
	}

	s.mu.Lock()
	if s.img == nil {
		s.mu.Unlock()
		return poster.StyleState{}, ErrNoImage
	}
	s.supersede()
	st := s.pushSuggestion(sug, req)
	ev := s.event(EventGenerated)
	s.mu.Unlock()

	s.emit(ev)
	return st, nil
}

// pushSuggestion must be called with s.mu held.
func (s *Session) pushSuggestion(sug poster.StyleSuggestion, req GenerateRequest) poster.StyleState {
	st := poster.DeriveInitialState(sug, req.Category, poster.Overrides{
		BrandName: req.ManualBrandName,
		Tagline:   req.ManualTagline,
	})
	s.hist.Push(st)
	slog.Info("poster composed",
		"category", req.Category,
		"layout", st.LayoutStyle,
		"history_len", s.hist.Len(),
	)
	return st
}

// EditField merges patch onto the current state and pushes the result.
func (s *Session) EditField(patch poster.StylePatch) (poster.StyleState, error) {
	s.mu.Lock()
	if s.phase() != PhaseComposed {
		s.mu.Unlock()
		return poster.StyleState{}, s.notComposedErr()
	}
	st, _ := s.hist.Update(patch)
	ev := s.event(EventEdited)
	s.mu.Unlock()

	s.emit(ev)
	return st, nil
}

// Undo steps back one snapshot. moved is false at the start of history.
func (s *Session) Undo() (st poster.StyleState, moved bool, err error) {
	return s.navigate(EventUndo, (*history.Store).Undo)
}

// Redo steps forward one snapshot. moved is false at the end of history.
func (s *Session) Redo() (st poster.StyleState, moved bool, err error) {
	return s.navigate(EventRedo, (*history.Store).Redo)
}

func (s *Session) navigate(kind EventKind, step func(*history.Store) bool) (poster.StyleState, bool, error) {
	s.mu.Lock()
	if s.phase() != PhaseComposed {
		s.mu.Unlock()
		return poster.StyleState{}, false, s.notComposedErr()
	}
	moved := step(s.hist)
	st, _ := s.hist.Current()
	ev := s.event(kind)
	s.mu.Unlock()

	if moved {
		s.emit(ev)
	}
	return st, moved, nil
}

// notComposedErr must be called with s.mu held.
func (s *Session) notComposedErr() error {
	if s.img == nil {
		return ErrNoImage
	}
	return ErrNotComposed
}

// Render draws the current state over the source image.
func (s *Session) Render() (*image.RGBA, error) {
	st, img, err := s.renderInputs()
	if err != nil {
		return nil, err
	}
	return s.engine.Render(st, img)
}

func (s *Session) renderInputs() (poster.StyleState, image.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase() != PhaseComposed {
		return poster.StyleState{}, nil, s.notComposedErr()
	}
	st, _ := s.hist.Current()
	return st, s.img, nil
}

// Download renders the current state as PNG bytes with the download filename.
func (s *Session) Download() (filename string, data []byte, err error) {
	img, err := s.Render()
	if err != nil {
		return "", nil, err
	}
	var buf bytes.Buffer
	if err := generator.Encode(&buf, img, generator.Config{Format: generator.FormatPNG}); err != nil {
		return "", nil, err
	}
	return generator.DownloadFilename, buf.Bytes(), nil
}

// Save renders the current state and prepends it to store.
func (s *Session) Save(ctx context.Context, store portfolio.Store) (portfolio.Record, error) {
	st, img, err := s.renderInputs()
	if err != nil {
		return portfolio.Record{}, err
	}
	out, err := s.engine.Render(st, img)
	if err != nil {
		return portfolio.Record{}, err
	}
	rec, err := portfolio.NewRecord(out, st, s.now())
	if err != nil {
		return portfolio.Record{}, err
	}
	// Keep this session's IDs strictly increasing when saves share a millisecond.
	s.mu.Lock()
	rec.ID = max(rec.ID, s.lastSaved+1)
	s.lastSaved = rec.ID
	s.mu.Unlock()

	if err := store.Save(ctx, rec); err != nil {
		return portfolio.Record{}, err
	}
	slog.Info("poster saved to portfolio", "id", rec.ID)
	return rec, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
