package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image/color"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/xob0t/posterkit/pkg/portfolio"
	"github.com/xob0t/posterkit/pkg/poster"
	"github.com/xob0t/posterkit/pkg/render"
	"github.com/xob0t/posterkit/pkg/session"
)

type stubSuggester struct {
	err error
}

func (s stubSuggester) Suggest(context.Context, poster.SuggestionRequest) (poster.StyleSuggestion, error) {
	return poster.StyleSuggestion{
		Headline:        "Clay Dreams",
		Tagline:         "Shaped by hand",
		PrimaryColor:    "#ffffff",
		AccentColor:     "#f59e0b",
		OverlayPosition: poster.OverlayBottom,
	}, s.err
}

func newTestServer(t *testing.T, sug session.Suggester) (*httptest.Server, portfolio.Store) {
	t.Helper()
	manager := session.NewManager(func() *session.Session {
		return session.New(session.Options{
			Suggester: sug,
			Engine:    render.NewEngine(render.Options{MaxDimension: 160}),
		})
	}, 0)
	store := portfolio.NewMemoryStore()
	ts := httptest.NewServer(New(manager, store).Routes())
	t.Cleanup(ts.Close)
	return ts, store
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := imaging.New(64, 48, color.NRGBA{120, 60, 30, 255})
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func do(t *testing.T, method, url, contentType string, body io.Reader) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatal(err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(data)
	}
	return do(t, method, url, "application/json", r)
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("%s %s = %d, want %d: %s", resp.Request.Method, resp.Request.URL.Path, resp.StatusCode, want, body)
	}
}

func createSession(t *testing.T, base string) string {
	t.Helper()
	resp := do(t, http.MethodPost, base+"/api/sessions", "", nil)
	expectStatus(t, resp, http.StatusCreated)
	return decode[map[string]string](t, resp)["id"]
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t, stubSuggester{})
	resp := do(t, http.MethodGet, ts.URL+"/health", "", nil)
	expectStatus(t, resp, http.StatusOK)
}

func TestCategories(t *testing.T) {
	ts, _ := newTestServer(t, stubSuggester{})
	resp := do(t, http.MethodGet, ts.URL+"/api/categories", "", nil)
	expectStatus(t, resp, http.StatusOK)
	cats := decode[[]poster.Category](t, resp)
	if len(cats) != len(poster.Categories) {
		t.Errorf("got %d categories, want %d", len(cats), len(poster.Categories))
	}
}

func TestSessionHappyPath(t *testing.T) {
	ts, store := newTestServer(t, stubSuggester{})
	base := ts.URL + "/api/sessions/" + createSession(t, ts.URL)

	// multipart upload
	var form bytes.Buffer
	mw := multipart.NewWriter(&form)
	fw, _ := mw.CreateFormFile("file", "pot.png")
	fw.Write(pngBytes(t))
	mw.Close()
	resp := do(t, http.MethodPost, base+"/image", mw.FormDataContentType(), &form)
	expectStatus(t, resp, http.StatusOK)
	if got := decode[stateResponse](t, resp).Phase; got != "image_loaded" {
		t.Fatalf("phase after upload = %q", got)
	}

	resp = doJSON(t, http.MethodPost, base+"/generate", session.GenerateRequest{Category: "traditional", ManualBrandName: "Ritu's Pottery"})
	expectStatus(t, resp, http.StatusOK)
	st := decode[stateResponse](t, resp)
	if st.State == nil || st.State.Headline != "Ritu's Pottery" || st.State.LayoutStyle != poster.LayoutOrnate {
		t.Fatalf("generated state = %+v", st.State)
	}

	resp = doJSON(t, http.MethodPatch, base+"/state", poster.StylePatch{HeadlineScale: poster.Ptr(1.5)})
	expectStatus(t, resp, http.StatusOK)
	if pos := decode[stateResponse](t, resp).Position; pos.Index != 1 || pos.Len != 2 {
		t.Errorf("position after edit = %+v", pos)
	}

	resp = do(t, http.MethodPost, base+"/undo", "", nil)
	expectStatus(t, resp, http.StatusOK)
	undo := decode[stateResponse](t, resp)
	if undo.Moved == nil || !*undo.Moved || undo.State.HeadlineScale != 1 {
		t.Errorf("undo = %+v", undo)
	}

	resp = do(t, http.MethodGet, base+"/render", "", nil)
	expectStatus(t, resp, http.StatusOK)
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("render content type = %q", ct)
	}
	img, err := imaging.Decode(resp.Body)
	if err != nil {
		t.Fatalf("render is not an image: %v", err)
	}
	if got := img.Bounds().Dx(); got != 64 {
		t.Errorf("render width = %d, want 64", got)
	}

	resp = do(t, http.MethodGet, base+"/download", "", nil)
	expectStatus(t, resp, http.StatusOK)
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "kala-sahayak-poster.png") {
		t.Errorf("Content-Disposition = %q", cd)
	}

	resp = do(t, http.MethodGet, base+"/download?format=avi&duration=1", "", nil)
	expectStatus(t, resp, http.StatusOK)
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "kala-sahayak-poster.avi") {
		t.Errorf("AVI Content-Disposition = %q", cd)
	}

	resp = do(t, http.MethodPost, base+"/save", "", nil)
	expectStatus(t, resp, http.StatusCreated)
	rec := decode[portfolio.Record](t, resp)

	list, _ := store.List(context.Background())
	if len(list) != 1 || list[0].ID != rec.ID {
		t.Fatalf("store = %+v", list)
	}

	pbase := ts.URL + "/api/portfolio/"
	resp = do(t, http.MethodGet, pbase, "", nil)
	expectStatus(t, resp, http.StatusOK)
	if got := decode[[]portfolio.Record](t, resp); len(got) != 1 {
		t.Errorf("portfolio list has %d records", len(got))
	}

	id := strconv.FormatInt(rec.ID, 10)
	resp = do(t, http.MethodGet, pbase+id+"/download", "", nil)
	expectStatus(t, resp, http.StatusOK)
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("portfolio download content type = %q", ct)
	}

	resp = do(t, http.MethodDelete, pbase+id, "", nil)
	expectStatus(t, resp, http.StatusNoContent)
	resp = do(t, http.MethodDelete, pbase+id, "", nil)
	expectStatus(t, resp, http.StatusNotFound)
}

func TestErrorMapping(t *testing.T) {
	ts, _ := newTestServer(t, stubSuggester{})
	base := ts.URL + "/api/sessions/" + createSession(t, ts.URL)

	tests := []struct {
		name   string
		method string
		path   string
		body   io.Reader
		want   int
	}{
		{"unknown session", http.MethodGet, "/api/sessions/nope/state", nil, http.StatusNotFound},
		{"edit before image", http.MethodPatch, "/state", strings.NewReader(`{}`), http.StatusConflict},
		{"render before image", http.MethodGet, "/render", nil, http.StatusConflict},
		{"garbage upload", http.MethodPost, "/image", strings.NewReader("not an image"), http.StatusUnsupportedMediaType},
		{"bad json", http.MethodPost, "/generate", strings.NewReader("{"), http.StatusBadRequest},
		{"unknown patch field", http.MethodPatch, "/state", strings.NewReader(`{"fontWeight":"900"}`), http.StatusBadRequest},
		{"bad download format", http.MethodGet, "/download?format=gif", nil, http.StatusBadRequest},
		{"bad portfolio id", http.MethodGet, "/api/portfolio/abc", nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url := base + tt.path
			if strings.HasPrefix(tt.path, "/api/") {
				url = ts.URL + tt.path
			}
			resp := do(t, tt.method, url, "application/json", tt.body)
			expectStatus(t, resp, tt.want)
			if msg := decode[map[string]string](t, resp)["error"]; msg == "" {
				t.Error("missing error message")
			}
		})
	}
}

func TestGenerateServiceFailure(t *testing.T) {
	ts, _ := newTestServer(t, stubSuggester{err: errors.New("quota exceeded")})
	base := ts.URL + "/api/sessions/" + createSession(t, ts.URL)

	resp := do(t, http.MethodPost, base+"/image", "image/png", bytes.NewReader(pngBytes(t)))
	expectStatus(t, resp, http.StatusOK)

	resp = doJSON(t, http.MethodPost, base+"/generate", session.GenerateRequest{Category: "modern"})
	expectStatus(t, resp, http.StatusBadGateway)
	if msg := decode[map[string]string](t, resp)["error"]; !strings.Contains(msg, "try again") {
		t.Errorf("error message = %q", msg)
	}

	resp = do(t, http.MethodGet, base+"/state", "", nil)
	expectStatus(t, resp, http.StatusOK)
	if st := decode[stateResponse](t, resp); st.Phase != "image_loaded" || st.State != nil {
		t.Errorf("state after failure = %+v", st)
	}
}

func TestApplyClientSuggestion(t *testing.T) {
	ts, _ := newTestServer(t, nil)
	base := ts.URL + "/api/sessions/" + createSession(t, ts.URL)

	resp := do(t, http.MethodPost, base+"/image", "image/png", bytes.NewReader(pngBytes(t)))
	expectStatus(t, resp, http.StatusOK)

	resp = doJSON(t, http.MethodPost, base+"/generate", session.GenerateRequest{Category: "modern"})
	expectStatus(t, resp, http.StatusBadGateway)

	body := map[string]any{
		"suggestion": poster.StyleSuggestion{
			Headline: "Loom", Tagline: "Woven slow", PrimaryColor: "#fff",
			AccentColor: "#000", OverlayPosition: poster.OverlayTop,
		},
		"request": session.GenerateRequest{Category: "minimalist"},
	}
	resp = doJSON(t, http.MethodPost, base+"/suggestion", body)
	expectStatus(t, resp, http.StatusOK)
	st := decode[stateResponse](t, resp)
	if st.State == nil || st.State.Headline != "Loom" || st.State.OverlayPosition != poster.OverlayTop {
		t.Errorf("state = %+v", st.State)
	}
}

func TestDeleteSession(t *testing.T) {
	ts, _ := newTestServer(t, stubSuggester{})
	id := createSession(t, ts.URL)

	resp := do(t, http.MethodDelete, ts.URL+"/api/sessions/"+id, "", nil)
	expectStatus(t, resp, http.StatusNoContent)
	resp = do(t, http.MethodGet, ts.URL+"/api/sessions/"+id+"/state", "", nil)
	expectStatus(t, resp, http.StatusNotFound)
}
