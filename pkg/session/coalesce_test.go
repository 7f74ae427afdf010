package session

import (
	"bytes"
	"context"
	"image"
	"sync/atomic"
	"testing"
	"time"

	"github.com/xob0t/posterkit/pkg/poster"
)

func TestCoalescerMergesBurst(t *testing.T) {
	var calls, value atomic.Int64
	release := make(chan struct{})
	started := make(chan struct{})

	c := NewCoalescer(func() (*image.RGBA, error) {
		if calls.Add(1) == 1 {
			close(started)
			<-release
		}
		return image.NewRGBA(image.Rect(0, 0, int(value.Load()), 1)), nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)

	value.Store(1)
	c.Request()
	<-started

	for v := int64(2); v <= 10; v++ {
		value.Store(v)
		c.Request()
	}
	close(release)

	timeout := time.After(5 * time.Second)
	for {
		select {
		case f := <-c.Frames():
			if f.Err != nil {
				t.Fatal(f.Err)
			}
			if f.Image.Bounds().Dx() == 10 {
				if n := calls.Load(); n > 2 {
					t.Errorf("rendered %d times for a burst, want at most 2", n)
				}
				return
			}
		case <-timeout:
			t.Fatal("final state was never rendered")
		}
	}
}

func TestSessionRendersLatestState(t *testing.T) {
	s := newTestSession(&stubSuggester{sug: claySuggestion})
	if err := s.UploadImage(photoBytes(t, 60, 40)); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	frames := s.Renders(ctx)

	if _, err := s.Generate(ctx, GenerateRequest{Category: "modern"}); err != nil {
		t.Fatal(err)
	}
	for i := 1; i <= 20; i++ {
		if _, err := s.EditField(poster.StylePatch{HeadlineScale: poster.Ptr(1 + float64(i)/20)}); err != nil {
			t.Fatal(err)
		}
	}

	want, err := s.Render()
	if err != nil {
		t.Fatal(err)
	}

	timeout := time.After(10 * time.Second)
	for {
		select {
		case f := <-frames:
			if f.Err == nil && bytes.Equal(f.Image.Pix, want.Pix) {
				return
			}
		case <-timeout:
			t.Fatal("final edit was never rendered")
		}
	}
}

func TestRendersUnsubscribesWhenDone(t *testing.T) {
	s := newTestSession(&stubSuggester{sug: claySuggestion})

	listenerCount := func() int {
		s.listenerMu.Lock()
		defer s.listenerMu.Unlock()
		return len(s.listeners)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.Renders(ctx)
	s.Renders(ctx)
	if n := listenerCount(); n != 2 {
		t.Fatalf("listeners = %d while rendering, want 2", n)
	}
	cancel()

	deadline := time.Now().Add(5 * time.Second)
	for listenerCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("listeners = %d after cancel, want 0", listenerCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	s := newTestSession(&stubSuggester{sug: claySuggestion})
	var first, second atomic.Int64
	unsubscribe := s.Subscribe(func(Event) { first.Add(1) })
	s.Subscribe(func(Event) { second.Add(1) })

	if err := s.UploadImage(photoBytes(t, 20, 20)); err != nil {
		t.Fatal(err)
	}
	unsubscribe()
	unsubscribe()
	if err := s.UploadImage(photoBytes(t, 20, 20)); err != nil {
		t.Fatal(err)
	}

	if got := first.Load(); got != 1 {
		t.Errorf("removed listener saw %d events, want 1", got)
	}
	if got := second.Load(); got != 2 {
		t.Errorf("remaining listener saw %d events, want 2", got)
	}
}
