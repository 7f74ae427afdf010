package generator

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	return imaging.New(w, h, c)
}

func TestFormatFromExt(t *testing.T) {
	tests := []struct {
		ext     string
		want    Format
		wantErr bool
	}{
		{".png", FormatPNG, false},
		{".PNG", FormatPNG, false},
		{".jpg", FormatJPEG, false},
		{"jpeg", FormatJPEG, false},
		{".bmp", FormatBMP, false},
		{".avi", FormatAVI, false},
		{".gif", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := FormatFromExt(tt.ext)
		if (err != nil) != tt.wantErr {
			t.Errorf("FormatFromExt(%q) error = %v, wantErr %v", tt.ext, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("FormatFromExt(%q) = %q, want %q", tt.ext, got, tt.want)
		}
	}
}

func TestEncodeStillFormatsDecode(t *testing.T) {
	img := solid(40, 30, color.NRGBA{200, 40, 40, 255})

	for _, f := range []Format{FormatPNG, FormatJPEG, FormatBMP} {
		t.Run(string(f), func(t *testing.T) {
			var buf bytes.Buffer
			if err := Encode(&buf, img, Config{Format: f}); err != nil {
				t.Fatal(err)
			}
			decoded, err := imaging.Decode(&buf)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got := decoded.Bounds().Size(); got != image.Pt(40, 30) {
				t.Errorf("size = %v, want 40x30", got)
			}
		})
	}
}

func TestEncodeNilImage(t *testing.T) {
	if err := Encode(&bytes.Buffer{}, nil, Config{}); err == nil {
		t.Error("expected error for nil image")
	}
}

func TestAVIHeader(t *testing.T) {
	img := solid(64, 48, color.NRGBA{10, 20, 30, 255})

	var buf bytes.Buffer
	if err := Encode(&buf, img, Config{Format: FormatAVI, Duration: 2}); err != nil {
		t.Fatal(err)
	}
	data := buf.Bytes()

	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "AVI " {
		t.Fatalf("bad RIFF header: %q", data[:12])
	}
	if size := binary.LittleEndian.Uint32(data[4:8]); int(size) != len(data)-8 {
		t.Errorf("RIFF size = %d, want %d", size, len(data)-8)
	}

	// avih starts after RIFF(12) + LIST header(12).
	avih := data[24:]
	if string(avih[0:4]) != "avih" {
		t.Fatalf("avih not found, got %q", avih[0:4])
	}
	if frames := binary.LittleEndian.Uint32(avih[24:28]); frames != 2*aviFPS {
		t.Errorf("total frames = %d, want %d", frames, 2*aviFPS)
	}
	if w := binary.LittleEndian.Uint32(avih[40:44]); w != 64 {
		t.Errorf("width = %d, want 64", w)
	}
	if !bytes.Contains(data, []byte("idx1")) {
		t.Error("missing idx1 index")
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestAVIPropagatesWriteError(t *testing.T) {
	img := solid(8, 8, color.NRGBA{A: 255})
	if err := Encode(failingWriter{}, img, Config{Format: FormatAVI}); err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Errorf("err = %v, want write error", err)
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	img := solid(10, 10, color.NRGBA{0, 128, 0, 255})

	out := filepath.Join(dir, "poster.jpg")
	if err := WriteFile(out, img, Config{}); err != nil {
		t.Fatal(err)
	}
	if fi, err := os.Stat(out); err != nil || fi.Size() == 0 {
		t.Fatalf("stat %s: %v", out, err)
	}

	if err := WriteFile(filepath.Join(dir, "poster.webp"), img, Config{}); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestDataURLRoundTrip(t *testing.T) {
	img := solid(12, 7, color.NRGBA{1, 2, 3, 255})

	url, err := DataURL(img)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(url, "data:image/png;base64,") {
		t.Fatalf("unexpected prefix: %.30s", url)
	}

	decoded, err := DecodeDataURL(url)
	if err != nil {
		t.Fatal(err)
	}
	if got := decoded.Bounds().Size(); got != image.Pt(12, 7) {
		t.Errorf("size = %v, want 12x7", got)
	}
	r, g, b, _ := decoded.At(3, 3).RGBA()
	if r>>8 != 1 || g>>8 != 2 || b>>8 != 3 {
		t.Errorf("pixel = %d,%d,%d, want 1,2,3", r>>8, g>>8, b>>8)
	}
}

func TestDecodeDataURLRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "hello", "data:image/png,abc", "data:image/png;base64"} {
		if _, err := DecodeDataURL(s); !errors.Is(err, ErrNotDataURL) {
			t.Errorf("DecodeDataURL(%q) err = %v, want ErrNotDataURL", s, err)
		}
	}
}

func TestPortfolioFilename(t *testing.T) {
	if got := PortfolioFilename(1718000000000); got != "kala-portfolio-1718000000000.png" {
		t.Errorf("got %q", got)
	}
}
