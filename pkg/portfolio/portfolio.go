// Package portfolio persists saved posters. A saved poster is an immutable
// record of the rendered image plus the StyleState that produced it; the
// newest record is listed first.
package portfolio

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/xob0t/posterkit/pkg/generator"
	"github.com/xob0t/posterkit/pkg/poster"
)

// DefaultKey is the list key posters are stored under.
const DefaultKey = "kala_posters"

// dateLayout matches the short US locale date shown in the gallery.
const dateLayout = "1/2/2006"

// ErrNotFound is returned when no record has the requested ID.
var ErrNotFound = errors.New("portfolio: poster not found")

// Record is one saved poster. IDs are millisecond Unix timestamps. A session
// bumps the ID past its previous save, but saves from different sessions in
// the same millisecond can still share an ID; Get and Delete then act on the
// newest record with that ID.
type Record struct {
	ID           int64             `json:"id"`
	ImageDataURL string            `json:"imageDataURL"`
	Date         string            `json:"date"`
	Details      poster.StyleState `json:"details"`
}

// NewRecord renders img into a PNG data URL and stamps it with now.
func NewRecord(img image.Image, details poster.StyleState, now time.Time) (Record, error) {
	url, err := generator.DataURL(img)
	if err != nil {
		return Record{}, fmt.Errorf("encode poster: %w", err)
	}
	return Record{
		ID:           now.UnixMilli(),
		ImageDataURL: url,
		Date:         now.Format(dateLayout),
		Details:      details,
	}, nil
}

// DownloadName is the filename a saved poster downloads as.
func (r Record) DownloadName() string {
	return generator.PortfolioFilename(r.ID)
}

// Store is the persistence boundary for saved posters.
type Store interface {
	// Save prepends rec to the list.
	Save(ctx context.Context, rec Record) error
	// List returns every record, newest first.
	List(ctx context.Context) ([]Record, error)
	Get(ctx context.Context, id int64) (Record, error)
	// Delete removes the record with id. Deleting a missing ID returns ErrNotFound.
	Delete(ctx context.Context, id int64) error
}
