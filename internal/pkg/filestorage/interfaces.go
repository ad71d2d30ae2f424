package filestorage

import (
	"context"
	"mime/multipart"
)

// PhotoStore persists uploaded student photos and hands back a display reference:
// a path relative to the static root for local files or an absolute URL for remote ones.
type PhotoStore interface {
	// Save validates, normalizes and stores the upload, returning its reference
	Save(ctx context.Context, fileHeader *multipart.FileHeader) (string, error)

	// Delete removes a previously saved photo. References the store does not own are ignored.
	Delete(ctx context.Context, ref string) error
}

// Options are the upload rules shared by every PhotoStore
type Options struct {
	AllowedExtensions []string // lowercase, without the leading dot
	MaxUploadSize     int64    // bytes
	MaxDimension      int      // longest side in pixels after normalization; 0 keeps the original size
	MaxPixels         int      // width*height accepted for decoding; 0 means DefaultMaxPixels
}

// DefaultMaxPixels caps decoded image area when Options.MaxPixels is unset
const DefaultMaxPixels = 40_000_000

func (o Options) maxPixels() int {
	if o.MaxPixels > 0 {
		return o.MaxPixels
	}
	return DefaultMaxPixels
}
