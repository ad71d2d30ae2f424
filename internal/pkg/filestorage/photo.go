package filestorage

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/yigit/studentregistry/internal/pkg/apperrors"
)

// photo is a validated, normalized upload ready to be written somewhere
type photo struct {
	data []byte
	ext  string // lowercase, without the dot
}

// extension returns the lowercase extension of filename without the dot
func extension(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}

func (o Options) allows(ext string) bool {
	for _, allowed := range o.AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// readPhoto checks fileHeader against opts and returns the normalized image bytes
func readPhoto(fileHeader *multipart.FileHeader, opts Options) (*photo, error) {
	ext := extension(fileHeader.Filename)
	if ext == "" || !opts.allows(ext) {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnsupportedPhotoType, fileHeader.Filename)
	}
	if opts.MaxUploadSize > 0 && fileHeader.Size > opts.MaxUploadSize {
		return nil, fmt.Errorf("%w: %d bytes", apperrors.ErrPhotoTooLarge, fileHeader.Size)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	var reader io.Reader = file
	if opts.MaxUploadSize > 0 {
		reader = io.LimitReader(file, opts.MaxUploadSize+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}
	if opts.MaxUploadSize > 0 && int64(len(data)) > opts.MaxUploadSize {
		return nil, fmt.Errorf("%w: more than %d bytes", apperrors.ErrPhotoTooLarge, opts.MaxUploadSize)
	}

	if err := checkPixels(data, opts.maxPixels()); err != nil {
		return nil, err
	}

	data, err = normalize(data, ext, opts.MaxDimension)
	if err != nil {
		return nil, err
	}
	return &photo{data: data, ext: ext}, nil
}

// checkPixels reads only the image header and rejects images whose decoded size exceeds maxPixels.
// Compressed files can be tiny on disk yet decode to gigabytes.
func checkPixels(data []byte, maxPixels int) error {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrPhotoUnreadable, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("%w: empty image", apperrors.ErrPhotoUnreadable)
	}
	if int64(cfg.Width)*int64(cfg.Height) > int64(maxPixels) {
		return fmt.Errorf("%w: %dx%d pixels", apperrors.ErrPhotoTooLarge, cfg.Width, cfg.Height)
	}
	return nil
}

// normalize decodes the image and shrinks it to fit maxDimension. Images already within
// bounds are returned untouched so animated GIFs keep their frames.
func normalize(data []byte, ext string, maxDimension int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrPhotoUnreadable, err)
	}

	bounds := img.Bounds()
	if maxDimension <= 0 || (bounds.Dx() <= maxDimension && bounds.Dy() <= maxDimension) {
		return data, nil
	}

	format, err := imaging.FormatFromExtension(ext)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUnsupportedPhotoType, err)
	}

	resized := imaging.Fit(img, maxDimension, maxDimension, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, format); err != nil {
		return nil, fmt.Errorf("failed to encode resized photo: %w", err)
	}
	return buf.Bytes(), nil
}
