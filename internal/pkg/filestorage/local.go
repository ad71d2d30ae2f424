package filestorage

import (
	"context"
	"fmt"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/yigit/studentregistry/internal/pkg/logger"
)

// LocalStorage saves photos under the static directory so they are served from /static.
type LocalStorage struct {
	basePath  string // directory the files are written to
	refPrefix string // reference prefix relative to the static root, e.g. "uploads"
	opts      Options
}

// NewLocalStorage creates a new LocalStorage instance.
// basePath is created if missing; refPrefix is prepended to the returned references.
func NewLocalStorage(basePath, refPrefix string, opts Options) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create upload directory")
		return nil, fmt.Errorf("failed to create upload directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local upload directory ensured")

	return &LocalStorage{
		basePath:  basePath,
		refPrefix: strings.Trim(filepath.ToSlash(refPrefix), "/"),
		opts:      opts,
	}, nil
}

// Save writes the upload as <uuid>.<ext> and returns "<refPrefix>/<uuid>.<ext>"
func (ls *LocalStorage) Save(ctx context.Context, fileHeader *multipart.FileHeader) (string, error) {
	if fileHeader == nil {
		return "", nil
	}

	p, err := readPhoto(fileHeader, ls.opts)
	if err != nil {
		logger.Warn().Err(err).Str("filename", fileHeader.Filename).Msg("Rejected uploaded photo")
		return "", err
	}

	uniqueFilename := uuid.New().String() + "." + p.ext
	dstPath := filepath.Join(ls.basePath, uniqueFilename)
	if err := os.WriteFile(dstPath, p.data, 0o644); err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to write photo")
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("failed to save photo: %w", err)
	}

	ref := path.Join(ls.refPrefix, uniqueFilename)
	logger.Info().Str("filename", fileHeader.Filename).Str("ref", ref).Msg("Photo saved")
	return ref, nil
}

// Delete removes a photo saved by this store. Placeholders, remote URLs and
// files that are already gone are not errors.
func (ls *LocalStorage) Delete(ctx context.Context, ref string) error {
	filename, ok := ls.owned(ref)
	if !ok {
		return nil
	}

	physicalPath := filepath.Join(ls.basePath, filename)
	if err := os.Remove(physicalPath); err != nil {
		if os.IsNotExist(err) {
			logger.Warn().Str("path", physicalPath).Msg("Photo to delete does not exist")
			return nil
		}
		logger.Error().Err(err).Str("path", physicalPath).Msg("Failed to delete photo")
		return fmt.Errorf("failed to delete photo: %w", err)
	}

	logger.Info().Str("path", physicalPath).Msg("Photo deleted")
	return nil
}

// owned returns the bare filename when ref points directly inside the upload directory
func (ls *LocalStorage) owned(ref string) (string, bool) {
	prefix := ls.refPrefix + "/"
	if !strings.HasPrefix(ref, prefix) {
		return "", false
	}
	filename := strings.TrimPrefix(ref, prefix)
	if filename == "" || filename == "." || filename == ".." || strings.ContainsAny(filename, `/\`) {
		return "", false
	}
	return filename, true
}

var _ PhotoStore = (*LocalStorage)(nil)
