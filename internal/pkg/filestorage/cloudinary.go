package filestorage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/url"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	"github.com/yigit/studentregistry/internal/pkg/logger"
)

// CloudinaryStorage uploads photos to a Cloudinary folder and references them by secure URL.
type CloudinaryStorage struct {
	cld       *cloudinary.Cloudinary
	cloudName string
	folder    string
	opts      Options
}

// NewCloudinaryStorage builds a client from the cloud name / API key / API secret triple
func NewCloudinaryStorage(cloudName, apiKey, apiSecret, folder string, opts Options) (*CloudinaryStorage, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloudinary client: %w", err)
	}

	return &CloudinaryStorage{
		cld:       cld,
		cloudName: cloudName,
		folder:    strings.Trim(folder, "/"),
		opts:      opts,
	}, nil
}

// Save uploads the normalized image under a random public id and returns its secure URL
func (cs *CloudinaryStorage) Save(ctx context.Context, fileHeader *multipart.FileHeader) (string, error) {
	if fileHeader == nil {
		return "", nil
	}

	p, err := readPhoto(fileHeader, cs.opts)
	if err != nil {
		logger.Warn().Err(err).Str("filename", fileHeader.Filename).Msg("Rejected uploaded photo")
		return "", err
	}

	res, err := cs.cld.Upload.Upload(ctx, bytes.NewReader(p.data), uploader.UploadParams{
		Folder:       cs.folder,
		PublicID:     uuid.New().String(),
		ResourceType: "image",
	})
	if err != nil {
		logger.Error().Err(err).Str("filename", fileHeader.Filename).Msg("Cloudinary upload failed")
		return "", fmt.Errorf("cloudinary upload failed: %w", err)
	}
	if res.Error.Message != "" {
		logger.Error().Str("error", res.Error.Message).Str("filename", fileHeader.Filename).Msg("Cloudinary rejected upload")
		return "", fmt.Errorf("cloudinary upload failed: %s", res.Error.Message)
	}
	if res.SecureURL == "" {
		return "", errors.New("cloudinary upload returned no URL")
	}

	logger.Info().Str("filename", fileHeader.Filename).Str("public_id", res.PublicID).Msg("Photo uploaded to cloudinary")
	return res.SecureURL, nil
}

// Delete destroys the asset behind a URL produced by Save. Other references are ignored.
func (cs *CloudinaryStorage) Delete(ctx context.Context, ref string) error {
	publicID, ok := publicIDFromURL(ref, cs.cloudName)
	if !ok {
		return nil
	}

	res, err := cs.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: "image",
	})
	if err != nil {
		logger.Error().Err(err).Str("public_id", publicID).Msg("Cloudinary destroy failed")
		return fmt.Errorf("cloudinary destroy failed: %w", err)
	}
	if res.Error.Message != "" {
		return fmt.Errorf("cloudinary destroy failed: %s", res.Error.Message)
	}

	logger.Info().Str("public_id", publicID).Str("result", res.Result).Msg("Photo deleted from cloudinary")
	return nil
}

// publicIDFromURL extracts "folder/name" from
// https://res.cloudinary.com/<cloud>/image/upload/[<transformations>/]v<version>/folder/name.ext
func publicIDFromURL(ref, cloudName string) (string, bool) {
	u, err := url.Parse(ref)
	if err != nil || u.Host == "" {
		return "", false
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) < 4 || segments[0] != cloudName || segments[1] != "image" || segments[2] != "upload" {
		return "", false
	}

	rest := segments[3:]
	for i, segment := range rest {
		if isVersionSegment(segment) {
			rest = rest[i+1:]
			break
		}
	}
	if len(rest) == 0 {
		return "", false
	}

	publicID := strings.Join(rest, "/")
	publicID = strings.TrimSuffix(publicID, path.Ext(publicID))
	if publicID == "" {
		return "", false
	}
	return publicID, true
}

func isVersionSegment(segment string) bool {
	if len(segment) < 2 || segment[0] != 'v' {
		return false
	}
	for _, r := range segment[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

var _ PhotoStore = (*CloudinaryStorage)(nil)
