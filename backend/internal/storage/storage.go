// Package storage hosts uploaded recipe images
package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "recipe-graph/backend/pkg/errors"
)

// ImageHost stores an image and returns a stable public URL for it
type ImageHost interface {
	Upload(ctx context.Context, filename, contentType string, body io.Reader) (string, error)
}

// putObjectAPI is the part of the S3 client S3ImageHost uses
type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3ImageHost uploads into a bucket and serves through a public base URL
type S3ImageHost struct {
	client    putObjectAPI
	bucket    string
	publicURL string
	prefix    string
	logger    *zap.Logger
}

// NewS3ImageHost creates an image host. publicURL is the bucket's public or
// CDN origin, without trailing slash.
func NewS3ImageHost(client putObjectAPI, bucket, publicURL string, log *zap.Logger) *S3ImageHost {
	return &S3ImageHost{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
		prefix:    "recipe-images",
		logger:    log,
	}
}

// Upload stores body under a fresh key and returns its public URL
func (h *S3ImageHost) Upload(ctx context.Context, filename, contentType string, body io.Reader) (string, error) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "image/") {
		return "", apperrors.NewInvalidArgument("image", fmt.Sprintf("unsupported content type %q", contentType))
	}

	key := fmt.Sprintf("%s/%s%s", h.prefix, uuid.NewString(), extensionFor(filename, mediaType))

	_, err = h.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(h.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(mediaType),
		ACL:         s3types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		h.logger.Error("S3 upload failed", zap.String("key", key), zap.Error(err))
		return "", apperrors.NewUpstreamFailure("image upload", err)
	}

	url := fmt.Sprintf("%s/%s", h.publicURL, key)
	h.logger.Info("Image uploaded", zap.String("key", key))
	return url, nil
}

func extensionFor(filename, mediaType string) string {
	switch mediaType {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	}
	if ext := strings.ToLower(path.Ext(filename)); ext != "" {
		return ext
	}
	if exts, _ := mime.ExtensionsByType(mediaType); len(exts) > 0 {
		return exts[0]
	}
	return ""
}
