package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"planmarket/internal/domain/service"
)

const publicHost = "https://storage.googleapis.com/"

type CloudStorageClient struct {
	client     *storage.Client
	bucketName string
}

var _ service.FileStorage = (*CloudStorageClient)(nil)

func NewCloudStorageClient(ctx context.Context, bucketName string, opts ...option.ClientOption) (*CloudStorageClient, error) {
	if bucketName == "" {
		return nil, fmt.Errorf("storage bucket not configured")
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %v", err)
	}
	return &CloudStorageClient{client: client, bucketName: bucketName}, nil
}

// Upload writes the object at objectPath, replacing any previous version.
// Public objects are readable by anyone and their URL is returned; private
// objects return objectPath for later signing.
func (c *CloudStorageClient) Upload(ctx context.Context, file io.Reader, objectPath, contentType string, isPublic bool) (string, error) {
	obj := c.client.Bucket(c.bucketName).Object(objectPath)
	wc := obj.NewWriter(ctx)
	wc.ContentType = contentType
	if isPublic {
		wc.CacheControl = "public, max-age=3600"
		wc.PredefinedACL = "publicRead"
	} else {
		wc.CacheControl = "private, max-age=0"
	}

	if _, err := io.Copy(wc, file); err != nil {
		wc.Close()
		return "", fmt.Errorf("failed to copy file to GCS: %v", err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("failed to close writer: %v", err)
	}

	if isPublic {
		return c.publicURL(objectPath), nil
	}
	return objectPath, nil
}

func (c *CloudStorageClient) publicURL(objectPath string) string {
	return fmt.Sprintf("%s%s/%s", publicHost, c.bucketName, objectPath)
}

// objectName accepts either an object path or a public URL of this bucket.
func (c *CloudStorageClient) objectName(ref string) (string, error) {
	if !strings.HasPrefix(ref, publicHost) {
		return strings.TrimPrefix(ref, "/"), nil
	}
	parts := strings.SplitN(strings.TrimPrefix(ref, publicHost), "/", 2)
	if len(parts) != 2 || parts[0] != c.bucketName {
		return "", fmt.Errorf("invalid GCS URL format or bucket mismatch")
	}
	return parts[1], nil
}

func (c *CloudStorageClient) Delete(ctx context.Context, ref string) error {
	name, err := c.objectName(ref)
	if err != nil {
		return err
	}
	if err := c.client.Bucket(c.bucketName).Object(name).Delete(ctx); err != nil && err != storage.ErrObjectNotExist {
		return fmt.Errorf("failed to delete file: %v", err)
	}
	return nil
}

// SignedURL returns a time-limited GET URL for a private object.
func (c *CloudStorageClient) SignedURL(ctx context.Context, ref string, ttl time.Duration) (string, error) {
	name, err := c.objectName(ref)
	if err != nil {
		return "", err
	}
	url, err := c.client.Bucket(c.bucketName).SignedURL(name, &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  http.MethodGet,
		Expires: time.Now().Add(ttl),
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate signed URL: %v", err)
	}
	return url, nil
}

func (c *CloudStorageClient) Close() error {
	return c.client.Close()
}
