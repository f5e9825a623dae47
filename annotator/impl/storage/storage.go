// Package storage uploads annotation results to Google Cloud Storage.
package storage

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"path"

	"cloud.google.com/go/storage"
)

type Client interface {
	SaveBytes(ctx context.Context, bucketName string, objectName string, data []byte) error
}

type gcsClient struct {
	storageClient *storage.Client
}

func New(storageClient *storage.Client) Client {
	return &gcsClient{storageClient: storageClient}
}

func (s *gcsClient) SaveBytes(ctx context.Context, bucketName string, objectName string, data []byte) error {
	writer := s.storageClient.Bucket(bucketName).Object(objectName).NewWriter(ctx)
	writer.ContentType = ContentType(objectName, data)

	if _, err := writer.Write(data); err != nil {
		writer.Close()
		return fmt.Errorf("failed to write gs://%s/%s: %w", bucketName, objectName, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close gs://%s/%s: %w", bucketName, objectName, err)
	}
	return nil
}

// ContentType guesses the object type from its extension, then from its content.
func ContentType(objectName string, data []byte) string {
	if contentType := mime.TypeByExtension(path.Ext(objectName)); contentType != "" {
		return contentType
	}
	return http.DetectContentType(data)
}
