package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/storage"
)

const csvContentType = "text/csv; charset=utf-8"

var (
	errInvalidBucket = errors.New("storage: bucket name is required")
	errInvalidObject = errors.New("storage: object name is required")
	errNilClient     = errors.New("storage: client is required")
)

// ObjectWriter abstracts the subset of the Cloud Storage client used for report archives.
type ObjectWriter interface {
	Write(ctx context.Context, bucket, object, contentType string, data []byte) error
}

// GCSWriter writes objects through the Cloud Storage client.
type GCSWriter struct {
	client *storage.Client
}

// NewGCSWriter wraps a Cloud Storage client.
func NewGCSWriter(client *storage.Client) (*GCSWriter, error) {
	if client == nil {
		return nil, errNilClient
	}
	return &GCSWriter{client: client}, nil
}

// Write uploads the payload to the named object, replacing any previous contents.
func (w *GCSWriter) Write(ctx context.Context, bucket, object, contentType string, data []byte) error {
	if w == nil || w.client == nil {
		return errNilClient
	}

	writer := w.client.Bucket(bucket).Object(object).NewWriter(ctx)
	writer.ContentType = contentType
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("storage: write object %s/%s: %w", bucket, object, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("storage: finalise object %s/%s: %w", bucket, object, err)
	}
	return nil
}

// Archiver persists daily report exports into a Cloud Storage bucket.
type Archiver struct {
	writer ObjectWriter
	bucket string
	prefix string
}

// ArchiverOption customises Archiver behaviour.
type ArchiverOption func(*Archiver)

// WithObjectPrefix overrides the object name prefix (defaults to "reports").
func WithObjectPrefix(prefix string) ArchiverOption {
	return func(a *Archiver) {
		prefix = strings.Trim(strings.TrimSpace(prefix), "/")
		if prefix != "" {
			a.prefix = prefix
		}
	}
}

// NewArchiver constructs an Archiver bound to a bucket.
func NewArchiver(writer ObjectWriter, bucket string, opts ...ArchiverOption) (*Archiver, error) {
	if writer == nil {
		return nil, errNilClient
	}
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return nil, errInvalidBucket
	}

	archiver := &Archiver{
		writer: writer,
		bucket: bucket,
		prefix: "reports",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(archiver)
		}
	}
	return archiver, nil
}

// ArchiveCSV stores a CSV export for the operator and date, returning the object name.
func (a *Archiver) ArchiveCSV(ctx context.Context, operatorID, date string, data []byte) (string, error) {
	if a == nil || a.writer == nil {
		return "", errNilClient
	}

	object, err := a.objectName(operatorID, date)
	if err != nil {
		return "", err
	}

	if err := a.writer.Write(ctx, a.bucket, object, csvContentType, data); err != nil {
		return "", err
	}
	return object, nil
}

func (a *Archiver) objectName(operatorID, date string) (string, error) {
	operatorID = strings.TrimSpace(operatorID)
	date = strings.TrimSpace(date)
	if operatorID == "" || date == "" {
		return "", errInvalidObject
	}
	if strings.ContainsAny(operatorID, "/\\") || strings.ContainsAny(date, "/\\") {
		return "", errInvalidObject
	}
	return fmt.Sprintf("%s/%s/%s.csv", a.prefix, operatorID, date), nil
}
