package storage

import (
	"context"
	"errors"
	"testing"
)

type fakeObjectWriter struct {
	bucket      string
	object      string
	contentType string
	data        []byte
	err         error
	calls       int
}

func (f *fakeObjectWriter) Write(_ context.Context, bucket, object, contentType string, data []byte) error {
	f.calls++
	f.bucket = bucket
	f.object = object
	f.contentType = contentType
	f.data = append([]byte(nil), data...)
	return f.err
}

func TestArchiveCSVWritesObject(t *testing.T) {
	writer := &fakeObjectWriter{}
	archiver, err := NewArchiver(writer, "wash-exports")
	if err != nil {
		t.Fatalf("NewArchiver returned error: %v", err)
	}

	object, err := archiver.ArchiveCSV(context.Background(), "op-1", "2024-05-01", []byte("a,b\n"))
	if err != nil {
		t.Fatalf("ArchiveCSV returned error: %v", err)
	}

	if object != "reports/op-1/2024-05-01.csv" {
		t.Fatalf("unexpected object name %s", object)
	}
	if writer.bucket != "wash-exports" {
		t.Errorf("unexpected bucket %s", writer.bucket)
	}
	if writer.contentType != csvContentType {
		t.Errorf("unexpected content type %s", writer.contentType)
	}
	if string(writer.data) != "a,b\n" {
		t.Errorf("unexpected payload %q", writer.data)
	}
}

func TestArchiveCSVHonoursPrefix(t *testing.T) {
	writer := &fakeObjectWriter{}
	archiver, err := NewArchiver(writer, "wash-exports", WithObjectPrefix("/daily/"))
	if err != nil {
		t.Fatalf("NewArchiver returned error: %v", err)
	}

	object, err := archiver.ArchiveCSV(context.Background(), "op-1", "2024-05-01", nil)
	if err != nil {
		t.Fatalf("ArchiveCSV returned error: %v", err)
	}
	if object != "daily/op-1/2024-05-01.csv" {
		t.Fatalf("unexpected object name %s", object)
	}
}

func TestArchiveCSVRejectsPathSeparators(t *testing.T) {
	writer := &fakeObjectWriter{}
	archiver, err := NewArchiver(writer, "wash-exports")
	if err != nil {
		t.Fatalf("NewArchiver returned error: %v", err)
	}

	if _, err := archiver.ArchiveCSV(context.Background(), "op/1", "2024-05-01", nil); !errors.Is(err, errInvalidObject) {
		t.Fatalf("expected errInvalidObject, got %v", err)
	}
	if writer.calls != 0 {
		t.Fatalf("expected no write, got %d calls", writer.calls)
	}
}

func TestNewArchiverRequiresBucket(t *testing.T) {
	if _, err := NewArchiver(&fakeObjectWriter{}, "  "); !errors.Is(err, errInvalidBucket) {
		t.Fatalf("expected errInvalidBucket, got %v", err)
	}
}
