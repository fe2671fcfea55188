package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type upload struct {
	bucket, key, path, contentType string
}

type fakeStore struct {
	ensured   []string
	uploads   []upload
	ensureErr error
	uploadErr error
}

func (f *fakeStore) EnsureBucket(ctx context.Context, bucket string) error {
	f.ensured = append(f.ensured, bucket)
	return f.ensureErr
}

func (f *fakeStore) UploadFile(ctx context.Context, bucket, key, filePath, contentType string) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	f.uploads = append(f.uploads, upload{bucket, key, filePath, contentType})
	return nil
}

func TestObjectPublisherUploadsUnderRunPrefix(t *testing.T) {
	store := &fakeStore{}
	publisher := NewObjectPublisher(store, "etl-artifacts", "/runs/", "run-1", nil)

	require.NoError(t, publisher.Publish(context.Background(), []string{"data/csv/cleaned_data.csv", "data/audit/cleaning_report.txt"}))
	require.NoError(t, publisher.Publish(context.Background(), []string{"data/xlsx/ingestion.xlsx"}))

	assert.Equal(t, []string{"etl-artifacts"}, store.ensured, "bucket is prepared once")
	assert.Equal(t, []upload{
		{"etl-artifacts", "runs/run-1/cleaned_data.csv", "data/csv/cleaned_data.csv", "text/csv"},
		{"etl-artifacts", "runs/run-1/cleaning_report.txt", "data/audit/cleaning_report.txt", "text/plain; charset=utf-8"},
		{"etl-artifacts", "runs/run-1/ingestion.xlsx", "data/xlsx/ingestion.xlsx", ContentType(".xlsx")},
	}, store.uploads)
}

func TestObjectPublisherWrapsErrors(t *testing.T) {
	boom := errors.New("access denied")
	publisher := NewObjectPublisher(&fakeStore{ensureErr: boom}, "b", "", "r", nil)
	assert.ErrorIs(t, publisher.Publish(context.Background(), []string{"a.csv"}), boom)

	publisher = NewObjectPublisher(&fakeStore{uploadErr: boom}, "b", "", "r", nil)
	assert.ErrorIs(t, publisher.Publish(context.Background(), []string{"a.csv"}), boom)
}

func TestObjectPublisherSkipsEmptyBatch(t *testing.T) {
	store := &fakeStore{}
	require.NoError(t, NewObjectPublisher(store, "b", "", "r", nil).Publish(context.Background(), nil))
	assert.Empty(t, store.ensured)
}

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "runs/abc/file.csv", ObjectKey("runs", "abc", "/tmp/x/file.csv"))
	assert.Equal(t, "abc/file.csv", ObjectKey("", "abc", "file.csv"))
	assert.Equal(t, "file.csv", ObjectKey("", "", "file.csv"))
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), []string{"x"}))
}

func TestNewMinioStoreValidates(t *testing.T) {
	_, err := NewMinioStore(MinioConfig{})
	assert.Error(t, err)

	_, err = NewMinioStore(MinioConfig{Endpoint: "localhost:9000"})
	assert.Error(t, err)

	store, err := NewMinioStore(MinioConfig{Endpoint: "https://s3.example.com", AccessKey: "a", SecretKey: "b"})
	require.NoError(t, err)
	assert.NotNil(t, store)
}
