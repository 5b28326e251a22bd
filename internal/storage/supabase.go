package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/supabase-community/supabase-go"
	storage_go "github.com/supabase-community/storage-go"
)

// bucketAPI is the subset of the storage-go client used here.
type bucketAPI interface {
	UploadFile(bucketID, relativePath string, data io.Reader, fileOptions ...storage_go.FileOptions) (storage_go.FileUploadResponse, error)
	RemoveFile(bucketID string, paths []string) ([]storage_go.FileUploadResponse, error)
	GetPublicUrl(bucketID, filePath string, urlOptions ...storage_go.UrlOptions) storage_go.SignedUrlResponse
}

// SupabaseStore keeps files in a public Supabase Storage bucket.
type SupabaseStore struct {
	client bucketAPI
	bucket string
}

// NewSupabaseStore authenticates with the service key so uploads bypass row
// level policies on the bucket.
func NewSupabaseStore(projectURL, serviceKey, bucket string) (*SupabaseStore, error) {
	client, err := supabase.NewClient(projectURL, serviceKey, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("create supabase client: %w", err)
	}
	return &SupabaseStore{client: client.Storage, bucket: bucket}, nil
}

func newSupabaseStoreWithClient(client bucketAPI, bucket string) *SupabaseStore {
	return &SupabaseStore{client: client, bucket: bucket}
}

func (s *SupabaseStore) Put(ctx context.Context, key, contentType string, body io.ReadSeeker, _ int64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	cacheControl := "3600"
	upsert := false
	if _, err := s.client.UploadFile(s.bucket, key, body, storage_go.FileOptions{
		CacheControl: &cacheControl,
		ContentType:  &contentType,
		Upsert:       &upsert,
	}); err != nil {
		return "", fmt.Errorf("upload %s to bucket %s: %w", key, s.bucket, err)
	}
	return s.client.GetPublicUrl(s.bucket, key).SignedURL, nil
}

func (s *SupabaseStore) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.client.RemoveFile(s.bucket, []string{key}); err != nil {
		return fmt.Errorf("remove %s from bucket %s: %w", key, s.bucket, err)
	}
	return nil
}
