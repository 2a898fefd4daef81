package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	storage_go "github.com/supabase-community/storage-go"
	"github.com/supabase-community/supabase-go"
)

// SupabaseStore keeps paper files in a Supabase storage bucket under
// "org_<organizationId>/<paperId>_<filename>" keys.
type SupabaseStore struct {
	client *supabase.Client
	bucket string
}

var _ PaperStore = &SupabaseStore{}

func NewSupabaseStore(projectURL, serviceKey, bucket string) (*SupabaseStore, error) {
	client, err := supabase.NewClient(projectURL, serviceKey, nil)
	if err != nil {
		return nil, fmt.Errorf("create supabase client: %w", err)
	}
	return &SupabaseStore{
		client: client,
		bucket: bucket,
	}, nil
}

func (s *SupabaseStore) Upload(ctx context.Context, storagePath string, content []byte, contentType string) error {
	options := storage_go.FileOptions{}
	if contentType != "" {
		options.ContentType = &contentType
	}

	_, err := s.client.Storage.UploadFile(s.bucket, storagePath, bytes.NewReader(content), options)
	if err != nil {
		return fmt.Errorf("upload %s: %w", storagePath, err)
	}
	return nil
}

func (s *SupabaseStore) Download(ctx context.Context, storagePath string) ([]byte, error) {
	content, err := s.client.Storage.DownloadFile(s.bucket, storagePath)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", storagePath, err)
	}
	return content, nil
}

func (s *SupabaseStore) Delete(ctx context.Context, storagePath string) error {
	_, err := s.client.Storage.RemoveFile(s.bucket, []string{storagePath})
	if err != nil {
		return fmt.Errorf("delete %s: %w", storagePath, err)
	}
	return nil
}

func (s *SupabaseStore) SignedURL(ctx context.Context, storagePath string, expiry time.Duration) (string, error) {
	res, err := s.client.Storage.CreateSignedUrl(s.bucket, storagePath, int(expiry.Seconds()))
	if err != nil {
		return "", fmt.Errorf("sign url for %s: %w", storagePath, err)
	}
	return res.SignedURL, nil
}
