package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"

	"scan-station/internal/domain"
)

// StorageBackend uploads export artifacts to a cloud target.
type StorageBackend interface {
	Name() string
	Upload(ctx context.Context, path string, data []byte) (string, error)
}

// StorageService fans uploads out to named backends.
type StorageService struct {
	backends map[string]StorageBackend
	logger   domain.Logger
}

// NewStorageService creates the upload router.
func NewStorageService(logger domain.Logger, backends ...StorageBackend) *StorageService {
	m := make(map[string]StorageBackend, len(backends))
	for _, b := range backends {
		m[b.Name()] = b
	}
	return &StorageService{backends: m, logger: logger}
}

// Backends lists the configured backend names.
func (s *StorageService) Backends() []string {
	names := make([]string, 0, len(s.backends))
	for name := range s.backends {
		names = append(names, name)
	}
	return names
}

// Upload stores an artifact on the named backend and returns the stored
// object location.
func (s *StorageService) Upload(ctx context.Context, backend, path string, data []byte) (string, error) {
	b, ok := s.backends[backend]
	if !ok {
		return "", fmt.Errorf("unknown storage backend %q", backend)
	}
	location, err := b.Upload(ctx, path, data)
	if err != nil {
		return "", fmt.Errorf("upload to %s: %w", backend, err)
	}
	s.logger.Info("artifact uploaded", "backend", backend, "path", location, "bytes", len(data))
	return location, nil
}

// SupabaseStorage uploads through the Supabase storage REST endpoint.
type SupabaseStorage struct {
	baseURL string
	apiKey  string
	bucket  string
	client  *http.Client
}

// NewSupabaseStorage creates the Supabase backend.
func NewSupabaseStorage(baseURL, apiKey, bucket string) *SupabaseStorage {
	return &SupabaseStorage{
		baseURL: baseURL,
		apiKey:  apiKey,
		bucket:  bucket,
		client:  http.DefaultClient,
	}
}

func (s *SupabaseStorage) Name() string { return "supabase" }

// Upload posts the object to storage/v1 with a detected content type.
func (s *SupabaseStorage) Upload(ctx context.Context, path string, data []byte) (string, error) {
	objectPath := s.bucket + "/" + path
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.baseURL+"/storage/v1/object/"+objectPath,
		bytes.NewReader(data),
	)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", mimetype.Detect(data).String())

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", errors.New("storage upload failed: " + resp.Status)
	}
	return objectPath, nil
}

// S3Storage uploads to an S3 bucket using the default AWS credential chain.
type S3Storage struct {
	client *s3.Client
	bucket string
}

// NewS3Storage creates the S3 backend.
func NewS3Storage(ctx context.Context, bucket, region string) (*S3Storage, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	if region != "" {
		cfg.Region = region
	}
	return &S3Storage{client: s3.NewFromConfig(cfg), bucket: bucket}, nil
}

func (s *S3Storage) Name() string { return "s3" }

// Upload puts the object with a detected content type.
func (s *S3Storage) Upload(ctx context.Context, path string, data []byte) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(path),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(mimetype.Detect(data).String()),
	})
	if err != nil {
		return "", err
	}
	return "s3://" + s.bucket + "/" + path, nil
}
