package services

import (
  "context"
  "errors"
  "fmt"
  "io"

  "cloud.google.com/go/storage"
  "google.golang.org/api/option"

  "github.com/medicare-pharmacy/medicare-backend/internal/logger"
)

type BucketService interface {
  UploadFile(ctx context.Context, key string, r io.Reader, contentType string) error
  DeleteFile(ctx context.Context, key string) error
  GetPublicURL(key string) string
}

type gcsBucketService struct {
  log         *logger.Logger
  client      *storage.Client
  bucketName  string
}

// NewBucketService connects to Google Cloud Storage. An empty credentialsPath uses
// application default credentials.
func NewBucketService(ctx context.Context, log *logger.Logger, bucketName, credentialsPath string) (BucketService, error) {
  serviceLog := log.With("service", "BucketService")
  if bucketName == "" {
    return nil, errors.New("missing GCS_BUCKET_NAME")
  }
  var opts []option.ClientOption
  if credentialsPath != "" {
    opts = append(opts, option.WithCredentialsFile(credentialsPath))
  }
  client, err := storage.NewClient(ctx, opts...)
  if err != nil {
    return nil, fmt.Errorf("failed to create storage client: %w", err)
  }
  serviceLog.Info("Connected to GCS bucket", "bucket", bucketName)
  return &gcsBucketService{log: serviceLog, client: client, bucketName: bucketName}, nil
}

func (bs *gcsBucketService) UploadFile(ctx context.Context, key string, r io.Reader, contentType string) error {
  w := bs.client.Bucket(bs.bucketName).Object(key).NewWriter(ctx)
  w.ContentType = contentType
  w.CacheControl = "public, max-age=3600"
  if _, err := io.Copy(w, r); err != nil {
    w.Close()
    bs.log.Warn("Failed to write object", "key", key, "error", err)
    return fmt.Errorf("failed to upload %s: %w", key, err)
  }
  if err := w.Close(); err != nil {
    bs.log.Warn("Failed to finalize object", "key", key, "error", err)
    return fmt.Errorf("failed to upload %s: %w", key, err)
  }
  bs.log.Info("Uploaded object", "key", key)
  return nil
}

func (bs *gcsBucketService) DeleteFile(ctx context.Context, key string) error {
  err := bs.client.Bucket(bs.bucketName).Object(key).Delete(ctx)
  if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
    return fmt.Errorf("failed to delete %s: %w", key, err)
  }
  return nil
}

func (bs *gcsBucketService) GetPublicURL(key string) string {
  return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bs.bucketName, key)
}
