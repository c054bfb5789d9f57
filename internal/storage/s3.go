package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3 maps the repository namespace onto a bucket: a stored file becomes
// the object "project/filename" and projects are the first-level key
// prefixes. Prefixes exist implicitly, so a project only becomes visible
// once it holds at least one file.
type S3 struct {
	client *minio.Client
	bucket string
}

// S3Options configures the object-store backend.
type S3Options struct {
	Endpoint  string // "minio:9000" or "https://minio:9000"
	AccessKey string
	SecretKey string
	Bucket    string
}

// NewS3 connects to the object store and verifies the bucket exists.
func NewS3(ctx context.Context, opts S3Options) (*S3, error) {
	if opts.Endpoint == "" || opts.AccessKey == "" || opts.SecretKey == "" || opts.Bucket == "" {
		return nil, fmt.Errorf("s3 configuration incomplete")
	}

	endpoint, secure, err := normalizeEndpoint(opts.Endpoint)
	if err != nil {
		return nil, err
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, err
	}

	exists, err := client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("bucket does not exist: %s", opts.Bucket)
	}

	return &S3{client: client, bucket: opts.Bucket}, nil
}

// normalizeEndpoint accepts either "host:port" or a scheme-qualified URL.
func normalizeEndpoint(raw string) (endpoint string, secure bool, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false, fmt.Errorf("empty endpoint")
	}

	if strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err != nil {
			return "", false, err
		}
		if u.Host == "" {
			return "", false, fmt.Errorf("invalid endpoint")
		}
		if u.Path != "" && u.Path != "/" {
			return "", false, fmt.Errorf("endpoint must not contain a path")
		}
		return u.Host, u.Scheme == "https", nil
	}

	// No scheme, treat as host:port (insecure by default for local MinIO).
	return raw, false, nil
}

// EnsureProject is a no-op: prefixes exist implicitly in a bucket.
func (s *S3) EnsureProject(_ context.Context, _ string) error {
	return nil
}

// Commit uploads the staged file as a single PutObject, which the store
// applies atomically, then removes the staged file.
func (s *S3) Commit(ctx context.Context, project, filename, stagedPath string) error {
	f, err := os.Open(stagedPath)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	st, err := f.Stat()
	if err != nil {
		return err
	}

	_, err = s.client.PutObject(ctx, s.bucket, project+"/"+filename, f, st.Size(),
		minio.PutObjectOptions{ContentType: "application/octet-stream"})
	if err != nil {
		return err
	}
	return os.Remove(stagedPath)
}

func (s *S3) ListProjects(ctx context.Context) ([]string, error) {
	names := []string{}
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		// Non-recursive listings surface first-level prefixes with a
		// trailing slash; plain objects at the bucket root are skipped.
		if strings.HasSuffix(obj.Key, "/") {
			names = append(names, strings.TrimSuffix(obj.Key, "/"))
		}
	}
	return names, nil
}

func (s *S3) ListFiles(ctx context.Context, project string) ([]string, error) {
	prefix := project + "/"
	names := []string{}
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		if strings.HasSuffix(obj.Key, "/") {
			continue
		}
		names = append(names, strings.TrimPrefix(obj.Key, prefix))
	}
	// An empty prefix is indistinguishable from an absent one, so a
	// project without files reports as missing on this backend.
	if len(names) == 0 {
		return nil, ErrNotFound
	}
	return names, nil
}

func (s *S3) Open(ctx context.Context, project, filename string) (io.ReadCloser, FileInfo, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, project+"/"+filename, minio.GetObjectOptions{})
	if err != nil {
		return nil, FileInfo{}, err
	}

	// GetObject is lazy; Stat forces the first request so absence is
	// reported here instead of mid-stream.
	st, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, FileInfo{}, ErrNotFound
		}
		return nil, FileInfo{}, err
	}

	return obj, FileInfo{Name: filename, Size: st.Size}, nil
}
