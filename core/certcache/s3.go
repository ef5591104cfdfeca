package certcache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	s3aws "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// defaultOperationTimeout bounds every backend call. A timed-out call
// surfaces as ErrTimeout, never as a miss.
const defaultOperationTimeout = 10 * time.Second

// Compile-time check that S3Store implements the Store interface.
var _ Store = (*S3Store)(nil)

// S3Client is the narrow slice of the AWS S3 API used by S3Store.
// Kept minimal so tests can substitute a mock without the real SDK client.
type S3Client interface {
	GetObject(ctx context.Context, params *s3aws.GetObjectInput, optFns ...func(*s3aws.Options)) (*s3aws.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3aws.PutObjectInput, optFns ...func(*s3aws.Options)) (*s3aws.PutObjectOutput, error)
	ListBuckets(ctx context.Context, params *s3aws.ListBucketsInput, optFns ...func(*s3aws.Options)) (*s3aws.ListBucketsOutput, error)
}

// S3Store persists certificate records in an S3-compatible object store.
// Layout is two plain PEM blobs per domain:
//
//	certs/<domain>/cert.pem
//	certs/<domain>/privkey.pem
type S3Store struct {
	client    S3Client
	bucket    string
	opTimeout time.Duration
}

// S3Config contains the settings for an S3-compatible backend.
type S3Config struct {
	Bucket         string
	Region         string
	AccessKeyID    string
	SecretKey      string
	Endpoint       string // For S3-compatible services like MinIO
	ForcePathStyle bool   // Required for MinIO and some S3-compatible services
}

// S3Option configures an S3Store.
type S3Option func(*s3Options)

type s3Options struct {
	s3Client   S3Client
	httpClient *http.Client
	opTimeout  time.Duration
}

// WithS3Client sets a custom pre-configured S3 client.
// Primarily used for testing with mocks.
func WithS3Client(client S3Client) S3Option {
	return func(o *s3Options) {
		o.s3Client = client
	}
}

// WithHTTPClient sets a custom HTTP client for S3 requests.
func WithHTTPClient(client *http.Client) S3Option {
	return func(o *s3Options) {
		o.httpClient = client
	}
}

// WithOperationTimeout overrides the per-call deadline (default 10s).
func WithOperationTimeout(timeout time.Duration) S3Option {
	return func(o *s3Options) {
		if timeout > 0 {
			o.opTimeout = timeout
		}
	}
}

// NewS3Store creates a certificate store backed by S3 or an S3-compatible
// service. Static credentials are used when provided, otherwise the default
// AWS credential chain applies.
func NewS3Store(ctx context.Context, cfg S3Config, opts ...S3Option) (*S3Store, error) {
	if cfg.Bucket == "" || cfg.Region == "" {
		return nil, fmt.Errorf("%w: bucket and region are required", ErrInvalidConfig)
	}

	options := &s3Options{opTimeout: defaultOperationTimeout}
	for _, opt := range opts {
		opt(options)
	}

	client := options.s3Client
	if client == nil {
		awsOptions := []func(*awsconfig.LoadOptions) error{
			awsconfig.WithRegion(cfg.Region),
		}

		if cfg.AccessKeyID != "" && cfg.SecretKey != "" {
			awsOptions = append(awsOptions,
				awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
					cfg.AccessKeyID,
					cfg.SecretKey,
					"",
				)),
			)
		}

		if options.httpClient != nil {
			awsOptions = append(awsOptions, awsconfig.WithHTTPClient(options.httpClient))
		}

		awsConfig, err := awsconfig.LoadDefaultConfig(ctx, awsOptions...)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}

		client = s3aws.NewFromConfig(awsConfig, func(o *s3aws.Options) {
			if cfg.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.Endpoint)
			}
			o.UsePathStyle = cfg.ForcePathStyle
		})
	}

	return &S3Store{
		client:    client,
		bucket:    cfg.Bucket,
		opTimeout: options.opTimeout,
	}, nil
}

func certKey(domain string) string {
	return "certs/" + domain + "/cert.pem"
}

func keyKey(domain string) string {
	return "certs/" + domain + "/privkey.pem"
}

// Load fetches both PEM blobs for the domain. A backend "no such key" on
// either blob yields ErrNotFound; any other failure is a cache error.
func (s *S3Store) Load(ctx context.Context, domain string) (*Record, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	certPEM, err := s.getObject(ctx, certKey(domain))
	if err != nil {
		return nil, err
	}

	keyPEM, err := s.getObject(ctx, keyKey(domain))
	if err != nil {
		return nil, err
	}

	return &Record{CertificatePEM: certPEM, PrivateKeyPEM: keyPEM}, nil
}

// Save writes the certificate blob first, then the private key blob.
func (s *S3Store) Save(ctx context.Context, domain string, record *Record) error {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	if err := s.putObject(ctx, certKey(domain), record.CertificatePEM); err != nil {
		return err
	}
	return s.putObject(ctx, keyKey(domain), record.PrivateKeyPEM)
}

// Ping verifies backend connectivity with a lightweight ListBuckets call.
func (s *S3Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	if _, err := s.client.ListBuckets(ctx, &s3aws.ListBucketsInput{}); err != nil {
		return classifyS3Error(err, "connectivity check")
	}
	return nil
}

func (s *S3Store) getObject(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3aws.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, classifyS3Error(err, "load "+key)
	}
	defer func() { _ = out.Body.Close() }()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrUnavailable, key, err)
	}
	return data, nil
}

func (s *S3Store) putObject(ctx context.Context, key string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3aws.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/x-pem-file"),
	})
	if err != nil {
		return classifyS3Error(err, "save "+key)
	}
	return nil
}

// classifyS3Error converts S3 errors to the package's sentinel errors.
// Only a positive "no such key" becomes ErrNotFound; deadline expiry becomes
// ErrTimeout; everything else is ErrUnavailable.
func classifyS3Error(err error, operation string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", ErrTimeout, operation)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s canceled: %w", operation, err)
	}

	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return fmt.Errorf("%w: %s", ErrNotFound, operation)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return fmt.Errorf("%w: %s", ErrNotFound, operation)
		default:
			return fmt.Errorf("%w: %s failed (code: %s): %v", ErrUnavailable, operation, apiErr.ErrorCode(), err)
		}
	}

	return fmt.Errorf("%w: %s: %v", ErrUnavailable, operation, err)
}
