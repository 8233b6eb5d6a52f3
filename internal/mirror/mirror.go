// Package mirror copies local backups to an S3-compatible bucket (AWS S3 or
// MinIO). Backup names carry their timestamp and never change, so a push
// only uploads names the bucket does not already hold.
package mirror

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/horizonte/internal/atomicfile"
	"github.com/roach88/horizonte/internal/config"
)

// ErrNotConfigured is returned by New when no bucket is set.
var ErrNotConfigured = errors.New("mirror bucket not configured")

// DefaultConcurrency bounds parallel uploads.
const DefaultConcurrency = 4

// Mirror uploads backups to one bucket under a key prefix.
type Mirror struct {
	client      *s3.Client
	bucket      string
	prefix      string
	concurrency int
	logger      *slog.Logger
}

type options struct {
	httpClient  *http.Client
	concurrency int
	logger      *slog.Logger
}

// Option configures New.
type Option func(*options)

// WithHTTPClient replaces the transport used for S3 calls.
func WithHTTPClient(c *http.Client) Option { return func(o *options) { o.httpClient = c } }

// WithConcurrency sets the number of parallel uploads.
func WithConcurrency(n int) Option { return func(o *options) { o.concurrency = n } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(o *options) { o.logger = l } }

// New builds a mirror for cfg. Static credentials are used when both keys are
// set; otherwise the default AWS credential chain applies.
func New(ctx context.Context, cfg config.Mirror, opts ...Option) (*Mirror, error) {
	if !cfg.Enabled() {
		return nil, ErrNotConfigured
	}
	o := options{concurrency: DefaultConcurrency}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if o.concurrency < 1 {
		o.concurrency = 1
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(so *s3.Options) {
		so.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			so.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		if o.httpClient != nil {
			so.HTTPClient = o.httpClient
		}
		so.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
	})

	return &Mirror{
		client:      client,
		bucket:      cfg.Bucket,
		prefix:      strings.Trim(cfg.Prefix, "/"),
		concurrency: o.concurrency,
		logger:      o.logger,
	}, nil
}

// Key is the object key for a backup file name.
func (m *Mirror) Key(name string) string {
	if m.prefix == "" {
		return name
	}
	return path.Join(m.prefix, name)
}

// Remote lists the object keys under the prefix.
func (m *Mirror) Remote(ctx context.Context) (map[string]bool, error) {
	input := &s3.ListObjectsV2Input{Bucket: aws.String(m.bucket)}
	if m.prefix != "" {
		input.Prefix = aws.String(m.prefix + "/")
	}
	keys := map[string]bool{}
	p := s3.NewListObjectsV2Paginator(m.client, input)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list bucket %s: %w", m.bucket, err)
		}
		for _, obj := range page.Contents {
			if obj.Key != nil {
				keys[*obj.Key] = true
			}
		}
	}
	return keys, nil
}

// Result reports what a push did, by backup file name.
type Result struct {
	Uploaded []string `json:"uploaded"`
	Skipped  []string `json:"skipped"`
}

// Push uploads every backup whose key is missing from the bucket. The first
// failed upload cancels the rest.
func (m *Mirror) Push(ctx context.Context, backups []atomicfile.Backup) (Result, error) {
	remote, err := m.Remote(ctx)
	if err != nil {
		return Result{}, err
	}

	var (
		mu  sync.Mutex
		res Result
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.concurrency)
	for _, b := range backups {
		name := filepath.Base(b.Path)
		key := m.Key(name)
		if remote[key] {
			res.Skipped = append(res.Skipped, name)
			continue
		}
		g.Go(func() error {
			if err := m.upload(gctx, b.Path, key); err != nil {
				return err
			}
			m.logger.Debug("backup mirrored", slog.String("key", key))
			mu.Lock()
			res.Uploaded = append(res.Uploaded, name)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	sort.Strings(res.Uploaded)
	sort.Strings(res.Skipped)
	return res, nil
}

func (m *Mirror) upload(ctx context.Context, file, key string) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read backup: %w", err)
	}
	_, err = m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(m.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType(key)),
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	return nil
}

// contentType derives the type from the name the backup was copied from.
func contentType(key string) string {
	base, _, ok := atomicfile.ParseBackupName(path.Base(key))
	if !ok {
		return "application/octet-stream"
	}
	switch path.Ext(base) {
	case ".json":
		return "application/json"
	case ".md":
		return "text/markdown; charset=utf-8"
	case ".yaml":
		return "application/yaml"
	default:
		return "application/octet-stream"
	}
}
