package catalog

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"flyer-kart/internal/model"
)

// Loader reads a sample flyer set: gzipped JSON, one flyer per line.
type Loader interface {
	Load(ctx context.Context, path string) ([]model.Flyer, error)
}

// decodeSamples reads gzipped JSON lines from r. Blank lines are skipped,
// malformed lines are logged and skipped.
func decodeSamples(ctx context.Context, r io.Reader, source string, logger zerolog.Logger) ([]model.Flyer, error) {
	gzipReader, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader for %s: %w", source, err)
	}
	defer gzipReader.Close()

	scanner := bufio.NewScanner(gzipReader)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var flyers []model.Flyer
	line := 0
	for scanner.Scan() {
		line++
		if line%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		raw := scanner.Bytes()
		if len(bytes.TrimSpace(raw)) == 0 {
			continue
		}

		var f model.Flyer
		if err := json.Unmarshal(raw, &f); err != nil {
			logger.Warn().Err(err).Str("source", source).Int("line", line).Msg("skipping malformed sample flyer")
			continue
		}
		flyers = append(flyers, f)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading samples %s: %w", source, err)
	}

	return flyers, nil
}

// fileLoader reads samples from local disk.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a loader reading from the local file system.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "sample-loader").Logger(),
	}
}

func (l *fileLoader) Load(ctx context.Context, path string) ([]model.Flyer, error) {
	file, err := os.Open(path)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("failed to open sample file")
		return nil, fmt.Errorf("failed to open sample file %s: %w", path, err)
	}
	defer file.Close()

	flyers, err := decodeSamples(ctx, file, path, l.logger)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("failed to read sample file")
		return nil, err
	}

	l.logger.Info().Str("file", path).Int("flyers_loaded", len(flyers)).Msg("sample flyers loaded")
	return flyers, nil
}

// ObjectGetter is the subset of the S3 client used by the S3 loader.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// s3Loader reads samples from an S3 bucket.
type s3Loader struct {
	client ObjectGetter
	bucket string
	logger zerolog.Logger
}

// NewS3Loader creates an S3 loader using the default AWS credential chain.
func NewS3Loader(ctx context.Context, bucket, region string, logger zerolog.Logger) (Loader, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		logger.Error().Err(err).Msg("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	return NewS3LoaderWithClient(s3.NewFromConfig(cfg), bucket, logger), nil
}

// NewS3LoaderWithClient creates an S3 loader around an existing client.
func NewS3LoaderWithClient(client ObjectGetter, bucket string, logger zerolog.Logger) Loader {
	return &s3Loader{
		client: client,
		bucket: bucket,
		logger: logger.With().Str("component", "s3-sample-loader").Str("bucket", bucket).Logger(),
	}
}

func (l *s3Loader) Load(ctx context.Context, key string) ([]model.Flyer, error) {
	result, err := l.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(l.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		l.logger.Error().Err(err).Str("key", key).Msg("failed to get sample object from S3")
		return nil, fmt.Errorf("failed to get object from S3 (bucket=%s, key=%s): %w", l.bucket, key, err)
	}
	defer result.Body.Close()

	flyers, err := decodeSamples(ctx, result.Body, key, l.logger)
	if err != nil {
		l.logger.Error().Err(err).Str("key", key).Msg("failed to read sample object")
		return nil, err
	}

	l.logger.Info().Str("key", key).Int("flyers_loaded", len(flyers)).Msg("sample flyers loaded from S3")
	return flyers, nil
}

// fallbackLoader tries S3 first and falls back to local disk.
type fallbackLoader struct {
	s3        Loader
	file      Loader
	s3Prefix  string
	s3Enabled bool
	logger    zerolog.Logger
}

// NewFallbackLoader creates a loader that tries s3 (with the key s3Prefix+path)
// before reading path from local disk. A nil s3 loader means local only.
func NewFallbackLoader(s3, file Loader, s3Prefix string, s3Enabled bool, logger zerolog.Logger) Loader {
	return &fallbackLoader{
		s3:        s3,
		file:      file,
		s3Prefix:  s3Prefix,
		s3Enabled: s3Enabled,
		logger:    logger.With().Str("component", "fallback-sample-loader").Logger(),
	}
}

func (l *fallbackLoader) Load(ctx context.Context, path string) ([]model.Flyer, error) {
	if l.s3Enabled && l.s3 != nil {
		key := l.s3Prefix + path
		flyers, err := l.s3.Load(ctx, key)
		if err == nil {
			return flyers, nil
		}

		l.logger.Warn().Err(err).Str("s3_key", key).Msg("failed to load samples from S3, falling back to local file system")
	}

	return l.file.Load(ctx, path)
}

// Samples lazily loads and caches a sample set. A failed load is retried on
// the next call.
type Samples struct {
	loader Loader
	path   string

	mu     sync.Mutex
	flyers []model.Flyer
	loaded bool
}

// NewSamples creates a lazily loaded sample set.
func NewSamples(loader Loader, path string) *Samples {
	return &Samples{loader: loader, path: path}
}

// Flyers returns the sample flyers, loading them on first use.
func (s *Samples) Flyers(ctx context.Context) ([]model.Flyer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded {
		return s.flyers, nil
	}

	flyers, err := s.loader.Load(ctx, s.path)
	if err != nil {
		return nil, err
	}

	s.flyers = flyers
	s.loaded = true
	return flyers, nil
}
