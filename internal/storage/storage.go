// Package storage keeps the storefront's native video files and posters in an
// S3-compatible bucket. Every key lives under the sections/ prefix and is
// minted by NewKey; keys from anywhere else are refused.
package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// KeyPrefix namespaces every object the storefront writes.
const KeyPrefix = "sections/"

const (
	uploadExpiry   = 15 * time.Minute
	playbackExpiry = time.Hour

	// Posters are small regardless of the configured video limit.
	maxPosterBytes = 10 << 20
)

var (
	ErrUnsupportedType = errors.New("unsupported content type")
	ErrTooLarge        = errors.New("file too large")
	ErrNotFound        = errors.New("object not found")
	ErrForeignKey      = errors.New("key is not a section upload")
)

var extensions = map[string]string{
	"video/mp4":  ".mp4",
	"video/webm": ".webm",
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// NewKey mints a key for a fresh upload of contentType.
func NewKey(contentType string) (string, error) {
	ext, ok := extensions[contentType]
	if !ok {
		return "", ErrUnsupportedType
	}
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate key: %w", err)
	}
	return KeyPrefix + hex.EncodeToString(b) + ext, nil
}

// OwnsKey reports whether key has the shape NewKey produces.
func OwnsKey(key string) bool {
	name, ok := strings.CutPrefix(key, KeyPrefix)
	if !ok || name == "" || strings.Contains(name, "/") || path.Clean(key) != key {
		return false
	}
	ext := path.Ext(name)
	for _, known := range extensions {
		if ext == known && len(name) > len(ext) {
			return true
		}
	}
	return false
}

// Object describes a stored upload as the bucket reports it.
type Object struct {
	Key         string
	Size        int64
	ContentType string
}

func (o Object) mediaType() string {
	mt, _, err := mime.ParseMediaType(o.ContentType)
	if err != nil {
		return ""
	}
	return mt
}

func (o Object) IsVideo() bool { return strings.HasPrefix(o.mediaType(), "video/") }
func (o Object) IsImage() bool { return strings.HasPrefix(o.mediaType(), "image/") }

// Bucket is the section media bucket.
type Bucket struct {
	client    *s3.Client
	presigner *s3.PresignClient
	name      string
	maxVideo  int64
}

type Config struct {
	Endpoint       string
	PublicEndpoint string // presigned URLs point here when set
	Bucket         string
	AccessKey      string
	SecretKey      string
	Region         string
	MaxUploadBytes int64
}

func New(ctx context.Context, cfg Config) (*Bucket, error) {
	if cfg.Region == "" {
		cfg.Region = "eu-central-1"
	}
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	public := cfg.PublicEndpoint
	if public == "" {
		public = cfg.Endpoint
	}
	return &Bucket{
		client:    newClient(awsCfg, cfg.Endpoint),
		presigner: s3.NewPresignClient(newClient(awsCfg, public)),
		name:      cfg.Bucket,
		maxVideo:  cfg.MaxUploadBytes,
	}, nil
}

func newClient(cfg aws.Config, endpoint string) *s3.Client {
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})
}

func (b *Bucket) limitFor(contentType string) int64 {
	if strings.HasPrefix(contentType, "image/") {
		return maxPosterBytes
	}
	return b.maxVideo
}

// PresignUpload returns a PUT URL for key. The content type must match the
// extension NewKey gave the key, and size must fit the limit for its kind.
func (b *Bucket) PresignUpload(ctx context.Context, key, contentType string, size int64) (string, error) {
	if b == nil {
		return "", errors.New("storage not initialized")
	}
	if !OwnsKey(key) {
		return "", ErrForeignKey
	}
	if ext, ok := extensions[contentType]; !ok || path.Ext(key) != ext {
		return "", ErrUnsupportedType
	}
	if limit := b.limitFor(contentType); limit > 0 && size > limit {
		return "", fmt.Errorf("%w: %d > %d", ErrTooLarge, size, limit)
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(b.name),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}
	req, err := b.presigner.PresignPutObject(ctx, input, s3.WithPresignExpires(uploadExpiry))
	if err != nil {
		return "", fmt.Errorf("presign upload: %w", err)
	}
	return req.URL, nil
}

// PresignPlayback returns a GET URL the storefront page can hand to a video
// or poster attribute.
func (b *Bucket) PresignPlayback(ctx context.Context, key string) (string, error) {
	if b == nil {
		return "", errors.New("storage not initialized")
	}
	if !OwnsKey(key) {
		return "", ErrForeignKey
	}
	req, err := b.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.name),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(playbackExpiry))
	if err != nil {
		return "", fmt.Errorf("presign playback: %w", err)
	}
	return req.URL, nil
}

// Stat confirms an upload landed. A missing object yields ErrNotFound.
func (b *Bucket) Stat(ctx context.Context, key string) (Object, error) {
	if !OwnsKey(key) {
		return Object{}, ErrForeignKey
	}
	out, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.name),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NotFound
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &notFound) || errors.As(err, &noSuchKey) {
			return Object{}, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return Object{}, fmt.Errorf("stat %s: %w", key, err)
	}
	return Object{
		Key:         key,
		Size:        aws.ToInt64(out.ContentLength),
		ContentType: aws.ToString(out.ContentType),
	}, nil
}

// Remove deletes a section upload. Keys outside the namespace are refused so
// a bad row can never remove unrelated objects.
func (b *Bucket) Remove(ctx context.Context, key string) error {
	if !OwnsKey(key) {
		return ErrForeignKey
	}
	if _, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.name),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

// corsRules lets the admin origin upload and any storefront page stream.
// Range requests need their response headers exposed for seeking.
func corsRules(adminOrigin string) []types.CORSRule {
	return []types.CORSRule{
		{
			AllowedOrigins: []string{adminOrigin},
			AllowedMethods: []string{"PUT"},
			AllowedHeaders: []string{"Content-Type", "Content-Length"},
			MaxAgeSeconds:  aws.Int32(3600),
		},
		{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "HEAD"},
			AllowedHeaders: []string{"Range"},
			ExposeHeaders:  []string{"Accept-Ranges", "Content-Range", "Content-Length"},
			MaxAgeSeconds:  aws.Int32(3600),
		},
	}
}

func (b *Bucket) ConfigureCORS(ctx context.Context, adminOrigin string) error {
	_, err := b.client.PutBucketCors(ctx, &s3.PutBucketCorsInput{
		Bucket:            aws.String(b.name),
		CORSConfiguration: &types.CORSConfiguration{CORSRules: corsRules(adminOrigin)},
	})
	if err != nil {
		return fmt.Errorf("set bucket CORS: %w", err)
	}
	return nil
}

// EnsureBucket creates the bucket on first start.
func (b *Bucket) EnsureBucket(ctx context.Context) error {
	if _, err := b.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(b.name)}); err == nil {
		return nil
	}
	if _, err := b.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(b.name)}); err != nil {
		return fmt.Errorf("create bucket: %w", err)
	}
	return nil
}
