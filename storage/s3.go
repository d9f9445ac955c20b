package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/d3ming/ycx25-voter/config"
)

// ObjectAPI ist die Teilmenge des S3-Clients, die hier gebraucht wird.
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// NewS3Client erstellt einen S3-Client für einen S3-kompatiblen Endpunkt.
func NewS3Client(ctx context.Context, cfg *config.Config) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.S3Key, cfg.S3Secret, "")),
	)
	if err != nil {
		return nil, err
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3URL != "" {
			o.BaseEndpoint = aws.String(cfg.S3URL)
			o.UsePathStyle = true
		}
	}), nil
}

// Bucket bündelt Client, Bucket-Namen und Basis-URL für Links.
type Bucket struct {
	Client  ObjectAPI
	Name    string
	BaseURL string
}

// NewBucket erstellt einen Bucket aus der Konfiguration.
func NewBucket(client ObjectAPI, cfg *config.Config) *Bucket {
	return &Bucket{Client: client, Name: cfg.S3Bucket, BaseURL: cfg.S3URL}
}

// Link gibt die URL eines Objekts zurück.
func (b *Bucket) Link(key string) string {
	if b.BaseURL == "" {
		return fmt.Sprintf("s3://%s/%s", b.Name, key)
	}
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(b.BaseURL, "/"), b.Name, key)
}

// Upload lädt data unter key hoch und gibt den Link zurück.
func (b *Bucket) Upload(ctx context.Context, key, contentType string, data []byte) (string, error) {
	input := &s3.PutObjectInput{
		Bucket: aws.String(b.Name),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := b.Client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("uploading %s: %w", key, err)
	}
	return b.Link(key), nil
}

// Open öffnet ein Objekt zum Lesen.
func (b *Bucket) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := b.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.Name),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", key, err)
	}
	return out.Body, nil
}

// List liefert alle Objekte unterhalb von prefix.
func (b *Bucket) List(ctx context.Context, prefix string) ([]types.Object, error) {
	var objects []types.Object
	p := s3.NewListObjectsV2Paginator(b.Client, &s3.ListObjectsV2Input{
		Bucket: aws.String(b.Name),
		Prefix: aws.String(prefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", prefix, err)
		}
		objects = append(objects, page.Contents...)
	}
	return objects, nil
}

// Rotate löscht unterhalb von prefix alle Objekte bis auf die keep neuesten und gibt die gelöschten Keys zurück.
func (b *Bucket) Rotate(ctx context.Context, prefix string, keep int) ([]string, error) {
	if prefix == "" {
		return nil, errors.New("refusing to rotate without a prefix")
	}
	objects, err := b.List(ctx, prefix)
	if err != nil {
		return nil, err
	}
	var deleted []string
	for _, obj := range Expired(objects, keep) {
		if _, err := b.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(b.Name),
			Key:    obj.Key,
		}); err != nil {
			return deleted, fmt.Errorf("deleting %s: %w", aws.ToString(obj.Key), err)
		}
		deleted = append(deleted, aws.ToString(obj.Key))
	}
	return deleted, nil
}

// Expired sortiert neueste zuerst und liefert alles jenseits der keep neuesten Objekte.
func Expired(objects []types.Object, keep int) []types.Object {
	if len(objects) <= keep {
		return nil
	}
	sorted := append([]types.Object(nil), objects...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return aws.ToTime(sorted[i].LastModified).After(aws.ToTime(sorted[j].LastModified))
	})
	return sorted[keep:]
}
