package minio

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"

	mc "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	pr "github.com/unkn0wn-root/wtcache/provider"
)

// Provider stores each value as one object in an S3-compatible bucket.
// Object name = Prefix + key.
type Provider struct {
	c      *mc.Client
	bucket string
	prefix string
}

var _ pr.Provider = (*Provider)(nil)

type Config struct {
	Endpoint        string // host[:port]
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	Region          string

	Bucket       string
	Prefix       string
	CreateBucket bool // create Bucket on New when missing

	// Client overrides Endpoint/credentials when set.
	Client *mc.Client
}

func New(ctx context.Context, cfg Config) (*Provider, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("minio provider: bucket is required")
	}
	client := cfg.Client
	if client == nil {
		if cfg.Endpoint == "" {
			return nil, errors.New("minio provider: endpoint is required")
		}
		var err error
		client, err = mc.New(cfg.Endpoint, &mc.Options{
			Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
			Secure: cfg.UseSSL,
			Region: cfg.Region,
		})
		if err != nil {
			return nil, err
		}
	}

	if cfg.CreateBucket {
		exists, err := client.BucketExists(ctx, cfg.Bucket)
		if err != nil {
			return nil, err
		}
		if !exists {
			if err := client.MakeBucket(ctx, cfg.Bucket, mc.MakeBucketOptions{Region: cfg.Region}); err != nil {
				return nil, err
			}
		}
	}
	return &Provider{c: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

func (p *Provider) object(key string) string { return p.prefix + key }

func (p *Provider) Get(ctx context.Context, key string) ([]byte, bool, error) {
	obj, err := p.c.GetObject(ctx, p.bucket, p.object(key), mc.GetObjectOptions{})
	if err != nil {
		return nil, false, err
	}
	defer obj.Close()

	// GetObject is lazy; a missing object surfaces on first read.
	b, err := io.ReadAll(obj)
	if isNotFound(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (p *Provider) Set(ctx context.Context, key string, value []byte) error {
	_, err := p.c.PutObject(ctx, p.bucket, p.object(key), bytes.NewReader(value), int64(len(value)),
		mc.PutObjectOptions{ContentType: "application/octet-stream"})
	return err
}

// Del is idempotent: S3 DELETE on a missing object succeeds.
func (p *Provider) Del(ctx context.Context, key string) error {
	err := p.c.RemoveObject(ctx, p.bucket, p.object(key), mc.RemoveObjectOptions{})
	if isNotFound(err) {
		return nil
	}
	return err
}

func (p *Provider) Has(ctx context.Context, key string) (bool, error) {
	_, err := p.c.StatObject(ctx, p.bucket, p.object(key), mc.StatObjectOptions{})
	if isNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Close is a no-op; the minio client holds no closable resources.
func (p *Provider) Close(context.Context) error { return nil }

func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	resp := mc.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound
}
