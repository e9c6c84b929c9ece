package shapes

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"strings"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/golangdaddy/citymap/pkg/config"
)

func parseS3URL(source string) (bucket, key string, err error) {
	u, err := url.Parse(source)
	if err != nil {
		return "", "", fmt.Errorf("parse s3 url: %w", err)
	}
	if u.Scheme != "s3" || u.Host == "" {
		return "", "", fmt.Errorf("s3 url %q needs the form s3://bucket/key", source)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return "", "", fmt.Errorf("s3 url %q has no key", source)
	}
	return u.Host, key, nil
}

func newS3Client(ctx context.Context, cfg config.S3) (*s3.Client, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}

// loadS3 fetches an object and decodes it by the extension of its key.
func loadS3(ctx context.Context, source string, cfg config.S3) (*ExtraShapes, error) {
	bucket, key, err := parseS3URL(source)
	if err != nil {
		return nil, err
	}
	kind := kindOf(key)
	if kind == kindUnknown {
		return nil, fmt.Errorf("%s: %w", key, ErrUnsupportedSource)
	}
	client, err := newS3Client(ctx, cfg)
	if err != nil {
		return nil, err
	}
	out, err := client.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)})
	if err != nil {
		return nil, fmt.Errorf("get s3://%s/%s: %w", bucket, key, err)
	}
	defer func() { _ = out.Body.Close() }()

	if kind == kindGeoJSON {
		data, err := io.ReadAll(out.Body)
		if err != nil {
			return nil, fmt.Errorf("read s3 object: %w", err)
		}
		return decodeGeoJSON(data)
	}

	// SQLite needs a file on disk.
	tmp, err := os.CreateTemp("", "citymap-*"+path.Ext(key))
	if err != nil {
		return nil, fmt.Errorf("create temp cache: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := io.Copy(tmp, out.Body); err != nil {
		_ = tmp.Close()
		return nil, fmt.Errorf("download s3 object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close temp cache: %w", err)
	}
	return loadCache(ctx, tmp.Name())
}
