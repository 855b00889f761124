package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type S3Config struct {
	Region     string
	Bucket     string
	AccessKey  string
	SecretKey  string
	Endpoint   string
	PublicBase string
}

type Client struct {
	cfg S3Config
	s3  *s3.Client
}

func NewClient(ctx context.Context, cfg S3Config) (*Client, error) {
	if cfg.Region == "" || cfg.Bucket == "" {
		return nil, errors.New("s3 region and bucket are required")
	}

	var opts []func(*awsconfig.LoadOptions) error
	opts = append(opts, awsconfig.WithRegion(cfg.Region))

	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	if cfg.Endpoint != "" {
		endpoint := cfg.Endpoint
		if parsed, err := url.Parse(endpoint); err == nil {
			endpoint = parsed.String()
		}
		opts = append(opts, awsconfig.WithEndpointResolverWithOptions(
			aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				if service == s3.ServiceID {
					return aws.Endpoint{URL: endpoint, SigningRegion: cfg.Region}, nil
				}
				return aws.Endpoint{}, &aws.EndpointNotFoundError{}
			}),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.UsePathStyle = true
		}
	})

	return &Client{cfg: cfg, s3: s3Client}, nil
}

// Put stores an object and returns its public URL.
func (c *Client) Put(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	if c == nil {
		return "", errors.New("s3 client not initialized")
	}
	if key == "" {
		return "", errors.New("object key is required")
	}

	_, err := c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.cfg.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
		Body:        body,
	})
	if err != nil {
		return "", err
	}
	return c.PublicURL(key), nil
}

func (c *Client) PublicURL(key string) string {
	if c.cfg.PublicBase != "" {
		return strings.TrimRight(c.cfg.PublicBase, "/") + "/" + key
	}
	if c.cfg.Endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(c.cfg.Endpoint, "/"), c.cfg.Bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", c.cfg.Bucket, c.cfg.Region, key)
}
