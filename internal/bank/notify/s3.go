package notify

import (
	"context"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}
)

// S3Options configures an S3Notifier. Any S3-compatible endpoint (MinIO
// included) works; path-style addressing is always used.
type S3Options struct {
	AccessKey    string
	SecretKey    string
	Region       string
	BaseEndpoint string
	Bucket       string
	Prefix       string
}

// S3Notifier stores each code as an object under
// <prefix>/<username>/<attempt id>.txt.
type S3Notifier struct {
	opts S3Options

	mu     sync.Mutex
	client *s3.Client
}

func NewS3Notifier(opts S3Options) *S3Notifier {
	return &S3Notifier{opts: opts}
}

func (n *S3Notifier) getClient(ctx context.Context) (*s3.Client, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.client != nil {
		return n.client, nil
	}

	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(n.opts.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			n.opts.AccessKey,
			n.opts.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	n.client = newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if n.opts.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(n.opts.BaseEndpoint)
		}
		o.UsePathStyle = true
	})

	return n.client, nil
}

func (n *S3Notifier) key(msg Message) string {
	return path.Join(n.opts.Prefix, msg.Username, msg.AttemptID+".txt")
}

func (n *S3Notifier) Deliver(ctx context.Context, msg Message) error {
	client, err := n.getClient(ctx)
	if err != nil {
		return err
	}

	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket:      aws.String(n.opts.Bucket),
		Key:         aws.String(n.key(msg)),
		Body:        strings.NewReader(msg.body()),
		ContentType: aws.String("text/plain"),
	})
	if err != nil {
		return fmt.Errorf("put code object: %w", err)
	}

	return nil
}

func (n *S3Notifier) Describe() string {
	return fmt.Sprintf("bucket %s under %s/", n.opts.Bucket, n.opts.Prefix)
}
