// Package keys reads JWT key material at startup, either from the local
// filesystem or from an S3-compatible bucket addressed as s3://bucket/key.
package keys

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const s3Scheme = "s3://"

var ErrInvalidLocation = errors.New("invalid key location")

// ObjectGetter is the part of the S3 client the loader needs.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Settings describe the object storage holding key material.
type S3Settings struct {
	Region       string
	BaseEndpoint string
	AccessKey    string
	SecretKey    string
}

// seams for tests
var (
	loadDefaultAWSConfig = config.LoadDefaultConfig
	newObjectGetter      = func(cfg aws.Config, optFns ...func(*s3.Options)) ObjectGetter {
		return s3.NewFromConfig(cfg, optFns...)
	}
	readFile = os.ReadFile
)

// Loader resolves key locations. The S3 client is built on first use, so a
// deployment keeping keys on disk never touches AWS configuration.
type Loader struct {
	settings S3Settings

	once      sync.Once
	client    ObjectGetter
	clientErr error
}

func NewLoader(s S3Settings) *Loader {
	return &Loader{settings: s}
}

// Load returns the bytes stored at location.
func (l *Loader) Load(ctx context.Context, location string) ([]byte, error) {
	if location == "" {
		return nil, ErrInvalidLocation
	}

	if !strings.HasPrefix(location, s3Scheme) {
		b, err := readFile(location)
		if err != nil {
			return nil, fmt.Errorf("read key file: %w", err)
		}
		return b, nil
	}

	bucket, key, err := splitS3Location(location)
	if err != nil {
		return nil, err
	}

	client, err := l.s3Client(ctx)
	if err != nil {
		return nil, err
	}

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get s3 object %s: %w", location, err)
	}
	defer out.Body.Close()

	b, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read s3 object %s: %w", location, err)
	}
	return b, nil
}

func (l *Loader) s3Client(ctx context.Context) (ObjectGetter, error) {
	l.once.Do(func() {
		opts := []func(*config.LoadOptions) error{config.WithRegion(l.settings.Region)}
		if l.settings.AccessKey != "" {
			opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				l.settings.AccessKey, l.settings.SecretKey, "",
			)))
		}

		cfg, err := loadDefaultAWSConfig(ctx, opts...)
		if err != nil {
			l.clientErr = fmt.Errorf("aws config: %w", err)
			return
		}

		l.client = newObjectGetter(cfg, func(o *s3.Options) {
			if l.settings.BaseEndpoint != "" {
				o.BaseEndpoint = aws.String(l.settings.BaseEndpoint)
				// minio and other self-hosted backends
				o.UsePathStyle = true
			}
		})
	})
	return l.client, l.clientErr
}

func splitS3Location(location string) (bucket, key string, err error) {
	rest := strings.TrimPrefix(location, s3Scheme)
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidLocation, location)
	}
	return bucket, key, nil
}
