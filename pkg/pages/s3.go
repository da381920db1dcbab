package pages

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// Scheme is the URL scheme of S3 page sources.
const Scheme = "s3"

// ErrBadURL is returned by ParseURL for anything that is not s3://bucket[/prefix].
var ErrBadURL = errors.New("pages: invalid s3 url")

// IsS3URL reports whether source names an S3 location.
func IsS3URL(source string) bool {
	return strings.HasPrefix(source, Scheme+"://")
}

// ParseURL splits s3://bucket/prefix into bucket and key prefix. A
// non-empty prefix always ends in "/".
func ParseURL(raw string) (bucket, prefix string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrBadURL, err)
	}
	if u.Scheme != Scheme || u.Host == "" {
		return "", "", fmt.Errorf("%w: %q", ErrBadURL, raw)
	}
	prefix = strings.Trim(u.Path, "/")
	if prefix != "" {
		prefix += "/"
	}
	return u.Host, prefix, nil
}

// ClientConfig configures NewClient.
type ClientConfig struct {
	Region string

	// Endpoint overrides the S3 endpoint, e.g. for MinIO.
	Endpoint string

	// PathStyle addresses buckets as endpoint/bucket instead of as a
	// subdomain.
	PathStyle bool
}

// NewClient returns an S3 client. Credentials come from AWS_ACCESS_KEY_ID,
// AWS_SECRET_ACCESS_KEY and AWS_SESSION_TOKEN; without them requests are
// anonymous.
func NewClient(c ClientConfig) *s3.Client {
	opts := s3.Options{
		Region:       c.Region,
		UsePathStyle: c.PathStyle,
		Credentials:  aws.AnonymousCredentials{},
	}
	if id := os.Getenv("AWS_ACCESS_KEY_ID"); id != "" {
		creds := aws.Credentials{
			AccessKeyID:     id,
			SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
			SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
			Source:          "Environment",
		}
		opts.Credentials = aws.NewCredentialsCache(aws.CredentialsProviderFunc(
			func(context.Context) (aws.Credentials, error) { return creds, nil },
		))
	}
	if c.Endpoint != "" {
		opts.BaseEndpoint = aws.String(c.Endpoint)
	}
	return s3.New(opts)
}

// ObjectAPI is the part of the S3 client S3FS uses.
type ObjectAPI interface {
	s3.ListObjectsV2APIClient
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3FS is a read-only fs.FS over the objects under a bucket prefix. Only
// regular files can be opened; Glob matches keys directly below the
// prefix.
type S3FS struct {
	client  ObjectAPI
	bucket  string
	prefix  string
	timeout time.Duration
}

var (
	_ fs.ReadFileFS = (*S3FS)(nil)
	_ fs.GlobFS     = (*S3FS)(nil)
)

// NewS3FS returns a file system rooted at prefix in bucket.
func NewS3FS(client ObjectAPI, bucket, prefix string) *S3FS {
	return &S3FS{client: client, bucket: bucket, prefix: prefix, timeout: 10 * time.Second}
}

// WithTimeout bounds each S3 request.
func (f *S3FS) WithTimeout(d time.Duration) *S3FS {
	f.timeout = d
	return f
}

func (f *S3FS) String() string {
	return Scheme + "://" + f.bucket + "/" + f.prefix
}

func (f *S3FS) context() (context.Context, context.CancelFunc) {
	if f.timeout <= 0 {
		return context.Background(), func() {}
	}
	return context.WithTimeout(context.Background(), f.timeout)
}

// Open fetches name and returns it as an in-memory file.
func (f *S3FS) Open(name string) (fs.File, error) {
	data, mod, err := f.get("open", name)
	if err != nil {
		return nil, err
	}
	return &file{
		Reader: bytes.NewReader(data),
		info:   fileInfo{name: path.Base(name), size: int64(len(data)), mod: mod},
	}, nil
}

// ReadFile fetches the whole object name.
func (f *S3FS) ReadFile(name string) ([]byte, error) {
	data, _, err := f.get("readfile", name)
	return data, err
}

func (f *S3FS) get(op, name string) ([]byte, time.Time, error) {
	if !fs.ValidPath(name) || name == "." {
		return nil, time.Time{}, &fs.PathError{Op: op, Path: name, Err: fs.ErrInvalid}
	}
	ctx, cancel := f.context()
	defer cancel()

	out, err := f.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(f.bucket),
		Key:    aws.String(f.prefix + name),
	})
	if err != nil {
		var missing *types.NoSuchKey
		if errors.As(err, &missing) {
			err = fs.ErrNotExist
		}
		return nil, time.Time{}, &fs.PathError{Op: op, Path: name, Err: err}
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, time.Time{}, &fs.PathError{Op: op, Path: name, Err: err}
	}
	return data, aws.ToTime(out.LastModified), nil
}

// Glob returns the keys directly below the prefix that match pattern,
// relative to the prefix and sorted.
func (f *S3FS) Glob(pattern string) ([]string, error) {
	if _, err := path.Match(pattern, ""); err != nil {
		return nil, err
	}
	ctx, cancel := f.context()
	defer cancel()

	var matches []string
	p := s3.NewListObjectsV2Paginator(f.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(f.bucket),
		Prefix:    aws.String(f.prefix),
		Delimiter: aws.String("/"),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("pages: list %s: %w", f, err)
		}
		for _, obj := range page.Contents {
			name := strings.TrimPrefix(aws.ToString(obj.Key), f.prefix)
			if name == "" || strings.Contains(name, "/") {
				continue
			}
			if ok, _ := path.Match(pattern, name); ok {
				matches = append(matches, name)
			}
		}
	}
	sort.Strings(matches)
	return matches, nil
}

type file struct {
	*bytes.Reader
	info fileInfo
}

func (f *file) Stat() (fs.FileInfo, error) { return f.info, nil }
func (f *file) Close() error { return nil }

type fileInfo struct {
	name string
	size int64
	mod  time.Time
}

func (i fileInfo) Name() string { return i.name }
func (i fileInfo) Size() int64 { return i.size }
func (i fileInfo) Mode() fs.FileMode { return 0o444 }
func (i fileInfo) ModTime() time.Time { return i.mod }
func (i fileInfo) IsDir() bool { return false }
func (i fileInfo) Sys() any { return nil }
