/*
Package artifact fetches and stores the files the pipeline is configured with:
classifier exports, feature schemas, recordings and results.

A location is a local path, a file:// URI, an http(s):// URL, or an
s3://bucket/key URI. Content that starts with the gzip magic bytes is
decompressed on read. S3 access is configured by the usual AWS environment.
*/
package artifact

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/catz"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var (
	ErrNoLocation  = errors.New("no artifact location")
	ErrUnsupported = errors.New("unsupported artifact location")
)

// HTTPClient is used for http(s) locations.
var HTTPClient = &http.Client{Timeout: 30 * time.Second}

// Location is a parsed artifact location.
type Location struct {
	Scheme string
	// Path is the local path for files, the key for s3, the full URL for http(s).
	Path   string
	Bucket string
}

// Parse classifies a location string.
func Parse(loc string) (Location, error) {
	loc = strings.TrimSpace(loc)
	if loc == "" {
		return Location{}, ErrNoLocation
	}
	i := strings.Index(loc, "://")
	if i < 0 {
		return Location{Scheme: "file", Path: loc}, nil
	}
	u, err := url.Parse(loc)
	if err != nil {
		return Location{}, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "file":
		p := u.Path
		if u.Host != "" && u.Host != "localhost" {
			p = u.Host + p
		}
		return Location{Scheme: "file", Path: p}, nil
	case "http", "https":
		return Location{Scheme: strings.ToLower(u.Scheme), Path: loc}, nil
	case "s3":
		key := strings.TrimPrefix(u.Path, "/")
		if u.Host == "" || key == "" {
			return Location{}, fmt.Errorf("%w: s3 location needs bucket and key: %s", ErrUnsupported, loc)
		}
		return Location{Scheme: "s3", Bucket: u.Host, Path: key}, nil
	}
	return Location{}, fmt.Errorf("%w: scheme %q", ErrUnsupported, u.Scheme)
}

// Open returns the decompressed content at loc. The caller must close it.
func Open(ctx context.Context, loc string) (io.ReadCloser, error) {
	l, err := Parse(loc)
	if err != nil {
		return nil, err
	}
	var rc io.ReadCloser
	switch l.Scheme {
	case "file":
		rc, err = os.Open(l.Path)
	case "http", "https":
		rc, err = openHTTP(ctx, l.Path)
	case "s3":
		rc, err = openS3(ctx, l.Bucket, l.Path)
	}
	if err != nil {
		return nil, err
	}
	return catz.MaybeGZ(rc)
}

// ReadAll reads the whole decompressed content at loc.
func ReadAll(ctx context.Context, loc string) ([]byte, error) {
	rc, err := Open(ctx, loc)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func openHTTP(ctx context.Context, u string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	res, err := HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	if res.StatusCode != http.StatusOK {
		res.Body.Close()
		return nil, fmt.Errorf("fetch %s: %s", u, res.Status)
	}
	return res.Body, nil
}

// openS3 downloads the whole object. Artifacts are small enough to hold in memory.
func openS3(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	sess, err := session.NewSession()
	if err != nil {
		return nil, err
	}
	downloader := s3manager.NewDownloader(sess)
	buf := aws.NewWriteAtBuffer(nil)
	slog.Debug("Downloading artifact from S3", "bucket", bucket, "key", key)
	_, err = downloader.DownloadWithContext(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download s3://%s/%s: %w", bucket, key, err)
	}
	return io.NopCloser(bytes.NewReader(buf.Bytes())), nil
}

// Put stores data at loc, a local path or s3 location.
func Put(ctx context.Context, loc string, data []byte, contentType string) error {
	l, err := Parse(loc)
	if err != nil {
		return err
	}
	switch l.Scheme {
	case "file":
		if err := os.MkdirAll(filepath.Dir(l.Path), 0770); err != nil {
			return err
		}
		return os.WriteFile(l.Path, data, 0660)
	case "s3":
		return putS3(ctx, l.Bucket, l.Path, data, contentType)
	}
	return fmt.Errorf("%w: cannot write to %s", ErrUnsupported, l.Scheme)
}

func putS3(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	sess, err := session.NewSession()
	if err != nil {
		return err
	}
	svc := s3.New(sess)
	_, err = svc.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		var aerr awserr.Error
		if errors.As(err, &aerr) && aerr.Code() == request.CanceledErrorCode {
			return fmt.Errorf("s3 upload canceled: %w", err)
		}
		return fmt.Errorf("failed to upload s3://%s/%s: %w", bucket, key, err)
	}
	slog.Info("Uploaded to S3", "bucket", bucket, "key", key, "bytes", len(data))
	return nil
}
