package export

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

func TestFileSinkWritesAtomically(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	sink := NewFileSink(dir)

	path, err := sink.Write(context.Background(), "performance-report-2026-01-01.csv", "a,b\n1,2\n")
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if path != filepath.Join(dir, "performance-report-2026-01-01.csv") {
		t.Fatalf("unexpected path %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if string(data) != "a,b\n1,2\n" {
		t.Fatalf("unexpected content %q", data)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the export file, got %d entries", len(entries))
	}
}

func TestFileSinkOverwrites(t *testing.T) {
	sink := NewFileSink(t.TempDir())
	if _, err := sink.Write(context.Background(), "r.csv", "old"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	path, err := sink.Write(context.Background(), "r.csv", "new")
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "new" {
		t.Fatalf("expected overwrite, got %q", data)
	}
}

func TestFileSinkRejectsPathNames(t *testing.T) {
	sink := NewFileSink(t.TempDir())
	if _, err := sink.Write(context.Background(), "../escape.csv", "x"); err == nil {
		t.Fatalf("expected error for path traversal name")
	}
}

type fakePutter struct {
	input *s3.PutObjectInput
	body  string
	err   error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = in
	data, _ := io.ReadAll(in.Body)
	f.body = string(data)
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestS3SinkUploadsWithPrefix(t *testing.T) {
	putter := &fakePutter{}
	sink := &S3Sink{client: putter, bucket: "reports", prefix: "/perf/"}

	loc, err := sink.Write(context.Background(), "r.csv", "data")
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if loc != "s3://reports/perf/r.csv" {
		t.Fatalf("unexpected location %q", loc)
	}
	if aws.ToString(putter.input.Bucket) != "reports" || aws.ToString(putter.input.Key) != "perf/r.csv" {
		t.Fatalf("unexpected put input: %+v", putter.input)
	}
	if putter.body != "data" {
		t.Fatalf("unexpected body %q", putter.body)
	}
}

func TestS3SinkWrapsErrors(t *testing.T) {
	boom := errors.New("boom")
	sink := &S3Sink{client: &fakePutter{err: boom}, bucket: "b"}
	if _, err := sink.Write(context.Background(), "r.csv", "x"); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestNewS3SinkRequiresBucket(t *testing.T) {
	if _, err := NewS3Sink(context.Background(), S3Options{}); err == nil {
		t.Fatalf("expected error for empty bucket")
	}
}
