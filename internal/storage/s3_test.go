package storage

import (
	"context"
	"errors"
	"io"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/iliyamo/dantour/internal/config"
)

type MockS3 struct {
	putCalled    bool
	putKey       string
	putType      string
	putBody      string
	deleteCalled bool
	deleteKey    string
	err          error
}

func (m *MockS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	m.putCalled = true
	m.putKey = aws.ToString(in.Key)
	m.putType = aws.ToString(in.ContentType)
	b, _ := io.ReadAll(in.Body)
	m.putBody = string(b)
	return &s3.PutObjectOutput{}, m.err
}

func (m *MockS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	m.deleteCalled = true
	m.deleteKey = aws.ToString(in.Key)
	return &s3.DeleteObjectOutput{}, m.err
}

func TestProductKey(t *testing.T) {
	ts := time.UnixMilli(1700000000123)
	tests := []struct {
		name string
		typ  string
		cat  string
		file string
		want string // key with the nonce replaced by N
	}{
		{name: "plain", typ: "tours", cat: "Beach", file: "a.jpg", want: "products/tours/Beach/images/1700000000123-N-a.jpg"},
		{name: "path in file name", typ: "tours", cat: "Beach", file: "../../x.png", want: "products/tours/Beach/images/1700000000123-N-x.png"},
		{name: "slash in category", typ: "rental", cat: "4x4/SUV", file: "c.png", want: "products/rental/4x4-SUV/images/1700000000123-N-c.png"},
	}
	nonce := regexp.MustCompile(`/1700000000123-[0-9a-f]{8}-`)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ProductKey(tt.typ, tt.cat, FolderImages, tt.file, ts)
			if !nonce.MatchString(got) {
				t.Fatalf("ProductKey() = %q, want an 8 hex digit nonce after the timestamp", got)
			}
			if norm := nonce.ReplaceAllString(got, "/1700000000123-N-"); norm != tt.want {
				t.Errorf("ProductKey() = %q, want %q", norm, tt.want)
			}
		})
	}
}

func TestProductKeySameMillisecond(t *testing.T) {
	ts := time.UnixMilli(1700000000123)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		k := ProductKey("tours", "Beach", FolderVideos, "clip.mp4", ts)
		if seen[k] {
			t.Fatalf("ProductKey() repeated %q", k)
		}
		seen[k] = true
	}
}

func TestBaseURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.StorageConfig
		want string
	}{
		{name: "bucket", cfg: config.StorageConfig{Bucket: "media", Region: "us-east-2"}, want: "https://media.s3.us-east-2.amazonaws.com"},
		{name: "cdn", cfg: config.StorageConfig{Bucket: "media", CDNDomain: "cdn.example.com"}, want: "https://cdn.example.com"},
		{name: "cdn with scheme", cfg: config.StorageConfig{Bucket: "media", CDNDomain: "https://cdn.example.com/"}, want: "https://cdn.example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BaseURL(tt.cfg); got != tt.want {
				t.Errorf("BaseURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestS3StoreUploadDelete(t *testing.T) {
	m := &MockS3{}
	s := NewS3StoreWithAPI(m, config.StorageConfig{Bucket: "media", Region: "us-east-1"})

	url, err := s.Upload(context.Background(), "products/tours/x/images/1-a.jpg", "image/jpeg", strings.NewReader("data"))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if url != "https://media.s3.us-east-1.amazonaws.com/products/tours/x/images/1-a.jpg" {
		t.Errorf("Upload() url = %q", url)
	}
	if m.putType != "image/jpeg" || m.putBody != "data" {
		t.Errorf("PutObject got type=%q body=%q", m.putType, m.putBody)
	}

	if err := s.Delete(context.Background(), url); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if m.deleteKey != "products/tours/x/images/1-a.jpg" {
		t.Errorf("DeleteObject key = %q", m.deleteKey)
	}
}

func TestS3StoreDeleteForeignURL(t *testing.T) {
	m := &MockS3{}
	s := NewS3StoreWithAPI(m, config.StorageConfig{Bucket: "media", Region: "us-east-1"})
	if err := s.Delete(context.Background(), "https://elsewhere.com/a.jpg"); err == nil {
		t.Error("Delete() error = nil for a foreign url")
	}
	if m.deleteCalled {
		t.Error("DeleteObject called for a foreign url")
	}
}

func TestS3StoreUploadError(t *testing.T) {
	m := &MockS3{err: errors.New("boom")}
	s := NewS3StoreWithAPI(m, config.StorageConfig{Bucket: "media", Region: "us-east-1"})
	if _, err := s.Upload(context.Background(), "k", "", strings.NewReader("")); err == nil {
		t.Error("Upload() error = nil, want error")
	}
}
