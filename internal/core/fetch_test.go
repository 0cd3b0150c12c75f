package core

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestSelectTransport_FirstAvailableWins(t *testing.T) {
	curl := &fakeTransport{name: "curl", available: false}
	wget := &fakeTransport{name: "wget", available: true}
	native := &fakeTransport{name: "http", available: true}

	got, err := SelectTransport([]Transport{curl, wget, native})
	if err != nil {
		t.Fatalf("SelectTransport() error: %v", err)
	}
	if got.Name() != "wget" {
		t.Errorf("selected %q, want wget", got.Name())
	}
}

func TestSelectTransport_NoneAvailable(t *testing.T) {
	_, err := SelectTransport([]Transport{
		&fakeTransport{name: "curl"},
		&fakeTransport{name: "wget"},
	})
	if !errors.Is(err, ErrDownloadUnavailable) {
		t.Fatalf("error = %v, want DownloadUnavailable", err)
	}
}

func TestNewTransports_PreservesOrder(t *testing.T) {
	ts, err := NewTransports([]string{"wget", "http", "curl"}, &fakeRunner{}, nil)
	if err != nil {
		t.Fatalf("NewTransports() error: %v", err)
	}
	var names []string
	for _, tr := range ts {
		names = append(names, tr.Name())
	}
	if diff := cmp.Diff([]string{"wget", "http", "curl"}, names); diff != "" {
		t.Errorf("transport order mismatch (-want +got):\n%s", diff)
	}
}

func TestNewTransports_UnknownName(t *testing.T) {
	_, err := NewTransports([]string{"ftp"}, &fakeRunner{}, nil)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("error = %v, want InvalidConfig", err)
	}
}

func TestCommandTransports_PassRetryCount(t *testing.T) {
	runner := &fakeRunner{}
	ts, err := NewTransports([]string{"curl", "wget"}, runner, nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, tr := range ts {
		if err := tr.Fetch(context.Background(), "https://example.invalid/a.tar.gz", "/tmp/out", 3); err != nil {
			t.Fatalf("%s Fetch() error: %v", tr.Name(), err)
		}
	}

	want := []string{
		"curl -fsSL --retry 3 -o /tmp/out https://example.invalid/a.tar.gz",
		"wget -q --tries=4 -O /tmp/out https://example.invalid/a.tar.gz",
	}
	if diff := cmp.Diff(want, runner.lines()); diff != "" {
		t.Errorf("commands mismatch (-want +got):\n%s", diff)
	}
}

func TestHTTPTransport_Downloads(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("archive-bytes"))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "release.tar.gz")
	tr := NewHTTPTransport(srv.Client(), nil)
	if err := tr.Fetch(context.Background(), srv.URL+"/release.tar.gz", dest, 3); err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "archive-bytes" {
		t.Errorf("content = %q, want %q", data, "archive-bytes")
	}
}

func TestHTTPTransport_RetriesAreBounded(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	tr := NewHTTPTransport(srv.Client(), nil)
	tr.InitialInterval = time.Millisecond

	err := tr.Fetch(context.Background(), srv.URL, filepath.Join(t.TempDir(), "out"), 2)
	if err == nil {
		t.Fatal("expected error from failing server")
	}
	if got := hits.Load(); got != 3 {
		t.Errorf("requests = %d, want 3 (1 attempt + 2 retries)", got)
	}
}

func TestHTTPTransport_RecoversAfterTransientFailure(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	tr := NewHTTPTransport(srv.Client(), nil)
	tr.InitialInterval = time.Millisecond

	if err := tr.Fetch(context.Background(), srv.URL, filepath.Join(t.TempDir(), "out"), 3); err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if got := hits.Load(); got != 2 {
		t.Errorf("requests = %d, want 2", got)
	}
}

func TestHTTPTransport_ClientErrorIsNotRetried(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	tr := NewHTTPTransport(srv.Client(), nil)
	tr.InitialInterval = time.Millisecond

	if err := tr.Fetch(context.Background(), srv.URL, filepath.Join(t.TempDir(), "out"), 3); err == nil {
		t.Fatal("expected error for 404")
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("requests = %d, want 1", got)
	}
}

func TestReleaseURL(t *testing.T) {
	spec := Default("/p").Linter

	tests := []struct {
		goos, goarch string
		want         string
	}{
		{"linux", "amd64", "https://github.com/crate-ci/typos/releases/download/v1.26.0/typos-v1.26.0-x86_64-unknown-linux-musl.tar.gz"},
		{"darwin", "arm64", "https://github.com/crate-ci/typos/releases/download/v1.26.0/typos-v1.26.0-aarch64-apple-darwin.tar.gz"},
		{"windows", "amd64", "https://github.com/crate-ci/typos/releases/download/v1.26.0/typos-v1.26.0-x86_64-pc-windows-msvc.zip"},
	}
	for _, tt := range tests {
		t.Run(tt.goos+"/"+tt.goarch, func(t *testing.T) {
			got, err := spec.ReleaseURL(tt.goos, tt.goarch)
			if err != nil {
				t.Fatalf("ReleaseURL() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ReleaseURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReleaseURL_UnsupportedPlatform(t *testing.T) {
	spec := Default("/p").Linter
	_, err := spec.ReleaseURL("plan9", "386")
	if !errors.Is(err, ErrDownloadUnavailable) {
		t.Fatalf("error = %v, want DownloadUnavailable", err)
	}
}

func TestReleaseURL_FixedURLIgnoresPlatform(t *testing.T) {
	spec := ToolSpec{Name: "typos", Version: "2.0.0", URL: "https://mirror.example/typos-{version}.tar.gz"}
	got, err := spec.ReleaseURL("plan9", "386")
	if err != nil {
		t.Fatalf("ReleaseURL() error: %v", err)
	}
	if want := "https://mirror.example/typos-2.0.0.tar.gz"; got != want {
		t.Errorf("ReleaseURL() = %q, want %q", got, want)
	}
}
