package core

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// Transport names accepted in Config.Transports.
const (
	TransportCurl = "curl"
	TransportWget = "wget"
	TransportHTTP = "http"
)

func knownTransport(name string) bool {
	switch name {
	case TransportCurl, TransportWget, TransportHTTP:
		return true
	}
	return false
}

// Transport fetches a URL into a local file.
type Transport interface {
	Name() string
	// Available reports whether the transport can be used on this machine.
	Available() bool
	// Fetch downloads url to dest, retrying at most retries times.
	Fetch(ctx context.Context, url, dest string, retries int) error
}

// NewTransports builds transports for the given names, preserving order.
func NewTransports(names []string, runner Runner, logger *zap.Logger) ([]Transport, error) {
	transports := make([]Transport, 0, len(names))
	for _, name := range names {
		switch name {
		case TransportCurl:
			transports = append(transports, &commandTransport{
				name:   TransportCurl,
				runner: runner,
				args: func(url, dest string, retries int) []string {
					return []string{"-fsSL", "--retry", strconv.Itoa(retries), "-o", dest, url}
				},
			})
		case TransportWget:
			transports = append(transports, &commandTransport{
				name:   TransportWget,
				runner: runner,
				args: func(url, dest string, retries int) []string {
					// wget counts the first attempt as a try.
					return []string{"-q", "--tries=" + strconv.Itoa(retries+1), "-O", dest, url}
				},
			})
		case TransportHTTP:
			transports = append(transports, NewHTTPTransport(nil, logger))
		default:
			return nil, &Error{Kind: KindInvalidConfig, Subject: "transports", Detail: fmt.Sprintf("unknown transport %q", name)}
		}
	}
	return transports, nil
}

// SelectTransport returns the first available transport.
func SelectTransport(transports []Transport) (Transport, error) {
	var tried []string
	for _, t := range transports {
		if t.Available() {
			return t, nil
		}
		tried = append(tried, t.Name())
	}
	return nil, &Error{
		Kind:   KindDownloadUnavailable,
		Detail: "none of " + strings.Join(tried, ", ") + " is installed",
	}
}

// commandTransport shells out to an external download tool.
type commandTransport struct {
	name   string
	runner Runner
	args   func(url, dest string, retries int) []string
}

func (t *commandTransport) Name() string { return t.name }

func (t *commandTransport) Available() bool {
	_, err := exec.LookPath(t.name)
	return err == nil
}

func (t *commandTransport) Fetch(ctx context.Context, url, dest string, retries int) error {
	return t.runner.Run(ctx, Command{Name: t.name, Args: t.args(url, dest, retries)})
}

// HTTPTransport downloads in-process with bounded exponential backoff.
type HTTPTransport struct {
	client *http.Client
	logger *zap.Logger

	// InitialInterval is the first retry delay.
	InitialInterval time.Duration
}

// NewHTTPTransport creates an HTTPTransport. A nil client uses http.DefaultClient.
func NewHTTPTransport(client *http.Client, logger *zap.Logger) *HTTPTransport {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPTransport{
		client:          client,
		logger:          logger.Named("http"),
		InitialInterval: 500 * time.Millisecond,
	}
}

func (t *HTTPTransport) Name() string { return TransportHTTP }

// Available is always true: the transport needs nothing outside the process.
func (t *HTTPTransport) Available() bool { return true }

func (t *HTTPTransport) Fetch(ctx context.Context, url, dest string, retries int) error {
	attempt := 0
	op := func() error {
		attempt++
		t.logger.Debug("GET", zap.String("url", url), zap.Int("attempt", attempt))

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := t.client.Do(req)
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode != http.StatusOK {
			err := fmt.Errorf("GET %s: %s", url, resp.Status)
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return backoff.Permanent(err)
			}
			return err
		}
		return writeBody(dest, resp.Body)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = t.InitialInterval
	return backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(b, uint64(retries)), ctx))
}

func writeBody(dest string, body io.Reader) error {
	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, body); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// releaseTargets maps GOOS/GOARCH to the target triple used in release names.
var releaseTargets = map[string]string{
	"linux/amd64":   "x86_64-unknown-linux-musl",
	"linux/arm64":   "aarch64-unknown-linux-musl",
	"darwin/amd64":  "x86_64-apple-darwin",
	"darwin/arm64":  "aarch64-apple-darwin",
	"windows/amd64": "x86_64-pc-windows-msvc",
}

// ReleaseURL expands the tool's URL template for the given platform.
func (s ToolSpec) ReleaseURL(goos, goarch string) (string, error) {
	url := strings.ReplaceAll(s.URL, "{version}", s.Version)

	if strings.Contains(url, "{target}") {
		target, ok := releaseTargets[goos+"/"+goarch]
		if !ok {
			return "", &Error{
				Kind:    KindDownloadUnavailable,
				Subject: s.Name,
				Detail:  fmt.Sprintf("no release published for %s/%s", goos, goarch),
			}
		}
		url = strings.ReplaceAll(url, "{target}", target)
	}

	ext := ".tar.gz"
	if goos == "windows" {
		ext = ".zip"
	}
	return strings.ReplaceAll(url, "{ext}", ext), nil
}
