package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"go.uber.org/zap"
)

// Locator resolves external tools and installs missing ones from their
// release archives into the project-local tool directory.
type Locator struct {
	cfg        *Config
	transports []Transport
	logger     *zap.Logger

	goos, goarch string
}

// NewLocator creates a Locator that downloads with the first available of
// transports.
func NewLocator(cfg *Config, transports []Transport, logger *zap.Logger) *Locator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Locator{
		cfg:        cfg,
		transports: transports,
		logger:     logger.Named("locator"),
		goos:       runtime.GOOS,
		goarch:     runtime.GOARCH,
	}
}

// ToolDir returns the absolute project-local tool directory.
func (l *Locator) ToolDir() string {
	return l.cfg.Path(l.cfg.ToolDir)
}

// Path resolves name in the tool directory first, then on PATH.
func (l *Locator) Path(name string) (string, bool) {
	return Resolve(name, InDir(l.ToolDir()), OnPath())
}

// IsAvailable reports whether name resolves. It has no side effects.
func (l *Locator) IsAvailable(name string) bool {
	_, ok := l.Path(name)
	return ok
}

// EnsureAvailable makes tool resolvable, downloading and installing it if
// needed. An already-available tool returns immediately with no network use.
func (l *Locator) EnsureAvailable(ctx context.Context, tool ToolSpec) error {
	if path, ok := l.Path(tool.Name); ok {
		l.logger.Debug("tool available", zap.String("name", tool.Name), zap.String("path", path))
		return nil
	}

	toolDir := l.ToolDir()
	if err := os.MkdirAll(toolDir, 0o755); err != nil {
		return fmt.Errorf("creating tool directory: %w", err)
	}

	url, err := tool.ReleaseURL(l.goos, l.goarch)
	if err != nil {
		return err
	}
	transport, err := SelectTransport(l.transports)
	if err != nil {
		return err
	}

	if err := l.install(ctx, tool, url, transport); err != nil {
		return err
	}

	if !l.IsAvailable(tool.Name) {
		return &Error{
			Kind:    KindInstallationIncomplete,
			Subject: tool.Name,
			Detail:  "still not resolvable after installing into " + l.cfg.ToolDir,
		}
	}
	return nil
}

// install runs download, extract, locate and move inside a temp dir that is
// removed on every return path.
func (l *Locator) install(ctx context.Context, tool ToolSpec, url string, transport Transport) error {
	tmpDir, err := os.MkdirTemp("", "docsctl-tool-*")
	if err != nil {
		return fmt.Errorf("creating temp dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	ext := archiveExt(url)
	if ext == "" {
		ext = ".tar.gz"
	}
	archive := filepath.Join(tmpDir, "release"+ext)

	l.logger.Debug("downloading release",
		zap.String("name", tool.Name),
		zap.String("url", url),
		zap.String("transport", transport.Name()),
		zap.Int("retries", l.cfg.Retries))
	if err := transport.Fetch(ctx, url, archive, l.cfg.Retries); err != nil {
		return &Error{Kind: KindDownloadFailed, Subject: url, Detail: "via " + transport.Name(), Err: err}
	}

	if err := Extract(archive, tmpDir); err != nil {
		return fmt.Errorf("extracting %s release: %w", tool.Name, err)
	}

	binName := executableName(tool.Name)
	exact := tool.ArchivePath
	if exact != "" && l.goos == "windows" {
		exact = executableName(exact)
	}
	found, err := FindBinary(tmpDir, exact, binName, searchDepth)
	if err != nil {
		return err
	}
	l.logger.Debug("located binary", zap.String("path", found))

	dst := filepath.Join(l.ToolDir(), binName)
	if err := moveFile(found, dst); err != nil {
		return fmt.Errorf("installing %s: %w", tool.Name, err)
	}
	if err := os.Chmod(dst, 0o755); err != nil {
		return fmt.Errorf("marking %s executable: %w", tool.Name, err)
	}
	return nil
}
