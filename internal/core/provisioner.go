package core

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"

	"go.uber.org/zap"
)

// Provisioner manages the project's isolated Python environment.
type Provisioner struct {
	cfg    *Config
	runner Runner
	logger *zap.Logger
}

// NewProvisioner creates a Provisioner for cfg.
func NewProvisioner(cfg *Config, runner Runner, logger *zap.Logger) *Provisioner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provisioner{cfg: cfg, runner: runner, logger: logger.Named("provisioner")}
}

// EnvDir returns the absolute environment directory.
func (p *Provisioner) EnvDir() string {
	return p.cfg.Path(p.cfg.EnvDir)
}

// BinDir returns the environment's executable directory.
func (p *Provisioner) BinDir() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(p.EnvDir(), "Scripts")
	}
	return filepath.Join(p.EnvDir(), "bin")
}

// EnsureEnvironment creates the environment directory if it does not exist.
func (p *Provisioner) EnsureEnvironment(ctx context.Context) error {
	envDir := p.EnvDir()
	if dirExists(envDir) {
		p.logger.Debug("environment present", zap.String("dir", envDir))
		return nil
	}

	p.logger.Debug("creating environment", zap.String("dir", envDir))
	err := p.runner.Run(ctx, Command{
		Name: p.cfg.Python,
		Args: []string{"-m", "venv", envDir},
		Dir:  p.cfg.ProjectDir,
	})
	if err != nil {
		return fmt.Errorf("creating environment %s: %w", p.cfg.EnvDir, err)
	}
	return nil
}

// InstallDependencies upgrades pip inside the environment and installs the
// manifest. A failure part-way leaves whatever was already installed.
func (p *Provisioner) InstallDependencies(ctx context.Context) error {
	manifest := p.cfg.Path(p.cfg.Manifest)
	if !fileExists(manifest) {
		return &Error{
			Kind:    KindMissingManifest,
			Subject: p.cfg.Manifest,
			Detail:  "not found in " + p.cfg.ProjectDir,
		}
	}

	python := filepath.Join(p.BinDir(), executableName("python"))

	if err := p.runner.Run(ctx, Command{
		Name: python,
		Args: []string{"-m", "pip", "install", "--upgrade", "pip"},
		Dir:  p.cfg.ProjectDir,
	}); err != nil {
		return fmt.Errorf("upgrading pip: %w", err)
	}

	if err := p.runner.Run(ctx, Command{
		Name: python,
		Args: []string{"-m", "pip", "install", "-r", manifest},
		Dir:  p.cfg.ProjectDir,
	}); err != nil {
		return fmt.Errorf("installing %s: %w", p.cfg.Manifest, err)
	}
	return nil
}

// VerifyToolPresent resolves name in the environment first, then on PATH.
// A miss after installation means the manifest does not provide the tool.
func (p *Provisioner) VerifyToolPresent(name string) (string, error) {
	path, ok := p.LookupTool(name)
	if !ok {
		return "", &Error{
			Kind:    KindToolNotFound,
			Subject: name,
			Detail:  fmt.Sprintf("not in %s or on PATH; check %s", p.cfg.EnvDir, p.cfg.Manifest),
		}
	}
	p.logger.Debug("resolved tool", zap.String("name", name), zap.String("path", path))
	return path, nil
}

// LookupTool is the side-effect-free form of VerifyToolPresent.
func (p *Provisioner) LookupTool(name string) (string, bool) {
	return Resolve(name, InDir(p.BinDir()), OnPath())
}
