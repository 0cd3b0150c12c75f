package core

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Orchestrator sequences the provisioner, locator and collaborators into
// the build, serve, clean, lint and status workflows. Each workflow is
// all-or-nothing: the first failing step's error is returned as is.
type Orchestrator struct {
	cfg         *Config
	runner      Runner
	provisioner *Provisioner
	locator     *Locator
	logger      *zap.Logger

	// OnStep, if set, is called before each workflow step with a short title.
	OnStep func(title string)
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(cfg *Config, runner Runner, locator *Locator, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		cfg:         cfg,
		runner:      runner,
		provisioner: NewProvisioner(cfg, runner, logger),
		locator:     locator,
		logger:      logger,
	}
}

func (o *Orchestrator) step(title string) {
	o.logger.Debug("step", zap.String("title", title))
	if o.OnStep != nil {
		o.OnStep(title)
	}
}

// prepare provisions the environment and resolves the site generator.
func (o *Orchestrator) prepare(ctx context.Context) (string, error) {
	o.step("Preparing environment " + o.cfg.EnvDir)
	if err := o.provisioner.EnsureEnvironment(ctx); err != nil {
		return "", err
	}

	o.step("Installing dependencies from " + o.cfg.Manifest)
	if err := o.provisioner.InstallDependencies(ctx); err != nil {
		return "", err
	}

	return o.provisioner.VerifyToolPresent(o.cfg.Generator)
}

// Build provisions the environment and generates the static site.
func (o *Orchestrator) Build(ctx context.Context) error {
	generator, err := o.prepare(ctx)
	if err != nil {
		return err
	}
	return o.generate(ctx, generator)
}

func (o *Orchestrator) generate(ctx context.Context, generator string) error {
	o.step("Building site into " + o.cfg.SiteDir)
	err := o.runner.Run(ctx, Command{
		Name: generator,
		Args: []string{"build", "--site-dir", o.cfg.Path(o.cfg.SiteDir)},
		Dir:  o.cfg.ProjectDir,
	})
	if err != nil {
		return fmt.Errorf("building site: %w", err)
	}
	return nil
}

// Serve runs the generator's development server until ctx is cancelled.
// With build set, the site is generated first. Cancellation is a clean
// shutdown and returns nil.
func (o *Orchestrator) Serve(ctx context.Context, build bool) error {
	generator, err := o.prepare(ctx)
	if err != nil {
		return err
	}
	if build {
		if err := o.generate(ctx, generator); err != nil {
			return err
		}
	}

	o.step("Serving on http://" + o.cfg.ServeAddr)
	err = o.runner.Run(ctx, Command{
		Name: generator,
		Args: []string{"serve", "--dev-addr", o.cfg.ServeAddr},
		Dir:  o.cfg.ProjectDir,
	})
	if ctx.Err() != nil {
		o.logger.Debug("serve interrupted", zap.Error(err))
		return nil
	}
	if err != nil {
		return fmt.Errorf("serving site: %w", err)
	}
	return nil
}

// CleanResult reports what happened to one directory during Clean.
type CleanResult struct {
	Path    string
	Removed bool  // True if something existed and is now gone
	Err     error // Non-nil if removal failed; absence is never an error
}

// Clean removes the site output, cache and environment directories.
// It never fails as a whole; per-directory failures are in the results.
func (o *Orchestrator) Clean() []CleanResult {
	targets := []string{o.cfg.SiteDir, o.cfg.CacheDir, o.cfg.EnvDir}
	results := make([]CleanResult, 0, len(targets))

	for _, rel := range targets {
		path := o.cfg.Path(rel)
		result := CleanResult{Path: path}

		if !withinProject(o.cfg.ProjectDir, path) {
			result.Err = fmt.Errorf("refusing to remove %s: not inside %s", path, o.cfg.ProjectDir)
			results = append(results, result)
			continue
		}

		existed := pathExists(path)
		if err := os.RemoveAll(path); err != nil {
			result.Err = err
		} else {
			result.Removed = existed
		}
		o.logger.Debug("clean", zap.String("path", path), zap.Bool("removed", result.Removed), zap.Error(result.Err))
		results = append(results, result)
	}
	return results
}

// withinProject reports whether path is strictly below projectDir.
func withinProject(projectDir, path string) bool {
	rel, err := filepath.Rel(projectDir, path)
	if err != nil || rel == "." {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(os.PathSeparator))
}

// Lint installs the linter if needed, checks it runs, then lints the project.
func (o *Orchestrator) Lint(ctx context.Context) error {
	tool := o.cfg.Linter

	o.step("Ensuring " + tool.Name + " is installed")
	if err := o.locator.EnsureAvailable(ctx, tool); err != nil {
		return err
	}
	path, ok := o.locator.Path(tool.Name)
	if !ok {
		return &Error{Kind: KindInstallationIncomplete, Subject: tool.Name}
	}

	var probe bytes.Buffer
	if err := o.runner.Run(ctx, Command{
		Name:   path,
		Args:   []string{"--version"},
		Stdout: &probe,
		Stderr: &probe,
	}); err != nil {
		return &Error{
			Kind:    KindToolNotRunnable,
			Subject: path,
			Detail:  strings.TrimSpace(probe.String()),
			Err:     err,
		}
	}
	o.logger.Debug("linter version", zap.String("version", strings.TrimSpace(probe.String())))

	o.step("Linting " + o.cfg.ProjectDir)
	err := o.runner.Run(ctx, Command{
		Name: path,
		Args: tool.Args,
		Dir:  o.cfg.ProjectDir,
	})
	if err != nil {
		if KindOf(err) == KindCommandFailed {
			return &Error{Kind: KindLintFindings, Subject: tool.Name, Err: err}
		}
		return fmt.Errorf("running %s: %w", tool.Name, err)
	}
	return nil
}

// Status is a read-only snapshot of the project's toolchain.
type Status struct {
	ProjectDir      string
	EnvDir          string
	EnvPresent      bool
	Manifest        string
	ManifestPresent bool
	SiteDir         string
	SitePresent     bool
	Generator       string
	GeneratorPath   string // Empty if unresolved
	Linter          string
	LinterPath      string // Empty if unresolved
}

// Status reports the toolchain state without changing anything.
func (o *Orchestrator) Status() Status {
	st := Status{
		ProjectDir:      o.cfg.ProjectDir,
		EnvDir:          o.cfg.EnvDir,
		EnvPresent:      dirExists(o.cfg.Path(o.cfg.EnvDir)),
		Manifest:        o.cfg.Manifest,
		ManifestPresent: fileExists(o.cfg.Path(o.cfg.Manifest)),
		SiteDir:         o.cfg.SiteDir,
		SitePresent:     dirExists(o.cfg.Path(o.cfg.SiteDir)),
		Generator:       o.cfg.Generator,
		Linter:          o.cfg.Linter.Name,
	}
	if path, ok := o.provisioner.LookupTool(o.cfg.Generator); ok {
		st.GeneratorPath = path
	}
	if path, ok := o.locator.Path(o.cfg.Linter.Name); ok {
		st.LinterPath = path
	}
	return st
}
