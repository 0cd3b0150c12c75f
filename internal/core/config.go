package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tailscale/hujson"
)

const (
	// OverridesFileName is the optional per-project settings file.
	OverridesFileName = ".docsctl.json"

	defaultServeAddr = "127.0.0.1:8000"
	defaultRetries   = 3
)

// ToolSpec describes an external binary distributed as a release archive.
type ToolSpec struct {
	Name        string   // Binary name, without platform suffix
	Version     string   // Release version substituted for {version}
	URL         string   // Download URL template ({version}, {target}, {ext})
	ArchivePath string   // Expected slash-separated path of the binary inside the archive
	Args        []string // Arguments for the lint run
}

// Config holds every fixed setting of a docsctl run. It is built once by
// Load and shared by pointer; nothing mutates it afterwards.
type Config struct {
	ProjectDir string

	EnvDir    string
	CacheDir  string
	SiteDir   string
	Manifest  string
	Python    string
	Generator string
	ServeAddr string
	ToolDir   string

	Transports []string
	Retries    int

	Linter ToolSpec
}

// Default returns the built-in configuration rooted at projectDir.
func Default(projectDir string) *Config {
	return &Config{
		ProjectDir: projectDir,
		EnvDir:     ".venv",
		CacheDir:   ".cache",
		SiteDir:    "site",
		Manifest:   "requirements.txt",
		Python:     "python3",
		Generator:  "mkdocs",
		ServeAddr:  defaultServeAddr,
		ToolDir:    ".tools",
		Transports: []string{TransportCurl, TransportWget},
		Retries:    defaultRetries,
		Linter: ToolSpec{
			Name:        "typos",
			Version:     "1.26.0",
			URL:         "https://github.com/crate-ci/typos/releases/download/v{version}/typos-v{version}-{target}{ext}",
			ArchivePath: "typos",
			Args:        []string{"."},
		},
	}
}

// Load builds the configuration for projectDir: built-in defaults, then
// site_dir from mkdocs.yml, then the optional .docsctl.json overrides.
func Load(projectDir string) (*Config, error) {
	abs, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, fmt.Errorf("resolving project directory: %w", err)
	}

	cfg := Default(abs)

	siteDir, err := ReadSiteDir(filepath.Join(abs, MkDocsFileName))
	if err != nil {
		return nil, err
	}
	if siteDir != "" {
		cfg.SiteDir = siteDir
	}

	if err := applyOverrides(cfg, filepath.Join(abs, OverridesFileName)); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Path resolves a configured path against the project directory.
func (c *Config) Path(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(c.ProjectDir, p)
}

// overrides mirrors the keys accepted in .docsctl.json. Pointer fields
// distinguish "absent" from "set to the zero value".
type overrides struct {
	ServeAddr  *string          `json:"serveAddr"`
	EnvDir     *string          `json:"envDir"`
	CacheDir   *string          `json:"cacheDir"`
	SiteDir    *string          `json:"siteDir"`
	Manifest   *string          `json:"manifest"`
	Python     *string          `json:"python"`
	Generator  *string          `json:"generator"`
	ToolDir    *string          `json:"toolDir"`
	Transports []string         `json:"transports"`
	Retries    *int             `json:"retries"`
	Linter     *linterOverrides `json:"linter"`
}

type linterOverrides struct {
	Name        *string  `json:"name"`
	Version     *string  `json:"version"`
	URL         *string  `json:"url"`
	ArchivePath *string  `json:"archivePath"`
	Args        []string `json:"args"`
}

func applyOverrides(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", OverridesFileName, err)
	}

	// .docsctl.json may carry comments and trailing commas.
	std, err := hujson.Standardize(data)
	if err != nil {
		return &Error{Kind: KindInvalidConfig, Subject: OverridesFileName, Err: err}
	}

	dec := json.NewDecoder(bytes.NewReader(std))
	dec.DisallowUnknownFields()
	var o overrides
	if err := dec.Decode(&o); err != nil {
		return &Error{Kind: KindInvalidConfig, Subject: OverridesFileName, Err: err}
	}

	setString(&cfg.ServeAddr, o.ServeAddr)
	setString(&cfg.EnvDir, o.EnvDir)
	setString(&cfg.CacheDir, o.CacheDir)
	setString(&cfg.SiteDir, o.SiteDir)
	setString(&cfg.Manifest, o.Manifest)
	setString(&cfg.Python, o.Python)
	setString(&cfg.Generator, o.Generator)
	setString(&cfg.ToolDir, o.ToolDir)
	if o.Transports != nil {
		cfg.Transports = append([]string(nil), o.Transports...)
	}
	if o.Retries != nil {
		cfg.Retries = *o.Retries
	}
	if l := o.Linter; l != nil {
		setString(&cfg.Linter.Name, l.Name)
		setString(&cfg.Linter.Version, l.Version)
		setString(&cfg.Linter.URL, l.URL)
		setString(&cfg.Linter.ArchivePath, l.ArchivePath)
		// A renamed linter is looked for under its own name.
		if l.Name != nil && l.ArchivePath == nil {
			cfg.Linter.ArchivePath = *l.Name
		}
		if l.Args != nil {
			cfg.Linter.Args = append([]string(nil), l.Args...)
		}
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func (c *Config) validate() error {
	invalid := func(format string, args ...any) error {
		return &Error{Kind: KindInvalidConfig, Subject: OverridesFileName, Detail: fmt.Sprintf(format, args...)}
	}

	required := []struct{ key, value string }{
		{"envDir", c.EnvDir},
		{"cacheDir", c.CacheDir},
		{"siteDir", c.SiteDir},
		{"manifest", c.Manifest},
		{"python", c.Python},
		{"generator", c.Generator},
		{"serveAddr", c.ServeAddr},
		{"toolDir", c.ToolDir},
		{"linter.name", c.Linter.Name},
		{"linter.url", c.Linter.URL},
	}
	for _, r := range required {
		if r.value == "" {
			return invalid("%s must not be empty", r.key)
		}
	}
	if c.Retries < 0 {
		return invalid("retries must be >= 0, got %d", c.Retries)
	}
	if len(c.Transports) == 0 {
		return invalid("at least one transport is required")
	}
	for _, name := range c.Transports {
		if !knownTransport(name) {
			return invalid("unknown transport %q", name)
		}
	}
	return nil
}
