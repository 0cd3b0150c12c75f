package core

import (
	"archive/tar"
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// searchDepth bounds how deep FindBinary looks below the extraction root.
const searchDepth = 3

// archiveExt returns the recognised archive extension of name, or "".
func archiveExt(name string) string {
	lower := strings.ToLower(name)
	for _, ext := range []string{".tar.gz", ".tgz", ".zip"} {
		if strings.HasSuffix(lower, ext) {
			return ext
		}
	}
	return ""
}

// Extract unpacks a .tar.gz, .tgz or .zip archive into dest.
func Extract(archive, dest string) error {
	switch archiveExt(archive) {
	case ".tar.gz", ".tgz":
		return extractTarGz(archive, dest)
	case ".zip":
		return extractZip(archive, dest)
	default:
		return fmt.Errorf("unsupported archive format: %s", filepath.Base(archive))
	}
}

func extractTarGz(archive, dest string) error {
	f, err := os.Open(archive)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	gzr, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("reading %s: %w", filepath.Base(archive), err)
	}
	defer func() { _ = gzr.Close() }()

	tr := tar.NewReader(gzr)
	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading %s: %w", filepath.Base(archive), err)
		}

		target, err := safeJoin(dest, header.Name)
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := writeEntry(target, tr, header.FileInfo().Mode().Perm()); err != nil {
				return err
			}
		default:
			// Links and devices never carry the binary we want.
		}
	}
}

func extractZip(archive, dest string) error {
	zr, err := zip.OpenReader(archive)
	if err != nil {
		return fmt.Errorf("reading %s: %w", filepath.Base(archive), err)
	}
	defer func() { _ = zr.Close() }()

	for _, entry := range zr.File {
		target, err := safeJoin(dest, entry.Name)
		if err != nil {
			return err
		}

		if entry.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}
		if !entry.Mode().IsRegular() {
			continue
		}

		rc, err := entry.Open()
		if err != nil {
			return err
		}
		err = writeEntry(target, rc, entry.Mode().Perm())
		_ = rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func writeEntry(target string, r io.Reader, perm fs.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	if perm == 0 {
		perm = 0o644
	}
	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// safeJoin joins an archive entry name onto dest, rejecting entries that
// would land outside it.
func safeJoin(dest, name string) (string, error) {
	target := filepath.Join(dest, filepath.FromSlash(name))
	root := filepath.Clean(dest)
	if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive entry %q escapes extraction directory", name)
	}
	return target, nil
}

// FindBinary locates a file called name under root. exactRel, if set, is
// checked first; otherwise the tree is searched to at most maxDepth path
// components below root (root/a/b/name is depth 3).
func FindBinary(root, exactRel, name string, maxDepth int) (string, error) {
	if exactRel != "" {
		candidate := filepath.Join(root, filepath.FromSlash(exactRel))
		if fileExists(candidate) {
			return candidate, nil
		}
	}

	var found string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}

		depth := strings.Count(filepath.ToSlash(rel), "/") + 1
		if d.IsDir() {
			if depth >= maxDepth {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() == name && d.Type().IsRegular() {
			found = path
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("searching extracted archive: %w", err)
	}
	if found == "" {
		return "", &Error{
			Kind:    KindBinaryNotFoundInArchive,
			Subject: name,
			Detail:  fmt.Sprintf("no match within %d levels", maxDepth),
		}
	}
	return found, nil
}
