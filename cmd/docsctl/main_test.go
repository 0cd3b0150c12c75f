package main

import (
	"archive/tar"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/barysiuk/docsctl/cmd/docsctl/cmd"
	"github.com/klauspost/compress/gzip"
	"github.com/rogpeppe/go-internal/testscript"
)

func TestMain(m *testing.M) {
	testscript.Main(m, map[string]func(){
		"docsctl": func() {
			if err := cmd.Execute(); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		},
	})
}

func TestScript(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir:                 filepath.Join("testdata", "script"),
		RequireExplicitExec: true,
		Setup: func(e *testscript.Env) error {
			e.Vars = append(e.Vars, "HOME="+e.WorkDir)
			return nil
		},
		Cmds: map[string]func(ts *testscript.TestScript, neg bool, args []string){
			// is-executable asserts that a path is (or is not) an executable file.
			// Usage: [!] is-executable <path>
			"is-executable": cmdIsExecutable,

			// make-release writes a .tar.gz containing one executable entry.
			// Usage: make-release <archive> <entry-path> <source-file>
			// <entry-path> is slash-separated, e.g. typos-1.0/bin/typos.
			"make-release": cmdMakeRelease,
		},
	})
}

// cmdIsExecutable checks the file exists and has an execute bit.
func cmdIsExecutable(ts *testscript.TestScript, neg bool, args []string) {
	if len(args) != 1 {
		ts.Fatalf("usage: is-executable <path>")
	}
	info, err := os.Stat(ts.MkAbs(args[0]))
	isExec := err == nil && info.Mode().IsRegular() &&
		(runtime.GOOS == "windows" || info.Mode().Perm()&0o111 != 0)

	if neg {
		if isExec {
			ts.Fatalf("%s is executable (expected not to be)", args[0])
		}
		return
	}
	if !isExec {
		if err != nil {
			ts.Fatalf("%s: %v", args[0], err)
		}
		ts.Fatalf("%s is not executable (mode: %s)", args[0], info.Mode())
	}
}

// cmdMakeRelease builds a release archive the lint install can unpack.
func cmdMakeRelease(ts *testscript.TestScript, neg bool, args []string) {
	if neg {
		ts.Fatalf("make-release does not support negation")
	}
	if len(args) != 3 {
		ts.Fatalf("usage: make-release <archive> <entry-path> <source-file>")
	}

	content, err := os.ReadFile(ts.MkAbs(args[2]))
	if err != nil {
		ts.Fatalf("reading %s: %v", args[2], err)
	}

	f, err := os.Create(ts.MkAbs(args[0]))
	if err != nil {
		ts.Fatalf("creating archive: %v", err)
	}
	defer func() { _ = f.Close() }()

	gzw := gzip.NewWriter(f)
	tw := tar.NewWriter(gzw)
	hdr := &tar.Header{
		Name:     args[1],
		Typeflag: tar.TypeReg,
		Mode:     0o644,
		Size:     int64(len(content)),
	}
	if err := tw.WriteHeader(hdr); err != nil {
		ts.Fatalf("writing header: %v", err)
	}
	if _, err := tw.Write(content); err != nil {
		ts.Fatalf("writing entry: %v", err)
	}
	if err := tw.Close(); err != nil {
		ts.Fatalf("closing tar: %v", err)
	}
	if err := gzw.Close(); err != nil {
		ts.Fatalf("closing gzip: %v", err)
	}
}
