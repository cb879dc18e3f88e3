//go:build mage

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main contains Mage build targets for docgraph developer tooling.
package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// projectDirs lists the working directories the CLI expects.
var projectDirs = []string{
	"output",
	".secrets",
	"cache",
}

// Init creates the project directory structure and a starter config.
func Init() error {
	for _, dir := range projectDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Println("  ", dir)
	}
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		if err := os.WriteFile(configFile, []byte(starterConfig), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", configFile, err)
		}
		fmt.Println("  ", configFile)
	}
	fmt.Println("Project directories initialized.")
	return nil
}

const (
	binDir     = "bin"
	binName    = "docgraph"
	cmdPkg     = "./cmd/docgraph"
	configFile = "docgraph.yaml"
)

const starterConfig = `nlp:
  backend: spacy
  endpoint: http://localhost:8080
  model: en_core_web_sm
  cache_dir: cache
graph:
  namespace: http://example.org/
  prefix: ex
export:
  output_dir: output
batch:
  workers: 4
`

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	version, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil || version == "" {
		version = "dev"
	}
	if err := sh.RunV("go", "build", "-ldflags", "-X main.version="+version, "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests with the race detector.
func Test() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Lint runs go vet.
func Lint() error {
	return sh.RunV("go", "vet", "./...")
}

// Demo builds the binary and runs the Paris example offline with the
// fixture NLP backend.
func Demo() error {
	mg.Deps(Build)

	dir, err := os.MkdirTemp("", "docgraph-demo-")
	if err != nil {
		return err
	}
	doc := filepath.Join(dir, "paris.txt")
	if err := os.WriteFile(doc, []byte("Paris is the capital of France.\n"), 0o644); err != nil {
		return err
	}
	return sh.RunV(filepath.Join(binDir, binName), "build", doc,
		"--nlp-backend", "fixture",
		"--fixture", filepath.Join("internal", "nlp", "testdata", "paris.yaml"),
		"--output-dir", filepath.Join("output", "demo"),
	)
}

// Clean removes build output.
func Clean() error {
	return sh.Rm(binDir)
}

// Stats prints Go line counts for production and test code and the word
// count of Markdown and YAML files.
func Stats() error {
	var st treeStats
	if err := filepath.WalkDir(".", st.visit); err != nil {
		return err
	}
	fmt.Printf("Lines of code (Go, production): %d\n", st.prodLines)
	fmt.Printf("Lines of code (Go, tests):      %d\n", st.testLines)
	fmt.Printf("Words (documentation):           %d\n", st.docWords)
	return nil
}

type treeStats struct {
	prodLines, testLines, docWords int
}

// visit skips hidden and underscore-prefixed directories.
func (st *treeStats) visit(path string, d fs.DirEntry, err error) error {
	if err != nil {
		return err
	}
	if d.IsDir() {
		if path != "." && strings.IndexAny(d.Name()[:1], "._") == 0 {
			return filepath.SkipDir
		}
		return nil
	}

	ext := filepath.Ext(path)
	if ext != ".go" && ext != ".md" && ext != ".yaml" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	switch {
	case ext != ".go":
		st.docWords += len(strings.Fields(string(data)))
	case strings.HasSuffix(path, "_test.go"):
		st.testLines += nonBlankLines(data)
	default:
		st.prodLines += nonBlankLines(data)
	}
	return nil
}

func nonBlankLines(data []byte) int {
	n := 0
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}
