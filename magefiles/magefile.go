//go:build mage

// Package main contains Mage build targets for notion-math developer tooling.
package main

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// projectDirs lists the working directories the CLI expects.
var projectDirs = []string{
	".secrets",
	"snapshots/index",
	"snapshots/exports",
}

// Init creates the working directories for snapshots and secrets.
func Init() error {
	for _, dir := range projectDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Println("  ", dir)
	}
	fmt.Println("Project directories initialized.")
	if _, err := os.Stat(filepath.Join(".secrets", "notion-api-key")); os.IsNotExist(err) {
		fmt.Println("Write your integration secret to .secrets/notion-api-key before fetching.")
	}
	return nil
}

const (
	binDir  = "bin"
	binName = "notion-math"
	cmdPkg  = "./cmd/notion-math"
)

// Build compiles the CLI binary into bin/, stamping the version from
// NOTION_MATH_VERSION when set.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	ldflags := ""
	if v := os.Getenv("NOTION_MATH_VERSION"); v != "" {
		ldflags = "-X main.version=" + v
	}
	if err := sh.RunV("go", "build", "-ldflags", ldflags, "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests. SQLite requires cgo.
func Test() error {
	return sh.RunWithV(map[string]string{"CGO_ENABLED": "1"}, "go", "test", "./...")
}

// Check vets and tests the module, then builds the binary.
func Check() error {
	if err := sh.RunV("go", "vet", "./..."); err != nil {
		return err
	}
	mg.SerialDeps(Test, Build)
	return nil
}

// statsRoots are the directories whose packages Stats reports on.
var statsRoots = []string{"cmd", "internal", "pkg"}

// pkgLines is the non-blank line count of one package directory.
type pkgLines struct {
	dir        string
	prod, test int
}

// Stats prints non-blank Go lines per package, split into production and
// test code.
func Stats() error {
	var pkgs []pkgLines
	for _, root := range statsRoots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if os.IsNotExist(err) {
					return nil
				}
				return err
			}
			if !d.IsDir() {
				return nil
			}
			pl, err := countPackage(path)
			if err != nil {
				return err
			}
			if pl.prod+pl.test > 0 {
				pkgs = append(pkgs, pl)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.SetStyle(table.StyleLight)
	tw.Style().Format.Header = text.FormatDefault
	tw.AppendHeader(table.Row{"Package", "Production", "Tests"})
	var prod, test int
	for _, p := range pkgs {
		tw.AppendRow(table.Row{p.dir, p.prod, p.test})
		prod += p.prod
		test += p.test
	}
	tw.AppendFooter(table.Row{"total", prod, test})
	tw.Render()
	return nil
}

// countPackage counts non-blank lines in the .go files directly inside dir.
func countPackage(dir string) (pkgLines, error) {
	pl := pkgLines{dir: dir}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return pl, err
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") {
			continue
		}
		n, err := countLines(filepath.Join(dir, name))
		if err != nil {
			return pl, err
		}
		if strings.HasSuffix(name, "_test.go") {
			pl.test += n
		} else {
			pl.prod += n
		}
	}
	return pl, nil
}

func countLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", path, err)
	}
	defer f.Close()

	n := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if strings.TrimSpace(sc.Text()) != "" {
			n++
		}
	}
	return n, sc.Err()
}
