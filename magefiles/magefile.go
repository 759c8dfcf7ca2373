//go:build mage

// Package main provides build targets for mee using Mage.
//
// Usage:
//
//	mage build        Compile the mee binary to bin/
//	mage test:all     Run all tests
//	mage test:fuzz    Fuzz the parser and evaluator briefly
//	mage test:bench   Run benchmarks in the root package
//	mage generate     Regenerate stringer output
//	mage lint         Run go vet and golangci-lint
//	mage clean        Remove build artifacts
//	mage install      Install mee to GOPATH/bin
package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo      = "go"
	binLint    = "golangci-lint"
	binaryName = "mee"
	binaryDir  = "bin"
	cmdDir     = "./cmd/mee"
)

// Default is the target mage runs with no arguments.
var Default = Build

// Build compiles the mee binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV(binGo, "build", "-v", "-o", filepath.Join(binaryDir, binaryName), cmdDir)
}

// Generate runs go generate, which refreshes the stringer output for the
// lexer and parser enums.
func Generate() error {
	return sh.RunV(binGo, "generate", "./...")
}

// Lint runs go vet and golangci-lint.
func Lint() error {
	if err := sh.RunV(binGo, "vet", "./..."); err != nil {
		return err
	}
	return sh.RunV(binLint, "run", "./...")
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	return sh.RunV(binGo, "clean")
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output(binGo, "env", "GOPATH")
	if err != nil {
		return err
	}
	src := filepath.Join(binaryDir, binaryName)
	dst := filepath.Join(gopath, "bin", binaryName)
	return sh.Copy(dst, src)
}
