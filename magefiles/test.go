//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// fuzzTime is how long each fuzz target runs.
const fuzzTime = "30s"

// Test groups test targets.
type Test mg.Namespace

// All runs all tests.
func (Test) All() error {
	return sh.RunV(binGo, "test", "./...")
}

// Race runs all tests with the race detector.
func (Test) Race() error {
	return sh.RunV(binGo, "test", "-race", "./...")
}

// Fuzz runs each fuzz target in the root package for a short while.
func (Test) Fuzz() error {
	for _, target := range []string{"FuzzParse", "FuzzEval"} {
		if err := sh.RunV(binGo, "test", "-run", "^$", "-fuzz", "^"+target+"$", "-fuzztime", fuzzTime, "."); err != nil {
			return err
		}
	}
	return nil
}

// Bench runs the root package benchmarks.
func (Test) Bench() error {
	return sh.RunV(binGo, "test", "-run", "^$", "-bench", ".", "-benchmem", ".")
}
