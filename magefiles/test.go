// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Test groups test targets (all, race, cover, sync).
type Test mg.Namespace

// syncPackages hold the message path from socket to mirror.
var syncPackages = []string{
	"./internal/mirror/...",
	"./internal/syncer/...",
	"./internal/transport/...",
	"./internal/frontdesk/...",
}

// All runs every test.
func (Test) All() error {
	return sh.RunV(binGo, "test", "-v", "./...")
}

// Race runs every test with the race detector. The session and transport
// packages exercise concurrent delivery.
func (Test) Race() error {
	return sh.RunV(binGo, "test", "-race", "./...")
}

// Cover writes a coverage profile to bin/coverage.out and prints the
// per-function summary.
func (Test) Cover() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	profile := filepath.Join(binaryDir, "coverage.out")
	if err := sh.RunV(binGo, "test", "-coverprofile", profile, "./..."); err != nil {
		return err
	}
	return sh.RunV(binGo, "tool", "cover", "-func", profile)
}

// Sync runs only the packages on the message path.
func (Test) Sync() error {
	args := append([]string{"test", "-v"}, syncPackages...)
	return sh.RunV(binGo, args...)
}
