// Package main provides build targets for the frontdesk project using Mage.
//
// Usage:
//
//	mage build       Compile the frontdesk binary to bin/
//	mage install     Install frontdesk to GOPATH/bin
//	mage clean       Remove build artifacts
//	mage test:all    Run every test
//	mage test:race   Run every test with the race detector
//	mage test:cover  Write coverage to bin/coverage.out and print a summary
//	mage test:sync   Run the mirror, sync and transport packages only
//	mage lint        Run golangci-lint
//	mage stats       Print Go lines of code per package
package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// packageLines counts production and test lines of one directory.
type packageLines struct {
	prod, test int
}

// Stats prints Go lines of code per package, then totals.
func Stats() error {
	perDir := map[string]*packageLines{}

	err := filepath.WalkDir(".", func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			switch path {
			case "vendor", ".git", binaryDir, "magefiles", "_examples":
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") {
			return nil
		}
		count, countErr := countLines(path)
		if countErr != nil {
			return nil
		}
		dir := filepath.Dir(path)
		pl, ok := perDir[dir]
		if !ok {
			pl = &packageLines{}
			perDir[dir] = pl
		}
		if strings.HasSuffix(path, "_test.go") {
			pl.test += count
		} else {
			pl.prod += count
		}
		return nil
	})
	if err != nil {
		return err
	}

	dirs := make([]string, 0, len(perDir))
	for dir := range perDir {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	var total packageLines
	fmt.Printf("%-28s %8s %8s\n", "PACKAGE", "PROD", "TEST")
	for _, dir := range dirs {
		pl := perDir[dir]
		fmt.Printf("%-28s %8d %8d\n", dir, pl.prod, pl.test)
		total.prod += pl.prod
		total.test += pl.test
	}
	fmt.Printf("%-28s %8d %8d\n", "total", total.prod, total.test)
	return nil
}

func countLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	count := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		count++
	}
	return count, scanner.Err()
}
