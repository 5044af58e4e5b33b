// Package commands implements the fm-dicom CLI's subcommands, one per
// core engine: tree, merge, delete, anonymize, validate, dicomdir, send,
// export.
package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/FullMetalEd/fm-dicom/internal/staging"
)

// ResolveInput turns a user-supplied path — a single DICOM file, a
// directory, or a ZIP archive — into a flat list of candidate DICOM file
// paths. ZIP archives are extracted into a staging session; the caller
// must call the returned release func (always non-nil) once done with the
// paths, typically via defer.
func ResolveInput(stager *staging.Manager, path string) (paths []string, release func(), err error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, func() {}, fmt.Errorf("stat %s: %w", path, err)
	}

	noop := func() {}

	if info.IsDir() {
		paths, err := walkFiles(path)
		return paths, noop, err
	}

	if strings.EqualFold(filepath.Ext(path), ".zip") {
		session, extracted, err := stager.ExtractZip(path)
		if err != nil {
			return nil, noop, fmt.Errorf("extract %s: %w", path, err)
		}
		return extracted, func() { _ = stager.Release(session) }, nil
	}

	return []string{path}, noop, nil
}

func walkFiles(dir string) ([]string, error) {
	var paths []string
	err := filepath.Walk(dir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			paths = append(paths, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	return paths, nil
}
