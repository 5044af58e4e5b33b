// Package export packages a selected set of DICOM instances onto disk as a
// flat directory copy or a ZIP archive, with or without an accompanying
// DICOMDIR media-storage directory.
package export

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/FullMetalEd/fm-dicom/dicom"
	"github.com/FullMetalEd/fm-dicom/dicom/tag"
	"github.com/FullMetalEd/fm-dicom/internal/dicomdir"
	"github.com/FullMetalEd/fm-dicom/internal/hierarchy"
	"github.com/klauspost/compress/flate"
)

// Variant selects one of the three export layouts.
type Variant int

const (
	// FlatCopy copies every instance file into a single destination
	// directory, deduplicating names by SOPInstanceUID on collision.
	FlatCopy Variant = iota
	// PlainZip writes the same flat layout into one ZIP archive.
	PlainZip
	// ZipWithDicomdir writes the standard DICOM/PATnnnnn/STUnnnnn/SERnnnnn/
	// IMGnnnnn File-set tree plus a DICOMDIR at the archive root.
	ZipWithDicomdir
)

// Result reports what Export actually wrote.
type Result struct {
	// DestPath is the directory (FlatCopy) or archive file (PlainZip,
	// ZipWithDicomdir) that was written.
	DestPath string
	// Written is the count of instance files successfully included.
	Written int
	// Skipped maps a source path to the error that excluded it.
	Skipped map[string]error
}

func newResult(destPath string) *Result {
	return &Result{DestPath: destPath, Skipped: make(map[string]error)}
}

// Export runs variant over paths, writing to destPath. For FlatCopy,
// destPath is a directory (created if missing); for the two ZIP variants
// it is the archive file path.
func Export(tree *hierarchy.Tree, paths []string, destPath string, variant Variant) (*Result, error) {
	switch variant {
	case FlatCopy:
		return exportFlatCopy(paths, destPath)
	case PlainZip:
		return exportPlainZip(paths, destPath)
	case ZipWithDicomdir:
		return exportZipWithDicomdir(tree, paths, destPath)
	default:
		return nil, fmt.Errorf("unknown export variant %d", variant)
	}
}

// flatName returns the destination filename for path: its own base name,
// or {SOPInstanceUID}.dcm if that name has already been used by an earlier
// file in this export (grounded on directory_writer.go's flat-mode naming
// fallback).
func flatName(path string, used map[string]bool) (string, error) {
	name := filepath.Base(path)
	if !used[name] {
		used[name] = true
		return name, nil
	}

	ds, err := dicom.ParseFile(path)
	if err != nil {
		return "", fmt.Errorf("resolve unique name for %s: %w", path, err)
	}
	elem, err := ds.Get(tag.SOPInstanceUID)
	if err != nil {
		return "", fmt.Errorf("resolve unique name for %s: missing SOPInstanceUID", path)
	}
	name = elem.Value().String() + ".dcm"
	used[name] = true
	return name, nil
}

func exportFlatCopy(paths []string, destDir string) (*Result, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", destDir, err)
	}

	result := newResult(destDir)
	used := make(map[string]bool, len(paths))

	for _, p := range paths {
		name, err := flatName(p, used)
		if err != nil {
			result.Skipped[p] = err
			continue
		}
		if err := copyFileTo(p, filepath.Join(destDir, name)); err != nil {
			result.Skipped[p] = err
			continue
		}
		result.Written++
	}

	return result, nil
}

func exportPlainZip(paths []string, destPath string) (*Result, error) {
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", filepath.Dir(destPath), err)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", destPath, err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	registerDeflate(zw)
	defer zw.Close()

	result := newResult(destPath)
	used := make(map[string]bool, len(paths))

	for _, p := range paths {
		name, err := flatName(p, used)
		if err != nil {
			result.Skipped[p] = err
			continue
		}
		if err := addFileToZip(zw, p, name); err != nil {
			result.Skipped[p] = err
			continue
		}
		result.Written++
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize %s: %w", destPath, err)
	}
	// zw.Close is idempotent against the deferred call above.

	return result, nil
}

// registerDeflate swaps in the klauspost/compress flate writer for the
// archive's DEFLATE method, in place of archive/zip's stdlib default.
func registerDeflate(zw *zip.Writer) {
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, flate.DefaultCompression)
	})
}

func addFileToZip(zw *zip.Writer, srcPath, archiveName string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return err
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = archiveName
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, src)
	return err
}

func copyFileTo(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".export-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, dst)
}

// exportZipWithDicomdir builds the standard File-set directory (via
// internal/dicomdir.BuildFileSet) under a scratch directory, then zips the
// whole tree — DICOMDIR at the archive root, instances under DICOM/....
func exportZipWithDicomdir(tree *hierarchy.Tree, paths []string, destPath string) (*Result, error) {
	if tree == nil {
		return nil, fmt.Errorf("ZIP with DICOMDIR requires a built hierarchy tree")
	}

	scratch, err := os.MkdirTemp("", "export-dicomdir-*")
	if err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(scratch)

	buildResult, err := dicomdir.BuildFileSet(tree, scratch, "DICOM_EXPORT")
	if err != nil {
		return nil, fmt.Errorf("build File-set: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", filepath.Dir(destPath), err)
	}
	out, err := os.Create(destPath)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", destPath, err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	registerDeflate(zw)

	result := newResult(destPath)

	walkErr := filepath.Walk(scratch, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(scratch, p)
		if err != nil {
			return err
		}
		if addErr := addFileToZip(zw, p, filepath.ToSlash(rel)); addErr != nil {
			result.Skipped[p] = addErr
			return nil
		}
		result.Written++
		return nil
	})
	if walkErr != nil {
		zw.Close()
		return nil, fmt.Errorf("walk File-set tree: %w", walkErr)
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize %s: %w", destPath, err)
	}

	// paths is unused directly here — BuildFileSet already walked the tree
	// to select every instance; retained in the signature so callers pass
	// the same selection used to build tree, keeping the three variants'
	// call sites uniform.
	_ = paths
	_ = buildResult

	return result, nil
}
