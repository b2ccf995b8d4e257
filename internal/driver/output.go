package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"rmspp/internal/diag"
	"rmspp/internal/source"
)

// OutputPath is where WriteOutput puts the result of path: same base name
// under dir.
func OutputPath(dir, path string) string {
	return filepath.Join(dir, filepath.Base(path))
}

// WriteOutput writes r.Output to OutputPath(dir, r.Path) through a
// temporary file. A failure is also recorded in r.Bag as IO5002. Failed
// results are not written.
func WriteOutput(r *Result, dir string) (string, error) {
	if r.Failed() {
		return "", nil
	}
	dst := OutputPath(dir, r.Path)
	if err := writeAtomic(dst, []byte(r.Output)); err != nil {
		// у результата ровно один файл, его ID 0
		diag.ReportError(diag.BagReporter{Bag: r.Bag}, diag.IOWriteFileError, source.Span{},
			"failed to write "+dst+": "+describe(err)).Emit()
		return dst, fmt.Errorf("write %s: %w", dst, err)
	}
	return dst, nil
}

func writeAtomic(dst string, data []byte) (err error) {
	if mkErr := os.MkdirAll(filepath.Dir(dst), 0o755); mkErr != nil {
		return mkErr
	}
	f, err := os.CreateTemp(filepath.Dir(dst), ".rmspp-*")
	if err != nil {
		return err
	}
	defer func() {
		if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
			err = rmErr
		}
	}()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), dst)
}
