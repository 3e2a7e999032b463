package sink

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// PosixWriter appends payload to a POSIX path, creating parent directories
// and the file as needed. It is the direct translation of
// original_source/src/shuffle_write.cc's shuffle_posix_write, used under
// the original's PRELOAD_TEST/SHUFFLE_TEST/PLACEMENT_TEST test modes.
type PosixWriter struct{}

func (PosixWriter) Write(path string, payload []byte, _ uint16) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "mkdir %s", filepath.Dir(path))
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o666)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()
	if _, err := f.Write(payload); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return nil
}

// ForeignWriteFunc has the shape of the plfsdir object-addressed write API
// named out of scope in spec §1: foreign_write(path, payload, epoch). A
// non-zero return is fatal, per spec §4.7.
type ForeignWriteFunc func(path string, payload []byte, epoch uint16) int

// ExternalWriter adapts a ForeignWriteFunc — the plfsdir collaborator, or
// original_source's shuffle_deltafs_write in spirit — to the Writer
// interface.
type ExternalWriter struct {
	Fn ForeignWriteFunc
}

func (w ExternalWriter) Write(path string, payload []byte, epoch uint16) error {
	if rc := w.Fn(path, payload, epoch); rc != 0 {
		return errors.Errorf("foreign_write(%s) returned %d", path, rc)
	}
	return nil
}
