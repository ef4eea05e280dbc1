// Package output mirrors finished exports to a directory so that crawls run
// by the server leave a copy on disk.
package output

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/spf13/afero"

	"github.com/lukemcguire/docscrape/export"
	"github.com/lukemcguire/docscrape/logger"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// ErrUnsafeEntry is returned for archive entries that would escape the
// mirror directory.
var ErrUnsafeEntry = errors.New("unsafe archive entry")

// Mirror writes artifacts below a base directory of an afero filesystem.
type Mirror struct {
	fs  afero.Fs
	dir string
	log logger.Logger
}

// New returns a Mirror rooted at dir on fs. A nil log discards messages.
func New(fs afero.Fs, dir string, log logger.Logger) *Mirror {
	if log == nil {
		log = logger.NewNop()
	}
	return &Mirror{fs: fs, dir: dir, log: log}
}

// NewOS returns a Mirror on the real filesystem.
func NewOS(dir string, log logger.Logger) *Mirror {
	return New(afero.NewOsFs(), dir, log)
}

// Dir returns the base directory.
func (m *Mirror) Dir() string {
	return m.dir
}

// Write stores art under name and returns the paths it created.
//
//	single_file  <dir>/<name>.md
//	json         <dir>/<name>.json
//	zip_files    <dir>/<name>/<page path>.md
//	zip_flat     <dir>/<name>/README.md and numbered pages
func (m *Mirror) Write(name string, art *export.Artifact) ([]string, error) {
	name = export.SafeName(name)
	if err := m.fs.MkdirAll(m.dir, dirPerm); err != nil {
		return nil, fmt.Errorf("create output directory %s: %w", m.dir, err)
	}

	var (
		written []string
		err     error
	)
	switch art.Format {
	case export.FormatSingle, export.FormatJSON:
		target := filepath.Join(m.dir, name+art.Format.Extension())
		err = m.writeFile(target, art.Data)
		written = []string{target}
	case export.FormatZipTree, export.FormatZipFlat:
		written, err = m.extract(filepath.Join(m.dir, name), art.Data)
	default:
		err = fmt.Errorf("%w %q", export.ErrUnknownFormat, art.Format)
	}
	if err != nil {
		return nil, err
	}

	m.log.Info("Export mirrored",
		logger.String("format", string(art.Format)),
		logger.String("name", name),
		logger.Int("files", len(written)))
	return written, nil
}

func (m *Mirror) writeFile(target string, data []byte) error {
	if err := m.fs.MkdirAll(filepath.Dir(target), dirPerm); err != nil {
		return fmt.Errorf("create directory for %s: %w", target, err)
	}
	if err := afero.WriteFile(m.fs, target, data, filePerm); err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}
	return nil
}

// extract unpacks a zip artifact below root.
func (m *Mirror) extract(root string, data []byte) ([]string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	if err := m.fs.MkdirAll(root, dirPerm); err != nil {
		return nil, fmt.Errorf("create directory %s: %w", root, err)
	}

	written := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		rel := path.Clean(f.Name)
		if path.IsAbs(rel) || rel == ".." || strings.HasPrefix(rel, "../") {
			return written, fmt.Errorf("%w: %s", ErrUnsafeEntry, f.Name)
		}

		rc, err := f.Open()
		if err != nil {
			return written, fmt.Errorf("open entry %s: %w", f.Name, err)
		}
		body, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return written, fmt.Errorf("read entry %s: %w", f.Name, err)
		}

		target := filepath.Join(root, filepath.FromSlash(rel))
		if err := m.writeFile(target, body); err != nil {
			return written, err
		}
		written = append(written, target)
	}
	return written, nil
}
