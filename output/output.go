// Package output writes assembly units into a directory, one .j file per
// class, next to the runtime support units every program needs.
package output

import (
	"bufio"
	"embed"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Extension is the suffix of every unit file.
const Extension = ".j"

// ManifestName is the file in the output directory that lists the units of
// the last run, one class name per line.
const ManifestName = ".units"

//go:embed runtime/*.j
var runtimeUnits embed.FS

// RuntimeUnits lists the support classes copied into every output
// directory.
func RuntimeUnits() ([]string, error) {
	entries, err := fs.ReadDir(runtimeUnits, "runtime")
	if err != nil {
		return nil, errors.Wrap(err, "list runtime units")
	}
	var names []string
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), Extension))
	}
	return names, nil
}

// DirSink writes units into Dir. A unit either appears complete under its
// final name or not at all.
type DirSink struct {
	Dir     string
	logger  *slog.Logger
	written []string
	names   []string
	runtime map[string]bool
}

// NewSink prepares dir: it is created if missing, the units listed in the
// manifest of an earlier run are removed and the runtime support units are
// written. Other files in dir are left alone.
func NewSink(dir string, logger *slog.Logger) (*DirSink, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &DirSink{Dir: dir, logger: logger, runtime: map[string]bool{}}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create output directory %s", dir)
	}
	if err := s.removeStale(); err != nil {
		return nil, err
	}
	names, err := RuntimeUnits()
	if err != nil {
		return nil, errors.Wrap(err, "prepare output")
	}
	for _, name := range names {
		data, err := runtimeUnits.ReadFile("runtime/" + name + Extension)
		if err != nil {
			return nil, errors.Wrapf(err, "read runtime unit %s", name)
		}
		err = s.WriteUnit(name, func(w io.Writer) error {
			_, err := w.Write(data)
			return err
		})
		if err != nil {
			return nil, err
		}
		s.runtime[name] = true
	}
	return s, nil
}

// removeStale deletes the units an earlier run recorded in the manifest.
func (s *DirSink) removeStale() error {
	data, err := os.ReadFile(filepath.Join(s.Dir, ManifestName))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "read unit manifest")
	}
	for _, name := range strings.Split(string(data), "\n") {
		name = strings.TrimSpace(name)
		if name == "" || strings.ContainsAny(name, `/\`) {
			continue
		}
		err := os.Remove(s.Path(name))
		if err != nil && !os.IsNotExist(err) {
			return errors.Wrapf(err, "remove old unit %s", name)
		}
		s.logger.Debug("removed stale unit", "name", name)
	}
	return nil
}

// Path is where the unit for class name ends up.
func (s *DirSink) Path(name string) string {
	return filepath.Join(s.Dir, name+Extension)
}

// WriteUnit runs write against a temporary file and renames it into place
// once everything has been written. Runtime units cannot be replaced.
func (s *DirSink) WriteUnit(name string, write func(io.Writer) error) error {
	if s.runtime[name] {
		return errors.Errorf("write unit %s: would replace the runtime unit", name)
	}
	if err := s.writeFile(name+Extension, write); err != nil {
		return errors.Wrapf(err, "write unit %s", name)
	}

	if !slices.Contains(s.names, name) {
		s.written = append(s.written, s.Path(name))
		s.names = append(s.names, name)
	}
	s.logger.Debug("wrote unit", "name", name, "path", s.Path(name))

	err := s.writeFile(ManifestName, func(w io.Writer) error {
		_, err := io.WriteString(w, strings.Join(s.names, "\n")+"\n")
		return err
	})
	return errors.Wrap(err, "write unit manifest")
}

func (s *DirSink) writeFile(base string, write func(io.Writer) error) (err error) {
	tmp, err := os.CreateTemp(s.Dir, "."+base+"-*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	w := bufio.NewWriter(tmp)
	if err = write(w); err != nil {
		return err
	}
	if err = w.Flush(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(s.Dir, base))
}

// Written returns the paths of all units written so far, sorted.
func (s *DirSink) Written() []string {
	paths := append([]string(nil), s.written...)
	sort.Strings(paths)
	return paths
}
