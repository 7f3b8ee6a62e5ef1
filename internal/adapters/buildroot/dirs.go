package buildroot

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/noderun/internal/adapters/archive"
	"go.trai.ch/noderun/internal/core/domain"
	"go.trai.ch/zerr"
)

// archiveMap maps each dir output to the first output named "<dir>.<ext>", or "" when none is
// declared.
func (r *Root) archiveMap() map[string]string {
	outputs := r.Outputs()
	m := make(map[string]string, len(r.dirOutputs))
	for _, dir := range r.dirOutputs {
		m[dir] = ""
		for _, out := range outputs {
			if strings.HasPrefix(out, dir+".") {
				m[dir] = out
				break
			}
		}
	}
	return m
}

// ValidateDirOutputs warns about empty directories and requires an archive for each dir output.
func (r *Root) ValidateDirOutputs() error {
	archives := r.archiveMap()
	for _, dir := range r.dirOutputs {
		_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil || !d.IsDir() || path == dir {
				return nil
			}
			if entries, err := os.ReadDir(path); err == nil && len(entries) == 0 {
				r.set.logger.Warn("dir output contains an empty directory", "path", path)
			}
			return nil
		})
		if archives[dir] == "" {
			return zerr.With(zerr.With(domain.ErrNoDirOutputArchive, "dir", dir), "outputs", r.Outputs())
		}
	}
	return nil
}

// ExtractDirOutputs unpacks every missing dir output from its archive.
func (r *Root) ExtractDirOutputs() error {
	for dir, arc := range r.archiveMap() {
		if arc == "" || !archive.IsArchive(arc) {
			continue
		}
		if _, err := os.Stat(dir); err == nil {
			continue
		}
		if err := archive.ExtractFile(arc, dir); err != nil {
			return err
		}
	}
	return nil
}

// PropagateDirOutputs registers every file of the dir outputs as an output.
func (r *Root) PropagateDirOutputs() error {
	files, err := r.DirOutputFiles()
	if err != nil {
		return err
	}
	for _, f := range files {
		r.AddOutput(strings.Replace(f, r.path, domain.Macro(domain.BuildRoot), 1))
	}
	return nil
}

// DirOutputFiles returns the files under the dir outputs. Empty directories are recorded in a
// meta file, which is returned as well. The listing is computed once.
func (r *Root) DirOutputFiles() ([]string, error) {
	r.dirFilesOnce.Do(func() {
		r.dirFiles, r.dirFilesErr = r.listDirOutputs()
	})
	return r.dirFiles, r.dirFilesErr
}

func (r *Root) listDirOutputs() ([]string, error) {
	var files, empty []string
	for _, dir := range r.dirOutputs {
		if _, err := os.Stat(dir); err != nil {
			continue
		}
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				files = append(files, path)
				return nil
			}
			entries, err := os.ReadDir(path)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				rel, err := filepath.Rel(r.path, path)
				if err != nil {
					return err
				}
				empty = append(empty, filepath.ToSlash(rel))
			}
			return nil
		})
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to list dir output"), "dir", dir)
		}
	}

	meta := filepath.Join(r.path, domain.EmptyDirOutputsMetaName)
	if _, err := os.Stat(meta); err == nil {
		// Restored from a cache: the meta is there, the empty directories are not.
		return append(files, meta), nil
	}
	if len(empty) == 0 {
		return files, nil
	}
	data, err := json.Marshal(empty)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to encode empty dir outputs")
	}
	if err := os.WriteFile(meta, data, domain.FilePerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to write empty dir outputs"), "path", meta)
	}
	return append(files, meta), nil
}

// createEmptyDirs recreates the empty directories listed in meta under into.
func (r *Root) createEmptyDirs(into, meta string) {
	data, err := os.ReadFile(meta) //nolint:gosec // G304: meta is an output of the root
	if err != nil {
		r.set.logger.Warn("cannot read empty dir outputs", "path", meta, "error", err)
		return
	}
	var dirs []string
	if err := json.Unmarshal(data, &dirs); err != nil {
		r.set.logger.Warn("cannot decode empty dir outputs", "path", meta, "error", err)
		return
	}
	for _, d := range dirs {
		path := filepath.Join(into, filepath.FromSlash(d))
		if err := os.MkdirAll(path, domain.DirPerm); err != nil && !errors.Is(err, fs.ErrExist) {
			r.set.logger.Warn("cannot create empty dir output", "path", path, "error", err)
		}
	}
}
