package pipeline

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// DiscoverPDFs walks root recursively and returns every file with a ".pdf"
// extension (any case), sorted. Unreadable subdirectories are logged and
// skipped.
func DiscoverPDFs(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: stat input dir %s", root)
	}
	if !info.IsDir() {
		return nil, eris.Errorf("pipeline: input %s is not a directory", root)
	}

	var paths []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			zap.L().Warn("pipeline: skipping unreadable path", zap.String("path", path), zap.Error(err))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(d.Name()), ".pdf") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: walk %s", root)
	}

	sort.Strings(paths)
	return paths, nil
}
