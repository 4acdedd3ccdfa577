package loader

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// initFileName is the reserved package-init base name. Files with this name
// never describe a component.
const initFileName = "__init__"

// Module is one discovered descriptor file, addressed by a dotted module
// identifier relative to its category directory ("checklists.packing" for
// checklists/packing.yaml).
type Module struct {
	ID   string
	Path string
}

// Discover lists the descriptor files under a category directory. Files whose
// base name starts with an underscore or equals the init name are private and
// skipped, as is anything under an underscore-prefixed or "examples" subtree. A missing directory is
// not an error; it simply holds no modules.
func Discover(categoryDir string) ([]Module, error) {
	if _, err := os.Stat(categoryDir); os.IsNotExist(err) {
		return nil, nil
	}

	var modules []Module
	err := filepath.WalkDir(categoryDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != categoryDir && (d.Name() == "examples" || strings.HasPrefix(d.Name(), "_")) {
				return filepath.SkipDir
			}
			return nil
		}
		if !isDescriptorFile(path) {
			return nil
		}

		rel, err := filepath.Rel(categoryDir, path)
		if err != nil {
			return err
		}
		modules = append(modules, Module{ID: moduleID(rel), Path: path})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(modules, func(i, j int) bool { return modules[i].ID < modules[j].ID })
	return modules, nil
}

// isDescriptorFile reports whether a path names a loadable descriptor.
func isDescriptorFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return false
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return base != "" && base != initFileName && !strings.HasPrefix(base, "_")
}

// moduleID converts a category-relative path to a dotted identifier.
func moduleID(rel string) string {
	rel = strings.TrimSuffix(rel, filepath.Ext(rel))
	return strings.ReplaceAll(rel, string(filepath.Separator), ".")
}
