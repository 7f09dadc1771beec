package modindex

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// importable matches a file that can be imported: a module, an extension
// or a package marker, optionally one directory deep.
var importable = regexp.MustCompile(`^(?P<name>[a-zA-Z_][a-zA-Z0-9_]*?)(?P<package>[/\\]__init__)?(?P<suffix>\.py|\.pyc|\.pyw|\.so|\.pyd|\.cpython-[0-9a-z_-]+\.so|\.abi3\.so)$`)

// ModuleList returns the module names available in path, a directory or a
// zip archive. Directories are walked one level deep.
func ModuleList(ctx context.Context, path string) []string {
	if path == "" {
		path = "."
	}

	var files []string
	info, err := os.Stat(path)
	switch {
	case err != nil:
		return nil
	case info.IsDir():
		files = listDir(ctx, path)
	default:
		files = listZip(path)
	}

	seen := make(map[string]struct{})
	for _, f := range files {
		m := importable.FindStringSubmatch(filepath.ToSlash(f))
		if m == nil {
			continue
		}
		seen[m[1]] = struct{}{}
	}
	delete(seen, "__init__")

	modules := make([]string, 0, len(seen))
	for name := range seen {
		modules = append(modules, name)
	}
	sort.Strings(modules)
	return modules
}

func listDir(ctx context.Context, path string) []string {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil
	}

	var files []string
	for _, entry := range entries {
		if ctx.Err() != nil {
			return files
		}
		if !entry.IsDir() {
			files = append(files, entry.Name())
			continue
		}
		sub, err := os.ReadDir(filepath.Join(path, entry.Name()))
		if err != nil {
			continue
		}
		for _, s := range sub {
			if !s.IsDir() {
				files = append(files, entry.Name()+"/"+s.Name())
			}
		}
	}
	return files
}

func listZip(path string) []string {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil
	}
	defer func() { _ = r.Close() }()

	files := make([]string, 0, len(r.File))
	for _, f := range r.File {
		// same depth rule as directories
		if strings.Count(f.Name, "/") <= 1 {
			files = append(files, f.Name)
		}
	}
	return files
}

// PackageDir returns the directory of the dotted package mod inside one of
// paths, if it is a package (it holds an __init__ file).
func PackageDir(paths []string, mod string) (string, bool) {
	rel := filepath.Join(strings.Split(mod, ".")...)
	for _, root := range paths {
		if root == "" {
			root = "."
		}
		dir := filepath.Join(root, rel)
		for _, marker := range []string{"__init__.py", "__init__.pyc"} {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir, true
			}
		}
	}
	return "", false
}
