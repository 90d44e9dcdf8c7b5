package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"lfsclean/internal/errors"
)

// extractExtensions lists the file extensions the parser can read
var extractExtensions = map[string]bool{
	".csv":  true,
	".xlsx": true,
}

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Discovery provides file discovery operations
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance. Relative
// directories passed to its methods resolve against basePath.
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

// IsExtract reports whether name has an extension the parser accepts
func IsExtract(name string) bool {
	return extractExtensions[strings.ToLower(filepath.Ext(name))]
}

// FindExtracts lists the CSV and XLSX files directly inside dir, sorted
// by name. Hidden files and Excel lock files (~$name.xlsx) are skipped.
func (d *Discovery) FindExtracts(dir string) ([]FileInfo, error) {
	fullPath := d.resolve(dir)

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError(fmt.Sprintf("directory %s", fullPath))
		}
		return nil, errors.NewStorageError(fmt.Sprintf("failed to read directory %s", fullPath), err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$") || !IsExtract(name) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, name),
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})

	return files, nil
}

// FindFilesByPattern finds files matching a glob pattern, sorted by name
func (d *Discovery) FindFilesByPattern(dir string, pattern string) ([]FileInfo, error) {
	searchPattern := filepath.Join(d.resolve(dir), pattern)

	matches, err := filepath.Glob(searchPattern)
	if err != nil {
		return nil, errors.NewAppValidationError(fmt.Sprintf("invalid pattern %s: %v", pattern, err))
	}

	var files []FileInfo
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil || info.IsDir() {
			continue
		}
		files = append(files, FileInfo{
			Path:    match,
			Name:    filepath.Base(match),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})

	return files, nil
}

// Resolve expands in to the extract files it names: the file itself, or
// every extract inside it when in is a directory.
func (d *Discovery) Resolve(in string) ([]FileInfo, bool, error) {
	fullPath := d.resolve(in)

	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, errors.NewNotFoundError(fmt.Sprintf("input %s", fullPath))
		}
		return nil, false, errors.NewStorageError(fmt.Sprintf("failed to stat %s", fullPath), err)
	}

	if info.IsDir() {
		files, err := d.FindExtracts(fullPath)
		return files, true, err
	}

	return []FileInfo{{
		Path:    fullPath,
		Name:    info.Name(),
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}}, false, nil
}

// GetLatestFile returns the most recently modified file from a list
func GetLatestFile(files []FileInfo) (FileInfo, bool) {
	if len(files) == 0 {
		return FileInfo{}, false
	}

	latest := files[0]
	for _, file := range files[1:] {
		if file.ModTime.After(latest.ModTime) {
			latest = file
		}
	}

	return latest, true
}

func (d *Discovery) resolve(dir string) string {
	if filepath.IsAbs(dir) || d.basePath == "" {
		return dir
	}
	return filepath.Join(d.basePath, dir)
}
