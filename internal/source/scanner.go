package source

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LogExt is the extension of Claude Code usage log files.
const LogExt = ".jsonl"

// MaxFileSize is the per-file cap. Files above it are skipped before they
// are ever opened.
const MaxFileSize int64 = 100 << 20 // 100 MB

// ReadBudget caps total bytes of file content read in one refresh cycle.
const ReadBudget int64 = 500 << 20 // 500 MB

// ErrPathTraversal is returned when a caller-supplied root resolves
// outside the allowed Claude data directories. Callers treat it as
// non-fatal and fall back to the default roots.
var ErrPathTraversal = errors.New("path escapes allowed data directories")

// Skip reasons surfaced by ingestion. Both are warnings, never fatal.
var (
	ErrFileTooLarge   = errors.New("file exceeds per-file size cap")
	ErrBudgetExceeded = errors.New("cycle read budget exhausted")
)

// DefaultRoots returns the well-known Claude Code log roots. Roots that
// don't exist simply contribute no files.
func DefaultRoots() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	return []string{
		filepath.Join(home, ".claude", "projects"),
		filepath.Join(home, ".config", "claude", "projects"),
	}
}

// allowedParents returns the directories a custom root must resolve under.
func allowedParents() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	return []string{
		filepath.Join(home, ".claude"),
		filepath.Join(home, ".config", "claude"),
	}
}

// ValidateRoot expands a leading tilde, resolves symlinks, and verifies the
// result is contained in one of the allowed Claude data directories. It
// returns the resolved path on success and ErrPathTraversal otherwise.
func ValidateRoot(root string) (string, error) {
	return validateAgainst(root, allowedParents())
}

func validateAgainst(root string, parents []string) (string, error) {
	expanded := expandTilde(root)

	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", ErrPathTraversal
	}

	// Resolve symlinks so a link inside an allowed dir can't point out of
	// it. A root that doesn't exist yet is resolved against its nearest
	// existing ancestor.
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		resolved = abs
	}

	for _, parent := range parents {
		if contained(resolved, parent) {
			return resolved, nil
		}
	}
	return "", ErrPathTraversal
}

func contained(path, parent string) bool {
	rel, err := filepath.Rel(parent, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func expandTilde(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

// DiscoveredFile is a candidate log file found during scanning.
type DiscoveredFile struct {
	Path string
	Root string // the scan root that yielded this file
	Size int64
}

// ScanRoot walks root recursively and returns candidate log files in
// filesystem enumeration order. Hidden entries are skipped, as are files
// without the log extension. Unreadable entries contribute nothing; a
// missing root yields no files and no error.
func ScanRoot(root string) ([]DiscoveredFile, error) {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, nil
	}

	var files []DiscoveredFile

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // skip unreadable entries
		}
		if strings.HasPrefix(d.Name(), ".") && path != root {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if filepath.Ext(path) != LogExt {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			return nil //nolint:nilerr
		}

		files = append(files, DiscoveredFile{Path: path, Root: root, Size: fi.Size()})
		return nil
	})

	return files, err
}

// ProjectForPath derives a project key for a file with no embedded cwd:
// the first path segment beneath the file's scan root.
func ProjectForPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return ""
	}
	parts := strings.Split(rel, string(filepath.Separator))
	if len(parts) < 2 || parts[0] == ".." {
		return ""
	}
	return parts[0]
}
