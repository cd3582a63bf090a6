package util

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hightail/wilson-sub000/internal/errors"
	homedir "github.com/mitchellh/go-homedir"
)

// FileExists returns true if the given file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsDir returns true if the path points to a directory.
func IsDir(path string) bool {
	fileInfo, err := os.Stat(path)
	return err == nil && fileInfo.IsDir()
}

// IsFile returns true if the path points to a file.
func IsFile(path string) bool {
	fileInfo, err := os.Stat(path)
	return err == nil && !fileInfo.IsDir()
}

// EnsureDirectory creates a directory at this path if it does not exist, or error if the path exists and is a file.
func EnsureDirectory(path string) error {
	if FileExists(path) && IsFile(path) {
		return errors.New(PathIsNotDirectory{path})
	} else if !FileExists(path) {
		if err := os.MkdirAll(path, 0o755); err != nil {
			return errors.New(err)
		}
	}

	return nil
}

// CanonicalPath returns an absolute, cleaned version of path. Relative paths are resolved against
// basePath and a leading `~` is expanded to the user's home directory.
func CanonicalPath(path string, basePath string) (string, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", errors.New(err)
	}

	if !filepath.IsAbs(expanded) {
		expanded = filepath.Join(basePath, expanded)
	}

	absPath, err := filepath.Abs(expanded)
	if err != nil {
		return "", errors.New(err)
	}

	return filepath.Clean(absPath), nil
}

// GetPathRelativeTo returns the slash-separated path you would have to take to get from basePath to path.
func GetPathRelativeTo(path string, basePath string) (string, error) {
	if path == "" {
		path = "."
	}

	if basePath == "" {
		basePath = "."
	}

	inputFolderAbs, err := filepath.Abs(basePath)
	if err != nil {
		return "", errors.New(err)
	}

	fileAbs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.New(err)
	}

	relPath, err := filepath.Rel(inputFolderAbs, fileAbs)
	if err != nil {
		return "", errors.New(err)
	}

	return filepath.ToSlash(relPath), nil
}

// ReadFileAsString returns the contents of the file at the given path as a string.
func ReadFileAsString(path string) (string, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return "", errors.WithPrefix(err, "error reading file at path %s", path)
	}

	return string(bytes), nil
}

// WriteFileAtomic writes data to a temp file in the destination directory and renames it over
// path, so readers see either the old or the new content and never a partial file.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	return WriteFileAtomicFunc(path, perm, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// WriteFileAtomicFunc is WriteFileAtomic for streamed content. If write fails, the temp file is
// removed and path is left untouched.
func WriteFileAtomicFunc(path string, perm os.FileMode, write func(w io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	if err := EnsureDirectory(dir); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.New(err)
	}

	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			tmp.Close()        //nolint:errcheck
			os.Remove(tmpName) //nolint:errcheck
		}
	}()

	if err = write(tmp); err != nil {
		return errors.New(err)
	}

	if err = tmp.Sync(); err != nil {
		return errors.New(err)
	}

	if err = tmp.Close(); err != nil {
		return errors.New(err)
	}

	if err = os.Chmod(tmpName, perm); err != nil {
		return errors.New(err)
	}

	if err = os.Rename(tmpName, path); err != nil {
		return errors.New(err)
	}

	return nil
}

// JoinPath is filepath.Join with forward slashes in the result.
func JoinPath(elem ...string) string {
	return filepath.ToSlash(filepath.Join(elem...))
}

// CleanPath returns a clean, slash-separated version of path.
func CleanPath(path string) string {
	return filepath.ToSlash(filepath.Clean(path))
}

// HasPathPrefix returns true if path starts with the given directory prefix.
func HasPathPrefix(path, prefix string) bool {
	path, prefix = CleanPath(path), CleanPath(prefix)
	if path == prefix {
		return true
	}

	return strings.HasPrefix(path, strings.TrimSuffix(prefix, "/")+"/")
}

// PathIsNotDirectory is returned when a directory is expected but a file was found.
type PathIsNotDirectory struct {
	path string
}

func (err PathIsNotDirectory) Error() string {
	return fmt.Sprintf("%s is not a directory", err.path)
}
