// Package filesys holds the one file system primitive the engine's
// lifecycle actually touches: making sure the data directory it opens
// into exists before any page file is created underneath it.
package filesys

import (
	"errors"
	"os"

	gerrors "github.com/chlohal/geostore/pkg/errors"
)

var (
	ErrIsNotDir = errors.New("path isn't a directory")
)

// CreateDir ensures dirPath exists as a directory with permission.
//
// If the path already exists:
//   - force true: treat it as fine and carry on.
//   - force false: return the stat error as-is and create nothing (nil
//     for an existing directory, which is left untouched).
//
// An existing path that isn't a directory is always an error,
// regardless of force.
func CreateDir(dirPath string, permission os.FileMode, force bool) error {
	stat, err := os.Stat(dirPath)
	if stat != nil && !stat.IsDir() {
		return ErrIsNotDir
	}

	if !force && !os.IsNotExist(err) {
		return err
	}

	if err := os.MkdirAll(dirPath, permission); err != nil {
		return gerrors.ClassifyDirectoryCreationError(err, dirPath)
	}

	return os.Chmod(dirPath, permission)
}
