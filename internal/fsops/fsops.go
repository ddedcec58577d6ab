// Package fsops has small filesystem helpers shared by the installer. All
// operations go through afero so tests can run against an in-memory
// filesystem.
package fsops

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
)

// CheckWritable checks if a directory accepts new files.
func CheckWritable(fs afero.Fs, path string) error {
	testFile := path + "/.write_test"
	f, err := fs.Create(testFile)
	if err != nil {
		return fmt.Errorf("path not writable: %w", err)
	}
	f.Close()
	fs.Remove(testFile)
	return nil
}

// EnsureDir ensures a directory exists with the given permissions.
func EnsureDir(fs afero.Fs, path string, perm os.FileMode) error {
	if err := fs.MkdirAll(path, perm); err != nil {
		return fmt.Errorf("ensure directory: %w", err)
	}
	return nil
}

// Exists checks if a path exists.
func Exists(fs afero.Fs, path string) bool {
	_, err := fs.Stat(path)
	return err == nil
}

// IsDir checks if a path is a directory.
func IsDir(fs afero.Fs, path string) bool {
	info, err := fs.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// CopyFile copies a file from src to dst, preserving nothing but content.
func CopyFile(fs afero.Fs, src, dst string) error {
	content, err := afero.ReadFile(fs, src)
	if err != nil {
		return fmt.Errorf("read source: %w", err)
	}

	info, err := fs.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	if err := afero.WriteFile(fs, dst, content, info.Mode().Perm()); err != nil {
		return fmt.Errorf("write destination: %w", err)
	}
	return nil
}

// SymlinkOrCopy links dst to src when the filesystem supports symlinks,
// copying otherwise. MemMapFs in tests takes the copy path.
func SymlinkOrCopy(fs afero.Fs, src, dst string) error {
	if linker, ok := fs.(afero.Linker); ok {
		if err := linker.SymlinkIfPossible(src, dst); err == nil {
			return nil
		}
	}
	return CopyFile(fs, src, dst)
}
