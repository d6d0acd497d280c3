package orchestrator

import (
	"bufio"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// FileSystem is the file system capability available to operations.
type FileSystem interface {
	Exists(path string) (bool, error)
	MkdirAll(path string, mode os.FileMode) error
	Touch(path string) error
	Copy(sourcePath string, destinationPath string) error
	Chmod(path string, mode os.FileMode) error
	ReadLines(path string) ([]string, error)
	WriteFile(path string, content []byte, mode os.FileMode) error
	AppendFile(path string, content []byte) error
}

// AferoFileSystem implements FileSystem over an afero file system.
type AferoFileSystem struct {
	fileSystem afero.Fs
}

// NewAferoFileSystem wraps the provided afero file system.
func NewAferoFileSystem(fileSystem afero.Fs) *AferoFileSystem {
	if fileSystem == nil {
		fileSystem = afero.NewOsFs()
	}
	return &AferoFileSystem{fileSystem: fileSystem}
}

// NewOSFileSystem returns a FileSystem backed by the operating system.
func NewOSFileSystem() *AferoFileSystem {
	return NewAferoFileSystem(afero.NewOsFs())
}

// Exists reports whether a file or directory exists at path.
func (fileSystem *AferoFileSystem) Exists(path string) (bool, error) {
	return afero.Exists(fileSystem.fileSystem, path)
}

// MkdirAll creates path and any missing parents.
func (fileSystem *AferoFileSystem) MkdirAll(path string, mode os.FileMode) error {
	return fileSystem.fileSystem.MkdirAll(path, mode)
}

// Touch creates an empty file or updates the modification time of an existing one.
func (fileSystem *AferoFileSystem) Touch(path string) error {
	exists, existsError := afero.Exists(fileSystem.fileSystem, path)
	if existsError != nil {
		return existsError
	}
	if exists {
		now := time.Now()
		return fileSystem.fileSystem.Chtimes(path, now, now)
	}
	file, createError := fileSystem.fileSystem.Create(path)
	if createError != nil {
		return createError
	}
	return file.Close()
}

// Copy duplicates the source file, preserving its permission bits.
func (fileSystem *AferoFileSystem) Copy(sourcePath string, destinationPath string) error {
	sourceInfo, statError := fileSystem.fileSystem.Stat(sourcePath)
	if statError != nil {
		return statError
	}
	content, readError := afero.ReadFile(fileSystem.fileSystem, sourcePath)
	if readError != nil {
		return readError
	}
	if directoryError := fileSystem.fileSystem.MkdirAll(filepath.Dir(destinationPath), defaultDirectoryModeConstant); directoryError != nil {
		return directoryError
	}
	return afero.WriteFile(fileSystem.fileSystem, destinationPath, content, sourceInfo.Mode().Perm())
}

// Chmod changes the permission bits of path.
func (fileSystem *AferoFileSystem) Chmod(path string, mode os.FileMode) error {
	return fileSystem.fileSystem.Chmod(path, mode)
}

// ReadLines returns the file content split into lines without trailing newlines.
func (fileSystem *AferoFileSystem) ReadLines(path string) ([]string, error) {
	content, readError := afero.ReadFile(fileSystem.fileSystem, path)
	if readError != nil {
		return nil, readError
	}
	lines := make([]string, 0)
	scanner := bufio.NewScanner(bytes.NewReader(content))
	for scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), "\r"))
	}
	if scanError := scanner.Err(); scanError != nil {
		return nil, scanError
	}
	return lines, nil
}

// WriteFile replaces the file content.
func (fileSystem *AferoFileSystem) WriteFile(path string, content []byte, mode os.FileMode) error {
	if mode == 0 {
		mode = defaultFileModeConstant
	}
	return afero.WriteFile(fileSystem.fileSystem, path, content, mode)
}

// AppendFile appends content to an existing file.
func (fileSystem *AferoFileSystem) AppendFile(path string, content []byte) error {
	file, openError := fileSystem.fileSystem.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0)
	if openError != nil {
		return openError
	}
	_, writeError := file.Write(content)
	closeError := file.Close()
	return errors.Join(writeError, closeError)
}

func applyFilesystemOperation(fileSystem FileSystem, operation FilesystemOperation) error {
	switch operation.Kind {
	case FilesystemMkdir:
		mode := operation.Mode
		if mode == 0 {
			mode = defaultDirectoryModeConstant
		}
		return fileSystem.MkdirAll(operation.Path, mode)
	case FilesystemTouch:
		return fileSystem.Touch(operation.Path)
	case FilesystemCopy:
		return fileSystem.Copy(operation.SourcePath, operation.Path)
	case FilesystemChmod:
		return fileSystem.Chmod(operation.Path, operation.Mode)
	case FilesystemAppend:
		return fileSystem.AppendFile(operation.Path, operation.Content)
	case FilesystemWrite:
		return fileSystem.WriteFile(operation.Path, operation.Content, operation.Mode)
	default:
		return ErrUnsupportedFilesystemOperation
	}
}
