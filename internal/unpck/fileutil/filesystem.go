package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/shiroemons/go-unpck/internal/unpck/interfaces"
)

// OSFileSystem は実際のOSファイルシステムを使用する実装
type OSFileSystem struct{}

// NewOSFileSystem は新しいOSFileSystemを作成します
func NewOSFileSystem() *OSFileSystem {
	return &OSFileSystem{}
}

// FileExists はファイルが存在するか確認します
func (fs *OSFileSystem) FileExists(filename string) bool {
	_, err := os.Stat(filename)
	return err == nil
}

// ReadDir はディレクトリを読み込みます
func (fs *OSFileSystem) ReadDir(dirname string) ([]interfaces.DirEntry, error) {
	entries, err := os.ReadDir(dirname)
	if err != nil {
		return nil, err
	}

	result := make([]interfaces.DirEntry, len(entries))
	for i, entry := range entries {
		result[i] = entry
	}
	return result, nil
}

// Getwd は現在の作業ディレクトリを取得します
func (fs *OSFileSystem) Getwd() (string, error) {
	return os.Getwd()
}

// Executable は実行ファイルのパスを取得します
func (fs *OSFileSystem) Executable() (string, error) {
	return os.Executable()
}

// PckFileFinderWithFS は.pckファイルの検索を行います（FileSystemを使用）
type PckFileFinderWithFS struct {
	fs interfaces.FileSystem
}

// NewPckFileFinderWithFS は新しいPckFileFinderWithFSを作成します
func NewPckFileFinderWithFS(fs interfaces.FileSystem) *PckFileFinderWithFS {
	return &PckFileFinderWithFS{fs: fs}
}

// NewPckFileFinder はOSファイルシステムを使うPckFileFinderWithFSを作成します
func NewPckFileFinder() *PckFileFinderWithFS {
	return NewPckFileFinderWithFS(NewOSFileSystem())
}

// Find はカレントディレクトリ、次に実行ファイルのディレクトリから.pckファイルを検索します
// 見つからない場合は空文字列を返します
func (f *PckFileFinderWithFS) Find() (string, error) {
	currentDir, err := f.fs.Getwd()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGetCurrentDirectory, err)
	}

	pckFiles, err := f.findInDir(currentDir)
	if err != nil {
		return "", err
	}
	if len(pckFiles) == 0 {
		execPath, err := f.fs.Executable()
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrGetExecutablePath, err)
		}

		execDir := filepath.Dir(execPath)
		if execDir != currentDir {
			pckFiles, err = f.findInDir(execDir)
			if err != nil {
				return "", err
			}
		}
	}

	switch len(pckFiles) {
	case 0:
		return "", nil
	case 1:
		return pckFiles[0], nil
	default:
		return "", f.createMultipleFilesError(pckFiles)
	}
}

// findInDir は指定されたディレクトリ内の.pckファイルを検索します
func (f *PckFileFinderWithFS) findInDir(dir string) ([]string, error) {
	files, err := f.fs.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrReadDirectory, dir, err)
	}

	var pckFiles []string
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		if PckFilePattern.MatchString(file.Name()) {
			pckFiles = append(pckFiles, filepath.Join(dir, file.Name()))
		}
	}
	sort.Strings(pckFiles)

	return pckFiles, nil
}

// createMultipleFilesError は複数の.pckファイルが見つかった場合のエラーを生成します
func (f *PckFileFinderWithFS) createMultipleFilesError(pckFiles []string) error {
	fileNames := make([]string, len(pckFiles))
	for i, path := range pckFiles {
		fileNames[i] = filepath.Base(path)
	}
	return fmt.Errorf("%w (%s)", ErrMultiplePckFiles, strings.Join(fileNames, ", "))
}
