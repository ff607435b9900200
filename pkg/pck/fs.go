package pck

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/exp/mmap"
)

// FileSystem はアーカイブの読み込みと抽出先への書き込みに使うファイルシステムです
type FileSystem interface {
	Open(name string) (File, error)
	Exists(name string) bool
	MkdirAll(path string, perm os.FileMode) error
	WriteFile(name string, data []byte, perm os.FileMode) error
}

// File はランダムアクセス可能な読み込み専用ファイルです
type File interface {
	io.ReaderAt
	io.Closer
	Size() int64
}

// OSFileSystem は実際のOSファイルシステムを使用する実装
type OSFileSystem struct{}

// Open はファイルを読み込み専用でメモリにマップします
func (OSFileSystem) Open(name string) (File, error) {
	r, err := mmap.Open(name)
	if err != nil {
		return nil, err
	}
	return &mappedFile{ReaderAt: r}, nil
}

// Exists は通常ファイルが存在するか確認します
func (OSFileSystem) Exists(name string) bool {
	info, err := os.Stat(name)
	return err == nil && info.Mode().IsRegular()
}

// MkdirAll はディレクトリを作成します
func (OSFileSystem) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

// WriteFile はファイルを書き込みます（既存のファイルは上書き）
func (OSFileSystem) WriteFile(name string, data []byte, perm os.FileMode) error {
	return os.WriteFile(name, data, perm)
}

type mappedFile struct {
	*mmap.ReaderAt
}

func (f *mappedFile) Size() int64 {
	return int64(f.Len())
}

// CompanionPath は .pck のパスから対応する .pkx のパスを返します
func CompanionPath(primaryPath string) string {
	ext := filepath.Ext(primaryPath)
	return strings.TrimSuffix(primaryPath, ext) + CompanionExt
}
