// Package interfaces はunpckコマンドで使用するインターフェースを定義します
package interfaces

import (
	"context"

	"github.com/shiroemons/go-unpck/internal/unpck/models"
	"github.com/shiroemons/go-unpck/pkg/pck"
)

// FileSystem はファイルシステム操作のインターフェース
type FileSystem interface {
	FileExists(filename string) bool
	ReadDir(dirname string) ([]DirEntry, error)
	Getwd() (string, error)
	Executable() (string, error)
}

// DirEntry はディレクトリエントリのインターフェース
type DirEntry interface {
	Name() string
	IsDir() bool
}

// Archive は開いたPCKアーカイブの操作のインターフェース
type Archive interface {
	Open() (pck.OpenResult, error)
	Entries() []pck.TableEntry
	EntryLocation(index int) (pck.Location, error)
	Extract(dir string, opts pck.ExtractOptions) (pck.ExtractResult, error)
	ExtractEntry(index int, dir string) error
}

// Extractor はアーカイブを開いてファイルを抽出するインターフェースです
type Extractor interface {
	Open(ctx context.Context, archivePath string) (Archive, pck.OpenResult, error)
	ExtractFiles(ctx context.Context, archive Archive, outputDir string, targets []string, keepGoing bool) (models.ExtractReport, error)
}

// PckFileFinder は.pckファイルを検索するインターフェースです
type PckFileFinder interface {
	Find() (string, error)
}

// Logger はログ出力のインターフェース
type Logger interface {
	Printf(format string, a ...any)
}
