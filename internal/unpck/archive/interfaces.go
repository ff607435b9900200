package archive

import (
	"github.com/shiroemons/go-unpck/internal/unpck/interfaces"
	"github.com/shiroemons/go-unpck/pkg/pck"
)

// ArchiveFactory はアーカイブインスタンスを生成するインターフェース
type ArchiveFactory interface {
	NewArchive(path string) interfaces.Archive
}

// DefaultArchiveFactory はOSのファイルシステムを使うアーカイブファクトリ実装
type DefaultArchiveFactory struct{}

func (f *DefaultArchiveFactory) NewArchive(path string) interfaces.Archive {
	return pck.NewArchive(path)
}
