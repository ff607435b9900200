// Package pck はPCK/PKXアーカイブ（Angelicaエンジン系MMOのゲームデータ）を読み込むためのパッケージです。
//
// サポートするアーカイブ形式:
//   - Legacy: バージョン 0x20002
//   - Extended: バージョン 0x20003
//   - SpannedTitle: Swordsman Online（バージョンフィールドなし）
//
// 2GiBを超えるアーカイブは .pck と .pkx の2ファイルに分割され、
// 両者を通した1つの論理アドレス空間を持ちます。
//
// 基本的な使い方:
//
//	archive := pck.NewArchive("models.pck")
//	result, err := archive.Open()
//	if err != nil {
//	    return err
//	}
//	fmt.Println(result.TitleName, result.EntryCount)
//	if _, err := archive.Extract("models", pck.ExtractOptions{}); err != nil {
//	    return err
//	}
package pck

import (
	"path"
	"strings"
)

// FormatVersion はアーカイブ末尾に記録されたバージョン番号です
type FormatVersion uint32

const (
	// VersionLegacy は32ビットオフセットの旧形式
	VersionLegacy FormatVersion = 0x20002

	// VersionExtended は64ビットフィールドを持つ拡張形式
	VersionExtended FormatVersion = 0x20003
)

// Layout はヘッダレコードの物理レイアウトです
type Layout int

const (
	LayoutLegacy       Layout = iota // 0x20002
	LayoutExtended                   // 0x20003
	LayoutSpannedTitle               // Swordsman Online
)

// String はレイアウト名を返します
func (l Layout) String() string {
	switch l {
	case LayoutLegacy:
		return "Legacy"
	case LayoutExtended:
		return "Extended"
	case LayoutSpannedTitle:
		return "SpannedTitle"
	default:
		return "Unknown"
	}
}

const (
	// SpanThreshold は .pck と .pkx の境界となる論理オフセット (2^31 - 256)
	SpanThreshold = 0x7FFFFF00

	// CompanionExt は分割アーカイブの片割れの拡張子
	CompanionExt = ".pkx"
)

// TableEntry はファイルテーブルの1エントリを表します
type TableEntry struct {
	Path             string // '\' 区切りの相対パス
	DataOffset       uint32 // 論理アドレス空間でのオフセット
	CompressedSize   uint32
	DecompressedSize uint32
}

// IsCompressed はエントリが圧縮されているかを返します
func (e TableEntry) IsCompressed() bool {
	return e.CompressedSize < e.DecompressedSize
}

// SlashPath はパスを '/' 区切りで返します
func (e TableEntry) SlashPath() string {
	return strings.ReplaceAll(e.Path, `\`, "/")
}

// Dir はエントリの親ディレクトリを '/' 区切りで返します。親がなければ空文字列です。
func (e TableEntry) Dir() string {
	dir := path.Dir(e.SlashPath())
	if dir == "." {
		return ""
	}
	return dir
}

// Location はエントリのデータが置かれている物理ファイルです
type Location int

const (
	InPrimary   Location = iota // .pck のみ
	InCompanion                 // .pkx のみ
	Spanning                    // .pck と .pkx にまたがる
)

// String は配置場所の名前を返します
func (l Location) String() string {
	switch l {
	case InPrimary:
		return "pck"
	case InCompanion:
		return "pkx"
	case Spanning:
		return "pck+pkx"
	default:
		return "unknown"
	}
}

// OpenResult は Open の結果の要約です
type OpenResult struct {
	Version           FormatVersion // SpannedTitle では末尾の生の値
	Layout            Layout
	EntryCount        uint32
	TitleID           uint32
	TitleName         string
	KeyMatched        bool // ガードバイトに一致するタイトルIDが見つかったか
	Swordsman         bool
	Split             bool
	Spanned           bool
	SpannedIndex      int
	TotalCompressed   uint64
	TotalDecompressed uint64
	DeclaredSize      uint64
	Description       string
}

// ExtractOptions は Extract の動作を指定します
type ExtractOptions struct {
	// ContinueOnError が true の場合、エントリ単位の失敗を記録して残りを続行します。
	// false の場合は最初の失敗で中断します。
	ContinueOnError bool

	// OnEntry はエントリを1つ処理するたびに呼ばれます。成功した場合 err は nil です。
	OnEntry func(index int, entry TableEntry, err error)
}

// ExtractResult は Extract の結果です
type ExtractResult struct {
	FilesWritten int
	Failures     []*EntryError
}
