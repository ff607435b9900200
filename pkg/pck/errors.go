package pck

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedVersion はバージョンが不明で Swordsman 形式でもない場合のエラー
	ErrUnsupportedVersion = errors.New("unsupported archive version")

	// ErrTruncatedArchive はヘッダやトレーラを読むにはファイルが短すぎる場合のエラー
	ErrTruncatedArchive = errors.New("archive is too small")

	// ErrTableDecode はファイルテーブルの復元に失敗した場合のエラー
	ErrTableDecode = errors.New("file table decode failed")

	// ErrDecompression はエントリの解凍に失敗した場合のエラー
	ErrDecompression = errors.New("entry decompression failed")

	// ErrUnsupportedVariant は未対応の形式（単一ファイルの Swordsman 圧縮エントリ）のエラー
	ErrUnsupportedVariant = errors.New("not implemented for this archive variant")

	// ErrBoundaryMismatch は境界インデックスによる分類がオフセットと矛盾する場合のエラー
	ErrBoundaryMismatch = errors.New("entry offset does not match the pck/pkx boundary")

	// ErrUnsafePath はエントリのパスが出力先の外を指す場合のエラー
	ErrUnsafePath = errors.New("entry path escapes the destination")

	// ErrNotOpened は Open 前に操作した場合のエラー
	ErrNotOpened = errors.New("archive is not opened")

	// ErrAlreadyOpened は Open を2回呼んだ場合のエラー
	ErrAlreadyOpened = errors.New("archive is already opened")

	// ErrEntryIndex はエントリ番号が範囲外の場合のエラー
	ErrEntryIndex = errors.New("entry index out of range")
)

// ArchiveError はアーカイブ単位の操作のエラー
type ArchiveError struct {
	Op   string // 実行していた操作
	Path string // アーカイブのパス
	Err  error  // 元のエラー
}

// Error はエラーメッセージを返します
func (e *ArchiveError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap は元のエラーを返します
func (e *ArchiveError) Unwrap() error {
	return e.Err
}

// EntryError はエントリ単位の抽出エラー
type EntryError struct {
	Index int    // テーブル上の位置
	Path  string // エントリのパス
	Err   error  // 元のエラー
}

// Error はエラーメッセージを返します
func (e *EntryError) Error() string {
	return fmt.Sprintf("entry %d (%s): %v", e.Index, e.Path, e.Err)
}

// Unwrap は元のエラーを返します
func (e *EntryError) Unwrap() error {
	return e.Err
}
