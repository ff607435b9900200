// Package models はunpckコマンドで使用するデータモデルを定義します
package models

import "github.com/shiroemons/go-unpck/pkg/pck"

// ExtractReport は抽出処理の結果を表します
type ExtractReport struct {
	OutputDir string
	Written   int
	Failures  []*pck.EntryError
	NotFound  []string // アーカイブ内に見つからなかった抽出対象
}

// Failed は失敗したエントリがあるかを返します
func (r ExtractReport) Failed() bool {
	return len(r.Failures) > 0
}

// EntryRow は一覧表示の1行です
type EntryRow struct {
	Index            int
	Path             string
	CompressedSize   uint32
	DecompressedSize uint32
	Location         string
}
