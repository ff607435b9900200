package app

import "errors"

var (
	// ErrNoArchive はアーカイブが指定されず自動検出でも見つからなかった場合のエラー
	ErrNoArchive = errors.New(".pckファイルが見つかりません。-archive フラグまたは引数でアーカイブを指定してください")

	// ErrListEntries はエントリ一覧の作成に失敗した場合のエラー
	ErrListEntries = errors.New("エントリ一覧の作成に失敗しました")

	// ErrExtractIncomplete は一部のエントリを抽出できなかった場合のエラー
	ErrExtractIncomplete = errors.New("一部のエントリを抽出できませんでした")
)
