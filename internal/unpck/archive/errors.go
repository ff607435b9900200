package archive

import "errors"

var (
	// ErrOpenFailed はアーカイブを開けなかった場合のエラー
	ErrOpenFailed = errors.New("アーカイブを開けませんでした")

	// ErrExtractFailed はファイルの展開に失敗した場合のエラー
	ErrExtractFailed = errors.New("ファイルの展開に失敗しました")

	// ErrNoFilesFound はアーカイブ内にファイルが見つからない場合のエラー
	ErrNoFilesFound = errors.New("アーカイブ内にファイルが見つかりません")
)
