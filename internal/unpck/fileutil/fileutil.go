// Package fileutil はファイル操作のユーティリティ関数を提供します
package fileutil

import (
	"path/filepath"
	"regexp"
	"strings"
)

var (
	// PckFilePattern は .pck ファイルのパターン（大文字小文字を区別しない）
	PckFilePattern = regexp.MustCompile(`(?i)^[^.].*\.pck$`)
)

// DefaultOutputDir はアーカイブのパスから拡張子を除いた出力先ディレクトリを返します
func DefaultOutputDir(archivePath string) string {
	return strings.TrimSuffix(archivePath, filepath.Ext(archivePath))
}
