// Package archive はアーカイブの操作を行います
package archive

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shiroemons/go-unpck/internal/unpck/interfaces"
	"github.com/shiroemons/go-unpck/internal/unpck/models"
	"github.com/shiroemons/go-unpck/pkg/pck"
)

// Extractor はアーカイブからファイルを抽出します
type Extractor struct {
	logger  interfaces.Logger
	factory ArchiveFactory
}

// NewExtractor は新しいExtractorを作成します
func NewExtractor(logger interfaces.Logger) *Extractor {
	return &Extractor{
		logger:  logger,
		factory: &DefaultArchiveFactory{},
	}
}

// NewExtractorWithFactory は新しいExtractorをファクトリー付きで作成します
func NewExtractorWithFactory(logger interfaces.Logger, factory ArchiveFactory) *Extractor {
	return &Extractor{
		logger:  logger,
		factory: factory,
	}
}

// Open はアーカイブを開いてファイルテーブルを読み込みます
func (e *Extractor) Open(ctx context.Context, archivePath string) (interfaces.Archive, pck.OpenResult, error) {
	// コンテキストのキャンセルチェック
	select {
	case <-ctx.Done():
		return nil, pck.OpenResult{}, ctx.Err()
	default:
	}

	e.logger.Printf("アーカイブ %s を開いています...\n", archivePath)
	archive := e.factory.NewArchive(archivePath)
	result, err := archive.Open()
	if err != nil {
		return nil, pck.OpenResult{}, fmt.Errorf("%w: %w", ErrOpenFailed, err)
	}

	e.logger.Printf("レイアウト: %s, バージョン: 0x%X\n", result.Layout, uint32(result.Version))
	e.logger.Printf("タイトルID: %d (%s)\n", result.TitleID, result.TitleName)
	if !result.KeyMatched {
		e.logger.Printf("ガードバイトに一致するタイトルが見つかりませんでした。ID %d のキーで続行します\n", result.TitleID)
	}
	if result.Split {
		e.logger.Printf("分割アーカイブ (.pkx) を検出しました。境界インデックス: %d\n", result.SpannedIndex)
	}

	return archive, result, nil
}

// ExtractFiles はアーカイブのエントリを outputDir に書き出します。
// targets が空の場合はすべてのエントリを抽出します。
func (e *Extractor) ExtractFiles(ctx context.Context, archive interfaces.Archive, outputDir string, targets []string, keepGoing bool) (models.ExtractReport, error) {
	report := models.ExtractReport{OutputDir: outputDir}

	// コンテキストのキャンセルチェック
	select {
	case <-ctx.Done():
		return report, ctx.Err()
	default:
	}

	entries := archive.Entries()
	if len(entries) == 0 {
		return report, ErrNoFilesFound
	}

	if len(targets) == 0 {
		return e.extractAll(archive, outputDir, keepGoing, report)
	}
	return e.extractTargets(ctx, archive, entries, outputDir, targets, keepGoing, report)
}

// extractAll はすべてのエントリを抽出します
func (e *Extractor) extractAll(archive interfaces.Archive, outputDir string, keepGoing bool, report models.ExtractReport) (models.ExtractReport, error) {
	result, err := archive.Extract(outputDir, pck.ExtractOptions{
		ContinueOnError: keepGoing,
		OnEntry: func(index int, entry pck.TableEntry, err error) {
			if err != nil {
				e.logger.Printf("失敗: %s: %v\n", entry.Path, err)
				return
			}
			e.logger.Printf("成功: %s (%d バイト)\n", entry.Path, entry.DecompressedSize)
		},
	})
	report.Written = result.FilesWritten
	report.Failures = result.Failures
	if err != nil {
		return report, fmt.Errorf("%w: %w", ErrExtractFailed, err)
	}
	return report, nil
}

// extractTargets は指定されたエントリだけを抽出します
func (e *Extractor) extractTargets(ctx context.Context, archive interfaces.Archive, entries []pck.TableEntry, outputDir string, targets []string, keepGoing bool, report models.ExtractReport) (models.ExtractReport, error) {
	found := make(map[string]bool, len(targets))

	for i, entry := range entries {
		// コンテキストのキャンセルチェック
		select {
		case <-ctx.Done():
			return report, ctx.Err()
		default:
		}

		target, ok := matchTarget(entry, targets)
		if !ok {
			continue
		}
		found[target] = true

		if err := archive.ExtractEntry(i, outputDir); err != nil {
			e.logger.Printf("失敗: %s: %v\n", entry.Path, err)
			if !keepGoing {
				return report, fmt.Errorf("%w: %s: %w", ErrExtractFailed, entry.Path, err)
			}
			var entryErr *pck.EntryError
			if !errors.As(err, &entryErr) {
				entryErr = &pck.EntryError{Index: i, Path: entry.Path, Err: err}
			}
			report.Failures = append(report.Failures, entryErr)
			continue
		}
		report.Written++
		e.logger.Printf("成功: %s (%d バイト)\n", entry.Path, entry.DecompressedSize)
	}

	for _, target := range targets {
		if !found[target] {
			report.NotFound = append(report.NotFound, target)
		}
	}
	return report, nil
}

// matchTarget はエントリが抽出対象に含まれるか調べます。
// 区切り文字は '/' と '\' のどちらでもよく、大文字小文字は区別しません。
func matchTarget(entry pck.TableEntry, targets []string) (string, bool) {
	for _, target := range targets {
		if strings.EqualFold(entry.Path, strings.ReplaceAll(target, "/", `\`)) {
			return target, true
		}
	}
	return "", false
}
