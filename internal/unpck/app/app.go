// Package app はアプリケーションのメインロジックを実装します
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/shiroemons/go-unpck/internal/unpck/archive"
	"github.com/shiroemons/go-unpck/internal/unpck/config"
	"github.com/shiroemons/go-unpck/internal/unpck/fileutil"
	"github.com/shiroemons/go-unpck/internal/unpck/interfaces"
	"github.com/shiroemons/go-unpck/internal/unpck/models"
	"github.com/shiroemons/go-unpck/pkg/pck"
)

// App はアプリケーションのメインロジックを管理します
type App struct {
	config        *config.Config
	logger        *config.DebugLogger
	extractor     interfaces.Extractor
	pckFileFinder interfaces.PckFileFinder
	out           io.Writer
}

// Options はAppの設定オプション
type Options struct {
	Extractor     interfaces.Extractor
	PckFileFinder interfaces.PckFileFinder
	Output        io.Writer
}

// New は新しいAppを作成します
func New(cfg *config.Config) *App {
	return NewWithOptions(cfg, Options{})
}

// NewWithOptions は新しいAppをオプション付きで作成します
func NewWithOptions(cfg *config.Config, opts Options) *App {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	logger := config.NewDebugLoggerWithWriter(cfg.DebugMode, out)

	var extractor interfaces.Extractor
	if opts.Extractor != nil {
		extractor = opts.Extractor
	} else {
		extractor = archive.NewExtractor(logger)
	}

	var pckFileFinder interfaces.PckFileFinder
	if opts.PckFileFinder != nil {
		pckFileFinder = opts.PckFileFinder
	} else {
		pckFileFinder = fileutil.NewPckFileFinder()
	}

	return &App{
		config:        cfg,
		logger:        logger,
		extractor:     extractor,
		pckFileFinder: pckFileFinder,
		out:           out,
	}
}

// Run はアプリケーションを実行します
func (a *App) Run(ctx context.Context) error {
	archivePath, err := a.resolveArchivePath(ctx)
	if err != nil {
		return err
	}

	arc, result, err := a.extractor.Open(ctx, archivePath)
	if err != nil {
		return err
	}

	a.printSummary(archivePath, result)

	if a.config.List {
		rows, err := a.listEntries(arc)
		if err != nil {
			return err
		}
		a.printEntries(rows)
	}

	if !a.config.ExtractRequested() {
		return nil
	}

	outputDir := a.config.OutputDir
	if outputDir == "" {
		outputDir = fileutil.DefaultOutputDir(archivePath)
	}

	report, err := a.extractor.ExtractFiles(ctx, arc, outputDir, a.config.Targets, a.config.KeepGoing)
	if err != nil {
		return err
	}
	return a.printReport(report)
}

// resolveArchivePath は指定されたアーカイブ、または自動検出したアーカイブのパスを返します
func (a *App) resolveArchivePath(ctx context.Context) (string, error) {
	// コンテキストのキャンセルチェック
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	if a.config.ArchivePath != "" {
		return a.config.ArchivePath, nil
	}

	pckFile, err := a.pckFileFinder.Find()
	if err != nil {
		return "", err
	}
	if pckFile == "" {
		return "", ErrNoArchive
	}
	a.logger.Printf("自動検出したアーカイブファイル %s を使用します\n", filepath.Base(pckFile))
	return pckFile, nil
}

// printSummary はアーカイブの概要を表示します
func (a *App) printSummary(archivePath string, result pck.OpenResult) {
	fmt.Fprintf(a.out, "アーカイブ: %s\n", archivePath)
	fmt.Fprintf(a.out, "タイトル: %s (ID %d)\n", result.TitleName, result.TitleID)
	fmt.Fprintf(a.out, "形式: %s (バージョン 0x%X)\n", result.Layout, uint32(result.Version))
	fmt.Fprintf(a.out, "エントリ数: %d\n", result.EntryCount)
	fmt.Fprintf(a.out, "合計サイズ: 圧縮 %d バイト / 展開 %d バイト\n", result.TotalCompressed, result.TotalDecompressed)
	if result.Split {
		fmt.Fprintf(a.out, "分割アーカイブ: %s あり (境界インデックス %d)\n", pck.CompanionExt, result.SpannedIndex)
		if result.Spanned {
			fmt.Fprintln(a.out, "境界をまたぐエントリ: あり")
		}
	}
	if result.Description != "" {
		fmt.Fprintf(a.out, "説明: %s\n", result.Description)
	}
}

// listEntries は一覧表示用の行を作成します
func (a *App) listEntries(arc interfaces.Archive) ([]models.EntryRow, error) {
	entries := arc.Entries()
	rows := make([]models.EntryRow, 0, len(entries))
	for i, entry := range entries {
		row := models.EntryRow{
			Index:            i,
			Path:             entry.Path,
			CompressedSize:   entry.CompressedSize,
			DecompressedSize: entry.DecompressedSize,
		}
		loc, err := arc.EntryLocation(i)
		switch {
		case errors.Is(err, pck.ErrBoundaryMismatch):
			// 抽出時にエラーになるが、一覧には載せる
			a.logger.Printf("境界の不一致: %s: %v\n", entry.Path, err)
			row.Location = "?"
		case err != nil:
			return nil, fmt.Errorf("%w: %w", ErrListEntries, err)
		default:
			row.Location = loc.String()
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// printEntries はエントリ一覧を表示します
func (a *App) printEntries(rows []models.EntryRow) {
	fmt.Fprintf(a.out, "%6s %10s %10s %-8s %s\n", "#", "圧縮", "展開", "位置", "パス")
	for _, row := range rows {
		fmt.Fprintf(a.out, "%6d %10d %10d %-8s %s\n", row.Index, row.CompressedSize, row.DecompressedSize, row.Location, row.Path)
	}
}

// printReport は抽出結果を表示します
func (a *App) printReport(report models.ExtractReport) error {
	fmt.Fprintf(a.out, "%d 個のファイルを %s に抽出しました\n", report.Written, report.OutputDir)

	for _, target := range report.NotFound {
		fmt.Fprintf(a.out, "警告: %s はアーカイブ内に見つかりませんでした\n", target)
	}

	if report.Failed() {
		for _, f := range report.Failures {
			fmt.Fprintf(a.out, "失敗: %v\n", f)
		}
		return fmt.Errorf("%w: %d 件", ErrExtractIncomplete, len(report.Failures))
	}
	return nil
}
