package pck

import (
	"fmt"
	"path/filepath"

	"github.com/shiroemons/go-unpck/pkg/crypto"
)

// Extract はすべてのエントリを dir 以下に書き出します。
// エントリはテーブルの順に処理され、既存のファイルは上書きされます。
// ContinueOnError が false の場合は最初に失敗したエントリの *EntryError を返します。
func (a *Archive) Extract(dir string, opts ExtractOptions) (ExtractResult, error) {
	var result ExtractResult
	if !a.opened {
		return result, a.wrap("extract", ErrNotOpened)
	}
	if err := a.fs.MkdirAll(dir, 0o755); err != nil {
		return result, a.wrap("extract", err)
	}

	for i := range a.table {
		entryErr := a.extractEntry(i, dir)
		if entryErr == nil {
			result.FilesWritten++
			if opts.OnEntry != nil {
				opts.OnEntry(i, a.table[i], nil)
			}
			continue
		}

		if opts.OnEntry != nil {
			opts.OnEntry(i, a.table[i], entryErr)
		}
		if !opts.ContinueOnError {
			return result, entryErr
		}
		result.Failures = append(result.Failures, entryErr)
	}

	return result, nil
}

// ExtractEntry は1つのエントリを dir 以下に書き出します
func (a *Archive) ExtractEntry(index int, dir string) error {
	if !a.opened {
		return a.wrap("extract", ErrNotOpened)
	}
	if index < 0 || index >= len(a.table) {
		return a.wrap("extract", fmt.Errorf("%w: %d (entries: %d)", ErrEntryIndex, index, len(a.table)))
	}
	if err := a.extractEntry(index, dir); err != nil {
		return err
	}
	return nil
}

// ReadEntry はエントリを解凍したバイト列を返します
func (a *Archive) ReadEntry(index int) ([]byte, error) {
	if !a.opened {
		return nil, a.wrap("read", ErrNotOpened)
	}
	if index < 0 || index >= len(a.table) {
		return nil, a.wrap("read", fmt.Errorf("%w: %d (entries: %d)", ErrEntryIndex, index, len(a.table)))
	}
	data, err := a.readEntry(index)
	if err != nil {
		return nil, a.entryError(index, err)
	}
	return data, nil
}

func (a *Archive) extractEntry(index int, dir string) *EntryError {
	entry := a.table[index]

	target, err := entryTarget(dir, entry)
	if err != nil {
		return a.entryError(index, err)
	}

	data, err := a.readEntry(index)
	if err != nil {
		return a.entryError(index, err)
	}

	if err := a.fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return a.entryError(index, err)
	}
	if err := a.fs.WriteFile(target, data, 0o644); err != nil {
		return a.entryError(index, err)
	}
	return nil
}

// readEntry は物理ファイルを開いてエントリを読み込み、必要なら解凍します
func (a *Archive) readEntry(index int) ([]byte, error) {
	entry := a.table[index]

	if entry.IsCompressed() && a.detection.Swordsman && !a.detection.Split {
		return nil, ErrUnsupportedVariant
	}

	p, err := classify(entry, index, a.boundary, a.detection.Split)
	if err != nil {
		return nil, err
	}

	raw, err := a.readPhysical(p)
	if err != nil {
		return nil, err
	}

	if !entry.IsCompressed() {
		return raw, nil
	}
	data, err := crypto.Inflate(raw, int(entry.DecompressedSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecompression, err)
	}
	return data, nil
}

// readPhysical は必要な物理ファイルだけを開き、読み終えたら閉じます
func (a *Archive) readPhysical(p placement) ([]byte, error) {
	var primary, companion File
	if p.location != InCompanion {
		f, err := a.fs.Open(a.path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		primary = f
	}
	if p.location != InPrimary {
		f, err := a.fs.Open(a.companionPath)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		companion = f
	}
	return readPlaced(primary, companion, p)
}

func (a *Archive) entryError(index int, err error) *EntryError {
	return &EntryError{Index: index, Path: a.table[index].Path, Err: err}
}

// entryTarget はエントリの書き出し先を返します。
// 絶対パスや ".." で dir の外を指すパスは ErrUnsafePath です。
func entryTarget(dir string, entry TableEntry) (string, error) {
	rel := filepath.FromSlash(entry.SlashPath())
	if !filepath.IsLocal(rel) {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, entry.Path)
	}
	return filepath.Join(dir, rel), nil
}
