package mocks

import (
	"errors"
	"fmt"

	"github.com/shiroemons/go-unpck/internal/unpck/interfaces"
	"github.com/shiroemons/go-unpck/pkg/pck"
)

var (
	// ErrMockOpenFailed はオープン失敗エラー
	ErrMockOpenFailed = errors.New("mock: failed to open archive")
	// ErrMockExtractFailed は抽出失敗エラー
	ErrMockExtractFailed = errors.New("mock: failed to extract file")
)

// MockArchive はinterfaces.Archiveのモック実装
type MockArchive struct {
	Result       pck.OpenResult
	Table        []pck.TableEntry
	Locations    map[int]pck.Location
	LocationErrs map[int]error
	OpenError    error
	FailEntries  map[int]bool // 抽出に失敗させるエントリ
	Extracted    []int        // 抽出したエントリの番号
	ExtractDirs  []string
	ExtractCalls int
}

// NewMockArchive は新しいMockArchiveを作成
func NewMockArchive(entries ...pck.TableEntry) *MockArchive {
	return &MockArchive{
		Result:      pck.OpenResult{EntryCount: uint32(len(entries)), SpannedIndex: -1},
		Table:       entries,
		Locations:   make(map[int]pck.Location),
		FailEntries: make(map[int]bool),
	}
}

// Open はモック実装
func (m *MockArchive) Open() (pck.OpenResult, error) {
	if m.OpenError != nil {
		return pck.OpenResult{}, m.OpenError
	}
	return m.Result, nil
}

// Entries はモック実装
func (m *MockArchive) Entries() []pck.TableEntry {
	return append([]pck.TableEntry(nil), m.Table...)
}

// EntryLocation はモック実装
func (m *MockArchive) EntryLocation(index int) (pck.Location, error) {
	if index < 0 || index >= len(m.Table) {
		return 0, pck.ErrEntryIndex
	}
	if err := m.LocationErrs[index]; err != nil {
		return 0, err
	}
	return m.Locations[index], nil
}

// Extract はモック実装
func (m *MockArchive) Extract(dir string, opts pck.ExtractOptions) (pck.ExtractResult, error) {
	m.ExtractCalls++
	var result pck.ExtractResult
	for i, entry := range m.Table {
		if m.FailEntries[i] {
			entryErr := &pck.EntryError{Index: i, Path: entry.Path, Err: ErrMockExtractFailed}
			if opts.OnEntry != nil {
				opts.OnEntry(i, entry, entryErr)
			}
			if !opts.ContinueOnError {
				return result, entryErr
			}
			result.Failures = append(result.Failures, entryErr)
			continue
		}
		m.Extracted = append(m.Extracted, i)
		m.ExtractDirs = append(m.ExtractDirs, dir)
		result.FilesWritten++
		if opts.OnEntry != nil {
			opts.OnEntry(i, entry, nil)
		}
	}
	return result, nil
}

// ExtractEntry はモック実装
func (m *MockArchive) ExtractEntry(index int, dir string) error {
	if index < 0 || index >= len(m.Table) {
		return pck.ErrEntryIndex
	}
	if m.FailEntries[index] {
		return &pck.EntryError{Index: index, Path: m.Table[index].Path, Err: ErrMockExtractFailed}
	}
	m.Extracted = append(m.Extracted, index)
	m.ExtractDirs = append(m.ExtractDirs, dir)
	return nil
}

// MockArchiveFactory はテスト用のアーカイブファクトリ
type MockArchiveFactory struct {
	MockArchive *MockArchive
	Paths       []string
}

// NewArchive はモック実装
func (f *MockArchiveFactory) NewArchive(path string) interfaces.Archive {
	f.Paths = append(f.Paths, path)
	if f.MockArchive == nil {
		return &MockArchive{OpenError: fmt.Errorf("%w: %s", ErrMockOpenFailed, path)}
	}
	return f.MockArchive
}
