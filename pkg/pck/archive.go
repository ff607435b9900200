package pck

import (
	"fmt"
	"sort"
)

// Archive はPCK/PKXアーカイブを表します。
// Open に成功した後は読み取り専用で、テーブルは変更されません。
type Archive struct {
	path          string
	companionPath string
	fs            FileSystem

	detection Detection
	table     []TableEntry
	boundary  int

	attempted bool
	opened    bool
}

// NewArchive は OS のファイルシステムを使う Archive を作成します
func NewArchive(path string) *Archive {
	return NewArchiveWithFS(path, OSFileSystem{})
}

// NewArchiveWithFS は指定したファイルシステムを使う Archive を作成します
func NewArchiveWithFS(path string, fsys FileSystem) *Archive {
	return &Archive{
		path:          path,
		companionPath: CompanionPath(path),
		fs:            fsys,
		boundary:      -1,
	}
}

// Path は .pck のパスを返します
func (a *Archive) Path() string {
	return a.path
}

// CompanionPath は .pkx のパスを返します
func (a *Archive) CompanionPath() string {
	return a.companionPath
}

// Open はアーカイブを開いてファイルテーブルを復元します。
// 呼び出せるのは1回だけで、失敗した場合このアーカイブは使用できません。
func (a *Archive) Open() (OpenResult, error) {
	if a.attempted {
		return OpenResult{}, a.wrap("open", ErrAlreadyOpened)
	}
	a.attempted = true

	d := Detection{Split: a.fs.Exists(a.companionPath)}

	r, err := a.openLogical(d.Split)
	if err != nil {
		return OpenResult{}, a.wrap("open", err)
	}
	defer r.Close()

	end := r.Size()
	if d, err = d.withTrailer(r, end); err != nil {
		return OpenResult{}, a.wrap("read trailer", err)
	}
	if d, err = d.withLayout(r, end); err != nil {
		return OpenResult{}, a.wrap("detect layout", err)
	}
	if d, err = d.withHeader(r, end); err != nil {
		return OpenResult{}, a.wrap("read header", err)
	}
	if d, err = d.withDeclaredSize(r.primary); err != nil {
		return OpenResult{}, a.wrap("read header", err)
	}
	d = d.withKey()

	table, err := decodeTable(r, end, int64(d.TableOffset), d.EntryCount, d.Layout, d.Keys)
	if err != nil {
		return OpenResult{}, a.wrap("decode table", err)
	}
	if d.Split {
		sort.SliceStable(table, func(i, j int) bool {
			return table[i].DataOffset < table[j].DataOffset
		})
		a.boundary = spannedIndex(table)
	}

	a.detection = d
	a.table = table
	a.opened = true
	return a.summary(), nil
}

// summary は Open の結果をまとめます
func (a *Archive) summary() OpenResult {
	d := a.detection
	result := OpenResult{
		Version:      FormatVersion(d.RawVersion),
		Layout:       d.Layout,
		EntryCount:   uint32(len(a.table)),
		TitleID:      d.TitleID,
		TitleName:    d.TitleName,
		KeyMatched:   d.KeyMatched,
		Swordsman:    d.Swordsman,
		Split:        d.Split,
		Spanned:      d.Split && countStraddling(a.table) == 1,
		SpannedIndex: a.boundary,
		DeclaredSize: d.DeclaredSize,
		Description:  d.Header.Description,
	}
	for _, e := range a.table {
		result.TotalCompressed += uint64(e.CompressedSize)
		result.TotalDecompressed += uint64(e.DecompressedSize)
	}
	return result
}

// Summary は Open の結果を返します
func (a *Archive) Summary() (OpenResult, error) {
	if !a.opened {
		return OpenResult{}, a.wrap("summary", ErrNotOpened)
	}
	return a.summary(), nil
}

// Entries はファイルテーブルのコピーを返します
func (a *Archive) Entries() []TableEntry {
	entries := make([]TableEntry, len(a.table))
	copy(entries, a.table)
	return entries
}

// Detection は Open で判明した情報を返します
func (a *Archive) Detection() Detection {
	return a.detection
}

// SpannedIndex は境界インデックスを返します。分割されていない場合は -1 です。
func (a *Archive) SpannedIndex() int {
	return a.boundary
}

// EntryLocation はエントリのデータが置かれている物理ファイルを返します
func (a *Archive) EntryLocation(index int) (Location, error) {
	p, err := a.place(index)
	if err != nil {
		return 0, a.wrap("locate", err)
	}
	return p.location, nil
}

func (a *Archive) place(index int) (placement, error) {
	if !a.opened {
		return placement{}, ErrNotOpened
	}
	if index < 0 || index >= len(a.table) {
		return placement{}, fmt.Errorf("%w: %d (entries: %d)", ErrEntryIndex, index, len(a.table))
	}
	return classify(a.table[index], index, a.boundary, a.detection.Split)
}

// openLogical は .pck と、分割されている場合は .pkx を開きます
func (a *Archive) openLogical(split bool) (*logicalReader, error) {
	primary, err := a.fs.Open(a.path)
	if err != nil {
		return nil, err
	}
	r := &logicalReader{primary: primary}
	if split {
		companion, err := a.fs.Open(a.companionPath)
		if err != nil {
			primary.Close()
			return nil, err
		}
		r.companion = companion
	}
	return r, nil
}

func (a *Archive) wrap(op string, err error) error {
	return &ArchiveError{Op: op, Path: a.path, Err: err}
}
