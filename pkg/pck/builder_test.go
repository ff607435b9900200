package pck

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/klauspost/compress/flate"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"

	"github.com/shiroemons/go-unpck/pkg/crypto"
)

// fixtureEntry はテスト用アーカイブに格納するエントリ
type fixtureEntry struct {
	path     string
	data     []byte
	compress bool
	offset   int64  // 論理オフセット。0 の場合は直前のエントリの直後
	rawSize  uint32 // 0 以外なら解凍後サイズを上書き
}

// fixture はテスト用アーカイブの生成条件
type fixture struct {
	layout       Layout
	titleID      uint32
	sign         uint32 // SpannedTitle の識別値
	split        bool
	description  string
	storeRecords bool   // テーブルレコードを無圧縮で格納する
	guardEnd     uint32 // 0 以外ならガードバイト末尾を上書き
	entries      []fixtureEntry
}

// builtArchive は生成したアーカイブの論理イメージ
type builtArchive struct {
	chunks      []memChunk
	end         int64
	tableOffset int64
	expected    []TableEntry // テーブルに書いた順
}

// deflateWithPrefix は2バイトの前置きを付けて raw deflate で圧縮します
func deflateWithPrefix(t *testing.T, plain []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.Write([]byte{0x78, 0xDA})
	w, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		t.Fatalf("flate.NewWriter() error = %v", err)
	}
	if _, err := w.Write(plain); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	return buf.Bytes()
}

func gbk(t *testing.T, s string) []byte {
	t.Helper()
	out, _, err := transform.Bytes(simplifiedchinese.GBK.NewEncoder(), []byte(s))
	if err != nil {
		t.Fatalf("GBK encode %q: %v", s, err)
	}
	return out
}

func (f fixture) keys() crypto.KeySet {
	if f.layout == LayoutSpannedTitle {
		return crypto.DeriveKeySet(swordsmanTitleID)
	}
	return crypto.DeriveKeySet(f.titleID)
}

func (f fixture) version() uint32 {
	switch f.layout {
	case LayoutLegacy:
		return uint32(VersionLegacy)
	case LayoutExtended:
		return uint32(VersionExtended)
	default:
		return 0
	}
}

// build はアーカイブの論理イメージを生成します
func (f fixture) build(t *testing.T) builtArchive {
	t.Helper()
	var b builtArchive

	// 先頭のサイズフィールドとエントリデータ
	b.chunks = append(b.chunks, memChunk{off: 0, data: make([]byte, 16)})
	cursor := int64(16)
	for _, e := range f.entries {
		stored := e.data
		if e.compress {
			stored = deflateWithPrefix(t, e.data)
			if len(stored) >= len(e.data) {
				t.Fatalf("entry %q does not compress (%d >= %d)", e.path, len(stored), len(e.data))
			}
		}
		off := cursor
		if e.offset != 0 {
			off = e.offset
		}
		b.chunks = append(b.chunks, memChunk{off: off, data: stored})
		cursor = max(cursor, off+int64(len(stored)))
		rawSize := uint32(len(e.data))
		if e.rawSize != 0 {
			rawSize = e.rawSize
		}
		b.expected = append(b.expected, TableEntry{
			Path:             toBackslash(e.path),
			DataOffset:       uint32(off),
			CompressedSize:   uint32(len(stored)),
			DecompressedSize: rawSize,
		})
	}

	if f.split && cursor < SpanThreshold {
		cursor = SpanThreshold
	}

	// ファイルテーブル
	keys := f.keys()
	b.tableOffset = cursor
	var table bytes.Buffer
	for i, e := range f.entries {
		rec := f.record(t, e.path, b.expected[i])
		chunk := rec
		if !f.storeRecords {
			chunk = deflateWithPrefix(t, rec)
		}
		binary.Write(&table, binary.LittleEndian, crypto.XOR32(0xDEADBEEF, keys.MaskDword))
		binary.Write(&table, binary.LittleEndian, crypto.XOR32(uint32(len(chunk)), keys.MaskDword, keys.CheckMask))
		table.Write(chunk)
	}
	b.chunks = append(b.chunks, memChunk{off: cursor, data: table.Bytes()})
	cursor += int64(table.Len())

	// ヘッダレコードとトレーラ
	tail := f.tail(t, uint32(b.tableOffset), keys)
	b.chunks = append(b.chunks, memChunk{off: cursor, data: tail})
	b.end = cursor + int64(len(tail))

	// 宣言サイズ
	if f.layout == LayoutExtended {
		binary.LittleEndian.PutUint64(b.chunks[0].data[4:12], uint64(b.end))
	} else {
		binary.LittleEndian.PutUint32(b.chunks[0].data[4:8], uint32(b.end))
	}
	return b
}

func (f fixture) record(t *testing.T, path string, e TableEntry) []byte {
	t.Helper()
	rec := make([]byte, recordSize(f.layout))
	name := gbk(t, path)
	if len(name) >= pathFieldSize {
		t.Fatalf("path %q is too long", path)
	}
	copy(rec, name)
	if f.layout == LayoutLegacy {
		binary.LittleEndian.PutUint32(rec[260:], e.DataOffset)
		binary.LittleEndian.PutUint32(rec[264:], e.DecompressedSize)
		binary.LittleEndian.PutUint32(rec[268:], e.CompressedSize)
		return rec
	}
	binary.LittleEndian.PutUint64(rec[260:], uint64(e.DataOffset)<<32)
	binary.LittleEndian.PutUint64(rec[268:], uint64(e.DecompressedSize)<<32)
	binary.LittleEndian.PutUint64(rec[276:], uint64(e.CompressedSize))
	return rec
}

func (f fixture) tail(t *testing.T, tableOffset uint32, keys crypto.KeySet) []byte {
	t.Helper()
	guardEnd := keys.Guard1
	if f.guardEnd != 0 {
		guardEnd = f.guardEnd
	}
	desc := gbk(t, f.description)
	count := uint32(len(f.entries))

	switch f.layout {
	case LayoutLegacy:
		buf := make([]byte, legacyHeaderSize+trailerSize)
		binary.LittleEndian.PutUint32(buf[0:], keys.Guard0)
		binary.LittleEndian.PutUint32(buf[4:], f.version())
		binary.LittleEndian.PutUint32(buf[8:], tableOffset^keys.MaskDword)
		copy(buf[16:16+descriptionSize], desc)
		binary.LittleEndian.PutUint32(buf[268:], guardEnd)
		binary.LittleEndian.PutUint32(buf[272:], count)
		binary.LittleEndian.PutUint32(buf[276:], f.version())
		return buf
	case LayoutExtended:
		buf := make([]byte, extendedHeaderSize+trailerSize)
		binary.LittleEndian.PutUint32(buf[0:], keys.Guard0)
		binary.LittleEndian.PutUint32(buf[4:], f.version())
		binary.LittleEndian.PutUint32(buf[8:], tableOffset^keys.MaskDword)
		copy(buf[20:20+descriptionSize], desc)
		binary.LittleEndian.PutUint64(buf[272:], uint64(guardEnd)<<32)
		binary.LittleEndian.PutUint32(buf[280:], count)
		binary.LittleEndian.PutUint32(buf[284:], f.version())
		return buf
	default:
		buf := make([]byte, spannedHeaderSize)
		binary.LittleEndian.PutUint32(buf[0:], keys.Guard0)
		packed := uint64(f.sign)<<32 | uint64(tableOffset^swordsmanOffsetMask)
		binary.LittleEndian.PutUint64(buf[4:], packed)
		copy(buf[20:20+descriptionSize], desc)
		binary.LittleEndian.PutUint32(buf[268:], guardEnd)
		binary.LittleEndian.PutUint32(buf[272:], count)
		return buf
	}
}

// install は生成したイメージを .pck（分割時は .pck と .pkx）として登録します
func (b builtArchive) install(fsys *memFS, primaryPath string, split bool) {
	if !split {
		fsys.files[primaryPath] = &memFile{size: b.end, chunks: b.chunks}
		return
	}

	primary := &memFile{size: SpanThreshold}
	companion := &memFile{size: b.end - SpanThreshold}
	for _, c := range b.chunks {
		start, end := c.off, c.off+int64(len(c.data))
		if start < SpanThreshold {
			cut := min(end, SpanThreshold)
			primary.chunks = append(primary.chunks, memChunk{off: start, data: c.data[:cut-start]})
		}
		if end > SpanThreshold {
			from := max(start, SpanThreshold)
			companion.chunks = append(companion.chunks, memChunk{off: from - SpanThreshold, data: c.data[from-start:]})
		}
	}
	fsys.files[primaryPath] = primary
	fsys.files[CompanionPath(primaryPath)] = companion
}

// newFixtureArchive はアーカイブを生成して開く前の Archive を返します
func newFixtureArchive(t *testing.T, f fixture) (*Archive, *memFS, builtArchive) {
	t.Helper()
	fsys := newMemFS()
	b := f.build(t)
	b.install(fsys, "game/models.pck", f.split)
	return NewArchiveWithFS("game/models.pck", fsys), fsys, b
}

func toBackslash(p string) string {
	return string(bytes.ReplaceAll([]byte(p), []byte("/"), []byte(`\`)))
}

// repeatText は圧縮しやすいテキストを生成します
func repeatText(s string, n int) []byte {
	return bytes.Repeat([]byte(s), n)
}

// flatten は分割しないアーカイブのイメージを連続したバイト列にします
func (b builtArchive) flatten() []byte {
	image := make([]byte, b.end)
	for _, c := range b.chunks {
		copy(image[c.off:], c.data)
	}
	return image
}
