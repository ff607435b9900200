package pck

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/shiroemons/go-unpck/pkg/crypto"
)

// テーブルレコードのサイズ（パス260バイト + 数値フィールド）
const (
	pathFieldSize      = 260
	legacyRecordSize   = legacyHeaderSize + 4   // 0x114
	extendedRecordSize = extendedHeaderSize + 4 // 0x11C
)

// 1エントリあたりの前置き（マスクされた2つの u32）
const chunkPrefixSize = 8

// recordSize はレイアウトごとのテーブルレコードサイズを返します
func recordSize(l Layout) int {
	if l == LayoutLegacy {
		return legacyRecordSize
	}
	return extendedRecordSize
}

// decodeTable はファイルテーブルを復元します。
// 途中で失敗した場合は部分的なテーブルを返さずにエラーを返します。
func decodeTable(r io.ReaderAt, end, offset int64, count uint32, l Layout, keys crypto.KeySet) ([]TableEntry, error) {
	if offset < 0 || offset > end {
		return nil, fmt.Errorf("%w: table offset 0x%X outside archive (size 0x%X)", ErrTableDecode, offset, end)
	}
	if int64(count)*chunkPrefixSize > end-offset {
		return nil, fmt.Errorf("%w: %d entries cannot fit in %d bytes", ErrTableDecode, count, end-offset)
	}

	table := make([]TableEntry, 0, count)
	pos := offset
	prefix := make([]byte, chunkPrefixSize)

	for i := uint32(0); i < count; i++ {
		if _, err := r.ReadAt(prefix, pos); err != nil {
			return nil, fmt.Errorf("%w: entry %d: %w", ErrTableDecode, i, err)
		}
		pos += chunkPrefixSize

		// 先頭の u32 は読み捨てる
		chunk := crypto.XOR32(binary.LittleEndian.Uint32(prefix[4:8]), keys.MaskDword, keys.CheckMask)
		if int64(chunk) > end-pos {
			return nil, fmt.Errorf("%w: entry %d: chunk size %d exceeds remaining %d bytes", ErrTableDecode, i, chunk, end-pos)
		}

		buf := make([]byte, chunk)
		if _, err := r.ReadAt(buf, pos); err != nil {
			return nil, fmt.Errorf("%w: entry %d: %w", ErrTableDecode, i, err)
		}
		pos += int64(chunk)

		entry, err := decodeRecord(buf, l)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d: %w", ErrTableDecode, i, err)
		}
		table = append(table, entry)
	}

	return table, nil
}

// decodeRecord は1つのチャンクを解凍してエントリを取り出します。
// 解凍先のサイズはバージョンで決まり、Legacy では 0x114 バイト以上のチャンクを
// Extended のレコードサイズまで解凍します（解析は Legacy のまま）。
// 解凍できず、チャンクがちょうどレコード長の場合だけ無圧縮のレコードとして扱います。
func decodeRecord(chunk []byte, l Layout) (TableEntry, error) {
	size := recordSize(l)
	target := size
	if l == LayoutLegacy && len(chunk) >= legacyRecordSize {
		target = extendedRecordSize
	}

	rec, err := crypto.InflateAtLeast(chunk, target, size)
	if err != nil {
		if len(chunk) != size {
			return TableEntry{}, err
		}
		rec = chunk
	}
	return parseRecord(rec[:size], l)
}

// parseRecord はレコードのバイト列をエントリに変換します
func parseRecord(rec []byte, l Layout) (TableEntry, error) {
	name, err := decodeGBK(rec[:pathFieldSize])
	if err != nil {
		return TableEntry{}, fmt.Errorf("path: %w", err)
	}

	entry := TableEntry{Path: strings.ReplaceAll(name, "/", `\`)}
	if l == LayoutLegacy {
		entry.DataOffset = binary.LittleEndian.Uint32(rec[260:264])
		entry.DecompressedSize = binary.LittleEndian.Uint32(rec[264:268])
		entry.CompressedSize = binary.LittleEndian.Uint32(rec[268:272])
		return entry, nil
	}

	entry.DataOffset = uint32(binary.LittleEndian.Uint64(rec[260:268]) >> 32)
	entry.DecompressedSize = uint32(binary.LittleEndian.Uint64(rec[268:276]) >> 32)
	entry.CompressedSize = uint32(binary.LittleEndian.Uint64(rec[276:284]))
	return entry, nil
}
