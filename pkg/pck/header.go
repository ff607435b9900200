package pck

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

// ヘッダレコードのサイズ
const (
	legacyHeaderSize   = 272
	extendedHeaderSize = 280
	spannedHeaderSize  = 280
)

// トレーラ（エントリ数とバージョン）のサイズ
const trailerSize = 8

const (
	descriptionSize    = 252
	descriptionVisible = 128
)

// Swordsman Online の識別値（テーブルオフセットの上位32ビット）
const (
	swordsmanSplitSign  = 0x49AB7F1C
	swordsmanSingleSign = 0x49AB7F1D

	// テーブルオフセットのマスク 0x49AB7F1D33C3EDDB の下位32ビット
	swordsmanOffsetMask = 0x33C3EDDB
)

// Header はアーカイブ末尾のヘッダレコードです
type Header struct {
	Layout            Layout
	GuardByte0        uint32
	Version           uint32 // SpannedTitle では 0
	MaskedTableOffset uint32
	PackedTableOffset uint64 // SpannedTitle のみ
	Flags             uint64
	Description       string
	GuardByteEnd      uint32
}

// Trailer はアーカイブ末尾8バイトです
type Trailer struct {
	EntryCount uint32
	Version    uint32
}

// headerSize はレイアウトごとのヘッダレコードサイズを返します
func headerSize(l Layout) int {
	switch l {
	case LayoutExtended:
		return extendedHeaderSize
	case LayoutSpannedTitle:
		return spannedHeaderSize
	default:
		return legacyHeaderSize
	}
}

// recordTailSize はレイアウトごとに末尾から読むバイト数を返します。
// Legacy と Extended はヘッダの後ろにトレーラが続き、
// SpannedTitle はトレーラがヘッダレコードに重なっています。
func recordTailSize(l Layout) int {
	if l == LayoutSpannedTitle {
		return spannedHeaderSize
	}
	return headerSize(l) + trailerSize
}

// readTail は論理的な末尾から n バイトを読み込みます
func readTail(r io.ReaderAt, end int64, n int) ([]byte, error) {
	if end < int64(n) {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrTruncatedArchive, n, end)
	}
	buf := make([]byte, n)
	if _, err := r.ReadAt(buf, end-int64(n)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTruncatedArchive, err)
	}
	return buf, nil
}

// readTrailer はエントリ数とバージョンを読み込みます
func readTrailer(r io.ReaderAt, end int64) (Trailer, error) {
	buf, err := readTail(r, end, trailerSize)
	if err != nil {
		return Trailer{}, err
	}
	return Trailer{
		EntryCount: binary.LittleEndian.Uint32(buf[0:4]),
		Version:    binary.LittleEndian.Uint32(buf[4:8]),
	}, nil
}

// readHeader はレイアウトに対応するパーサーでヘッダを読み込みます
func readHeader(r io.ReaderAt, end int64, l Layout) (Header, error) {
	buf, err := readTail(r, end, recordTailSize(l))
	if err != nil {
		return Header{}, err
	}

	switch l {
	case LayoutLegacy:
		return parseLegacyHeader(buf), nil
	case LayoutExtended:
		return parseExtendedHeader(buf), nil
	case LayoutSpannedTitle:
		return parseSpannedTitleHeader(buf), nil
	default:
		return Header{}, fmt.Errorf("%w: layout %d", ErrUnsupportedVersion, l)
	}
}

func parseLegacyHeader(rec []byte) Header {
	return Header{
		Layout:            LayoutLegacy,
		GuardByte0:        binary.LittleEndian.Uint32(rec[0:4]),
		Version:           binary.LittleEndian.Uint32(rec[4:8]),
		MaskedTableOffset: binary.LittleEndian.Uint32(rec[8:12]),
		Flags:             uint64(binary.LittleEndian.Uint32(rec[12:16])),
		Description:       decodeDescription(rec[16 : 16+descriptionSize]),
		GuardByteEnd:      binary.LittleEndian.Uint32(rec[268:272]),
	}
}

func parseExtendedHeader(rec []byte) Header {
	return Header{
		Layout:            LayoutExtended,
		GuardByte0:        binary.LittleEndian.Uint32(rec[0:4]),
		Version:           binary.LittleEndian.Uint32(rec[4:8]),
		MaskedTableOffset: binary.LittleEndian.Uint32(rec[8:12]),
		Flags:             binary.LittleEndian.Uint64(rec[12:20]),
		Description:       decodeDescription(rec[20 : 20+descriptionSize]),
		// 末尾から16バイト目の u64 の上位32ビット
		GuardByteEnd: uint32(binary.LittleEndian.Uint64(rec[272:280]) >> 32),
	}
}

func parseSpannedTitleHeader(rec []byte) Header {
	packed := binary.LittleEndian.Uint64(rec[4:12])
	return Header{
		Layout:            LayoutSpannedTitle,
		GuardByte0:        binary.LittleEndian.Uint32(rec[0:4]),
		PackedTableOffset: packed,
		MaskedTableOffset: uint32(packed),
		Flags:             binary.LittleEndian.Uint64(rec[12:20]),
		Description:       decodeDescription(rec[20 : 20+descriptionSize]),
		GuardByteEnd:      binary.LittleEndian.Uint32(rec[268:272]),
	}
}

// isSwordsmanSign は packed テーブルオフセットの上位32ビットが Swordsman の識別値か判定します。
// 0x49AB7F1C は分割アーカイブでのみ有効です。
func isSwordsmanSign(packed uint64, split bool) bool {
	sign := uint32(packed >> 32)
	if sign == swordsmanSingleSign {
		return true
	}
	return split && sign == swordsmanSplitSign
}

// decodeDescription は説明文の先頭128バイトを GBK として復元します
func decodeDescription(raw []byte) string {
	if len(raw) > descriptionVisible {
		raw = raw[:descriptionVisible]
	}
	s, err := decodeGBK(raw)
	if err != nil {
		return ""
	}
	return s
}

// decodeGBK は NUL 終端の GBK 文字列を UTF-8 に変換します
func decodeGBK(raw []byte) (string, error) {
	if i := bytes.IndexByte(raw, 0); i >= 0 {
		raw = raw[:i]
	}
	out, _, err := transform.Bytes(simplifiedchinese.GBK.NewDecoder(), raw)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
