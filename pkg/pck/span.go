package pck

import (
	"fmt"
	"io"
)

// logicalReader は .pck と .pkx を1つのアドレス空間として読むための io.ReaderAt です。
// SpanThreshold 未満は .pck、以上は .pkx の (off - SpanThreshold) に対応します。
// 分割されていない場合は .pck をそのまま読みます。
type logicalReader struct {
	primary   File
	companion File // 分割されていない場合は nil
}

// Close は開いている物理ファイルを閉じます
func (r *logicalReader) Close() error {
	var err error
	if r.companion != nil {
		err = r.companion.Close()
	}
	if cerr := r.primary.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// Size は論理的な末尾の位置を返します
func (r *logicalReader) Size() int64 {
	if r.companion != nil {
		return SpanThreshold + r.companion.Size()
	}
	return r.primary.Size()
}

// ReadAt は論理オフセットから読み込みます。境界をまたぐ読み込みは2つに分けます。
func (r *logicalReader) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("negative offset %d", off)
	}
	if r.companion == nil {
		return r.primary.ReadAt(p, off)
	}

	n := 0
	if off < SpanThreshold {
		head := p
		if rest := SpanThreshold - off; int64(len(head)) > rest {
			head = head[:rest]
		}
		m, err := r.primary.ReadAt(head, off)
		n += m
		if err != nil {
			return n, err
		}
		if n == len(p) {
			return n, nil
		}
		off += int64(m)
	}

	m, err := r.companion.ReadAt(p[n:], off-SpanThreshold)
	n += m
	return n, err
}

// spannedIndex は境界インデックスを求めます。
// オフセットが SpanThreshold 以上になる最初のエントリの1つ前を返し、
// 該当するエントリがなければ len(table) を返します。
func spannedIndex(table []TableEntry) int {
	for i, e := range table {
		if int64(e.DataOffset) >= SpanThreshold {
			return i - 1
		}
	}
	return len(table)
}

// countStraddling は境界をまたぐエントリの数を数えます
func countStraddling(table []TableEntry) int {
	count := 0
	for _, e := range table {
		if straddles(e) {
			count++
		}
	}
	return count
}

func straddles(e TableEntry) bool {
	start := int64(e.DataOffset)
	return start < SpanThreshold && SpanThreshold <= start+int64(e.CompressedSize)
}

// placement はエントリの物理的な読み出し位置です
type placement struct {
	location  Location
	offset    int64 // InPrimary/Spanning では .pck、InCompanion では .pkx のオフセット
	pckLength int64
	pkxLength int64
}

// classify は境界インデックスに対するエントリの位置から読み出し位置を決めます。
// オフセットと矛盾する場合は ErrBoundaryMismatch を返します。
func classify(e TableEntry, index, boundary int, split bool) (placement, error) {
	size := int64(e.CompressedSize)
	offset := int64(e.DataOffset)

	if !split || index < boundary {
		if split && (offset >= SpanThreshold || offset+size > SpanThreshold) {
			return placement{}, fmt.Errorf("%w: offset 0x%X size %d before boundary", ErrBoundaryMismatch, offset, size)
		}
		return placement{location: InPrimary, offset: offset, pckLength: size}, nil
	}

	if index > boundary {
		if offset < SpanThreshold {
			return placement{}, fmt.Errorf("%w: offset 0x%X after boundary", ErrBoundaryMismatch, offset)
		}
		return placement{location: InCompanion, offset: offset - SpanThreshold, pkxLength: size}, nil
	}

	pckPart := SpanThreshold - offset
	if pckPart <= 0 || pckPart > size {
		return placement{}, fmt.Errorf("%w: offset 0x%X size %d at boundary", ErrBoundaryMismatch, offset, size)
	}
	return placement{
		location:  Spanning,
		offset:    offset,
		pckLength: pckPart,
		pkxLength: size - pckPart,
	}, nil
}

// readPlaced は読み出し位置に従ってエントリの生データを読み込みます
func readPlaced(primary, companion File, p placement) ([]byte, error) {
	buf := make([]byte, p.pckLength+p.pkxLength)

	switch p.location {
	case InPrimary:
		if err := readFull(primary, buf, p.offset); err != nil {
			return nil, err
		}
	case InCompanion:
		if err := readFull(companion, buf, p.offset); err != nil {
			return nil, err
		}
	case Spanning:
		if err := readFull(primary, buf[:p.pckLength], p.offset); err != nil {
			return nil, err
		}
		if err := readFull(companion, buf[p.pckLength:], 0); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

func readFull(r io.ReaderAt, buf []byte, off int64) error {
	if len(buf) == 0 {
		return nil
	}
	if r == nil {
		return fmt.Errorf("%w: companion file is not available", ErrTruncatedArchive)
	}
	n, err := r.ReadAt(buf, off)
	if n == len(buf) {
		return nil
	}
	if err == nil || err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return fmt.Errorf("%w: read %d of %d bytes at 0x%X: %w", ErrTruncatedArchive, n, len(buf), off, err)
}
