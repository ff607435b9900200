package crypto

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
)

// 圧縮データ先頭の読み飛ばすバイト数
const inflatePrefixSize = 2

// MaxInflateRatio は deflate で到達できる最大の伸長率です。
// 入力長にこの値を掛けたサイズを超える出力は要求できません。
const MaxInflateRatio = 1032

// ErrDecompress は解凍に失敗した場合のエラー
var ErrDecompress = errors.New("decompression failed")

// Inflate は先頭2バイトを読み捨てた raw deflate ストリームを解凍します。
// 出力は必ず size バイトで、ストリームがそれより短い場合はエラーになります。
// size を超える出力は読み捨てます。
func Inflate(compressed []byte, size int) ([]byte, error) {
	return InflateAtLeast(compressed, size, size)
}

// InflateAtLeast は Inflate と同様に解凍しますが、ストリームが minSize バイト以上を
// 出力すれば size に満たなくても成功します。足りない部分は 0 のままです。
func InflateAtLeast(compressed []byte, size, minSize int) ([]byte, error) {
	if size < 0 || minSize < 0 || minSize > size {
		return nil, fmt.Errorf("%w: invalid size %d (min %d)", ErrDecompress, size, minSize)
	}
	if len(compressed) < inflatePrefixSize {
		return nil, fmt.Errorf("%w: input too short (%d bytes)", ErrDecompress, len(compressed))
	}
	if limit := int64(len(compressed)) * MaxInflateRatio; int64(size) > limit {
		return nil, fmt.Errorf("%w: size %d exceeds limit %d for %d input bytes", ErrDecompress, size, limit, len(compressed))
	}

	r := flate.NewReader(bytes.NewReader(compressed[inflatePrefixSize:]))
	defer r.Close()

	out := make([]byte, size)
	n, err := io.ReadFull(r, out)
	if err != nil && (n < minSize || (err != io.EOF && err != io.ErrUnexpectedEOF)) {
		return nil, fmt.Errorf("%w: %w", ErrDecompress, err)
	}
	return out, nil
}
