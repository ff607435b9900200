package pck

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/shiroemons/go-unpck/pkg/crypto"
)

// Swordsman Online の固定タイトルID
const swordsmanTitleID = 161

// Detection は Open の各段階で判明した情報です。
// 各段階は値を受け取り、情報を加えた新しい値を返します。
type Detection struct {
	Split        bool
	EntryCount   uint32
	RawVersion   uint32
	Layout       Layout
	Swordsman    bool
	Header       Header
	TitleID      uint32
	TitleName    string
	KeyMatched   bool
	Keys         crypto.KeySet
	TableOffset  uint32 // マスク解除後
	DeclaredSize uint64 // .pck の先頭付近に記録されたサイズ
}

// TitleName はタイトルIDに対応するゲーム名を返します
func TitleName(id uint32, swordsman bool) string {
	switch id {
	case 0:
		return "Jade Dynasty/Perfect World"
	case 111:
		return "Hot Dance Party"
	case 121:
		return "Ether Saga Odyssey"
	case 131:
		return "Forsaken World"
	case swordsmanTitleID:
		if swordsman {
			return "Swordsman Online"
		}
		return "Saint Seiya"
	default:
		return "Unknown"
	}
}

// withTrailer はエントリ数とバージョンを読み込みます
func (d Detection) withTrailer(r io.ReaderAt, end int64) (Detection, error) {
	t, err := readTrailer(r, end)
	if err != nil {
		return d, err
	}
	d.EntryCount = t.EntryCount
	d.RawVersion = t.Version
	return d, nil
}

// withLayout は Swordsman 形式の判定とバージョン確認を行い、レイアウトを決めます。
// Swordsman の判定はバージョン確認より優先します。
func (d Detection) withLayout(r io.ReaderAt, end int64) (Detection, error) {
	if end >= spannedHeaderSize {
		buf, err := readTail(r, end, spannedHeaderSize)
		if err != nil {
			return d, err
		}
		if isSwordsmanSign(binary.LittleEndian.Uint64(buf[4:12]), d.Split) {
			d.Swordsman = true
			d.Layout = LayoutSpannedTitle
			return d, nil
		}
	}

	switch FormatVersion(d.RawVersion) {
	case VersionLegacy:
		d.Layout = LayoutLegacy
	case VersionExtended:
		d.Layout = LayoutExtended
	default:
		return d, fmt.Errorf("%w: 0x%X", ErrUnsupportedVersion, d.RawVersion)
	}
	return d, nil
}

// withHeader はレイアウトに応じてヘッダレコードを読み込みます
func (d Detection) withHeader(r io.ReaderAt, end int64) (Detection, error) {
	h, err := readHeader(r, end, d.Layout)
	if err != nil {
		return d, err
	}
	d.Header = h
	return d, nil
}

// withDeclaredSize は .pck のオフセット4に記録されたサイズを読み込みます
func (d Detection) withDeclaredSize(primary io.ReaderAt) (Detection, error) {
	width := 4
	if d.Layout == LayoutExtended {
		width = 8
	}
	buf := make([]byte, width)
	if err := readFull(primary, buf, 4); err != nil {
		return d, err
	}
	if width == 8 {
		d.DeclaredSize = binary.LittleEndian.Uint64(buf)
	} else {
		d.DeclaredSize = uint64(binary.LittleEndian.Uint32(buf))
	}
	return d, nil
}

// withKey はタイトルIDとキーを決め、テーブルオフセットのマスクを外します。
// ガードバイトが一致しない場合もエラーにはせず、タイトル名を "Unknown" にします。
func (d Detection) withKey() Detection {
	if d.Swordsman {
		d.TitleID = swordsmanTitleID
		d.KeyMatched = true
		d.Keys = crypto.DeriveKeySet(swordsmanTitleID)
		d.TableOffset = crypto.XOR32(uint32(d.Header.PackedTableOffset), swordsmanOffsetMask)
		d.TitleName = TitleName(d.TitleID, true)
		return d
	}

	id, matched := crypto.RecoverTitleID(d.Header.GuardByte0, d.Header.GuardByteEnd)
	d.TitleID = id
	d.KeyMatched = matched
	d.Keys = crypto.DeriveKeySet(id)
	d.TableOffset = crypto.XOR32(d.Header.MaskedTableOffset, d.Keys.MaskDword)
	d.TitleName = TitleName(id, false)
	return d
}
