// Package crypto はPCK/PKXアーカイブで使用される難読化・圧縮アルゴリズムを提供します。
//
// 主な機能:
//   - DeriveKeySet: タイトルIDからガードバイトとマスク値を導出
//   - RecoverTitleID: ガードバイトからタイトルIDを総当たりで特定
//   - Inflate: 2バイトの前置きを持つ raw deflate データの解凍
//   - XOR32: マスクされた32ビット値の復元
package crypto

// タイトルIDの探索上限 (この値は含まない)
const MaxTitleID = 1000

// Hot Dance Party だけは導出式ではなく固定値を使う
const hotDancePartyID = 111

// 導出式の基底値と係数
const (
	guard0Base = 0xFDFDFEEE
	guard0Step = 0x072341F2
	guard1Base = 0xF00DBEEF
	guard1Step = 0x01237A73
	maskBase   = 0xA8937462
	maskStep   = 0x0AB2321F
	checkBase  = 0x59374231
	checkStep  = 0x0987A223
)

// KeySet はタイトルごとの難読化キーです
type KeySet struct {
	Guard0    uint32 // ヘッダ先頭のガードバイト
	Guard1    uint32 // ヘッダ末尾のガードバイト
	MaskDword uint32 // テーブルオフセットとチャンクサイズのマスク
	CheckMask uint32 // チャンクサイズに追加でかかるマスク
}

// DeriveKeySet はタイトルIDからキーを導出します。
// 加算・乗算はすべて 2^32 で折り返します。
func DeriveKeySet(titleID uint32) KeySet {
	if titleID == hotDancePartyID {
		return KeySet{
			Guard0:    0xAB12908F,
			Guard1:    0xB3231902,
			MaskDword: 0x2A63810E,
			CheckMask: 0x18734563,
		}
	}

	return KeySet{
		Guard0:    guard0Base + titleID*guard0Step,
		Guard1:    guard1Base + titleID*guard1Step,
		MaskDword: maskBase + titleID*maskStep,
		CheckMask: checkBase + titleID*checkStep,
	}
}

// RecoverTitleID は観測したガードバイトに一致するタイトルIDを探します。
// 0 から MaxTitleID-1 まで順に走査し、最初に一致したIDを返します。
// 一致しない場合は走査が終わった位置 (MaxTitleID) と false を返します。
//
// 導出式は一方向の写像として扱い、逆算テーブルは作らない。
func RecoverTitleID(guard0, guardEnd uint32) (uint32, bool) {
	var id uint32
	for id = 0; id < MaxTitleID; id++ {
		keys := DeriveKeySet(id)
		if keys.Guard0 == guard0 && keys.Guard1 == guardEnd {
			return id, true
		}
	}
	return id, false
}
