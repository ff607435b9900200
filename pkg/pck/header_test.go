package pck

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

func TestReadHeader(t *testing.T) {
	tests := []struct {
		name   string
		layout Layout
	}{
		{name: "Legacy", layout: LayoutLegacy},
		{name: "Extended", layout: LayoutExtended},
		{name: "SpannedTitle", layout: LayoutSpannedTitle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := fixture{layout: tt.layout, titleID: 131, sign: swordsmanSingleSign, description: "Angelica File Package"}
			tail := f.tail(t, 0x1234, f.keys())

			// 前に余分なデータを置いて末尾からの位置で読めることを確認
			image := append(bytes.Repeat([]byte{0xCC}, 64), tail...)
			h, err := readHeader(bytes.NewReader(image), int64(len(image)), tt.layout)
			if err != nil {
				t.Fatalf("readHeader() error = %v", err)
			}

			if h.Layout != tt.layout {
				t.Errorf("Layout = %v, want %v", h.Layout, tt.layout)
			}
			if h.GuardByte0 != f.keys().Guard0 {
				t.Errorf("GuardByte0 = 0x%X, want 0x%X", h.GuardByte0, f.keys().Guard0)
			}
			if h.GuardByteEnd != f.keys().Guard1 {
				t.Errorf("GuardByteEnd = 0x%X, want 0x%X", h.GuardByteEnd, f.keys().Guard1)
			}
			if h.Description != "Angelica File Package" {
				t.Errorf("Description = %q, want %q", h.Description, "Angelica File Package")
			}

			if tt.layout == LayoutSpannedTitle {
				if got := uint32(h.PackedTableOffset >> 32); got != swordsmanSingleSign {
					t.Errorf("sign = 0x%X, want 0x%X", got, swordsmanSingleSign)
				}
				if got := h.MaskedTableOffset ^ swordsmanOffsetMask; got != 0x1234 {
					t.Errorf("table offset = 0x%X, want 0x1234", got)
				}
				return
			}
			if h.Version != f.version() {
				t.Errorf("Version = 0x%X, want 0x%X", h.Version, f.version())
			}
			if got := h.MaskedTableOffset ^ f.keys().MaskDword; got != 0x1234 {
				t.Errorf("table offset = 0x%X, want 0x1234", got)
			}
		})
	}
}

func TestReadTrailer(t *testing.T) {
	image := make([]byte, 32)
	binary.LittleEndian.PutUint32(image[24:], 42)
	binary.LittleEndian.PutUint32(image[28:], uint32(VersionExtended))

	tr, err := readTrailer(bytes.NewReader(image), int64(len(image)))
	if err != nil {
		t.Fatalf("readTrailer() error = %v", err)
	}
	if tr.EntryCount != 42 {
		t.Errorf("EntryCount = %d, want 42", tr.EntryCount)
	}
	if FormatVersion(tr.Version) != VersionExtended {
		t.Errorf("Version = 0x%X, want 0x%X", tr.Version, VersionExtended)
	}
}

func TestReadTail_TooSmall(t *testing.T) {
	image := make([]byte, 100)
	for _, l := range []Layout{LayoutLegacy, LayoutExtended, LayoutSpannedTitle} {
		_, err := readHeader(bytes.NewReader(image), int64(len(image)), l)
		if !errors.Is(err, ErrTruncatedArchive) {
			t.Errorf("readHeader(%v) error = %v, want ErrTruncatedArchive", l, err)
		}
	}

	if _, err := readTrailer(bytes.NewReader(image[:4]), 4); !errors.Is(err, ErrTruncatedArchive) {
		t.Errorf("readTrailer() error = %v, want ErrTruncatedArchive", err)
	}
}

func TestIsSwordsmanSign(t *testing.T) {
	tests := []struct {
		name   string
		packed uint64
		split  bool
		want   bool
	}{
		{name: "単一ファイルの識別値", packed: 0x49AB7F1D_00001234, split: false, want: true},
		{name: "単一ファイルの識別値を分割アーカイブで", packed: 0x49AB7F1D_00001234, split: true, want: true},
		{name: "分割用の識別値", packed: 0x49AB7F1C_00001234, split: true, want: true},
		{name: "分割用の識別値を単一ファイルで", packed: 0x49AB7F1C_00001234, split: false, want: false},
		{name: "識別値なし", packed: 0x00020002_00001234, split: true, want: false},
		{name: "下位ワードのみ一致", packed: 0x00000000_49AB7F1D, split: false, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isSwordsmanSign(tt.packed, tt.split); got != tt.want {
				t.Errorf("isSwordsmanSign(0x%X, %v) = %v, want %v", tt.packed, tt.split, got, tt.want)
			}
		})
	}
}

func TestDecodeDescription(t *testing.T) {
	tests := []struct {
		name string
		raw  func(t *testing.T) []byte
		want string
	}{
		{
			name: "ASCII",
			raw:  func(t *testing.T) []byte { return append([]byte("Angelica"), make([]byte, 244)...) },
			want: "Angelica",
		},
		{
			name: "GBK",
			raw:  func(t *testing.T) []byte { return append(gbk(t, "完美世界"), make([]byte, 200)...) },
			want: "完美世界",
		},
		{
			name: "先頭128バイトまで",
			raw:  func(t *testing.T) []byte { return bytes.Repeat([]byte{'a'}, descriptionSize) },
			want: string(bytes.Repeat([]byte{'a'}, descriptionVisible)),
		},
		{
			name: "空",
			raw:  func(t *testing.T) []byte { return make([]byte, descriptionSize) },
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := decodeDescription(tt.raw(t)); got != tt.want {
				t.Errorf("decodeDescription() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLayoutString(t *testing.T) {
	tests := []struct {
		layout Layout
		want   string
	}{
		{LayoutLegacy, "Legacy"},
		{LayoutExtended, "Extended"},
		{LayoutSpannedTitle, "SpannedTitle"},
		{Layout(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.layout.String(); got != tt.want {
			t.Errorf("Layout(%d).String() = %q, want %q", tt.layout, got, tt.want)
		}
	}
}
