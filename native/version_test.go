package native

import "testing"

func TestStructVersion(t *testing.T) {
	tests := []struct {
		name     string
		size     uint32
		revision uint8
		want     uint32
	}{
		{"connect params v2", 16, 2, 16 | 2<<24},
		{"device attributes v3", 11528, 3, 11528 | 3<<24},
		{"revision in top byte", 0, 4, 4 << 24},
		{"size only", 0xabcdef, 0, 0xabcdef},
		{"oversized struct truncated to 24 bits", 0x01abcdef, 1, 0xabcdef | 1<<24},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StructVersion(tt.size, tt.revision); got != tt.want {
				t.Errorf("StructVersion(%#x, %d) = %#x, want %#x", tt.size, tt.revision, got, tt.want)
			}
		})
	}
}

func TestStructVersion_PlanesAreDisjoint(t *testing.T) {
	v := StructVersion(0xffffff, 0xff)
	if v&0xffffff != 0xffffff {
		t.Errorf("size plane corrupted: %#x", v)
	}
	if v>>24 != 0xff {
		t.Errorf("revision plane corrupted: %#x", v)
	}
}
