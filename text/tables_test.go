package text

import (
	"testing"

	"golang.org/x/image/font/gofont/goregular"
)

func TestParseTables(t *testing.T) {
	tables, err := parseTables(goregular.TTF)
	if err != nil {
		t.Fatalf("parseTables: %v", err)
	}

	for _, tag := range []string{"head", "hhea", "maxp", "cmap", "post"} {
		if tables.table(tag) == nil {
			t.Errorf("table(%q) = nil, want data", tag)
		}
	}
	if tables.table("ZZZZ") != nil {
		t.Error("unknown tag should return nil")
	}

	head := tables.table("head")
	if upem := u16(head, 18); upem == 0 {
		t.Error("head unitsPerEm = 0")
	}
}

func TestParseTables_Short(t *testing.T) {
	if _, err := parseTables([]byte{0, 1}); err == nil {
		t.Error("short data should fail")
	}
	if _, err := parseTables([]byte("ttcf\x00\x01\x00\x00")); err == nil {
		t.Error("truncated collection header should fail")
	}
}

func TestU16_ShortTable(t *testing.T) {
	if got := u16([]byte{0x12}, 0); got != 0 {
		t.Errorf("u16 on short table = %d, want 0", got)
	}
	if got := u16([]byte{0x12, 0x34}, 0); got != 0x1234 {
		t.Errorf("u16 = %#x, want 0x1234", got)
	}
	if got := i16([]byte{0xFF, 0xFE}, 0); got != -2 {
		t.Errorf("i16 = %d, want -2", got)
	}
}
