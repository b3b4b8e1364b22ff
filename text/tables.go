package text

import "encoding/binary"

// sfnt table directory access. The shaping and outline libraries keep
// their parsed tables private, so the color/bitmap rasterization paths
// and a handful of scalar metrics are read from the raw font bytes.

// fontTables indexes the sfnt table directory of a single font.
type fontTables struct {
	data    []byte
	entries map[string][2]uint32 // tag -> offset, length
}

// parseTables reads the sfnt offset table. A TrueType Collection header
// is skipped to the first font.
func parseTables(data []byte) (*fontTables, error) {
	if len(data) < 12 {
		return nil, &FontError{Reason: "font data too short"}
	}

	base := 0
	if string(data[0:4]) == "ttcf" {
		if len(data) < 16 {
			return nil, &FontError{Reason: "truncated collection header"}
		}
		base = int(binary.BigEndian.Uint32(data[12:16]))
		if base+12 > len(data) {
			return nil, &FontError{Reason: "collection offset out of range"}
		}
	}

	numTables := int(binary.BigEndian.Uint16(data[base+4 : base+6]))
	dirEnd := base + 12 + numTables*16
	if dirEnd > len(data) {
		return nil, &FontError{Reason: "truncated table directory"}
	}

	t := &fontTables{
		data:    data,
		entries: make(map[string][2]uint32, numTables),
	}
	for i := 0; i < numTables; i++ {
		rec := base + 12 + i*16
		tag := string(data[rec : rec+4])
		offset := binary.BigEndian.Uint32(data[rec+8 : rec+12])
		length := binary.BigEndian.Uint32(data[rec+12 : rec+16])
		if int(offset)+int(length) > len(data) {
			continue
		}
		t.entries[tag] = [2]uint32{offset, length}
	}
	return t, nil
}

// table returns the raw bytes of the named table, or nil if absent.
func (t *fontTables) table(tag string) []byte {
	e, ok := t.entries[tag]
	if !ok {
		return nil
	}
	return t.data[e[0] : e[0]+e[1]]
}

// u16 reads a big-endian uint16 from a table at the given offset,
// returning 0 when the table is too short.
func u16(table []byte, offset int) uint16 {
	if offset+2 > len(table) {
		return 0
	}
	return binary.BigEndian.Uint16(table[offset : offset+2])
}

// i16 reads a big-endian int16.
func i16(table []byte, offset int) int16 {
	return int16(u16(table, offset))
}
