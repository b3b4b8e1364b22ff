package emoji

// Lookup tables expanding 1/2/4-bit grayscale samples to 8-bit alpha.
var (
	lut1 = [2]uint8{0, 255}
	lut2 = [4]uint8{0, 85, 170, 255}
	lut4 = [16]uint8{0, 17, 34, 51, 68, 85, 102, 119, 136, 153, 170, 187, 204, 221, 238, 255}
)

// ExpandGray converts packed or byte-aligned grayscale bitmap data to
// one 8-bit alpha value per pixel. bitDepth must be 1, 2, 4 or 8.
// Packed data is a continuous bit stream across row boundaries;
// unpacked data starts each row on a byte boundary. Bits are consumed
// most significant first, per the sbit table layout. Returns nil for
// unsupported depths or short data.
func ExpandGray(data []byte, bitDepth, width, height int, packed bool) []byte {
	if width <= 0 || height <= 0 {
		return nil
	}
	switch bitDepth {
	case 1, 2, 4, 8:
	default:
		return nil
	}

	out := make([]byte, width*height)
	if bitDepth == 8 {
		if len(data) < len(out) {
			return nil
		}
		copy(out, data)
		return out
	}

	rowBits := width * bitDepth
	totalBits := rowBits * height
	if packed {
		if len(data)*8 < totalBits {
			return nil
		}
	} else {
		rowBytes := (rowBits + 7) / 8
		if len(data) < rowBytes*height {
			return nil
		}
	}

	bitPos := 0
	for y := 0; y < height; y++ {
		if !packed {
			// Rows are byte aligned.
			bitPos = y * (((rowBits + 7) / 8) * 8)
		}
		for x := 0; x < width; x++ {
			v := 0
			for b := 0; b < bitDepth; b++ {
				byteIdx := bitPos >> 3
				bit := (data[byteIdx] >> (7 - uint(bitPos&7))) & 1
				v = v<<1 | int(bit)
				bitPos++
			}
			out[y*width+x] = grayLookup(bitDepth, v)
		}
	}
	return out
}

// grayLookup maps a sample value through the LUT for its bit depth.
func grayLookup(bitDepth, v int) uint8 {
	switch bitDepth {
	case 1:
		return lut1[v&1]
	case 2:
		return lut2[v&3]
	default:
		return lut4[v&15]
	}
}
