package ogg

// Ogg CRC-32: polynomial 0x04C11DB7, initial value 0, no reflection and no
// final xor. This is not the IEEE variant implemented by hash/crc32.

var crcTable [256]uint32

func init() {
	const poly = uint32(0x04C11DB7)
	for i := range crcTable {
		crc := uint32(i) << 24
		for j := 0; j < 8; j++ {
			if crc&0x80000000 != 0 {
				crc = (crc << 1) ^ poly
			} else {
				crc <<= 1
			}
		}
		crcTable[i] = crc
	}
}

func crcUpdate(crc uint32, data []byte) uint32 {
	for _, b := range data {
		crc = (crc << 8) ^ crcTable[byte(crc>>24)^b]
	}
	return crc
}

// pageChecksum computes the checksum of a page whose header CRC field is
// treated as zero, without modifying the header.
func pageChecksum(header, body []byte) uint32 {
	var zero [4]byte
	crc := crcUpdate(0, header[:22])
	crc = crcUpdate(crc, zero[:])
	crc = crcUpdate(crc, header[26:])
	return crcUpdate(crc, body)
}
