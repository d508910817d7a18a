package linhash

import "encoding/binary"

// Fixed-width little-endian encoding for the integers and integer vectors
// that make up the control page and page headers (spec component A). The
// byte order is pinned: changing it changes the on-disk format.

func encodeU64(x uint64) [8]byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], x)
	return b
}

func decodeU64(b []byte) uint64 {
	return binary.LittleEndian.Uint64(b)
}

func encodeI32(x int32) [4]byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(x))
	return b
}

func decodeI32(b []byte) int32 {
	return int32(binary.LittleEndian.Uint32(b))
}

// encodeU64Slice concatenates the 8-byte little-endian encoding of each
// element, in order.
func encodeU64Slice(xs []uint64) []byte {
	buf := make([]byte, 8*len(xs))
	for i, x := range xs {
		binary.LittleEndian.PutUint64(buf[i*8:i*8+8], x)
	}
	return buf
}

// decodeU64Slice is the inverse of encodeU64Slice. len(b) must be a
// multiple of 8.
func decodeU64Slice(b []byte) []uint64 {
	n := len(b) / 8
	xs := make([]uint64, n)
	for i := 0; i < n; i++ {
		xs[i] = binary.LittleEndian.Uint64(b[i*8 : i*8+8])
	}
	return xs
}
