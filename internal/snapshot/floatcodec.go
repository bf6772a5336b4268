package snapshot

import (
	"encoding/binary"
	"math"
)

// putFloat32LE writes f as little-endian IEEE-754 bytes into buf[0:4].
func putFloat32LE(buf []byte, f float32) {
	binary.LittleEndian.PutUint32(buf, math.Float32bits(f))
}

// float32FromLE reads a little-endian IEEE-754 float32 from buf[0:4].
func float32FromLE(buf []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf))
}
