package index

import (
	"encoding/binary"
	"math"
)

// orderedTime maps a signed timestamp onto uint64 so byte order matches time order.
func orderedTime(unixNano int64) uint64 {
	return uint64(unixNano) ^ (1 << 63)
}

// key = invTime(8) + order(4) + 0x00 + name
// Cursor order is newest first; equal times keep ascending order.
func makeTimeOrderKey(unixNano int64, order int, name string) []byte {
	if order < 0 {
		order = 0
	}
	buf := make([]byte, 12, 12+1+len(name))
	binary.BigEndian.PutUint64(buf[0:8], ^orderedTime(unixNano))
	binary.BigEndian.PutUint32(buf[8:12], uint32(order))
	buf = append(buf, 0x00)
	buf = append(buf, name...)
	return buf
}

// key = invTime(8) + invScore(8) + 0x00 + name
func makeTimeScoreKey(unixNano int64, score float64, name string) []byte {
	if score < 0 || math.IsNaN(score) {
		score = 0
	}
	buf := make([]byte, 16, 16+1+len(name))
	binary.BigEndian.PutUint64(buf[0:8], ^orderedTime(unixNano))
	binary.BigEndian.PutUint64(buf[8:16], ^math.Float64bits(score))
	buf = append(buf, 0x00)
	buf = append(buf, name...)
	return buf
}

func nameFromKey(k []byte, prefix int) string {
	if len(k) < prefix+2 || k[prefix] != 0x00 {
		return ""
	}
	return string(k[prefix+1:])
}
