package domain

import (
	"fmt"
	"strconv"
)

// DocumentKey derives the 16 hex character key of a document.
//
// The key packs four 16-bit fields: a name checksum, the creation time,
// the chunk range and an XOR of the first three. It is a recomputable
// cache key, not an identity guarantee; collisions are accepted.
func DocumentKey(name string, epoch int64, chunkCount int, startID int64) string {
	f1, f2, f3 := keyFields(name, epoch, chunkCount, startID)
	return fmt.Sprintf("%04x%04x%04x%04x", f1, f2, f3, f1^f2^f3)
}

// VerifyDocumentKey reports whether key is well formed and its redundancy
// field matches the first three.
func VerifyDocumentKey(key string) bool {
	if len(key) != 16 {
		return false
	}
	var fields [4]uint64
	for i := range fields {
		v, err := strconv.ParseUint(key[i*4:(i+1)*4], 16, 16)
		if err != nil {
			return false
		}
		fields[i] = v
	}
	return fields[0]^fields[1]^fields[2] == fields[3]
}

func keyFields(name string, epoch int64, chunkCount int, startID int64) (f1, f2, f3 uint64) {
	var sum uint64
	for _, r := range name {
		sum += uint64(r)
	}
	f1 = (sum ^ 0x5A5A) & 0xFFFF
	f2 = uint64(epoch>>8) & 0xFFFF
	f3 = uint64((int64(chunkCount)*startID)>>4) & 0xFFFF
	return f1, f2, f3
}
