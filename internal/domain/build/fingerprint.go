package build

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint identifies the inputs of a posts snapshot.
type Fingerprint struct {
	ContentHash  string
	ConfigHash   string
	SnapshotHash string
}

func (f *Fingerprint) ComputeSnapshotHash() {
	h := sha256.New()
	h.Write([]byte(f.ContentHash))
	h.Write([]byte{0})
	h.Write([]byte(f.ConfigHash))
	f.SnapshotHash = hex.EncodeToString(h.Sum(nil))
}

// Same reports whether both fingerprints describe the same snapshot.
func (f Fingerprint) Same(other Fingerprint) bool {
	return f.SnapshotHash != "" && f.SnapshotHash == other.SnapshotHash
}

func HashBytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func HashString(s string) string {
	return HashBytes([]byte(s))
}

// CombineHashes folds an ordered list of hashes into one.
func CombineHashes(hashes []string) string {
	h := sha256.New()
	for _, s := range hashes {
		h.Write([]byte(s))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}
