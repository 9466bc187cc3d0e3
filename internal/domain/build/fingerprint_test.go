package build

import "testing"

func TestFingerprintSame(t *testing.T) {
	a := Fingerprint{ContentHash: CombineHashes([]string{HashString("a"), HashString("b")}), ConfigHash: "c"}
	a.ComputeSnapshotHash()
	b := Fingerprint{ContentHash: CombineHashes([]string{HashString("a"), HashString("b")}), ConfigHash: "c"}
	b.ComputeSnapshotHash()
	if !a.Same(b) {
		t.Fatal("identical inputs should produce the same snapshot")
	}

	c := Fingerprint{ContentHash: CombineHashes([]string{HashString("b"), HashString("a")}), ConfigHash: "c"}
	c.ComputeSnapshotHash()
	if a.Same(c) {
		t.Fatal("order of content hashes should matter")
	}
	if (Fingerprint{}).Same(Fingerprint{}) {
		t.Fatal("empty fingerprints are never the same snapshot")
	}
}
