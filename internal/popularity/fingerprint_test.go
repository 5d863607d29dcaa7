package popularity

import "testing"

func TestFingerprint_OrderIndependent(t *testing.T) {
	a := Fingerprint("most_popular", []int64{3, 1, 2})
	b := Fingerprint("most_popular", []int64{1, 2, 3})
	if a != b {
		t.Fatalf("fingerprints differ: %q vs %q", a, b)
	}
}

func TestFingerprint_DiffersByType(t *testing.T) {
	a := Fingerprint("most_popular", []int64{1, 2, 3})
	b := Fingerprint("visits", []int64{1, 2, 3})
	if a == b {
		t.Fatal("fingerprints should differ across popularity types")
	}
}

func TestFingerprint_EmptySetIsStable(t *testing.T) {
	a := Fingerprint("visits", nil)
	b := Fingerprint("visits", []int64{})
	if a != b {
		t.Fatalf("want stable empty-set fingerprint, got %q vs %q", a, b)
	}
}
