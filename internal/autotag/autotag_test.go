package autotag

import "testing"

func TestBucketFor_Boundaries(t *testing.T) {
	cases := []struct {
		hours float64
		want  Bucket
	}{
		{0, BucketNeverLaunched},
		{0.1, BucketJustTried},
		{1.999, BucketJustTried},
		{2, BucketPlayed},
		{9.999, BucketPlayed},
		{10, BucketWellPlayed},
		{49.999, BucketWellPlayed},
		{50, BucketHeavilyPlayed},
		{500, BucketHeavilyPlayed},
	}
	for _, c := range cases {
		if got := BucketFor(c.hours); got != c.want {
			t.Errorf("BucketFor(%v) = %v, want %v", c.hours, got, c.want)
		}
	}
}
