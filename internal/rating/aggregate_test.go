package rating

import "testing"

func f(v float64) *float64 { return &v }

func TestAverage_AllNil(t *testing.T) {
	if got := Average(nil, nil, nil, nil, nil, nil); got != nil {
		t.Fatalf("Average() = %v, want nil", *got)
	}
}

func TestAverage_SingleValue(t *testing.T) {
	got := Average(f(80), nil, nil, nil, nil, nil)
	if got == nil || *got != 80 {
		t.Fatalf("Average() = %v, want 80", got)
	}
}

func TestAverage_MeanOfPresent(t *testing.T) {
	got := Average(f(80), f(90), nil, nil, nil, nil)
	if got == nil || *got != 85 {
		t.Fatalf("Average() = %v, want 85", got)
	}
}

func TestAverage_AllPresent(t *testing.T) {
	got := Average(f(60), f(70), f(80), f(90), f(100), f(50))
	want := (60.0 + 70 + 80 + 90 + 100 + 50) / 6
	if got == nil || *got != want {
		t.Fatalf("Average() = %v, want %v", got, want)
	}
}
