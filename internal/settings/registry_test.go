package settings

import (
	"context"
	"testing"
)

type fakeRepoSettings struct {
	values map[string]string
}

func (f *fakeRepoSettings) GetSetting(ctx context.Context, key string) (string, bool, error) {
	v, ok := f.values[key]
	return v, ok, nil
}

func (f *fakeRepoSettings) SetSetting(ctx context.Context, key, value string) error {
	f.values[key] = value
	return nil
}

func (f *fakeRepoSettings) ListSettings(ctx context.Context) (map[string]string, error) {
	out := make(map[string]string, len(f.values))
	for k, v := range f.values {
		out[k] = v
	}
	return out, nil
}

func TestGetString_FallsBackToDefault(t *testing.T) {
	r := &Registry{repo: &fakeRepoSettings{values: map[string]string{}}}
	v, err := r.GetString(context.Background(), "missing", "fallback")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != "fallback" {
		t.Fatalf("want fallback, got %q", v)
	}
}

func TestGetBool_ParsesStoredValue(t *testing.T) {
	repo := &fakeRepoSettings{values: map[string]string{"flag": "true"}}
	r := &Registry{repo: repo}
	v, err := r.GetBool(context.Background(), "flag", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v {
		t.Fatal("want true")
	}
}

func TestSetString_RoundTrips(t *testing.T) {
	repo := &fakeRepoSettings{values: map[string]string{}}
	r := &Registry{repo: repo}
	if err := r.SetString(context.Background(), "k", "v"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, _ := r.GetString(context.Background(), "k", "")
	if v != "v" {
		t.Fatalf("want v, got %q", v)
	}
}
