package engine

import (
	"strings"
	"testing"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Smart Panel", "smart-panel"},
		{"Akıllı Dokunmatik Panel", "akilli-dokunmatik-panel"},
		{"ÇĞİÖŞÜ çğıöşü", "cgiosu-cgiosu"},
		{"iX4 - 4\" Touch Panel", "ix4-4-touch-panel"},
		{"  leading   and trailing  ", "leading-and-trailing"},
		{"under_score", "under-score"},
		{"---", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSlugify_CapsLength(t *testing.T) {
	long := strings.Repeat("abcde ", 40)
	got := Slugify(long)
	if len(got) > 80 {
		t.Errorf("slug too long: %d chars", len(got))
	}
	if strings.HasSuffix(got, "-") || strings.HasPrefix(got, "-") {
		t.Errorf("slug has dangling hyphen after cap: %q", got)
	}
}

func TestProductID_Deterministic(t *testing.T) {
	url := "https://example.com/products/smart-panel-4"
	a := ProductID("Interra", `Smart Panel 4"`, url)
	b := ProductID("Interra", `Smart Panel 4"`, url)
	if a != b {
		t.Fatalf("same inputs produced different ids: %q vs %q", a, b)
	}
	if !strings.HasPrefix(a, "interra-smart-panel-4-") {
		t.Errorf("id prefix: got %q", a)
	}
	suffix := a[strings.LastIndex(a, "-")+1:]
	if len(suffix) != 4 {
		t.Errorf("hash suffix should be 4 hex chars, got %q", suffix)
	}
}

func TestProductID_DistinctPerSourceURL(t *testing.T) {
	a := ProductID("EAE", "Mona Switch", "https://a.example/p/1")
	b := ProductID("EAE", "Mona Switch", "https://b.example/p/1")
	if a == b {
		t.Errorf("same name on different vendors must get distinct ids, both %q", a)
	}
}
