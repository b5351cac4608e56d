package scoring

import (
	"testing"

	"github.com/wkmg/rfp-radar/internal/models"
)

func TestFingerprint(t *testing.T) {
	a := Fingerprint("AI 브랜드 전략 수립", "서울특별시")
	b := Fingerprint("ai브랜드전략수립", "서울특별시")
	if a != b {
		t.Errorf("spacing/case variants got different fingerprints: %s vs %s", a, b)
	}
	if len(a) != 16 {
		t.Errorf("fingerprint length = %d, want 16", len(a))
	}
	if c := Fingerprint("AI 브랜드 전략 수립", "부산광역시"); c == a {
		t.Error("different agencies collided")
	}
	if c := Fingerprint("브랜드 전략 수립", "서울특별시"); c == a {
		t.Error("different titles collided")
	}
}

func TestDedup(t *testing.T) {
	bids := []models.Bid{
		{Title: "소상공인 판로개척 지원", Agency: "중소기업유통센터", Source: "koneps"},
		{Title: "소상공인 판로개척지원", Agency: "중소기업유통센터", Source: "crawl"},
		{Title: "브랜드 개발 용역", Agency: "서울특별시"},
	}
	out := Dedup(bids)
	if len(out) != 2 {
		t.Fatalf("got %d bids, want 2", len(out))
	}
	if out[0].Source != "koneps" {
		t.Errorf("first-arrival record lost, kept source %q", out[0].Source)
	}
	for _, b := range out {
		if b.Fingerprint == "" {
			t.Errorf("fingerprint not filled on %q", b.Title)
		}
	}
}
