package ingest

import (
	"testing"
	"time"
)

func TestFallbackParse(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	site := Site{ID: "ggeea", Agency: "경기도경제과학진흥원", URL: "https://www.gbsa.or.kr/board/notice.do"}

	html := `<html><body><table><tbody>
		<tr><td>12</td><td><a href="/board/view.do?id=12&utm_source=mail">2026년 중소기업 브랜드 개발 지원 용역 입찰공고</a></td><td>2026-03-09</td></tr>
		<tr><td>11</td><td><a href="/board/view.do?id=11">소상공인 온라인 판로지원 사업 공고</a></td><td>2026.02.01</td></tr>
		<tr><td>10</td><td><a href="/board/list.do?page=2">다음</a></td><td></td></tr>
	</tbody></table></body></html>`

	bids, err := fallbackParse(site, html, 7, now)
	if err != nil {
		t.Fatalf("fallbackParse: %v", err)
	}
	if len(bids) != 1 {
		t.Fatalf("got %d bids, want 1: %+v", len(bids), bids)
	}
	got := bids[0]
	if got.Title != "2026년 중소기업 브랜드 개발 지원 용역 입찰공고" {
		t.Errorf("title = %q", got.Title)
	}
	if got.Agency != site.Agency {
		t.Errorf("agency = %q", got.Agency)
	}
	if got.Source != "crawl:ggeea" {
		t.Errorf("source = %q", got.Source)
	}
	if got.URL != "https://www.gbsa.or.kr/board/view.do?id=12" {
		t.Errorf("url = %q, tracking params should be stripped", got.URL)
	}
}

func TestCanonicalizeURL(t *testing.T) {
	cases := []struct{ in, want string }{
		{"https://Example.COM/a?utm_source=x&id=3#frag", "https://example.com/a?id=3"},
		{"https://example.com/a?gclid=abc", "https://example.com/a"},
		{"http://ex ample.com/", "http://ex ample.com/"},
	}
	for _, tc := range cases {
		if got := canonicalizeURL(tc.in); got != tc.want {
			t.Errorf("canonicalizeURL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
