package ingest

import (
	"strings"
	"testing"
)

func TestParseBoardRows(t *testing.T) {
	reply := "```json\n" + `[
  {"title": "브랜드 개발 용역 입찰 공고", "date": "2026-03-09", "link": "/bbs/view.do?id=1"},
  {"title": "마케팅 전략 수립 제안요청", "date": "", "link": ""}
]` + "\n```"
	rows, err := parseBoardRows(reply)
	if err != nil {
		t.Fatalf("parseBoardRows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].Title != "브랜드 개발 용역 입찰 공고" || rows[0].Date != "2026-03-09" {
		t.Errorf("row 0 = %+v", rows[0])
	}
}

func TestParseBoardRowsWrappedObject(t *testing.T) {
	reply := `{"announcements": [{"title": "t", "date": "2026-03-01", "link": ""}]}`
	rows, err := parseBoardRows(reply)
	if err != nil {
		t.Fatalf("parseBoardRows: %v", err)
	}
	if len(rows) != 1 || rows[0].Title != "t" {
		t.Errorf("rows = %+v", rows)
	}
}

func TestParseBoardRowsNoJSON(t *testing.T) {
	if _, err := parseBoardRows("no announcements found"); err == nil {
		t.Error("want error for reply without JSON")
	}
}

func TestResolveLink(t *testing.T) {
	page := "https://www.gbsa.or.kr/board/notice.do"
	tests := []struct {
		link string
		want string
	}{
		{"/board/view.do?id=5", "https://www.gbsa.or.kr/board/view.do?id=5"},
		{"view.do?id=5", "https://www.gbsa.or.kr/board/view.do?id=5"},
		{"https://other.example/a", "https://other.example/a"},
		{"", page},
		{"#", page},
		{"javascript:goView(5)", page},
	}
	for _, tt := range tests {
		if got := resolveLink(page, tt.link); got != tt.want {
			t.Errorf("resolveLink(%q) = %q, want %q", tt.link, got, tt.want)
		}
	}
}

func TestPrepareBoardText(t *testing.T) {
	html := `<html><head><script>var x=1;</script><style>.a{}</style></head>
<body><nav>메뉴</nav>
<table><tr><td>브랜드 개발 용역 공고</td><td>2026-03-09</td></tr></table>
<footer>주소</footer></body></html>`
	text := PrepareBoardText(html)
	if text == "" {
		t.Fatal("empty text")
	}
	for _, gone := range []string{"var x=1", "메뉴", "주소", "<td>"} {
		if strings.Contains(text, gone) {
			t.Errorf("boilerplate %q survived: %q", gone, text)
		}
	}
	if !strings.Contains(text, "브랜드 개발 용역 공고") {
		t.Errorf("row content lost: %q", text)
	}
}
