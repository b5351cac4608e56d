package report

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/wkmg/rfp-radar/internal/ingest"
	"github.com/wkmg/rfp-radar/internal/scoring"
)

// Digest is the daily email content built from one pipeline run.
type Digest struct {
	Date      time.Time
	Stats     ingest.RunStats
	Grades    map[string]int
	Priority  []scoring.ScoredBid
	QuickWin  []scoring.ScoredBid
}

// BuildDigest assembles the digest from a run report.
func BuildDigest(rep *ingest.RunReport, now time.Time) *Digest {
	return &Digest{
		Date:     now,
		Stats:    rep.Stats,
		Grades:   scoring.GradeCounts(rep.Scored),
		Priority: rep.Buckets.Priority,
		QuickWin: rep.Buckets.QuickWin,
	}
}

// DurationLabel renders the run duration for the digest footer.
func (d *Digest) DurationLabel() string {
	return d.Stats.Duration.Round(time.Second).String()
}

// Subject renders the email subject line.
func (d *Digest) Subject() string {
	return fmt.Sprintf("[RFP Radar] %s 입찰 공고 %d건 (우선검토 %d건)",
		d.Date.Format("2006-01-02"), d.Stats.Relevant, len(d.Priority))
}

var digestTmpl = template.Must(template.New("digest").Funcs(template.FuncMap{
	"gradeColor": gradeColor,
}).Parse(`<!DOCTYPE html>
<html>
<body style="font-family: 'Malgun Gothic', sans-serif; color: #222; max-width: 860px; margin: 0 auto;">
  <h2 style="border-bottom: 2px solid #2c5aa0; padding-bottom: 8px;">RFP Radar 일일 리포트 · {{.Date.Format "2006-01-02"}}</h2>

  <p>
    수집 {{.Stats.Found}}건 → 중복 제거 후 {{.Stats.AfterDedup}}건 → 관련 공고 <b>{{.Stats.Relevant}}건</b>
    (S {{index .Grades "S"}} / A {{index .Grades "A"}} / B {{index .Grades "B"}} / C {{index .Grades "C"}})
  </p>

  <h3 style="color: #2c5aa0;">우선 검토 ({{len .Priority}}건, 5천만원 이상 또는 예산 미정)</h3>
  {{template "bidTable" .Priority}}

  <h3 style="color: #2c8a50;">소규모 기회 ({{len .QuickWin}}건, 3천만~5천만원)</h3>
  {{template "bidTable" .QuickWin}}

  <p style="color: #888; font-size: 12px; margin-top: 24px;">
    수집원 {{.Stats.SourcesTried}}곳 / 오류 {{.Stats.SourceErrors}}건 · 소요 {{.DurationLabel}}
  </p>
</body>
</html>

{{define "bidTable"}}
{{if not .}}<p style="color:#888;">해당 없음</p>{{else}}
<table style="border-collapse: collapse; width: 100%; font-size: 13px;">
  <tr style="background: #f0f4fa;">
    <th style="border: 1px solid #ddd; padding: 6px;">등급</th>
    <th style="border: 1px solid #ddd; padding: 6px;">점수</th>
    <th style="border: 1px solid #ddd; padding: 6px;">공고명</th>
    <th style="border: 1px solid #ddd; padding: 6px;">발주기관</th>
    <th style="border: 1px solid #ddd; padding: 6px;">예산</th>
    <th style="border: 1px solid #ddd; padding: 6px;">마감</th>
  </tr>
  {{range .}}
  <tr>
    <td style="border: 1px solid #ddd; padding: 6px; text-align: center; color: {{gradeColor .Result.Grade}}; font-weight: bold;">{{.Result.Grade}}</td>
    <td style="border: 1px solid #ddd; padding: 6px; text-align: center;">{{.Result.Total}}</td>
    <td style="border: 1px solid #ddd; padding: 6px;">{{if .Bid.URL}}<a href="{{.Bid.URL}}">{{.Bid.Title}}</a>{{else}}{{.Bid.Title}}{{end}}
      {{if .Result.AdjustmentReason}}<br><span style="color:#888; font-size:11px;">AI: {{.Result.AdjustmentReason}}</span>{{end}}</td>
    <td style="border: 1px solid #ddd; padding: 6px;">{{.Bid.Agency}}</td>
    <td style="border: 1px solid #ddd; padding: 6px; text-align: right;">{{.Bid.BudgetLabel}}</td>
    <td style="border: 1px solid #ddd; padding: 6px; text-align: center;">{{if .Bid.Deadline}}{{.Bid.Deadline}}{{else}}-{{end}}</td>
  </tr>
  {{end}}
</table>
{{end}}
{{end}}`))

// HTML renders the digest body.
func (d *Digest) HTML() (string, error) {
	var b strings.Builder
	if err := digestTmpl.Execute(&b, d); err != nil {
		return "", fmt.Errorf("render digest: %w", err)
	}
	return b.String(), nil
}

func gradeColor(grade string) string {
	switch grade {
	case scoring.GradeS:
		return "#c0392b"
	case scoring.GradeA:
		return "#2c5aa0"
	case scoring.GradeB:
		return "#2c8a50"
	default:
		return "#666666"
	}
}
