package ingest

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	budgetNoise = regexp.MustCompile(`\(.*?\)|vat\s*포함|vat\s*별도|부가세\s*포함|부가세\s*별도|약|원|,|\s`)
	budgetUnit  = regexp.MustCompile(`(\d+(?:\.\d+)?)(억|천만|백만|십만|만|천)?`)
)

var budgetUnitValue = map[string]float64{
	"억":  100_000_000,
	"천만": 10_000_000,
	"백만": 1_000_000,
	"십만": 100_000,
	"만":  10_000,
	"천":  1_000,
	"":   1,
}

// ParseBudget turns an estimated-price string into won. It accepts the
// API's plain digit strings ("123456789", "123456789.00") as well as the
// notations boards use ("1억 2,000만원", "8,000만원", "350백만"). Unknown or
// unparsable values come back as 0, which the scorer treats as unspecified.
func ParseBudget(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	lower := strings.ToLower(s)
	for _, unknown := range []string{"미정", "추후", "협의", "비공개"} {
		if strings.Contains(lower, unknown) {
			return 0
		}
	}
	clean := budgetNoise.ReplaceAllString(lower, "")
	if clean == "" {
		return 0
	}

	var total float64
	for _, m := range budgetUnit.FindAllStringSubmatch(clean, -1) {
		val, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		total += val * budgetUnitValue[m[2]]
	}
	if total <= 0 {
		return 0
	}
	return int64(total)
}
