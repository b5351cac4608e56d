package models

import "strconv"

// formatManwon renders a won amount in 만원 (10,000-won units) with
// thousands separators, e.g. 80000000 -> "8,000만원".
func formatManwon(won int64) string {
	man := won / 10000
	s := strconv.FormatInt(man, 10)

	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}

	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	if neg {
		out = append([]byte{'-'}, out...)
	}
	return string(out) + "만원"
}
