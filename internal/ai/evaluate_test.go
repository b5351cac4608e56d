package ai

import "testing"

func TestParseFitEvaluation(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    FitEvaluation
		wantErr bool
	}{
		{
			name: "clean json",
			text: `{"verdict": "fit", "adjustment": 10, "reason": "전략 수립 중심 과업"}`,
			want: FitEvaluation{Verdict: "fit", Adjustment: 10, Reason: "전략 수립 중심 과업"},
		},
		{
			name: "fenced json with prose",
			text: "Here is my assessment:\n```json\n{\"verdict\": \"unfit\", \"adjustment\": -15, \"reason\": \"단순 운영 대행\"}\n```",
			want: FitEvaluation{Verdict: "unfit", Adjustment: -15, Reason: "단순 운영 대행"},
		},
		{
			name: "adjustment clamped",
			text: `{"verdict": "fit", "adjustment": 45, "reason": "r"}`,
			want: FitEvaluation{Verdict: "fit", Adjustment: 20, Reason: "r"},
		},
		{
			name:    "unknown verdict",
			text:    `{"verdict": "maybe", "adjustment": 0, "reason": ""}`,
			wantErr: true,
		},
		{
			name:    "no json",
			text:    "I cannot answer that.",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFitEvaluation(tt.text)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("want error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if *got != tt.want {
				t.Errorf("got %+v, want %+v", *got, tt.want)
			}
		})
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"prefix [1,2] suffix", "[1,2]"},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"no json here", ""},
		{"{broken", ""},
	}
	for _, tt := range tests {
		if got := ExtractJSON(tt.in); got != tt.want {
			t.Errorf("ExtractJSON(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
