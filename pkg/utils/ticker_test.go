package utils

import "testing"

func TestNormalizeTicker(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"aapl", "AAPL"},
		{" ai.pa ", "AI.PA"},
		{"$MC.PA", "MC.PA"},
		{"BRK.B", "BRK.B"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := NormalizeTicker(tt.input)
			if result != tt.expected {
				t.Errorf("NormalizeTicker(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestToHyphenClass(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"BRK.B", "BRK-B"},
		{"brk.b", "BRK-B"},
		{"BF.B", "BF-B"},
		{"BRK-B", "BRK-B"},
		{"AAPL", "AAPL"},
		{"AI.PA", "AI.PA"},
		{"MT.AS", "MT.AS"},
		{"STLAP.PA", "STLAP.PA"},
		{"RDS.A.L", "RDS-A.L"},
		{"^GSPC", "^GSPC"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := ToHyphenClass(tt.input)
			if result != tt.expected {
				t.Errorf("ToHyphenClass(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestToDotClass(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"BRK-B", "BRK.B"},
		{"BRK.B", "BRK.B"},
		{"AI.PA", "AI.PA"},
		{"RDS-A.L", "RDS.A.L"},
		{"msft", "MSFT"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := ToDotClass(tt.input)
			if result != tt.expected {
				t.Errorf("ToDotClass(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestClassRewriteIdempotent(t *testing.T) {
	symbols := []string{"BRK.B", "BRK-B", "AI.PA", "URW.AS", "BF.B", "GOOGL", "RDS.A.L", " $bf-b "}
	for _, s := range symbols {
		once := ToHyphenClass(s)
		if twice := ToHyphenClass(once); twice != once {
			t.Errorf("ToHyphenClass not idempotent for %q: %q then %q", s, once, twice)
		}
		once = ToDotClass(s)
		if twice := ToDotClass(once); twice != once {
			t.Errorf("ToDotClass not idempotent for %q: %q then %q", s, once, twice)
		}
	}
}

func TestSplitExchangeSuffix(t *testing.T) {
	tests := []struct {
		input      string
		wantBase   string
		wantSuffix string
	}{
		{"AI.PA", "AI", ".PA"},
		{"BRK.B", "BRK.B", ""},
		{"VOD.L", "VOD", ".L"},
		{"AAPL", "AAPL", ""},
		{".PA", ".PA", ""},
		{"AI.", "AI.", ""},
	}

	for _, tt := range tests {
		base, suffix := SplitExchangeSuffix(tt.input)
		if base != tt.wantBase || suffix != tt.wantSuffix {
			t.Errorf("SplitExchangeSuffix(%q) = (%q, %q), want (%q, %q)",
				tt.input, base, suffix, tt.wantBase, tt.wantSuffix)
		}
	}
}
