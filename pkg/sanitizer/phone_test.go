package sanitizer

import "testing"

func TestSanitizePhone(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		region string
		want   string
	}{
		{
			name:   "already E.164",
			input:  "+6281234567890",
			region: "ID",
			want:   "+6281234567890",
		},
		{
			name:   "national format resolved with default region",
			input:  "0812-3456-7890",
			region: "ID",
			want:   "+6281234567890",
		},
		{
			name:   "international number ignores default region",
			input:  "+1 (212) 555-1234",
			region: "ID",
			want:   "+12125551234",
		},
		{
			name:   "leading and trailing spaces",
			input:  "  +6281234567890  ",
			region: "ID",
			want:   "+6281234567890",
		},
		{
			name:   "empty string",
			input:  "",
			region: "ID",
			want:   "",
		},
		{
			name:   "only whitespace",
			input:  "   ",
			region: "ID",
			want:   "",
		},
		{
			name:   "letters are left for the validator",
			input:  "call-me-maybe",
			region: "ID",
			want:   "call-me-maybe",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizePhone(tt.input, tt.region); got != tt.want {
				t.Errorf("SanitizePhone(%q, %q) = %q, want %q", tt.input, tt.region, got, tt.want)
			}
		})
	}
}

func TestSanitizePhone_Idempotent(t *testing.T) {
	once := SanitizePhone("0812 3456 7890", "ID")
	twice := SanitizePhone(once, "ID")
	if once != twice {
		t.Errorf("SanitizePhone is not idempotent: %q then %q", once, twice)
	}
}
