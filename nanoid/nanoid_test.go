package nanoid

import "testing"

func TestToken(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		tok, err := Token()
		if err != nil {
			t.Fatalf("Token() error = %v", err)
		}
		if !IsToken(tok) {
			t.Fatalf("Token() = %q is not a valid token", tok)
		}
		if _, dup := seen[tok]; dup {
			t.Fatalf("Token() returned duplicate %q", tok)
		}
		seen[tok] = struct{}{}
	}
}

func TestIsToken(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"", false},
		{"short", false},
		{String(TokenSize), true},
		{String(TokenSize-1) + "-", false},
	}
	for _, tt := range tests {
		if got := IsToken(tt.in); got != tt.want {
			t.Errorf("IsToken(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestStringSize(t *testing.T) {
	if got := len(String()); got != defaultSize {
		t.Errorf("len(String()) = %d, want %d", got, defaultSize)
	}
	if got := len(String(8)); got != 8 {
		t.Errorf("len(String(8)) = %d", got)
	}
}
