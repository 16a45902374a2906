package postgres

import "testing"

func TestWithApplicationName(t *testing.T) {
	tests := []struct {
		dsn  string
		want string
	}{
		{"postgres://u:p@db:5432/recruit?sslmode=disable", "postgres://u:p@db:5432/recruit?application_name=recruit&sslmode=disable"},
		{"postgres://db/recruit?application_name=ops", "postgres://db/recruit?application_name=ops"},
		{"host=db user=u dbname=recruit", "host=db user=u dbname=recruit"},
	}
	for _, tt := range tests {
		if got := withApplicationName(tt.dsn); got != tt.want {
			t.Errorf("withApplicationName(%q) = %q, want %q", tt.dsn, got, tt.want)
		}
	}
}
