package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/ncobase/recruit/data/config"
)

func TestWithPragmas(t *testing.T) {
	tests := []struct {
		source  string
		want    []string
		without []string
	}{
		{"file:recruit.db", []string{"_foreign_keys=on", "_busy_timeout=5000", "_journal_mode=WAL"}, nil},
		{"file::memory:?cache=shared", []string{"cache=shared", "_foreign_keys=on"}, []string{"_journal_mode"}},
		{"file:x?mode=memory&_busy_timeout=100", []string{"_busy_timeout=100"}, []string{"_busy_timeout=5000", "_journal_mode"}},
	}
	for _, tt := range tests {
		got := withPragmas(tt.source)
		for _, w := range tt.want {
			if !strings.Contains(got, w) {
				t.Errorf("withPragmas(%q) = %q, missing %q", tt.source, got, w)
			}
		}
		for _, w := range tt.without {
			if strings.Contains(got, w) {
				t.Errorf("withPragmas(%q) = %q, unexpected %q", tt.source, got, w)
			}
		}
	}
}

func TestConnect(t *testing.T) {
	conn, err := driver{}.Connect(context.Background(), &config.DBNode{Source: "file::memory:?cache=shared"})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	db := conn.(*sql.DB)
	defer db.Close()

	if got := db.Stats().MaxOpenConnections; got != 1 {
		t.Errorf("max open = %d, want 1", got)
	}
	if err := (driver{}).Ping(context.Background(), conn); err != nil {
		t.Errorf("Ping: %v", err)
	}
	if _, err := (driver{}).Connect(context.Background(), &config.DBNode{}); err == nil {
		t.Error("expected error for empty source")
	}
}
