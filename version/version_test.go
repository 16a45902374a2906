package version

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestGetVersionInfo(t *testing.T) {
	old := Version
	Version = "1.4.0"
	defer func() { Version = old }()

	info := GetVersionInfo()
	if info.Version != "1.4.0" {
		t.Errorf("Version = %q, want injected value", info.Version)
	}
	if info.GoVersion == "" {
		t.Error("GoVersion is empty")
	}
	if !strings.Contains(info.String(), "Version: 1.4.0") {
		t.Errorf("String() = %q", info.String())
	}

	out, err := info.JSON()
	if err != nil {
		t.Fatalf("JSON() error = %v", err)
	}
	var decoded Info
	if err := json.Unmarshal([]byte(out), &decoded); err != nil || decoded.Version != "1.4.0" {
		t.Errorf("JSON() = %s, err %v", out, err)
	}
}
