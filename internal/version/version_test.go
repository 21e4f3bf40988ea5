package version

import (
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	// Default build has no ldflags version; expect a dev fallback or a
	// module version, never an empty string.
	if Get() == "" {
		t.Error("Get() returned empty version")
	}
}

func TestGetWithLdflagsVersion(t *testing.T) {
	orig := Version
	Version = "v1.2.3"
	defer func() { Version = orig }()

	if got := Get(); got != "v1.2.3" {
		t.Errorf("Get() = %q, want v1.2.3", got)
	}
}

func TestString(t *testing.T) {
	s := String("trustee")
	if !strings.HasPrefix(s, "trustee version ") {
		t.Errorf("String() = %q", s)
	}
}

func TestGetInfo(t *testing.T) {
	info := GetInfo("trustee")
	if info.Name != "trustee" {
		t.Errorf("Name = %q", info.Name)
	}
	if info.Version == "" {
		t.Error("Version is empty")
	}
}
