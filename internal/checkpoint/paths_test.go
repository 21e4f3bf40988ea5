package checkpoint

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestCanonicalizePath_EquivalentSpellings(t *testing.T) {
	base := t.TempDir()
	target := filepath.Join(base, "project")
	if err := os.MkdirAll(target, 0o755); err != nil {
		t.Fatalf("creating target: %v", err)
	}

	canonical, err := CanonicalizePath(target)
	if err != nil {
		t.Fatalf("canonicalizing baseline: %v", err)
	}

	spellings := map[string]string{
		"trailing separator": target + string(os.PathSeparator),
		"dot-dot":            filepath.Join(base, "project", "..", "project"),
		"dot":                filepath.Join(base, ".", "project"),
	}
	for name, spelling := range spellings {
		got, err := CanonicalizePath(spelling)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", name, err)
			continue
		}
		if got != canonical {
			t.Errorf("%s: got %q, want %q", name, got, canonical)
		}
	}
}

func TestCanonicalizePath_Relative(t *testing.T) {
	base := t.TempDir()
	target := filepath.Join(base, "project")
	if err := os.MkdirAll(target, 0o755); err != nil {
		t.Fatalf("creating target: %v", err)
	}

	canonical, err := CanonicalizePath(target)
	if err != nil {
		t.Fatalf("canonicalizing absolute: %v", err)
	}

	t.Chdir(base)
	got, err := CanonicalizePath("project")
	if err != nil {
		t.Fatalf("canonicalizing relative: %v", err)
	}
	if got != canonical {
		t.Errorf("relative spelling resolved to %q, want %q", got, canonical)
	}
}

func TestCanonicalizePath_Symlink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink creation requires privileges on windows")
	}

	base := t.TempDir()
	target := filepath.Join(base, "project")
	if err := os.MkdirAll(target, 0o755); err != nil {
		t.Fatalf("creating target: %v", err)
	}
	link := filepath.Join(base, "link")
	if err := os.Symlink(target, link); err != nil {
		t.Fatalf("creating symlink: %v", err)
	}

	fromTarget, err := CanonicalizePath(target)
	if err != nil {
		t.Fatalf("canonicalizing target: %v", err)
	}
	fromLink, err := CanonicalizePath(link)
	if err != nil {
		t.Fatalf("canonicalizing link: %v", err)
	}
	if fromTarget != fromLink {
		t.Errorf("symlink resolved to %q, target to %q", fromLink, fromTarget)
	}

	// Equal canonical forms must mean equal identifiers.
	if HashPath(fromTarget) != HashPath(fromLink) {
		t.Error("symlink and target produced different hashes")
	}
}

func TestCanonicalizePath_NotFound(t *testing.T) {
	_, err := CanonicalizePath(filepath.Join(t.TempDir(), "never-created"))
	if !errors.Is(err, ErrPathNotFound) {
		t.Errorf("expected ErrPathNotFound, got %v", err)
	}

	_, err = CanonicalizePath("")
	if !errors.Is(err, ErrPathNotFound) {
		t.Errorf("expected ErrPathNotFound for empty path, got %v", err)
	}
}

func TestCanonicalizePath_PermissionDenied(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("chmod-based permission tests are not meaningful on windows")
	}
	if os.Geteuid() == 0 {
		t.Skip("running as root, permission checks are bypassed")
	}

	base := t.TempDir()
	locked := filepath.Join(base, "locked")
	if err := os.MkdirAll(filepath.Join(locked, "inner"), 0o755); err != nil {
		t.Fatalf("creating locked dir: %v", err)
	}
	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatalf("locking dir: %v", err)
	}
	t.Cleanup(func() { os.Chmod(locked, 0o755) })

	_, err := CanonicalizePath(filepath.Join(locked, "inner"))
	if !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("expected ErrPermissionDenied, got %v", err)
	}
}
