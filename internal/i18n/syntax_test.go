package i18n

import (
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
)

// Init ignores per-file load errors, so a broken TOML file would silently
// drop its whole language. This test makes the breakage loud.
func TestEmbeddedLocalesParse(t *testing.T) {
	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		t.Fatalf("reading embedded locales: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("no locale files embedded")
	}

	for _, e := range entries {
		name := e.Name()
		if !strings.HasSuffix(name, ".toml") {
			t.Errorf("unexpected file in locales/: %s", name)
			continue
		}
		t.Run(name, func(t *testing.T) {
			data, err := localeFS.ReadFile("locales/" + name)
			if err != nil {
				t.Fatal(err)
			}
			var v map[string]any
			if _, err := toml.Decode(string(data), &v); err != nil {
				t.Fatalf("invalid TOML: %v", err)
			}
			if len(v) == 0 {
				t.Error("locale file is empty")
			}
		})
	}
}
