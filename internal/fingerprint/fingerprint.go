// Package fingerprint derives a stable machine identifier for trustee.
// Checkpoint storage roots get synced and backed up between machines; the
// fingerprint, surfaced by stats and the status endpoint, tells which
// machine a store was written on.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/trusteehq/trustee/internal/config"
)

// Info describes a fingerprint and where it came from.
type Info struct {
	// Fingerprint in normalized UUID format.
	Fingerprint string `json:"fingerprint"`

	// Source names the derivation (machine-id, MachineGuid, ...).
	Source string `json:"source"`

	// Path is the file or command the identity was read from.
	Path string `json:"path,omitempty"`

	// Components are the raw identifiers the fingerprint hashes.
	Components []string `json:"components,omitempty"`
}

func (i Info) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Fingerprint: %s\n", i.Fingerprint)
	fmt.Fprintf(&b, "Source:      %s\n", i.Source)
	if i.Path != "" {
		fmt.Fprintf(&b, "Path:        %s\n", i.Path)
	}
	return b.String()
}

// Get resolves the machine fingerprint. Platform identity sources win;
// failing those, a previously cached fingerprint; failing that, a fresh
// one is minted and cached so later runs agree.
func Get() (Info, error) {
	if info := fromPlatform(); info.Fingerprint != "" {
		return info, nil
	}
	if info := fromCache(); info.Fingerprint != "" {
		return info, nil
	}
	return mintAndCache()
}

// GetFingerprint returns only the fingerprint string.
func GetFingerprint() (string, error) {
	info, err := Get()
	if err != nil {
		return "", err
	}
	return info.Fingerprint, nil
}

// machineIDPath locates trustee's cached machine_id file. A var so tests
// can point it at a scratch directory.
var machineIDPath = func() (string, error) {
	dir, err := config.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "machine_id"), nil
}

const mintedSource = "trustee-generated"

func fromCache() Info {
	path, err := machineIDPath()
	if err != nil {
		return Info{}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Info{}
	}
	cached := strings.TrimSpace(string(data))
	if cached == "" {
		return Info{}
	}
	return Info{
		Fingerprint: canonicalUUID(cached),
		Source:      mintedSource,
		Path:        path,
	}
}

// mintAndCache derives an identity from hostname and username. Stable
// across reboots on the same account, distinct enough across machines.
func mintAndCache() (Info, error) {
	hostname, _ := os.Hostname()
	username := os.Getenv("USER")
	if username == "" {
		username = os.Getenv("USERNAME")
	}

	var components []string
	h := sha256.New()
	for _, part := range []string{hostname, username} {
		if part != "" {
			h.Write([]byte(part))
			components = append(components, part)
		}
	}
	fp := hyphenate(hex.EncodeToString(h.Sum(nil)[:16]))

	path, err := machineIDPath()
	if err != nil {
		return Info{}, fmt.Errorf("locate machine_id: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return Info{}, fmt.Errorf("create config dir: %w", err)
	}
	// 0600: the fingerprint is quasi-identifying.
	if err := os.WriteFile(path, []byte(fp+"\n"), 0600); err != nil {
		return Info{}, fmt.Errorf("cache fingerprint: %w", err)
	}

	return Info{
		Fingerprint: fp,
		Source:      mintedSource,
		Path:        path,
		Components:  components,
	}, nil
}

// canonicalUUID lowercases a raw identifier and renders it as a UUID.
// Identifiers that are not 32 hex chars after stripping get hashed first,
// so arbitrary-length platform ids still land in one shape.
func canonicalUUID(raw string) string {
	stripped := strings.ToLower(raw)
	for _, cut := range []string{"-", " "} {
		stripped = strings.ReplaceAll(stripped, cut, "")
	}
	stripped = strings.TrimSpace(stripped)

	if len(stripped) == 32 {
		return hyphenate(stripped)
	}
	sum := sha256.Sum256([]byte(stripped))
	return hyphenate(hex.EncodeToString(sum[:16]))
}

// hyphenate renders 32 hex chars in the 8-4-4-4-12 UUID shape, padding or
// truncating malformed input rather than failing.
func hyphenate(s string) string {
	if len(s) < 32 {
		s += strings.Repeat("0", 32-len(s))
	}
	s = strings.ToLower(s[:32])
	return s[0:8] + "-" + s[8:12] + "-" + s[12:16] + "-" + s[16:20] + "-" + s[20:32]
}
