//go:build darwin

package fingerprint

import (
	"os/exec"
	"strings"
)

// fromPlatform reads the hardware UUID on macOS, preferring ioreg and
// falling back to the slower system_profiler.
func fromPlatform() Info {
	if out, err := exec.Command("ioreg", "-rd1", "-c", "IOPlatformExpertDevice").Output(); err == nil {
		// "IOPlatformUUID" = "XXXX-XXXX-..."
		if uuid := quotedField(string(out), "IOPlatformUUID", "=\""); uuid != "" {
			return Info{
				Fingerprint: canonicalUUID(uuid),
				Source:      "IOPlatformUUID",
				Path:        "ioreg -rd1 -c IOPlatformExpertDevice",
				Components:  []string{uuid},
			}
		}
	}

	if out, err := exec.Command("system_profiler", "SPHardwareDataType").Output(); err == nil {
		if uuid := quotedField(string(out), "Hardware UUID", ": "); uuid != "" {
			return Info{
				Fingerprint: canonicalUUID(uuid),
				Source:      "Hardware UUID",
				Path:        "system_profiler SPHardwareDataType",
				Components:  []string{uuid},
			}
		}
	}

	return Info{}
}

// quotedField finds the line containing label and returns what follows sep,
// trimmed of quotes and whitespace.
func quotedField(out, label, sep string) string {
	for _, line := range strings.Split(out, "\n") {
		if !strings.Contains(line, label) {
			continue
		}
		_, rest, found := strings.Cut(line, sep)
		if !found {
			continue
		}
		return strings.TrimSpace(strings.Trim(rest, "\" "))
	}
	return ""
}
