//go:build windows

package fingerprint

import "golang.org/x/sys/windows/registry"

var windowsSources = []struct {
	key    string
	value  string
	source string
}{
	{`SOFTWARE\Microsoft\Cryptography`, "MachineGuid", "MachineGuid"},
	{`SOFTWARE\Microsoft\Windows NT\CurrentVersion`, "ProductId", "Windows ProductId"},
}

func fromPlatform() Info {
	for _, src := range windowsSources {
		key, err := registry.OpenKey(registry.LOCAL_MACHINE, src.key, registry.QUERY_VALUE)
		if err != nil {
			continue
		}
		id, _, err := key.GetStringValue(src.value)
		key.Close()
		if err != nil || id == "" {
			continue
		}
		return Info{
			Fingerprint: canonicalUUID(id),
			Source:      src.source,
			Path:        `HKLM\` + src.key + `\` + src.value,
			Components:  []string{id},
		}
	}
	return Info{}
}
