package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// InstanceType identifies the kind of trustee process.
type InstanceType string

const (
	InstanceServe    InstanceType = "serve"
	InstanceServeMCP InstanceType = "serve-mcp"
)

// Instance is one running trustee process recorded in instances.json.
// Fingerprint identifies the host; storage roots on synced filesystems can
// be served from more than one machine.
type Instance struct {
	Type        InstanceType `json:"type"`
	PID         int          `json:"pid"`
	Port        int          `json:"port,omitempty"`
	Host        string       `json:"host,omitempty"`
	Fingerprint string       `json:"fingerprint,omitempty"`
	StartedAt   time.Time    `json:"started_at"`
}

// RegisterInstance records the calling process. Entries whose PID has
// exited are dropped on the same write.
func RegisterInstance(inst Instance) error {
	return updateInstances(func(live []Instance) []Instance {
		return append(live, inst)
	})
}

// UnregisterInstance removes the entry for pid.
func UnregisterInstance(pid int) error {
	return updateInstances(func(live []Instance) []Instance {
		kept := live[:0]
		for _, inst := range live {
			if inst.PID != pid {
				kept = append(kept, inst)
			}
		}
		return kept
	})
}

// ListInstances returns the recorded processes that are still running.
// Stale entries found along the way are persisted away.
func ListInstances() ([]Instance, error) {
	path, err := instancesPath()
	if err != nil {
		return nil, err
	}
	all, err := loadInstances(path)
	if err != nil {
		return nil, err
	}
	live := pruneDead(all)
	if len(live) != len(all) {
		// Best effort; the next write repairs the file anyway.
		saveInstances(path, live)
	}
	return live, nil
}

// FindInstanceByPort reports the live instance bound to port, if any.
func FindInstanceByPort(port int) *Instance {
	live, err := ListInstances()
	if err != nil {
		return nil
	}
	for i := range live {
		if live[i].Port == port {
			return &live[i]
		}
	}
	return nil
}

func updateInstances(mutate func([]Instance) []Instance) error {
	path, err := instancesPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	// A corrupt or missing file starts the registry over.
	all, _ := loadInstances(path)
	return saveInstances(path, mutate(pruneDead(all)))
}

func instancesPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "instances.json"), nil
}

func loadInstances(path string) ([]Instance, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var all []Instance
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	return all, nil
}

func saveInstances(path string, all []Instance) error {
	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func pruneDead(all []Instance) []Instance {
	live := make([]Instance, 0, len(all))
	for _, inst := range all {
		if processAlive(inst.PID) {
			live = append(live, inst)
		}
	}
	return live
}
