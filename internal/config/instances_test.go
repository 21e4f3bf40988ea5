package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func serveInstance(port int) Instance {
	return Instance{
		Type:      InstanceServe,
		PID:       os.Getpid(),
		Port:      port,
		Host:      "127.0.0.1",
		StartedAt: time.Now(),
	}
}

func mustRegister(t *testing.T, inst Instance) {
	t.Helper()
	if err := RegisterInstance(inst); err != nil {
		t.Fatalf("RegisterInstance: %v", err)
	}
}

func mustList(t *testing.T) []Instance {
	t.Helper()
	live, err := ListInstances()
	if err != nil {
		t.Fatalf("ListInstances: %v", err)
	}
	return live
}

func TestRegisterAndListInstances(t *testing.T) {
	t.Setenv("TRUSTEE_HOME", t.TempDir())

	mustRegister(t, serveInstance(7433))

	live := mustList(t)
	if len(live) != 1 {
		t.Fatalf("got %d instances, want 1", len(live))
	}
	if live[0].Type != InstanceServe || live[0].Port != 7433 {
		t.Errorf("unexpected entry: %+v", live[0])
	}

	// The registry file lands in the configured home.
	if _, err := os.Stat(filepath.Join(os.Getenv("TRUSTEE_HOME"), "instances.json")); err != nil {
		t.Errorf("instances.json not written: %v", err)
	}
}

func TestUnregisterInstance(t *testing.T) {
	t.Setenv("TRUSTEE_HOME", t.TempDir())

	mustRegister(t, serveInstance(7433))
	if err := UnregisterInstance(os.Getpid()); err != nil {
		t.Fatalf("UnregisterInstance: %v", err)
	}

	if live := mustList(t); len(live) != 0 {
		t.Errorf("got %d instances after unregister, want 0", len(live))
	}
}

func TestDeadPIDsArePruned(t *testing.T) {
	t.Setenv("TRUSTEE_HOME", t.TempDir())

	dead := serveInstance(7433)
	dead.PID = 999999999 // not a plausible live PID
	mustRegister(t, dead)

	if live := mustList(t); len(live) != 0 {
		t.Errorf("dead entry survived listing: %+v", live)
	}
}

func TestFindInstanceByPort(t *testing.T) {
	t.Setenv("TRUSTEE_HOME", t.TempDir())

	mustRegister(t, serveInstance(7433))

	found := FindInstanceByPort(7433)
	if found == nil || found.PID != os.Getpid() {
		t.Fatalf("FindInstanceByPort(7433) = %+v", found)
	}
	if FindInstanceByPort(9999) != nil {
		t.Error("unused port reported an instance")
	}
}

func TestSameProcessCanHoldTwoRoles(t *testing.T) {
	t.Setenv("TRUSTEE_HOME", t.TempDir())

	mustRegister(t, serveInstance(7433))
	mcp := serveInstance(7434)
	mcp.Type = InstanceServeMCP
	mustRegister(t, mcp)

	if live := mustList(t); len(live) != 2 {
		t.Errorf("got %d instances, want 2", len(live))
	}
}
