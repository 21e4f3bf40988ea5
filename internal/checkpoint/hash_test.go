package checkpoint

import "testing"

func TestHashPath_Deterministic(t *testing.T) {
	a := HashPath("/home/dev/project")
	b := HashPath("/home/dev/project")
	if a != b {
		t.Errorf("same path hashed differently: %s vs %s", a, b)
	}
	if !a.Valid() {
		t.Errorf("digest %q is not a valid project hash", a)
	}
}

func TestHashPath_DistinctPaths(t *testing.T) {
	a := HashPath("/home/dev/project")
	b := HashPath("/home/dev/project2")
	if a == b {
		t.Errorf("distinct paths collided: %s", a)
	}
}

func TestHashPath_KnownDigest(t *testing.T) {
	// Pins the identifier format: future changes to the digest or encoding
	// would orphan every existing storage directory.
	got := HashPath("/tmp/proj")
	want := ProjectHash("29ccbcbce9441d720964b7875e45116ed5bf4cc853e454c8aedf299c0f856f93")
	if got != want {
		t.Errorf("HashPath(/tmp/proj) = %s, want %s", got, want)
	}
}
