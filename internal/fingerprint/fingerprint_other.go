//go:build !darwin && !linux && !windows

package fingerprint

// No platform identity source here; Get falls through to the cached or
// minted fingerprint.
func fromPlatform() Info {
	return Info{}
}
