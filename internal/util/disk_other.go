//go:build !unix

package util

// GetAvailableSpace is not implemented on this platform and reports 0.
func GetAvailableSpace(dir string) (uint64, error) {
	return 0, nil
}
