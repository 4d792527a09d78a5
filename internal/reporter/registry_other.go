//go:build !windows

package reporter

import (
	"fmt"
	"runtime"
)

// RegistryResolver reads the install directory from an HKLM string value.
// There is no registry outside Windows, so it never resolves here.
type RegistryResolver struct {
	Key   string
	Value string
}

// Resolve always fails on this platform.
func (r RegistryResolver) Resolve() (string, error) {
	key, value := r.location()
	return "", fmt.Errorf("%w: no registry on %s to read HKLM\\%s\\%s (set reporter.install_path)",
		ErrInstallPathUnresolved, runtime.GOOS, key, value)
}
