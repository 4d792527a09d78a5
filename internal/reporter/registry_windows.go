//go:build windows

package reporter

import (
	"fmt"
	"strings"

	"golang.org/x/sys/windows/registry"
)

// RegistryResolver reads the install directory from an HKLM string value.
// An empty Key or Value means the agent's standard location.
type RegistryResolver struct {
	Key   string
	Value string
}

// Resolve reads Key\Value from the native registry view, then from the
// 32-bit view, where the agent registers itself on 64-bit hosts.
func (r RegistryResolver) Resolve() (string, error) {
	key, value := r.location()
	var lastErr error
	for _, view := range []uint32{0, registry.WOW64_32KEY} {
		dir, err := readString(key, value, view)
		if err == nil {
			return dir, nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("%w: HKLM\\%s\\%s: %w", ErrInstallPathUnresolved, key, value, lastErr)
}

func readString(key, value string, view uint32) (string, error) {
	k, err := registry.OpenKey(registry.LOCAL_MACHINE, key, registry.QUERY_VALUE|view)
	if err != nil {
		return "", err
	}
	defer k.Close()

	dir, _, err := k.GetStringValue(value)
	if err != nil {
		return "", err
	}
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return "", fmt.Errorf("value %s is empty", value)
	}
	return dir, nil
}
