package reporter

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/hostops/terminate/internal/constants"
)

// Resolver finds the directory the inventory scanner is installed in.
type Resolver interface {
	Resolve() (string, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func() (string, error)

// Resolve calls f.
func (f ResolverFunc) Resolve() (string, error) {
	return f()
}

// StaticResolver always resolves to a configured directory.
type StaticResolver string

// Resolve returns the directory if it is set and exists.
func (s StaticResolver) Resolve() (string, error) {
	dir := strings.TrimSpace(string(s))
	if dir == "" {
		return "", fmt.Errorf("%w: no install path configured", ErrInstallPathUnresolved)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInstallPathUnresolved, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", ErrInstallPathUnresolved, dir)
	}
	return dir, nil
}

// Chain tries each resolver in order and returns the first success.
type Chain []Resolver

// Resolve returns the first directory any resolver finds.
func (c Chain) Resolve() (string, error) {
	var errs []error
	for _, r := range c {
		dir, err := r.Resolve()
		if err == nil {
			return dir, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return "", fmt.Errorf("%w: no resolvers configured", ErrInstallPathUnresolved)
	}
	joined := errors.Join(errs...)
	if !errors.Is(joined, ErrInstallPathUnresolved) {
		return "", fmt.Errorf("%w: %w", ErrInstallPathUnresolved, joined)
	}
	return "", joined
}

// location returns the registry key and value to read, falling back to the
// agent's standard location for unset fields.
func (r RegistryResolver) location() (key, value string) {
	key, value = r.Key, r.Value
	if key == "" {
		key = constants.ReporterRegistryKey
	}
	if value == "" {
		value = constants.ReporterRegistryValue
	}
	return key, value
}
