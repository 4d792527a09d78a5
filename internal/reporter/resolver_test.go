package reporter

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/hostops/terminate/internal/constants"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func TestStaticResolver(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file")
	if err := os.WriteFile(file, nil, 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"existing dir", dir, false},
		{"empty", "", true},
		{"blank", "   ", true},
		{"missing", filepath.Join(dir, "nope"), true},
		{"file not dir", file, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := StaticResolver(tt.path).Resolve()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Resolve() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInstallPathUnresolved) {
				t.Errorf("Resolve() error = %v, want ErrInstallPathUnresolved", err)
			}
			if err == nil && got != tt.path {
				t.Errorf("Resolve() = %q, want %q", got, tt.path)
			}
		})
	}
}

func TestChain(t *testing.T) {
	fail := ResolverFunc(func() (string, error) { return "", errors.New("nope") })
	ok := ResolverFunc(func() (string, error) { return "/found", nil })

	got, err := Chain{fail, ok}.Resolve()
	if err != nil || got != "/found" {
		t.Errorf("Chain.Resolve() = %q, %v", got, err)
	}

	_, err = Chain{fail, fail}.Resolve()
	if !errors.Is(err, ErrInstallPathUnresolved) {
		t.Errorf("Chain.Resolve() error = %v, want ErrInstallPathUnresolved", err)
	}

	_, err = Chain{}.Resolve()
	if !errors.Is(err, ErrInstallPathUnresolved) {
		t.Errorf("empty Chain.Resolve() error = %v, want ErrInstallPathUnresolved", err)
	}
}

func TestRegistryResolver_Location(t *testing.T) {
	tests := []struct {
		name      string
		r         RegistryResolver
		wantKey   string
		wantValue string
	}{
		{"defaults", RegistryResolver{}, constants.ReporterRegistryKey, constants.ReporterRegistryValue},
		{"configured", RegistryResolver{Key: `SOFTWARE\Ivanti\Agent`, Value: "InstallDir"}, `SOFTWARE\Ivanti\Agent`, "InstallDir"},
		{"value only", RegistryResolver{Value: "InstallDir"}, constants.ReporterRegistryKey, "InstallDir"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, value := tt.r.location()
			if key != tt.wantKey || value != tt.wantValue {
				t.Errorf("location() = %q, %q; want %q, %q", key, value, tt.wantKey, tt.wantValue)
			}
		})
	}
}
