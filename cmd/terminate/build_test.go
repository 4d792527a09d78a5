package main

import (
	"os"
	"os/exec"
	"runtime"
	"testing"
)

// TestCrossPlatformBuild verifies that the command compiles for every target
// platform. The registry resolver is Windows-only, so a missing stub shows up
// here rather than on a client.
func TestCrossPlatformBuild(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping cross-platform build test in short mode")
	}
	if os.Getenv("CI") == "" && runtime.GOOS != "darwin" && runtime.GOOS != "linux" {
		t.Skip("skipping cross-platform build test on unsupported platform")
	}

	platforms := []struct {
		goos   string
		goarch string
	}{
		{"windows", "amd64"},
		{"windows", "386"},
		{"windows", "arm64"},
		{"linux", "amd64"},
		{"darwin", "arm64"},
	}

	for _, p := range platforms {
		p := p
		t.Run(p.goos+"_"+p.goarch, func(t *testing.T) {
			t.Parallel()

			cmd := exec.Command("go", "build", "-o", os.DevNull, ".")
			cmd.Env = append(os.Environ(),
				"GOOS="+p.goos,
				"GOARCH="+p.goarch,
				"CGO_ENABLED=0",
			)

			output, err := cmd.CombinedOutput()
			if err != nil {
				t.Errorf("build failed for %s/%s:\n%s", p.goos, p.goarch, output)
			}
		})
	}
}
