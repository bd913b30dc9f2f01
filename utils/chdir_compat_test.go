package utils

import (
	"os"
	"testing"
)

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains: it changes
// the working directory and restores the original one when the test ends.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
