package cmd

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"strings"
	"testing"
)

// execute runs the root command with args and returns its combined output
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	RootCmd.SetArgs(args)
	RootCmd.SetOut(&out)
	RootCmd.SetErr(&out)
	t.Cleanup(func() {
		RootCmd.SetArgs(nil)
		RootCmd.SetOut(nil)
		RootCmd.SetErr(nil)
	})

	err := RootCmd.Execute()
	return out.String(), err
}

func TestRootRequiresPortAndPath(t *testing.T) {
	for _, args := range [][]string{{}, {"8080"}} {
		out, err := execute(t, args...)
		if err == nil {
			t.Errorf("Expected error for args %v", args)
		}
		if !strings.Contains(out, "Usage:") {
			t.Errorf("Expected usage for args %v, got %q", args, out)
		}
	}
}

func TestRootRejectsInvalidPort(t *testing.T) {
	if _, err := execute(t, "abc", "db.txt"); err == nil {
		t.Errorf("Expected error for non numeric port")
	}
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if out != "miniDB v"+Version+"\n" {
		t.Errorf("Unexpected version output %q", out)
	}
}

// TestExecuteExitCode runs Execute in a child process, since it exits the process
func TestExecuteExitCode(t *testing.T) {
	if os.Getenv("GO_TEST_MINIDB_EXECUTE") == "1" {
		os.Args = []string{"minidb", "8080"}
		Execute()
		return
	}

	child := exec.Command(os.Args[0], "-test.run=^TestExecuteExitCode$")
	child.Env = append(os.Environ(), "GO_TEST_MINIDB_EXECUTE=1")
	var stderr bytes.Buffer
	child.Stderr = &stderr

	err := child.Run()
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("Expected the process to fail, got %v", err)
	}
	if exitErr.ExitCode() != 1 {
		t.Errorf("Expected exit code 1, got %d", exitErr.ExitCode())
	}
	if !strings.Contains(stderr.String(), "requires at least 2 arg(s)") {
		t.Errorf("Expected usage error on stderr, got %q", stderr.String())
	}
}
