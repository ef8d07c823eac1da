package syscmd

import (
	"strings"
	"testing"
)

func TestEnsurePath(t *testing.T) {
	tests := []struct {
		name string
		env  []string
		dir  string
		want string
	}{
		{
			"prepends when absent",
			[]string{"HOME=/root", "PATH=/usr/bin:/bin"},
			"/usr/sbin",
			"PATH=/usr/sbin:/usr/bin:/bin",
		},
		{
			"untouched when already present",
			[]string{"PATH=/usr/sbin:/usr/bin"},
			"/usr/sbin",
			"PATH=/usr/sbin:/usr/bin",
		},
		{
			"present mid-path is recognized",
			[]string{"PATH=/usr/bin:/usr/sbin:/bin"},
			"/usr/sbin",
			"PATH=/usr/bin:/usr/sbin:/bin",
		},
		{
			"substring components do not count",
			[]string{"PATH=/usr/sbin-backup:/bin"},
			"/usr/sbin",
			"PATH=/usr/sbin:/usr/sbin-backup:/bin",
		},
		{
			"no PATH entry at all",
			[]string{"HOME=/root"},
			"/usr/sbin",
			"PATH=/usr/sbin",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EnsurePath(tt.env, tt.dir)
			var gotPath string
			for _, kv := range got {
				if strings.HasPrefix(kv, "PATH=") {
					gotPath = kv
				}
			}
			if gotPath != tt.want {
				t.Errorf("EnsurePath() PATH = %q, want %q", gotPath, tt.want)
			}
		})
	}
}

func TestEnsurePathDoesNotMutateInput(t *testing.T) {
	env := []string{"PATH=/bin"}
	EnsurePath(env, "/usr/sbin")
	if env[0] != "PATH=/bin" {
		t.Errorf("input env mutated: %v", env)
	}
}

func TestEnsurePathEmptyDir(t *testing.T) {
	env := []string{"PATH=/bin"}
	got := EnsurePath(env, "")
	if len(got) != 1 || got[0] != "PATH=/bin" {
		t.Errorf("EnsurePath(env, \"\") = %v, want unchanged", got)
	}
}

func TestRunCapturesExitCode(t *testing.T) {
	r := New("/usr/sbin")

	res := r.Run("sh", "-c", "echo out; echo err >&2; exit 3")
	if res.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", res.ExitCode)
	}
	if res.Stdout != "out" || res.Stderr != "err" {
		t.Errorf("output = %q / %q, want out / err", res.Stdout, res.Stderr)
	}
	if res.OK() {
		t.Error("OK() = true for non-zero exit")
	}
}

func TestRunMissingBinary(t *testing.T) {
	r := New("/usr/sbin")
	res := r.Run("definitely-not-a-real-binary-xyz")
	if res.ExitCode != -1 {
		t.Errorf("ExitCode = %d, want -1", res.ExitCode)
	}
	if res.Stderr == "" {
		t.Error("Stderr empty, want start error text")
	}
}
