// Package syscmd runs external diagnostic commands with a predictable PATH.
package syscmd

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"strings"
)

// Result captures the output of one external command invocation.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// OK reports whether the command ran and exited zero.
func (r Result) OK() bool { return r.ExitCode == 0 }

// Runner executes an external command and captures its trimmed output.
// Non-zero exits are not errors at this layer; callers interpret them.
type Runner interface {
	Run(name string, args ...string) Result
}

type execRunner struct {
	env []string
}

// New returns a Runner whose subprocesses always have sbinDir on PATH.
// Cron environments routinely lack /usr/sbin, where zpool and smartctl live.
func New(sbinDir string) Runner {
	return &execRunner{env: EnsurePath(os.Environ(), sbinDir)}
}

func (r *execRunner) Run(name string, args ...string) Result {
	cmd := exec.Command(name, args...)
	cmd.Env = r.env

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{
		Stdout: strings.TrimSpace(stdout.String()),
		Stderr: strings.TrimSpace(stderr.String()),
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
		} else {
			// Command could not be started at all.
			res.ExitCode = -1
			if res.Stderr == "" {
				res.Stderr = err.Error()
			}
		}
	}
	return res
}

// EnsurePath returns env with dir prepended to the PATH entry unless the PATH
// already contains dir as a component.
func EnsurePath(env []string, dir string) []string {
	if dir == "" {
		return env
	}
	out := make([]string, len(env))
	copy(out, env)
	for i, kv := range out {
		if !strings.HasPrefix(kv, "PATH=") {
			continue
		}
		path := strings.TrimPrefix(kv, "PATH=")
		for _, p := range strings.Split(path, string(os.PathListSeparator)) {
			if p == dir {
				return out
			}
		}
		out[i] = "PATH=" + dir + string(os.PathListSeparator) + path
		return out
	}
	return append(out, "PATH="+dir)
}
