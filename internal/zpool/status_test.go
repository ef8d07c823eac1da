package zpool

import (
	"strings"
	"testing"

	"github.com/rcarmo/proxmox-zpool-monitoring/internal/syscmd"
)

// fakeRunner returns canned results keyed by the full command line.
type fakeRunner struct {
	results map[string]syscmd.Result
}

func (f *fakeRunner) Run(name string, args ...string) syscmd.Result {
	key := name + " " + strings.Join(args, " ")
	if r, ok := f.results[key]; ok {
		return r
	}
	return syscmd.Result{ExitCode: 1, Stderr: "command not faked: " + key}
}

const healthyStatus = `  pool: rpool
 state: ONLINE
  scan: scrub repaired 0B in 00:02:11 with 0 errors on Sun Mar  8 00:26:12 2026
config:

	NAME                                                  STATE     READ WRITE CKSUM
	rpool                                                 ONLINE       0     0     0
	  mirror-0                                            ONLINE       0     0     0
	    ata-CT1000MX500SSD1_2151E5D8C9BB-part3            ONLINE       0     0     0
	    nvme-Samsung_SSD_980_PRO_1TB_S5GXNX0T123456-part3 ONLINE       0     0     0

errors: No known data errors`

const degradedStatus = `  pool: rpool
 state: DEGRADED
status: One or more devices could not be used because the label is missing or
	invalid.
config:

	NAME                                                  STATE     READ WRITE CKSUM
	rpool                                                 DEGRADED     0     0     0
	  mirror-0                                            DEGRADED     0     0     0
	    ata-CT1000MX500SSD1_2151E5D8C9BB-part3            ONLINE       0     0     0
	    nvme-Samsung_SSD_980_PRO_1TB_S5GXNX0T123456-part3 UNAVAIL      0     0     0

errors: No known data errors`

func poolRunner(statusX syscmd.Result, full string) *fakeRunner {
	return &fakeRunner{results: map[string]syscmd.Result{
		"zpool status -x rpool":                   statusX,
		"zpool status rpool":                      {Stdout: full},
		"zfs get -H -o value used rpool":          {Stdout: "431G"},
		"zfs get -H -o value available rpool":     {Stdout: "1.2T"},
		"zfs get -H -o value compressratio rpool": {Stdout: "1.18x"},
	}}
}

func TestEvaluateHealthyPool(t *testing.T) {
	run := poolRunner(syscmd.Result{Stdout: "pool 'rpool' is healthy"}, healthyStatus)
	v, ids := NewEvaluator(run).Evaluate("rpool")

	if v.Health != Healthy || v.Priority != 1 {
		t.Errorf("verdict = %v priority %d, want Healthy priority 1", v.Health, v.Priority)
	}
	if v.StatusLine != "healthy" {
		t.Errorf("StatusLine = %q, want healthy", v.StatusLine)
	}
	if v.UsageLine != "Usage: 431G used, 1.2T free (1.18x compression)" {
		t.Errorf("UsageLine = %q", v.UsageLine)
	}
	// Healthy pools never carry a configuration detail block.
	if v.Detail != "" {
		t.Errorf("Detail = %q, want empty", v.Detail)
	}

	want := []string{
		"ata-CT1000MX500SSD1_2151E5D8C9BB",
		"nvme-Samsung_SSD_980_PRO_1TB_S5GXNX0T123456",
	}
	if len(ids) != len(want) {
		t.Fatalf("ids = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ids[%d] = %q, want %q", i, ids[i], want[i])
		}
	}
}

func TestEvaluatePoolNotFound(t *testing.T) {
	run := &fakeRunner{results: map[string]syscmd.Result{
		"zpool status -x tank": {ExitCode: 1, Stderr: "cannot open 'tank': no such pool"},
	}}
	v, ids := NewEvaluator(run).Evaluate("tank")

	if v.Health != NotFound || v.Priority != 8 {
		t.Errorf("verdict = %v priority %d, want NotFound priority 8", v.Health, v.Priority)
	}
	if v.UsageLine != "" || v.Detail != "" {
		t.Errorf("missing pool should carry no usage or detail, got %q / %q", v.UsageLine, v.Detail)
	}
	if len(ids) != 0 {
		t.Errorf("ids = %v, want none", ids)
	}
}

func TestEvaluateDegradedPool(t *testing.T) {
	run := poolRunner(syscmd.Result{ExitCode: 1, Stdout: degradedStatus}, degradedStatus)
	v, ids := NewEvaluator(run).Evaluate("rpool")

	if v.Health != Degraded || v.Priority != 8 {
		t.Errorf("verdict = %v priority %d, want Degraded priority 8", v.Health, v.Priority)
	}
	if v.StatusLine != "pool: rpool" {
		t.Errorf("StatusLine = %q, want first non-empty line", v.StatusLine)
	}
	if !strings.HasPrefix(v.Detail, "config:") {
		t.Errorf("Detail should start at the config section, got %q", v.Detail)
	}
	if strings.Contains(v.Detail, "No known data errors") {
		t.Errorf("boilerplate errors line not stripped from %q", v.Detail)
	}
	if len(ids) != 2 {
		t.Errorf("ids = %v, want 2 identifiers", ids)
	}
}

func TestEvaluateDegradedFallsBackToStderr(t *testing.T) {
	run := &fakeRunner{results: map[string]syscmd.Result{
		"zpool status -x rpool": {ExitCode: 1, Stderr: "permission denied\nmore context"},
		"zpool status rpool":    {},
	}}
	v, _ := NewEvaluator(run).Evaluate("rpool")
	if v.StatusLine != "permission denied" {
		t.Errorf("StatusLine = %q, want first stderr line", v.StatusLine)
	}
}

func TestEvaluateUsageRequiresAllThreeProperties(t *testing.T) {
	run := poolRunner(syscmd.Result{Stdout: "pool 'rpool' is healthy"}, healthyStatus)
	run.results["zfs get -H -o value compressratio rpool"] = syscmd.Result{ExitCode: 1}

	v, _ := NewEvaluator(run).Evaluate("rpool")
	if v.UsageLine != "" {
		t.Errorf("UsageLine = %q, want empty when a property is missing", v.UsageLine)
	}
}

func TestExtractConfigSection(t *testing.T) {
	got := ExtractConfigSection(degradedStatus)
	if !strings.HasPrefix(got, "config:") {
		t.Errorf("ExtractConfigSection() = %q, want prefix config:", got)
	}
	if !strings.Contains(got, "mirror-0") {
		t.Errorf("config body missing from %q", got)
	}
	if strings.Contains(got, "No known data errors") {
		t.Errorf("boilerplate not stripped from %q", got)
	}

	if got := ExtractConfigSection("no config marker here"); got != "" {
		t.Errorf("ExtractConfigSection() = %q, want empty", got)
	}
}
