package main

import (
	"fmt"
	"net/http"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/dennis-eisen/ptzctrl/uitest"
)

const (
	sessionName = "ptzctrl-test"
	screenW     = 120
	screenH     = 40
)

// TestTUI runs ptzctrl against ptzsim inside tmux
func TestTUI(t *testing.T) {
	if testing.Short() {
		t.Skip("end-to-end")
	}
	if err := uitest.RequireTmux(); err != nil {
		t.Skip(err)
	}

	dir := t.TempDir()
	ctlBin := filepath.Join(dir, "ptzctrl")
	simBin := filepath.Join(dir, "ptzsim")
	t.Log("Building ptzctrl and ptzsim...")
	if out, err := exec.Command("go", "build", "-o", ctlBin, ".").CombinedOutput(); err != nil {
		t.Fatalf("build ptzctrl: %v\n%s", err, out)
	}
	if out, err := exec.Command("go", "build", "-o", simBin, "./cmd/ptzsim").CombinedOutput(); err != nil {
		t.Fatalf("build ptzsim: %v\n%s", err, out)
	}

	addr, err := uitest.FreeAddr()
	if err != nil {
		t.Fatal(err)
	}
	sim, err := uitest.StartSimulator(simBin, addr)
	if err != nil {
		t.Skipf("simulator not available: %v", err)
	}
	defer func() { _ = sim.Process.Kill() }()

	cmd := fmt.Sprintf("%s -addr %s -prefs %s -log %s",
		ctlBin, addr, filepath.Join(dir, "prefs.yaml"), filepath.Join(dir, "ptzctrl.log"))
	runner, err := uitest.NewRunner(t, sessionName, screenW, screenH, cmd, "test-reports")
	if err != nil {
		t.Fatalf("create runner: %v", err)
	}
	defer runner.Close()
	defer runner.GenerateReport()

	runner.Expect("Grid shows every camera", "PTZ 3", 5*time.Second)
	runner.Test("Camera addresses shown", func() bool {
		return runner.Contains("192.168.0.101") && runner.Contains("192.168.0.103")
	})
	runner.Test("Starts in recall mode, connected", func() bool {
		return runner.Contains("RECALL") && runner.Contains("connected")
	})
	runner.Snapshot("Initial state")

	// Label the first button
	runner.SendKeys("C-l")
	runner.Expect("Ctrl+L selects label mode", "LABEL", 2*time.Second)
	runner.SendKeys("Enter")
	runner.Expect("Enter opens the label dialog", "Label PTZ 1 / 1", 2*time.Second)
	runner.Snapshot("Label dialog")
	runner.Type("Pulpit")
	runner.SendKeys("Down", "Enter")
	runner.Test("Dialog closes on save", func() bool { return runner.WaitGone("Label PTZ", 2*time.Second) })
	runner.Expect("New label is on the grid", "Pulpit", 2*time.Second)

	// Tally from outside turns protection into a reject
	req, _ := http.NewRequest(http.MethodPut, fmt.Sprintf("http://%s/tally/0/2", addr), nil)
	resp, err := http.DefaultClient.Do(req)
	runner.Test("Simulator accepts tally", func() bool {
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusNoContent
	})

	runner.SendKeys(":")
	runner.Expect("Command palette opens", "Commands", 2*time.Second)
	runner.Type("protection on")
	runner.SendKeys("Enter")
	runner.Test("Palette closes on enter", func() bool { return runner.WaitGone("Commands", 2*time.Second) })
	runner.Expect("Protection is shown in the status bar", "protection on", 2*time.Second)

	runner.SendKeys("C-r")
	runner.Expect("Ctrl+R selects recall mode", "RECALL", 2*time.Second)
	runner.SendKeys("Enter")
	runner.Snapshot("Recall on program camera")

	runner.SendKeys("?")
	runner.Expect("Key help opens", "Modes", 2*time.Second)
	runner.SendKeys("Escape")
	runner.Test("Key help closes", func() bool { return runner.WaitGone("Modes", 2*time.Second) })

	runner.SendKeys("q")
	time.Sleep(300 * time.Millisecond)
	runner.Snapshot("After quit")
}
