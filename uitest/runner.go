package uitest

import (
	"fmt"
	"testing"
	"time"
)

// Runner ties a tmux session to a test and its report
type Runner struct {
	T       *testing.T
	Session *Session
	Report  *Report
}

// NewRunner starts cmd in a fresh tmux session
func NewRunner(t *testing.T, sessionName string, width, height int, cmd string, reportDir string) (*Runner, error) {
	session, err := NewSession(sessionName, width, height, cmd)
	if err != nil {
		return nil, err
	}
	return &Runner{
		T:       t,
		Session: session,
		Report:  NewReport(sessionName, reportDir),
	}, nil
}

// Close kills the session
func (r *Runner) Close() error {
	return r.Session.Close()
}

// Snapshot captures the current screen with a label
func (r *Runner) Snapshot(label string) {
	content, err := r.Session.Capture()
	if err != nil {
		r.T.Logf("snapshot %q: %v", label, err)
		return
	}
	r.Report.AddSnapshot(label, content)
}

// Test runs a check and records the result; failures get a snapshot
func (r *Runner) Test(name string, fn func() bool) bool {
	passed := fn()
	r.Report.AddResult(name, passed)
	if passed {
		r.T.Logf("PASS: %s", name)
	} else {
		r.T.Errorf("FAIL: %s", name)
		r.Snapshot(fmt.Sprintf("Failed: %s", name))
	}
	return passed
}

// Expect is Test for "text shows up within timeout"
func (r *Runner) Expect(name, text string, timeout time.Duration) bool {
	return r.Test(name, func() bool { return r.WaitFor(text, timeout) })
}

// SendKeys sends keys to the session
func (r *Runner) SendKeys(keys ...string) {
	if err := r.Session.SendKeys(keys...); err != nil {
		r.T.Fatalf("send keys: %v", err)
	}
}

// Type sends text literally
func (r *Runner) Type(text string) {
	if err := r.Session.SendText(text); err != nil {
		r.T.Fatalf("type %q: %v", text, err)
	}
}

// WaitFor waits for text to appear
func (r *Runner) WaitFor(text string, timeout time.Duration) bool {
	if err := r.Session.WaitFor(text, timeout); err != nil {
		r.T.Logf("WaitFor: %v", err)
		return false
	}
	return true
}

// WaitGone waits for text to disappear
func (r *Runner) WaitGone(text string, timeout time.Duration) bool {
	if err := r.Session.WaitGone(text, timeout); err != nil {
		r.T.Logf("WaitGone: %v", err)
		return false
	}
	return true
}

// Contains checks if the screen contains text
func (r *Runner) Contains(text string) bool {
	found, err := r.Session.Contains(text)
	if err != nil {
		r.T.Logf("Contains: %v", err)
		return false
	}
	return found
}

// GenerateReport writes the HTML report
func (r *Runner) GenerateReport() string {
	filename, err := r.Report.Generate()
	if err != nil {
		r.T.Errorf("generate report: %v", err)
		return ""
	}
	r.T.Logf("Report saved to: %s", filename)
	return filename
}
