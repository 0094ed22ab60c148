// Package uitest drives a TUI inside tmux and records what it showed.
package uitest

import (
	"errors"
	"fmt"
	"net"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Session wraps a tmux session for TUI testing
type Session struct {
	Name   string
	Width  int
	Height int
}

// RequireTmux reports whether tmux is on PATH.
func RequireTmux() error {
	if _, err := exec.LookPath("tmux"); err != nil {
		return errors.New("tmux not installed")
	}
	return nil
}

// NewSession creates a new tmux session running the given command
func NewSession(name string, width, height int, cmd string) (*Session, error) {
	s := &Session{Name: name, Width: width, Height: height}

	// A leftover session from a crashed run would swallow our keys
	_ = exec.Command("tmux", "kill-session", "-t", name).Run()

	args := []string{
		"new-session", "-d",
		"-s", name,
		"-x", strconv.Itoa(width),
		"-y", strconv.Itoa(height),
		cmd,
	}
	if err := exec.Command("tmux", args...).Run(); err != nil {
		return nil, fmt.Errorf("create tmux session: %w", err)
	}
	return s, nil
}

// Close kills the tmux session
func (s *Session) Close() error {
	return exec.Command("tmux", "kill-session", "-t", s.Name).Run()
}

// SendKeys sends keys in tmux send-keys notation ("Enter", "C-l", "M-Enter")
func (s *Session) SendKeys(keys ...string) error {
	args := append([]string{"send-keys", "-t", s.Name}, keys...)
	return exec.Command("tmux", args...).Run()
}

// SendText types text literally
func (s *Session) SendText(text string) error {
	return exec.Command("tmux", "send-keys", "-t", s.Name, "-l", text).Run()
}

// Capture returns the current pane content
func (s *Session) Capture() (string, error) {
	out, err := exec.Command("tmux", "capture-pane", "-t", s.Name, "-p").Output()
	if err != nil {
		return "", fmt.Errorf("capture pane: %w", err)
	}
	return string(out), nil
}

// WaitFor waits until the screen contains text
func (s *Session) WaitFor(text string, timeout time.Duration) error {
	return s.waitUntil(timeout, text, func(content string) bool {
		return strings.Contains(content, text)
	})
}

// WaitForRegex waits until the screen matches pattern
func (s *Session) WaitForRegex(pattern string, timeout time.Duration) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}
	return s.waitUntil(timeout, pattern, re.MatchString)
}

// WaitGone waits until text is no longer on screen
func (s *Session) WaitGone(text string, timeout time.Duration) error {
	return s.waitUntil(timeout, "no "+text, func(content string) bool {
		return !strings.Contains(content, text)
	})
}

func (s *Session) waitUntil(timeout time.Duration, what string, ok func(string) bool) error {
	deadline := time.Now().Add(timeout)
	for {
		content, err := s.Capture()
		if err != nil {
			return err
		}
		if ok(content) {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("timeout waiting for %q\nCurrent content:\n%s", what, content)
		}
		time.Sleep(100 * time.Millisecond)
	}
}

// Contains checks if the current output contains text
func (s *Session) Contains(text string) (bool, error) {
	content, err := s.Capture()
	if err != nil {
		return false, err
	}
	return strings.Contains(content, text), nil
}

// FreeAddr returns a loopback address with a port nobody listens on yet.
func FreeAddr() (string, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", err
	}
	defer l.Close()
	return l.Addr().String(), nil
}

// WaitForPort polls until something accepts connections on addr.
func WaitForPort(addr string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		conn, err := net.DialTimeout("tcp", addr, 200*time.Millisecond)
		if err == nil {
			return conn.Close()
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%s not listening: %w", addr, err)
		}
		time.Sleep(100 * time.Millisecond)
	}
}

// StartSimulator runs ptzsim serve on addr in the background and waits for
// it to listen.
func StartSimulator(bin, addr string) (*exec.Cmd, error) {
	cmd := exec.Command(bin, "serve", "--addr", addr)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start simulator: %w", err)
	}
	if err := WaitForPort(addr, 5*time.Second); err != nil {
		_ = cmd.Process.Kill()
		return nil, err
	}
	return cmd, nil
}
