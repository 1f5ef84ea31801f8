package resume

import (
	"context"
	"os"
	osexec "os/exec"
	"strings"
)

// Runner abstracts external command execution so tmux and claude
// invocations can be mocked in tests.
type Runner interface {
	// Run executes a command and returns combined stdout/stderr.
	Run(ctx context.Context, name string, args ...string) ([]byte, error)

	// RunInteractive executes a command wired to the caller's terminal.
	RunInteractive(ctx context.Context, dir, name string, args ...string) error

	// LookPath reports whether a binary is on PATH.
	LookPath(name string) bool
}

// OSRunner implements Runner using os/exec.
type OSRunner struct{}

func NewOSRunner() *OSRunner {
	return &OSRunner{}
}

func (r *OSRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return osexec.CommandContext(ctx, name, args...).CombinedOutput()
}

func (r *OSRunner) RunInteractive(ctx context.Context, dir, name string, args ...string) error {
	cmd := osexec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func (r *OSRunner) LookPath(name string) bool {
	_, err := osexec.LookPath(name)
	return err == nil
}

// MockRunner implements Runner for testing.
type MockRunner struct {
	Calls       []MockCall
	Interactive []MockCall
	Missing     map[string]bool // binaries LookPath should report absent
	Err         error
}

type MockCall struct {
	Name string
	Args []string
	Dir  string
}

func (m *MockRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	m.Calls = append(m.Calls, MockCall{Name: name, Args: args})
	return nil, m.Err
}

func (m *MockRunner) RunInteractive(ctx context.Context, dir, name string, args ...string) error {
	m.Interactive = append(m.Interactive, MockCall{Name: name, Args: args, Dir: dir})
	return m.Err
}

func (m *MockRunner) LookPath(name string) bool {
	return !m.Missing[name]
}

// String renders the call as a shell-like string for assertions.
func (c MockCall) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}
