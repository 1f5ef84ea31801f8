package resume

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResumeInsideTmux(t *testing.T) {
	t.Setenv("TMUX", "/tmp/tmux-1000/default,1234,0")

	r := &MockRunner{}
	target := Target{SessionID: "0f79205f-5217-48cf-a5e9-e2d10c2b0dcd", Cwd: t.TempDir()}
	require.NoError(t, Resume(context.Background(), r, target, Options{}))

	require.Len(t, r.Calls, 1)
	call := r.Calls[0]
	assert.Equal(t, "tmux", call.Name)
	assert.Equal(t, "new-window", call.Args[0])
	assert.Contains(t, call.Args, "ccsm-0f79205f")
	assert.Contains(t, call.Args, "--resume")
	assert.Contains(t, call.Args, target.SessionID)
}

func TestResumeOutsideTmuxCreatesSession(t *testing.T) {
	t.Setenv("TMUX", "")

	r := &MockRunner{}
	target := Target{SessionID: "0f79205f-5217-48cf-a5e9-e2d10c2b0dcd"}
	require.NoError(t, Resume(context.Background(), r, target, Options{}))

	require.Len(t, r.Interactive, 1)
	call := r.Interactive[0]
	assert.Equal(t, "tmux", call.Name)
	assert.Equal(t, "new-session", call.Args[0])
}

func TestResumeWithoutTmuxRunsClaude(t *testing.T) {
	t.Setenv("TMUX", "")

	r := &MockRunner{Missing: map[string]bool{"tmux": true}}
	target := Target{SessionID: "0f79205f-5217-48cf-a5e9-e2d10c2b0dcd"}
	require.NoError(t, Resume(context.Background(), r, target, Options{}))

	require.Len(t, r.Interactive, 1)
	assert.Equal(t, "claude", r.Interactive[0].Name)
	assert.Equal(t, []string{"--resume", target.SessionID}, r.Interactive[0].Args)
}

func TestResumeMissingClaude(t *testing.T) {
	r := &MockRunner{Missing: map[string]bool{"claude": true}}
	err := Resume(context.Background(), r, Target{SessionID: "x"}, Options{})
	assert.ErrorContains(t, err, "not found in PATH")
}

func TestResumeSkipsVanishedCwd(t *testing.T) {
	t.Setenv("TMUX", "/tmp/tmux-1000/default,1234,0")

	r := &MockRunner{}
	target := Target{SessionID: "0f79205f-5217-48cf-a5e9-e2d10c2b0dcd", Cwd: "/does/not/exist/anymore"}
	require.NoError(t, Resume(context.Background(), r, target, Options{}))

	require.Len(t, r.Calls, 1)
	assert.NotContains(t, r.Calls[0].Args, "-c")
}

func TestCommand(t *testing.T) {
	assert.Equal(t,
		"cd /w && claude --resume abc",
		Command(Target{SessionID: "abc", Cwd: "/w"}, ""),
	)
	assert.Equal(t,
		"claude --resume abc",
		Command(Target{SessionID: "abc"}, "claude"),
	)
}
