package commands_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrazmi/taskclock/app/tooling/commands"
	"github.com/jrazmi/taskclock/sdk/logger"
)

const prefix = "TOOLTEST"

func newEnv(t *testing.T) (*commands.Env, *bytes.Buffer, string) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(prefix+"_TASKS_STORE", "file")
	t.Setenv(prefix+"_TASKS_DIR", dir)

	out := &bytes.Buffer{}
	return &commands.Env{Log: logger.NewDiscard(), Prefix: prefix, Out: out}, out, dir
}

func run(t *testing.T, env *commands.Env, args ...string) error {
	t.Helper()
	root := &cobra.Command{Use: "tooling", SilenceUsage: true, SilenceErrors: true}
	root.AddCommand(commands.TasksCmd(env), commands.RenderCmd(env))
	root.SetArgs(args)
	root.SetErr(&bytes.Buffer{})
	return root.ExecuteContext(context.Background())
}

func TestTasksAddListDelete(t *testing.T) {
	env, out, dir := newEnv(t)

	require.NoError(t, run(t, env, "tasks", "add", "Deep work", "09:00", "10:30", "--color", "#112233"))
	assert.Contains(t, out.String(), "added 1: 'Deep work' scheduled from 9:00 AM to 10:30 AM")

	_, err := os.Stat(filepath.Join(dir, "tasks.json"))
	require.NoError(t, err)

	out.Reset()
	require.NoError(t, run(t, env, "tasks", "add", "Lunch", "12:30", "13:00"))

	out.Reset()
	require.NoError(t, run(t, env, "tasks", "list", "--order", "text,desc", "--json"))

	var entries []struct {
		ID   int64  `json:"id"`
		Text string `json:"text"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "Lunch", entries[0].Text)
	assert.Equal(t, "Deep work", entries[1].Text)

	out.Reset()
	require.NoError(t, run(t, env, "tasks", "delete", "1"))
	assert.Contains(t, out.String(), "deleted 1: 'Deep work'")

	out.Reset()
	require.NoError(t, run(t, env, "tasks", "list"))
	assert.Contains(t, out.String(), "Lunch")
	assert.NotContains(t, out.String(), "Deep work")
}

func TestTasksAddRejectsInvalidInput(t *testing.T) {
	env, _, _ := newEnv(t)

	assert.Error(t, run(t, env, "tasks", "add", "", "09:00", "10:00"))
	assert.Error(t, run(t, env, "tasks", "add", "Nap", "25:00", "10:00"))
	assert.Error(t, run(t, env, "tasks", "add", "Nap", "09:00"))
}

func TestTasksDeleteUnknown(t *testing.T) {
	env, _, _ := newEnv(t)

	assert.Error(t, run(t, env, "tasks", "delete", "42"))
	assert.Error(t, run(t, env, "tasks", "delete", "abc"))
}

func TestTasksListBadOrder(t *testing.T) {
	env, _, _ := newEnv(t)

	assert.Error(t, run(t, env, "tasks", "list", "--order", "color"))
}

func TestRender(t *testing.T) {
	env, out, dir := newEnv(t)
	require.NoError(t, run(t, env, "tasks", "add", "Deep work", "09:00", "10:30"))

	out.Reset()
	require.NoError(t, run(t, env, "render", "--at", "14:30", "--size", "300"))
	assert.Contains(t, out.String(), "<svg")
	assert.Contains(t, out.String(), `viewBox="0 0 300 325"`)

	path := filepath.Join(dir, "clock.svg")
	require.NoError(t, run(t, env, "render", "--variant", "wedge", "--out", path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Deep work")

	assert.Error(t, run(t, env, "render", "--variant", "spiral"))
	assert.Error(t, run(t, env, "render", "--at", "noon"))
}

func TestTasksHelpWarnsAboutRunningService(t *testing.T) {
	env, _, _ := newEnv(t)

	var help bytes.Buffer
	root := &cobra.Command{Use: "tooling"}
	root.AddCommand(commands.TasksCmd(env))
	root.SetOut(&help)
	root.SetArgs([]string{"tasks", "--help"})
	require.NoError(t, root.Execute())

	assert.Contains(t, help.String(), "stop it before adding or deleting tasks")
}
