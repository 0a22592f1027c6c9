package mocks

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/nodeops/internal/ports"
)

func TestFileOperations(t *testing.T) {
	ctx := context.Background()
	files := NewFileOperations()
	assert.Equal(t, '/', files.DirectorySeparator())

	require.NoError(t, files.CreateDirectory(ctx, "/work"))
	assert.True(t, files.HasDir("/work"))

	require.NoError(t, files.WriteAllText(ctx, "/work/.npmrc", "registry=x\n"))
	exists, err := files.FileExists(ctx, "/work/.npmrc")
	require.NoError(t, err)
	assert.True(t, exists)

	r, err := files.OpenFile(ctx, "/work/.npmrc")
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "registry=x\n", string(data))

	require.NoError(t, files.DeleteFile(ctx, "/work/.npmrc"))
	assert.Equal(t, []string{"/work/.npmrc"}, files.Deleted())
	assert.Empty(t, files.Paths())

	_, err = files.OpenFile(ctx, "/work/.npmrc")
	assert.Error(t, err)
}

func TestFileOperations_Failures(t *testing.T) {
	files := NewFileOperationsWithSeparator('\\')
	assert.Equal(t, '\\', files.DirectorySeparator())

	boom := errors.New("access denied")
	files.FailOn(`C:\work`, boom)
	assert.ErrorIs(t, files.CreateDirectory(context.Background(), `C:\work`), boom)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := files.FileExists(ctx, `C:\other`)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProcessExecutor_Script(t *testing.T) {
	ctx := context.Background()
	exec := NewProcessExecutor()
	exec.AddScript("install", ProcessScript{
		Stdout:   []string{"added 1 package"},
		Stderr:   []string{"npm WARN deprecated"},
		ExitCode: 1,
	})

	var stdout, stderr []string
	proc, err := exec.CreateProcess(ports.ProcessSpec{
		FileName:  "/usr/bin/npm",
		Arguments: "install",
		OnStdout:  func(line string) { stdout = append(stdout, line) },
		OnStderr:  func(line string) { stderr = append(stderr, line) },
	})
	require.NoError(t, err)

	_, ok := proc.ExitCode()
	assert.False(t, ok, "no exit code before the process ran")

	require.NoError(t, proc.Start(ctx))
	require.NoError(t, proc.Wait(ctx))
	require.NoError(t, proc.Close())

	code, ok := proc.ExitCode()
	assert.True(t, ok)
	assert.Equal(t, 1, code)
	assert.Equal(t, []string{"added 1 package"}, stdout)
	assert.Equal(t, []string{"npm WARN deprecated"}, stderr)

	require.Len(t, exec.Processes(), 1)
	assert.True(t, exec.Processes()[0].Closed())
	assert.Equal(t, "install", exec.Calls()[0].Arguments)
}

func TestProcessExecutor_Unscripted(t *testing.T) {
	exec := NewProcessExecutor()
	_, err := exec.CreateProcess(ports.ProcessSpec{FileName: "npm", Arguments: "ci"})
	assert.Error(t, err)

	exec.SetDefault(ProcessScript{NoExitCode: true})
	proc, err := exec.CreateProcess(ports.ProcessSpec{FileName: "npm", Arguments: "ci"})
	require.NoError(t, err)
	require.NoError(t, proc.Start(context.Background()))
	require.NoError(t, proc.Wait(context.Background()))
	_, ok := proc.ExitCode()
	assert.False(t, ok)

	exec.SetCreateError(errors.New("session refused"))
	_, err = exec.CreateProcess(ports.ProcessSpec{FileName: "npm", Arguments: "ci"})
	assert.EqualError(t, err, "session refused")
}

func TestProcess_BlockUntilCancelled(t *testing.T) {
	exec := NewProcessExecutor()
	exec.SetDefault(ProcessScript{BlockUntilCancelled: true})

	p, err := exec.CreateProcess(ports.ProcessSpec{FileName: "npm", Arguments: "test"})
	require.NoError(t, err)
	require.NoError(t, p.Start(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, p.Wait(ctx), context.DeadlineExceeded)
	assert.True(t, exec.Processes()[0].Killed())
}

func TestProcessExecutor_Environment(t *testing.T) {
	exec := NewProcessExecutor()
	exec.SetEnv("AppData", `C:\Users\ci\AppData\Roaming`)

	v, err := exec.GetEnvironmentVariable(context.Background(), "AppData")
	require.NoError(t, err)
	assert.Equal(t, `C:\Users\ci\AppData\Roaming`, v)

	v, err = exec.GetEnvironmentVariable(context.Background(), "ProgramFiles")
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestSourceLookup(t *testing.T) {
	lookup := NewSourceLookup(ports.RegistrySource{Name: "internal", Type: "npm", URL: "https://r.example.com/"})

	s, err := lookup.FindSource(context.Background(), "internal")
	require.NoError(t, err)
	assert.Equal(t, "https://r.example.com/", s.URL)

	_, err = lookup.FindSource(context.Background(), "missing")
	assert.ErrorIs(t, err, ports.ErrSourceNotFound)

	lookup.SetError(errors.New("feed offline"))
	_, err = lookup.FindSource(context.Background(), "internal")
	assert.EqualError(t, err, "feed offline")
	assert.Equal(t, []string{"internal", "missing", "internal"}, lookup.Calls())
}

func TestLogger(t *testing.T) {
	ctx := context.Background()
	logger := NewLogger()
	scoped := logger.With(ports.F("run", "r1"))

	logger.Info(ctx, "Executing npm install")
	scoped.Warn(ctx, "deprecated left-pad", ports.F("line", 3))
	scoped.Error(ctx, "Script exited with code: 2 (failure)")
	logger.Debug(ctx, "added 1 package")

	entries := logger.Entries()
	require.Len(t, entries, 4)
	assert.Equal(t, []ports.Field{ports.F("run", "r1"), ports.F("line", 3)}, entries[1].Fields)
	assert.Equal(t, []string{"deprecated left-pad"}, logger.Messages(ports.LevelWarn))
	assert.True(t, logger.Contains(ports.LevelError, "(failure)"))
	assert.False(t, logger.Contains(ports.LevelInfo, "(failure)"))

	logger.SetLevel(ports.LevelWarn)
	assert.Equal(t, ports.LevelWarn, logger.Level())
}
