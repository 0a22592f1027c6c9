package main

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/nodeops/internal/testutil"
)

func TestDoctor_ExplicitNpmPath(t *testing.T) {
	npmPath := testutil.WriteScript(t, "npm", "")

	res := execute(t, "doctor", "--npm-path", npmPath)

	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Probed locations:")
	assert.Contains(t, res.stdout, "/usr/lib/npm")
	assert.Contains(t, res.stdout, "/usr/lib/node_modules/npm")
	assert.Contains(t, res.stdout, "npm: "+npmPath)
}

func TestDoctor_NpmPathFromEnvironment(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("POSIX discovery locations")
	}
	t.Setenv(npmPathEnv, "/opt/node/bin/npm")

	res := execute(t, "doctor")

	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "npm: /opt/node/bin/npm")
}

func TestDoctor_ConfigNpmPathBeatsEnvironment(t *testing.T) {
	t.Setenv(npmPathEnv, "/opt/node/bin/npm")

	res := executeWithConfig(t, "defaults:\n  npm_path: /srv/tools/npm\n", "doctor")

	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "npm: /srv/tools/npm")
}
