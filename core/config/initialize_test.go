package config

import (
	"bytes"
	"io/ioutil"
	"log"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialize(t *testing.T) {
	fsys := afero.NewMemMapFs()
	if err := Initialize(fsys, "/etc/vsh", log.New(ioutil.Discard, "", 0)); err != nil {
		t.Fatal(err)
	}

	// Check that the config is valid
	t.Run("load directory", func(t *testing.T) {
		cfg, err := Load(fsys, "/etc/vsh")
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("load file", func(t *testing.T) {
		cfg, err := Load(fsys, "/etc/vsh/config.yaml")
		require.NoError(t, err)
		assert.Equal(t, "vsh", cfg.ShellName)
	})

	t.Run("existing config kept", func(t *testing.T) {
		require.NoError(t, afero.WriteFile(fsys, "/etc/vsh/config.yaml", []byte("pipefail: any\n"), 0644))

		logs := &bytes.Buffer{}
		require.NoError(t, Initialize(fsys, "/etc/vsh", log.New(logs, "", 0)))
		assert.Contains(t, logs.String(), "already exists")

		cfg, err := Load(fsys, "/etc/vsh")
		require.NoError(t, err)
		assert.True(t, cfg.PipeFailAny())
		assert.Equal(t, 100, cfg.MaxFunctionDepth)
	})
}

func TestLoad_Errors(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/unknown.yaml", []byte("ssh_port: 22\n"), 0644))
	require.NoError(t, afero.WriteFile(fsys, "/invalid.yaml", []byte("pipefail: never\n"), 0644))

	cases := map[string]string{
		"/missing.yaml": "file does not exist",
		"/unknown.yaml": "ssh_port",
		"/invalid.yaml": "pipefail",
	}

	for path, wantErr := range cases {
		t.Run(path, func(t *testing.T) {
			_, err := Load(fsys, path)
			assert.ErrorContains(t, err, wantErr)
		})
	}
}
