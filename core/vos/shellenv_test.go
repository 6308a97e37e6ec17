package vos

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/josephlewis42/vsh/core/fdio"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEnv(t *testing.T) (*ShellEnv, *bytes.Buffer) {
	t.Helper()

	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/home/user", 0755))
	require.NoError(t, fsys.MkdirAll("/tmp", 0777))
	require.NoError(t, afero.WriteFile(fsys, "/tmp/file", nil, 0644))

	stderr := &bytes.Buffer{}
	env := New(Options{
		Name:    "vsh",
		Dir:     "/home/user",
		Fs:      fsys,
		Stderr:  stderr,
		Environ: []string{"HOME=/home/user"},
	})
	t.Cleanup(func() { env.Close() })
	return env, stderr
}

func TestShellEnv_Chdir(t *testing.T) {
	env, _ := newTestEnv(t)

	require.NoError(t, env.Chdir("/tmp"))
	assert.Equal(t, "/tmp", env.Getwd())
	assert.Equal(t, "/tmp", Getenv(env, "PWD"))
	assert.Equal(t, "/home/user", Getenv(env, "OLDPWD"))

	require.NoError(t, env.Chdir("../home/./user/"))
	assert.Equal(t, "/home/user", Getenv(env, "PWD"))
	assert.Equal(t, "/tmp", Getenv(env, "OLDPWD"))

	pwd, _ := env.LookupVar("PWD")
	assert.True(t, pwd.Exported)
}

func TestShellEnv_Chdir_Errors(t *testing.T) {
	env, _ := newTestEnv(t)

	cases := map[string]string{
		"missing":  "/missing",
		"not dir":  "/tmp/file",
		"relative": "nowhere",
	}

	for tn, dir := range cases {
		t.Run(tn, func(t *testing.T) {
			assert.Error(t, env.Chdir(dir))
			assert.Equal(t, "/home/user", env.Getwd())
			_, ok := env.LookupVar("OLDPWD")
			assert.False(t, ok)
		})
	}
}

func TestShellEnv_Args(t *testing.T) {
	env, _ := newTestEnv(t)
	env.SetArgs([]string{"a", "b", "c"})

	arg, ok := env.Arg(0)
	assert.True(t, ok)
	assert.Equal(t, "vsh", arg)

	arg, ok = env.Arg(3)
	assert.True(t, ok)
	assert.Equal(t, "c", arg)

	_, ok = env.Arg(4)
	assert.False(t, ok)

	env.ShiftArgs(2)
	assert.Equal(t, []string{"c"}, env.Args())

	env.ShiftArgs(5)
	assert.Empty(t, env.Args())

	old := env.SetArgs([]string{"x"})
	assert.Empty(t, old)
}

func TestShellEnv_FuncFrames(t *testing.T) {
	env := New(Options{Fs: afero.NewMemMapFs(), MaxFuncDepth: 2})
	defer env.Close()

	require.NoError(t, env.PushFuncFrame())
	require.NoError(t, env.PushFuncFrame())
	assert.ErrorIs(t, env.PushFuncFrame(), ErrStackDepth)

	env.PopFuncFrame()
	assert.NoError(t, env.PushFuncFrame())
}

func TestShellEnv_Fork(t *testing.T) {
	env, _ := newTestEnv(t)
	env.SetVar("A", Var{Value: "parent"})
	env.SetArgs([]string{"1"})

	child := env.Fork()
	defer child.Close()

	child.SetVar("A", Var{Value: "child"})
	child.SetVar("B", Var{Value: "new"})
	child.SetArgs([]string{"2"})
	child.SetFunc("f", nil)
	require.NoError(t, child.Chdir("/tmp"))
	require.NoError(t, child.CloseFileDesc(fdio.Stdout))

	assert.Equal(t, "parent", Getenv(env, "A"))
	_, ok := env.LookupVar("B")
	assert.False(t, ok)
	assert.Equal(t, []string{"1"}, env.Args())
	_, ok = env.LookupFunc("f")
	assert.False(t, ok)
	assert.Equal(t, "/home/user", env.Getwd())
	_, ok = env.FileDesc(fdio.Stdout)
	assert.True(t, ok)
}

func TestShellEnv_ReportFailure(t *testing.T) {
	env, stderr := newTestEnv(t)

	env.ReportFailure(fmt.Errorf("something broke"))

	assert.Equal(t, "vsh: something broke\n", stderr.String())
}

func TestShellEnv_IO(t *testing.T) {
	env, _ := newTestEnv(t)
	ctx := context.Background()

	h, err := env.Open("/tmp/out", fdio.Write.Flag())
	require.NoError(t, err)
	env.SetFileDesc(3, h, fdio.Write)

	_, err = io.WriteString(env.Writer(ctx, 3), "hello")
	require.NoError(t, err)

	t.Run("wrong direction", func(t *testing.T) {
		_, err := env.Reader(ctx, 3).Read(make([]byte, 1))
		assert.ErrorIs(t, err, ErrBadFd)
	})

	t.Run("unbound", func(t *testing.T) {
		_, err := env.Writer(ctx, 9).Write([]byte("x"))
		assert.ErrorIs(t, err, ErrBadFd)
	})

	require.NoError(t, env.CloseFileDesc(3))
	out, err := afero.ReadFile(env.FS(), "/tmp/out")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(out))
}

func TestLookPath(t *testing.T) {
	env, _ := newTestEnv(t)
	fsys := env.FS()
	require.NoError(t, fsys.MkdirAll("/bin", 0755))
	require.NoError(t, fsys.MkdirAll("/usr/bin", 0755))
	require.NoError(t, afero.WriteFile(fsys, "/bin/tool", nil, 0755))
	require.NoError(t, afero.WriteFile(fsys, "/usr/bin/data", nil, 0644))
	require.NoError(t, afero.WriteFile(fsys, "/home/user/local", nil, 0755))

	env.SetVar("PATH", Var{Value: "/usr/bin:/bin", Exported: true})

	t.Run("found", func(t *testing.T) {
		got, err := LookPath(env, "tool")
		require.NoError(t, err)
		assert.Equal(t, "/bin/tool", got)
	})

	t.Run("not executable", func(t *testing.T) {
		_, err := LookPath(env, "data")
		assert.ErrorIs(t, err, os.ErrPermission)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := LookPath(env, "nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("with slash", func(t *testing.T) {
		got, err := LookPath(env, "./local")
		require.NoError(t, err)
		assert.Equal(t, "./local", got)
	})

	t.Run("unset PATH", func(t *testing.T) {
		env.UnsetVar("PATH")
		_, err := LookPath(env, "tool")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestRealpath(t *testing.T) {
	dir := t.TempDir()
	real, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "target"), 0755))
	require.NoError(t, os.Symlink("target", filepath.Join(dir, "link")))

	env := New(Options{Fs: afero.NewOsFs(), Dir: dir})
	defer env.Close()

	got, err := Realpath(env, "link")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(real, "target"), got)
}
