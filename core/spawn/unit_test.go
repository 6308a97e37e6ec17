package spawn

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/josephlewis42/vsh/core/fdio"
	"github.com/josephlewis42/vsh/core/vos"
	"github.com/josephlewis42/vsh/core/vos/vostest"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnit(t *testing.T) {
	t.Run("completes", func(t *testing.T) {
		sh := newTestShell(t, vos.Options{})
		u := Spawn(context.Background(), sh.env, parse(t, "echo hi").Stmts[0])
		assert.Equal(t, Created, u.State())

		u.Start()
		status, err := u.Wait()
		require.NoError(t, err)
		assert.Equal(t, 0, status)
		assert.Equal(t, Completed, u.State())
		assert.Equal(t, "hi\n", sh.stdout.String())

		// Terminal states are final.
		u.Start()
		u.Cancel()
		assert.Equal(t, Completed, u.State())
	})

	t.Run("wait starts", func(t *testing.T) {
		sh := newTestShell(t, vos.Options{})
		u := Spawn(context.Background(), sh.env, parse(t, "status 7").Stmts[0])

		status, err := u.Wait()
		require.NoError(t, err)
		assert.Equal(t, 7, status)
	})

	t.Run("cancel before start", func(t *testing.T) {
		sh := newTestShell(t, vos.Options{})
		u := Spawn(context.Background(), sh.env, parse(t, "echo never").Stmts[0])

		u.Cancel()
		<-u.Done()
		assert.Equal(t, Failed, u.State())

		u.Start()
		_, err := u.Wait()
		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, sh.stdout.String())
	})

	t.Run("cancel running", func(t *testing.T) {
		started := make(chan struct{})
		env := vostest.NewDeterministicEnv(vostest.SingleProcessResolver(func(ctx context.Context, proc *vos.Process) int {
			close(started)
			<-ctx.Done()
			return 130
		}), vos.Options{})
		defer env.Close()
		require.NoError(t, vostest.Install(env.FS(), "/bin/block"))

		u := Spawn(context.Background(), env, parse(t, "block").Stmts[0])
		u.Start()
		<-started
		assert.Equal(t, Running, u.State())

		u.Cancel()
		_, err := u.Wait()
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, Failed, u.State())
	})

	t.Run("cancel restores prefix", func(t *testing.T) {
		started := make(chan struct{})
		var childEnv []string
		stdout := &bytes.Buffer{}
		env := vostest.NewDeterministicEnv(vostest.SingleProcessResolver(func(ctx context.Context, proc *vos.Process) int {
			fmt.Fprintln(proc.Stdout, "in file")
			childEnv = proc.Env
			close(started)
			<-ctx.Done()
			return 130
		}), vos.Options{Stdout: stdout})
		defer env.Close()
		require.NoError(t, vostest.Install(env.FS(), "/bin/block"))
		env.SetVar("x", vos.Var{Value: "orig"})

		u := Spawn(context.Background(), env, parse(t, "x=1 >/tmp/f block").Stmts[0])
		u.Start()
		<-started
		assert.Equal(t, Running, u.State())

		u.Cancel()
		_, err := u.Wait()
		assert.ErrorIs(t, err, context.Canceled)
		assert.Contains(t, childEnv, "x=1")

		x, ok := env.LookupVar("x")
		require.True(t, ok)
		assert.Equal(t, vos.Var{Value: "orig"}, x)

		_, err = io.WriteString(env.Writer(context.Background(), fdio.Stdout), "back on stdout\n")
		require.NoError(t, err)
		assert.Equal(t, "back on stdout\n", stdout.String())

		contents, err := afero.ReadFile(env.FS(), "/tmp/f")
		require.NoError(t, err)
		assert.Equal(t, "in file\n", string(contents))
	})

	t.Run("parent context", func(t *testing.T) {
		sh := newTestShell(t, vos.Options{})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := Spawn(ctx, sh.env, parse(t, "echo never").Stmts[0]).Wait()
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "created", Created.String())
	assert.Equal(t, "running", Running.String())
	assert.Equal(t, "completed", Completed.String())
	assert.Equal(t, "failed", Failed.String())
}
