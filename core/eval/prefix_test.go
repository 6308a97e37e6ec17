package eval

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/josephlewis42/vsh/core/fdio"
	"github.com/josephlewis42/vsh/core/vos"
	"github.com/josephlewis42/vsh/core/vos/vostest"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"mvdan.cc/sh/v3/syntax"
)

func parseItems(t *testing.T, src string) []Item {
	t.Helper()

	file, err := syntax.NewParser().Parse(strings.NewReader(src), "")
	require.NoError(t, err)
	require.Len(t, file.Stmts, 1)

	stmt := file.Stmts[0]
	call, _ := stmt.Cmd.(*syntax.CallExpr)
	return Items(call, stmt.Redirs)
}

func parsePrefix(t *testing.T, src string) []Item {
	t.Helper()

	prefix, _ := SplitPrefix(parseItems(t, src))
	return prefix
}

func newEnv(t *testing.T) (*vos.ShellEnv, *bytes.Buffer) {
	t.Helper()

	stdout := &bytes.Buffer{}
	env := vostest.NewDeterministicEnv(nil, vos.Options{Stdout: stdout})
	t.Cleanup(func() { env.Close() })
	return env, stdout
}

func readFile(t *testing.T, env vos.FSEnv, name string) string {
	t.Helper()

	out, err := afero.ReadFile(env.FS(), name)
	require.NoError(t, err)
	return string(out)
}

func TestItems_Order(t *testing.T) {
	items := parseItems(t, "a=1 >out b=2 cmd arg 2>err")

	var kinds []string
	for _, item := range items {
		switch {
		case item.Assign != nil:
			kinds = append(kinds, "assign")
		case item.Redirect != nil:
			kinds = append(kinds, "redirect")
		default:
			kinds = append(kinds, "word")
		}
	}
	assert.Equal(t, []string{"assign", "redirect", "assign", "word", "word", "redirect"}, kinds)

	prefix, rest := SplitPrefix(items)
	assert.Len(t, prefix, 3)
	assert.Len(t, rest, 3)
}

func TestEvalRedirectsOrVarAssignments_LaterSeesEarlier(t *testing.T) {
	env, _ := newEnv(t)
	ctx := context.Background()

	redirects, vars, err := EvalRedirectsOrVarAssignments(ctx, env, nil, parsePrefix(t, "var1=foo var2=${var1:-bar} cmd"), true)
	require.NoError(t, err)

	v, ok := env.LookupVar("var2")
	require.True(t, ok)
	assert.Equal(t, vos.Var{Value: "foo", Exported: true}, v)
	assert.Contains(t, env.Environ(), "var1=foo")

	redirects.Restore(env)
	vars.Restore(env)

	_, ok = env.LookupVar("var1")
	assert.False(t, ok)
	_, ok = env.LookupVar("var2")
	assert.False(t, ok)
}

func TestEvalRedirectsOrVarAssignments_Assignments(t *testing.T) {
	cases := map[string]struct {
		src    string
		setup  func(env *vos.ShellEnv)
		export bool
		want   vos.Var
	}{
		"plain": {
			src:  "a=value",
			want: vos.Var{Value: "value"},
		},
		"exported": {
			src:    "a=value cmd",
			export: true,
			want:   vos.Var{Value: "value", Exported: true},
		},
		"keeps export flag": {
			src:   "a=new",
			setup: func(env *vos.ShellEnv) { env.SetVar("a", vos.Var{Value: "old", Exported: true}) },
			want:  vos.Var{Value: "new", Exported: true},
		},
		"append": {
			src:   "a+=tail",
			setup: func(env *vos.ShellEnv) { env.SetVar("a", vos.Var{Value: "head"}) },
			want:  vos.Var{Value: "headtail"},
		},
		"empty": {
			src:  "a=",
			want: vos.Var{},
		},
		"special parameters": {
			src: `a="$#:$1:$?:$0"`,
			setup: func(env *vos.ShellEnv) {
				env.SetArgs([]string{"x", "y"})
				env.SetLastStatus(3)
			},
			want: vos.Var{Value: "2:x:3:vsh"},
		},
		"tilde": {
			src:  "a=~/bin",
			want: vos.Var{Value: vostest.Home + "/bin"},
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			env, _ := newEnv(t)
			if tc.setup != nil {
				tc.setup(env)
			}

			_, _, err := EvalRedirectsOrVarAssignments(context.Background(), env, nil, parsePrefix(t, tc.src), tc.export)
			require.NoError(t, err)

			got, ok := env.LookupVar("a")
			require.True(t, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEvalRedirectsOrVarAssignments_SameFdLastWins(t *testing.T) {
	env, stdout := newEnv(t)
	ctx := context.Background()

	redirects, vars, err := EvalRedirectsOrVarAssignments(ctx, env, nil, parsePrefix(t, ">/tmp/a >/tmp/b cmd"), false)
	require.NoError(t, err)

	_, err = io.WriteString(env.Writer(ctx, fdio.Stdout), "during")
	require.NoError(t, err)

	redirects.Restore(env)
	vars.Restore(env)

	_, err = io.WriteString(env.Writer(ctx, fdio.Stdout), "after")
	require.NoError(t, err)

	assert.Equal(t, "", readFile(t, env, "/tmp/a"))
	assert.Equal(t, "during", readFile(t, env, "/tmp/b"))
	assert.Equal(t, "after", stdout.String())
}

func TestEvalRedirectsOrVarAssignments_ErrorRestores(t *testing.T) {
	env, stdout := newEnv(t)
	ctx := context.Background()
	env.SetVar("b", vos.Var{Value: "original"})

	_, _, err := EvalRedirectsOrVarAssignments(ctx, env, nil, parsePrefix(t, "a=1 >/tmp/x b=2 </missing c=3 cmd"), false)

	var rdErr *RedirectionError
	require.ErrorAs(t, err, &rdErr)
	assert.Equal(t, Io, rdErr.Kind)
	assert.Equal(t, "/missing", rdErr.Path)
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, ok := env.LookupVar("a")
	assert.False(t, ok)
	assert.Equal(t, "original", vos.Getenv(env, "b"))
	_, ok = env.LookupVar("c")
	assert.False(t, ok)

	_, err = io.WriteString(env.Writer(ctx, fdio.Stdout), "restored")
	require.NoError(t, err)
	assert.Equal(t, "restored", stdout.String())
}

func TestEvalRedirectsOrVarAssignments_WithRestorers(t *testing.T) {
	env, _ := newEnv(t)
	ctx := context.Background()

	vars := &recordingVars{}
	err := EvalRedirectsOrVarAssignmentsWithRestorers(ctx, env, nil, &nopRedirects{}, vars, parsePrefix(t, "a=1 b=2 cmd"), false)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, vars.set)
	assert.Equal(t, "1", vos.Getenv(env, "a"))
}

// cancelFs cancels a context when a path is opened.
type cancelFs struct {
	afero.Fs
	name   string
	cancel context.CancelFunc
}

func (c *cancelFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if name == c.name {
		c.cancel()
	}
	return c.Fs.OpenFile(name, flag, perm)
}

func TestEvalRedirectsOrVarAssignments_Cancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	base := afero.NewMemMapFs()
	require.NoError(t, base.MkdirAll("/tmp", 0755))
	stdout := &bytes.Buffer{}
	env := vostest.NewDeterministicEnv(nil, vos.Options{
		Fs:     &cancelFs{Fs: base, name: "/tmp/b", cancel: cancel},
		Dir:    "/tmp",
		Stdout: stdout,
	})
	defer env.Close()

	_, _, err := EvalRedirectsOrVarAssignments(ctx, env, nil, parsePrefix(t, "x=1 >a 2>b y=2 >c cmd"), false)
	assert.ErrorIs(t, err, context.Canceled)

	_, ok := env.LookupVar("x")
	assert.False(t, ok)
	_, ok = env.LookupVar("y")
	assert.False(t, ok)

	_, err = afero.ReadFile(base, "/tmp/c")
	assert.ErrorIs(t, err, os.ErrNotExist, "nothing after the cancellation is evaluated")

	_, err = io.WriteString(env.Writer(context.Background(), fdio.Stdout), "out")
	require.NoError(t, err)
	_, err = io.WriteString(env.Writer(context.Background(), fdio.Stderr), "err")
	require.NoError(t, err)
	assert.Equal(t, "out", stdout.String())
	assert.Equal(t, "", readFile(t, env, "/tmp/a"))
	assert.Equal(t, "", readFile(t, env, "/tmp/b"))
}

type recordingVars struct {
	nopVars
	set []string
}

func (r *recordingVars) SetVar(env vos.VarEnv, name string, v vos.Var) {
	r.set = append(r.set, name)
	env.SetVar(name, v)
}
