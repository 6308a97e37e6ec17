package commands

import (
	"bytes"
	"context"
	"testing"

	"github.com/josephlewis42/vsh/core/vos"
	"github.com/josephlewis42/vsh/core/vos/vostest"
	"github.com/stretchr/testify/assert"
)

func TestShift(t *testing.T) {
	cases := map[string]struct {
		args       []string
		wantStatus int
		wantArgs   []string
		wantStderr string
	}{
		"default": {
			args:     []string{"shift"},
			wantArgs: []string{"b", "c"},
		},
		"count": {
			args:     []string{"shift", "2"},
			wantArgs: []string{"c"},
		},
		"all": {
			args:     []string{"shift", "3"},
			wantArgs: []string{},
		},
		"zero": {
			args:     []string{"shift", "0"},
			wantArgs: []string{"a", "b", "c"},
		},
		"too many": {
			args:       []string{"shift", "4"},
			wantStatus: 1,
			wantArgs:   []string{"a", "b", "c"},
		},
		"not a number": {
			args:       []string{"shift", "two"},
			wantStatus: 1,
			wantArgs:   []string{"a", "b", "c"},
			wantStderr: "shift: two: numeric argument required\n",
		},
		"negative": {
			args:       []string{"shift", "-1"},
			wantStatus: 1,
			wantArgs:   []string{"a", "b", "c"},
			wantStderr: "shift: -1: numeric argument required\n",
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			stderr := &bytes.Buffer{}
			env := vostest.NewDeterministicEnv(nil, vos.Options{
				Args:   []string{"a", "b", "c"},
				Stderr: stderr,
			})
			defer env.Close()

			status := RunShift(context.Background(), env, tc.args)

			assert.Equal(t, tc.wantStatus, status)
			assert.Equal(t, tc.wantArgs, env.Args())
			assert.Equal(t, tc.wantStderr, stderr.String())
		})
	}
}
