package spawn_test

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/josephlewis42/vsh/core/spawn"
	"github.com/josephlewis42/vsh/core/vos"
	"github.com/josephlewis42/vsh/core/vos/vostest"
	"mvdan.cc/sh/v3/syntax"
)

func ExampleRunReader() {
	stdout := &bytes.Buffer{}
	env := vostest.NewDeterministicEnv(nil, vos.Options{Stdout: stdout})
	defer env.Close()

	script := `
greet() { echo "hello $1"; }
x=outer
x=inner greet world
cd /tmp && pwd
echo "$x $OLDPWD"
`
	status, err := spawn.RunReader(context.Background(), env, strings.NewReader(script), "example")
	fmt.Print(stdout.String())
	fmt.Println(status, err)
	// Output:
	// hello world
	// /tmp
	// outer /home/user
	// 0 <nil>
}

func ExampleSpawn() {
	stdout := &bytes.Buffer{}
	env := vostest.NewDeterministicEnv(nil, vos.Options{Stdout: stdout, Args: []string{"a", "b", "c"}})
	defer env.Close()

	file, _ := syntax.NewParser().Parse(strings.NewReader(`shift 2; echo "$#" "$1"`), "")

	var units []*spawn.Unit
	for _, stmt := range file.Stmts {
		units = append(units, spawn.Spawn(context.Background(), env, stmt))
	}
	for _, unit := range units {
		status, _ := unit.Wait()
		fmt.Println(unit.State(), status)
	}
	fmt.Print(stdout.String())
	// Output:
	// completed 0
	// completed 0
	// 1 c
}
