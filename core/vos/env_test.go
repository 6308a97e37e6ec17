package vos

import "fmt"

func ExampleCopyEnv() {
	env := NewMapEnv()
	CopyEnv(env, []string{"A=B", "C=D", "E", "F=G=H"})

	fmt.Printf("Environ(): %q\n", env.Environ())
	fmt.Printf("Getenv(\"F\"): %q\n", Getenv(env, "F"))

	// Output: Environ(): ["A=B" "C=D" "E=" "F=G=H"]
	// Getenv("F"): "G=H"
}

func ExampleNewMapEnvFromEnvList() {
	env := NewMapEnvFromEnvList([]string{"F=G=H", "C=D", "E", "A=B"})

	fmt.Printf("Environ(): %q\n", env.Environ())

	// Output: Environ(): ["A=B" "C=D" "E=" "F=G=H"]
}

func ExampleMapEnv_UnsetVar() {
	env := NewMapEnv()
	env.SetVar("A", Var{Value: "B", Exported: true})
	env.SetVar("C", Var{Value: "D", Exported: true})

	fmt.Println("Before:", env.Environ())
	env.UnsetVar("A")
	fmt.Println("After:", env.Environ())

	// Output: Before: [A=B C=D]
	// After: [C=D]
}

func ExampleMapEnv_LookupVar() {
	env := NewMapEnv()
	env.SetVar("A", Var{Value: "B"})
	env.SetVar("EMPTY", Var{})

	val, ok := env.LookupVar("A")
	fmt.Println("Existing", "val:", val.Value, "ok:", ok)
	val, ok = env.LookupVar("EMPTY")
	fmt.Println("Empty", "val:", val.Value, "ok:", ok)
	val, ok = env.LookupVar("B")
	fmt.Println("Missing", "val:", val.Value, "ok:", ok)

	// Output: Existing val: B ok: true
	// Empty val:  ok: true
	// Missing val:  ok: false
}

func ExampleMapEnv_Environ() {
	env := NewMapEnv()
	env.SetVar("LOCAL", Var{Value: "hidden"})
	env.SetVar("EXPORTED", Var{Value: "shown", Exported: true})

	fmt.Println(env.Environ())

	// Output: [EXPORTED=shown]
}
