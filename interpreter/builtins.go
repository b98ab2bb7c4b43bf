package interpreter

import (
	"time"

	"github.com/aromano272/loxwalk/value"
)

// nativeBuiltins is the map of native callables defined in globals at
// startup. Lox's standard library is a single function, so this map has
// just one entry.
var nativeBuiltins = map[string]*value.NativeFunction{
	"clock": {
		NameStr: "clock",
		ArityN:  0,
		Fn: func(args []value.Value) (value.Value, error) {
			return float64(time.Now().UnixNano()) / float64(time.Second), nil
		},
	},
}

func defineNatives(env *value.Environment) {
	for name, fn := range nativeBuiltins {
		env.Define(name, fn)
	}
}
