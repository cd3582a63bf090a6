package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hightail/wilson-sub000/internal/errors"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// NewEvalContext exposes the process environment as `env.NAME` and a small set of functions to
// the config file. Relative paths given to `abspath` resolve against configDir.
func NewEvalContext(configDir string, environ []string) *hcl.EvalContext {
	env := make(map[string]cty.Value, len(environ))

	for _, entry := range environ {
		if name, value, ok := strings.Cut(entry, "="); ok && name != "" {
			env[name] = cty.StringVal(value)
		}
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": cty.ObjectVal(env),
		},
		Functions: map[string]function.Function{
			"get_env":   getEnvFunc(),
			"abspath":   absPathFunc(configDir),
			"lower":     stdlib.LowerFunc,
			"upper":     stdlib.UpperFunc,
			"trimspace": stdlib.TrimSpaceFunc,
			"concat":    stdlib.ConcatFunc,
			"format":    stdlib.FormatFunc,
			"join":      stdlib.JoinFunc,
			"split":     stdlib.SplitFunc,
		},
	}
}

// get_env(name, default = "")
func getEnvFunc() function.Function {
	return function.New(&function.Spec{
		Params:   []function.Parameter{{Name: "name", Type: cty.String}},
		VarParam: &function.Parameter{Name: "default", Type: cty.String},
		Type:     function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			if len(args) > 2 {
				return cty.StringVal(""), errors.Errorf("get_env expects at most 2 arguments, got %d", len(args))
			}

			if value, ok := os.LookupEnv(args[0].AsString()); ok {
				return cty.StringVal(value), nil
			}

			if len(args) == 2 {
				return args[1], nil
			}

			return cty.StringVal(""), nil
		},
	})
}

func absPathFunc(baseDir string) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{{Name: "path", Type: cty.String}},
		Type:   function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			path, err := homedir.Expand(args[0].AsString())
			if err != nil {
				return cty.StringVal(""), errors.New(err)
			}

			if !filepath.IsAbs(path) {
				path = filepath.Join(baseDir, path)
			}

			return cty.StringVal(filepath.Clean(path)), nil
		},
	})
}
