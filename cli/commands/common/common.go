// Package common contains helpers shared by the commands.
package common

import (
	"encoding/json"
	"io"

	"github.com/hightail/wilson-sub000/internal/errors"
	"github.com/hightail/wilson-sub000/internal/resolver"
	"github.com/hightail/wilson-sub000/options"
	"github.com/urfave/cli/v2"
)

// RunWithResolver initializes a resolver for the duration of fn.
func RunWithResolver(ctx *cli.Context, opts *options.ResolverOptions, fn func(r *resolver.Resolver) error) (err error) {
	r, err := resolver.New(ctx.Context, opts)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := r.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	return fn(r)
}

// PrintJSON writes v as indented JSON.
func PrintJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(v); err != nil {
		return errors.New(err)
	}

	return nil
}

// RequireArgs fails unless the command got exactly n positional arguments.
func RequireArgs(ctx *cli.Context, n int) error {
	if ctx.NArg() != n {
		return errors.New(WrongNumberOfArgsError{Command: ctx.Command.Name, Expected: n, Actual: ctx.NArg()})
	}

	return nil
}
