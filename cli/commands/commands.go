// Package commands assembles the CLI commands.
package commands

import (
	"github.com/hightail/wilson-sub000/cli/commands/build"
	"github.com/hightail/wilson-sub000/cli/commands/bundle"
	"github.com/hightail/wilson-sub000/cli/commands/checkversion"
	"github.com/hightail/wilson-sub000/cli/commands/list"
	"github.com/hightail/wilson-sub000/cli/commands/resolve"
	"github.com/hightail/wilson-sub000/cli/commands/update"
	"github.com/hightail/wilson-sub000/options"
	"github.com/urfave/cli/v2"
)

// NewCommands returns every command, all sharing opts.
func NewCommands(opts *options.ResolverOptions) []*cli.Command {
	return []*cli.Command{
		build.NewCommand(opts),
		list.NewCommand(opts),
		resolve.NewCommand(opts),
		bundle.NewCommand(opts),
		update.NewCommand(opts),
		checkversion.NewCommand(opts),
	}
}
