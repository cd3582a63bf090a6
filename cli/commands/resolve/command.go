// Package resolve provides the `resolve` command, which prints the resolved component for a set
// of context filters.
//
// Filters are either derived from request attributes through the configured tag handlers
// (`--tag device=phone`) or given directly (`--filter device=mobile:5`). Derived filters come
// first.
package resolve

import (
	"strings"

	"github.com/hightail/wilson-sub000/cli/commands/common"
	"github.com/hightail/wilson-sub000/internal/errors"
	"github.com/hightail/wilson-sub000/internal/filter"
	"github.com/hightail/wilson-sub000/internal/resolver"
	"github.com/hightail/wilson-sub000/options"
	"github.com/urfave/cli/v2"
)

const (
	CommandName = "resolve"

	DataFlagName   = "data"
	TagFlagName    = "tag"
	FilterFlagName = "filter"
)

func NewCommand(opts *options.ResolverOptions) *cli.Command {
	return &cli.Command{
		Name:      CommandName,
		Usage:     "Print the servable component resolved for the given filters.",
		ArgsUsage: "<component>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  DataFlagName,
				Usage: "Print the full component data including the dependency ids.",
			},
			&cli.StringSliceFlag{
				Name:  TagFlagName,
				Usage: "Request attribute `name=value`, turned into a filter by the configured tags.",
			},
			&cli.StringSliceFlag{
				Name:  FilterFlagName,
				Usage: "Context filter `tag=value[:priority]`.",
			},
		},
		Action: func(ctx *cli.Context) error {
			if err := common.RequireArgs(ctx, 1); err != nil {
				return err
			}

			return common.RunWithResolver(ctx, opts, func(r *resolver.Resolver) error {
				return Run(ctx, r)
			})
		},
	}
}

// Run resolves the component named by the first argument.
func Run(ctx *cli.Context, r *resolver.Resolver) error {
	id := ctx.Args().First()

	filters, err := Filters(r.Registry(), ctx.StringSlice(TagFlagName), ctx.StringSlice(FilterFlagName))
	if err != nil {
		return err
	}

	if ctx.Bool(DataFlagName) {
		data, err := r.GetComponentData(ctx.Context, id, filters)
		if err != nil {
			return err
		}

		return common.PrintJSON(ctx.App.Writer, data)
	}

	servable, err := r.GetServableComponent(ctx.Context, id, filters)
	if err != nil {
		return err
	}

	return common.PrintJSON(ctx.App.Writer, servable)
}

// Filters builds the filter list from request attributes and explicit filters.
func Filters(registry *filter.Registry, tags, explicit []string) (filter.Filters, error) {
	attrs := make(map[string]string, len(tags))

	for _, tag := range tags {
		name, value, ok := strings.Cut(tag, "=")
		if !ok || name == "" {
			return nil, errors.New(filter.InvalidFilterError{Filter: tag})
		}

		attrs[name] = value
	}

	filters := registry.Filters(attrs)

	parsed, err := filter.ParseAll(explicit)
	if err != nil {
		return nil, err
	}

	return append(filters, parsed...), nil
}
