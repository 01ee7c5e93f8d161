package main

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/blackenaxe/icom/cmd/api/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Serve   commands.ServeCmd   `cmd:"" default:"1" help:"Start the HTTP API (default)"`
		Migrate commands.MigrateCmd `cmd:"" help:"Apply database migrations and exit"`
		Seed    commands.SeedCmd    `cmd:"" help:"Load a YAML fixture of users and work orders"`
		Version kong.VersionFlag
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Name("icom"),
		kong.Description("Work order tracking service."),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{Version: version})
	cmd.FatalIfErrorf(err)
}
