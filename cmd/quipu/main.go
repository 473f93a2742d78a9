package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/quipuerp/quipu/internal/config"
	"github.com/quipuerp/quipu/internal/migration"
	"github.com/quipuerp/quipu/internal/observability"
	"github.com/quipuerp/quipu/internal/server"
	"github.com/quipuerp/quipu/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func registerSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
