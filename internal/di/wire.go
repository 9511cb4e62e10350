//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"StockCast/pkg/config"
	"StockCast/pkg/server"
)

// InitializeApp wires up all dependencies and returns the application.
// The returned cleanup releases caches, the archive and the producer.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		InfraSet,
		EngineSet,
		TransportSet,
	)
	return nil, nil, nil
}
