package di

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockCast/internal/repository"
	"StockCast/pkg/config"
)

func TestInitializeAppWithLocalDefaults(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)
	cfg.Logger.Level = "error"

	app, cleanup, err := InitializeApp(cfg)
	require.NoError(t, err)
	require.NotNil(t, app)
	cleanup()
}

func TestOptionalInfrastructureDisabled(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)

	archive, cleanup, err := ProvideBarArchive(cfg, nil)
	require.NoError(t, err)
	assert.Nil(t, archive)
	cleanup()

	pub, cleanup, err := ProvideEventPublisher(cfg, ProvideRegistry(), nil)
	require.NoError(t, err)
	assert.IsType(t, repository.NopEventPublisher{}, pub)
	cleanup()

	consumer, err := ProvideKafkaConsumer(cfg, nil, ProvideRegistry(), nil)
	require.NoError(t, err)
	assert.Nil(t, consumer)
}
