package di

import (
	"context"
	"fmt"
	"time"

	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"StockCast/internal/domain/repository"
	domsvc "StockCast/internal/domain/service"
	"StockCast/internal/handler/api"
	internalrepo "StockCast/internal/repository"
	svcmetrics "StockCast/internal/service/metrics"
	"StockCast/internal/service/ratelimit"
	"StockCast/internal/service/yahoo"
	"StockCast/internal/services/backtest"
	"StockCast/internal/services/forecast"
	"StockCast/internal/services/montecarlo"
	"StockCast/internal/services/risk"
	"StockCast/internal/usecase"
	"StockCast/pkg/cache"
	pkgch "StockCast/pkg/clickhouse"
	"StockCast/pkg/config"
	xhttp "StockCast/pkg/http"
	pkgkafka "StockCast/pkg/kafka"
	applogger "StockCast/pkg/logger"
	"StockCast/pkg/metrics"
	"StockCast/pkg/server"
)

const initTimeout = 10 * time.Second

var defaultVaRLevels = []float64{90, 95, 99, 99.5}

// InfraSet provides logging, metrics and storage clients.
var InfraSet = wire.NewSet(
	ProvideLogger,
	ProvideRegistry,
	ProvideRecorder,
	wire.Bind(new(repository.Metrics), new(*metrics.Recorder)),
	ProvideCache,
	ProvideBarProvider,
	ProvideBarArchive,
	ProvideEventPublisher,
)

// EngineSet provides the numeric services and use cases.
var EngineSet = wire.NewSet(
	ProvideForecaster,
	ProvideBacktester,
	ProvideSimulator,
	ProvideRiskAnalyzer,
	usecase.NewRunTracker,
	ProvideBarsUseCase,
	usecase.NewForecastUseCase,
	usecase.NewBacktestUseCase,
	ProvideSimulationUseCase,
	ProvideRiskUseCase,
)

// TransportSet provides the HTTP surface, the job consumer and the App.
var TransportSet = wire.NewSet(
	api.NewEngineHandler,
	ProvideHTTPServer,
	ProvideKafkaConsumer,
	ProvideApp,
)

// ProvideLogger builds the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideRegistry creates a private registry carrying runtime and service collectors.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	svcmetrics.Register(reg)
	return reg
}

// ProvideRecorder creates the engine metrics recorder.
func ProvideRecorder(reg *prometheus.Registry) *metrics.Recorder {
	return metrics.New(reg)
}

// ProvideCache stacks the in-process LRU over Redis when Redis is enabled.
func ProvideCache(cfg *config.Config, rec *metrics.Recorder, log *applogger.Logger) (cache.Service, func(), error) {
	local := cache.NewMemoryCache(
		cache.WithMemoryMaxSize(cfg.Cache.MemorySize),
		cache.WithMemoryTTL(cfg.Cache.TTL),
	)

	var remote cache.Service
	if cfg.Cache.Redis.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
		defer cancel()
		rc, err := cache.NewRedisCache(ctx,
			cache.WithRedisAddr(cfg.Cache.Redis.Addr),
			cache.WithRedisAuth(cfg.Cache.Redis.Password, cfg.Cache.Redis.DB),
			cache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
			cache.WithRedisPool(cfg.Cache.Redis.PoolSize, cfg.Cache.Redis.MinIdleConns),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("redis cache: %w", err)
		}
		log.Info("redis cache connected", applogger.String("addr", cfg.Cache.Redis.Addr))
		remote = rc
	}

	c := cache.NewLayeredCache(local, remote, rec.RecordCacheLookup)
	cleanup := func() {
		if err := c.Close(); err != nil {
			log.Warn("cache close error", applogger.Error(err))
		}
	}
	return c, cleanup, nil
}

// ProvideBarProvider creates the rate-limited Yahoo chart client.
func ProvideBarProvider(cfg *config.Config, log *applogger.Logger) repository.BarProvider {
	hc := xhttp.NewClient(
		xhttp.WithTimeout(cfg.Provider.Timeout),
		xhttp.WithRetries(cfg.Provider.Retries, 250*time.Millisecond),
	)
	return yahoo.New(yahoo.Config{
		BaseURL:    cfg.Provider.BaseURL,
		UserAgent:  cfg.Provider.UserAgent,
		RatePerSec: float64(cfg.Provider.RatePerSec),
	}, hc, ratelimit.New(), log)
}

// ProvideBarArchive connects the ClickHouse archive. A disabled archive yields nil.
func ProvideBarArchive(cfg *config.Config, log *applogger.Logger) (repository.BarArchive, func(), error) {
	if !cfg.ClickHouse.Enabled {
		return nil, func() {}, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()

	client, err := pkgch.NewClient(ctx,
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("clickhouse client: %w", err)
	}

	store := internalrepo.NewCHBarStore(client, cfg.ClickHouse.Table, log)
	if err := store.Init(ctx); err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	log.Info("clickhouse archive ready",
		applogger.String("database", cfg.ClickHouse.Database),
		applogger.String("table", cfg.ClickHouse.Table),
	)
	cleanup := func() {
		if err := store.Close(); err != nil {
			log.Warn("clickhouse close error", applogger.Error(err))
		}
	}
	return store, cleanup, nil
}

// ProvideEventPublisher publishes run events to Kafka, or drops them when Kafka is disabled.
func ProvideEventPublisher(cfg *config.Config, reg *prometheus.Registry, log *applogger.Logger) (repository.EventPublisher, func(), error) {
	if !cfg.Kafka.Enabled {
		return internalrepo.NopEventPublisher{}, func() {}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression("snappy"),
		pkgkafka.WithRequiredAcks(1),
		pkgkafka.WithMaxAttempts(3),
		pkgkafka.WithBatching(100, 50*time.Millisecond),
		pkgkafka.WithHashByKey(true),
		pkgkafka.WithProducerMetrics(reg),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	pub := internalrepo.NewKafkaEventPublisher(producer, cfg.Kafka.EventsTopic)
	cleanup := func() {
		if err := pub.Close(); err != nil {
			log.Warn("kafka producer close error", applogger.Error(err))
		}
	}
	return pub, cleanup, nil
}

func ProvideForecaster() domsvc.Forecaster { return forecast.NewGenerator() }

func ProvideBacktester(gen domsvc.Forecaster) domsvc.Backtester { return backtest.NewHarness(gen) }

// ProvideSimulator sizes the Monte Carlo worker pool from config.
func ProvideSimulator(cfg *config.Config) domsvc.Simulator {
	return montecarlo.NewSimulator(
		montecarlo.WithWorkers(cfg.Engine.Workers),
		montecarlo.WithChunkSize(cfg.Engine.ChunkSize),
	)
}

func ProvideRiskAnalyzer() domsvc.RiskAnalyzer { return risk.NewAnalyzer() }

func ProvideBarsUseCase(
	provider repository.BarProvider,
	c cache.Service,
	archive repository.BarArchive,
	cfg *config.Config,
	log *applogger.Logger,
) *usecase.BarsUseCase {
	return usecase.NewBarsUseCase(provider, c, archive, cfg.Cache.TTL, log)
}

func ProvideSimulationUseCase(
	bars *usecase.BarsUseCase,
	sim domsvc.Simulator,
	runs *usecase.RunTracker,
	cfg *config.Config,
) *usecase.SimulationUseCase {
	return usecase.NewSimulationUseCase(bars, sim, runs, cfg.Engine.HistogramBins, cfg.Engine.RunTimeout)
}

func ProvideRiskUseCase(
	bars *usecase.BarsUseCase,
	analyzer domsvc.RiskAnalyzer,
	runs *usecase.RunTracker,
	cfg *config.Config,
) *usecase.RiskUseCase {
	levels := cfg.Engine.VaRLevels
	if len(levels) == 0 {
		levels = defaultVaRLevels
	}
	return usecase.NewRiskUseCase(bars, analyzer, runs, levels)
}

// ProvideHTTPServer creates the Echo server with the engine routes and /metrics.
func ProvideHTTPServer(cfg *config.Config, h *api.EngineHandler, reg *prometheus.Registry, log *applogger.Logger) *xhttp.Server {
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	return xhttp.NewServer(h, log,
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORSOrigins(cfg.Server.CORSOrigins),
		xhttp.WithMetrics(metricsPath, reg, reg),
	)
}

// ProvideKafkaConsumer creates the simulation job consumer. A disabled Kafka yields nil.
func ProvideKafkaConsumer(
	cfg *config.Config,
	sim *usecase.SimulationUseCase,
	reg *prometheus.Registry,
	log *applogger.Logger,
) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(log,
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Workers),
		pkgkafka.WithConsumerRetry(cfg.Kafka.RetryMax, 100*time.Millisecond, 5*time.Second),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.DLQTopic),
		pkgkafka.WithConsumerMetrics(reg),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.RegisterHandler(usecase.NewSimulationJobHandler(cfg.Kafka.JobsTopic, sim, log))
	return consumer, nil
}

func ProvideApp(log *applogger.Logger, srv *xhttp.Server, consumer *pkgkafka.Consumer) *server.App {
	return server.New(log, srv, consumer)
}
