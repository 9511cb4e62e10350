package usecase

import (
	"context"
	"encoding/json"
	"errors"

	"StockCast/internal/domain/models"
	"StockCast/internal/services/montecarlo"
	pkgkafka "StockCast/pkg/kafka"
	"StockCast/pkg/logger"
)

const defaultJobDays = 30

// SimulationJobHandler runs SimulationJob messages from Kafka. The outcome is
// published as a RunEvent whose run id is the job id.
type SimulationJobHandler struct {
	topic string
	uc    *SimulationUseCase
	log   *logger.Logger
}

var _ pkgkafka.MessageHandler = (*SimulationJobHandler)(nil)

func NewSimulationJobHandler(topic string, uc *SimulationUseCase, log *logger.Logger) *SimulationJobHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &SimulationJobHandler{topic: topic, uc: uc, log: log}
}

func (h *SimulationJobHandler) Topic() string { return h.topic }

// Handle returns an error only for failures worth retrying. Malformed jobs
// and jobs the engine rejects are logged and acknowledged.
func (h *SimulationJobHandler) Handle(ctx context.Context, b []byte) error {
	var job models.SimulationJob
	if err := json.Unmarshal(b, &job); err != nil {
		h.log.Warn("dropping malformed simulation job", logger.Error(err))
		return nil
	}
	days := applyJobDefaults(&job)

	res, err := h.uc.Simulate(ctx, SimulateParams{
		JobID:       job.JobID,
		Symbol:      job.Symbol,
		Period:      job.Period,
		Days:        days,
		Simulations: job.Simulations,
		Visible:     job.Visible,
		Seed:        job.Seed,
		Shock:       montecarlo.ShockModel(job.Shock),
	}, nil)
	if err != nil {
		if permanent(err) {
			h.log.Warn("simulation job rejected",
				logger.String("job_id", job.JobID),
				logger.String("symbol", job.Symbol),
				logger.Error(err),
			)
			return nil
		}
		return err
	}

	h.log.Info("simulation job done",
		logger.String("job_id", res.RunID),
		logger.String("symbol", res.Symbol),
		logger.Int("trials", res.Result.Trials),
		logger.Float64("median", res.Result.Stats.Median),
	)
	return nil
}

// applyJobDefaults fills unset fields and returns the horizon in days.
func applyJobDefaults(job *models.SimulationJob) int {
	days := defaultJobDays
	if job.Days != nil {
		days = *job.Days
	}
	if job.Simulations == 0 {
		job.Simulations = 1000
	}
	if job.Shock == "" {
		job.Shock = string(montecarlo.ShockGaussian)
	}
	return days
}

func permanent(err error) bool {
	return errors.Is(err, models.ErrInvalidParameter) ||
		errors.Is(err, models.ErrInsufficientData) ||
		errors.Is(err, models.ErrSymbolNotFound)
}
