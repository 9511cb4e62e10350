package kafka

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/segmentio/kafka-go"

	"StockCast/pkg/logger"
)

// MessageHandler handles messages from a specific topic.
type MessageHandler interface {
	Topic() string
	Handle(context.Context, []byte) error
}

// committer is the part of *kafka.Reader used after handling.
type committer interface {
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

type message struct {
	km     kafka.Message
	commit committer
}

// Consumer reads registered topics in a consumer group and fans messages
// out to a worker pool. Offsets are committed after success, or after the
// message has been parked on the DLQ.
type Consumer struct {
	cfg      ConsumerConfig
	log      *logger.Logger
	handlers map[string]MessageHandler
	readers  []*kafka.Reader
	msgs     chan message
	dlq      messageWriter
	metrics  *consumerMetrics

	wg       sync.WaitGroup
	cancel   context.CancelFunc
	stopOnce sync.Once
}

// NewConsumer creates a consumer. Readers are opened by Start.
func NewConsumer(log *logger.Logger, opts ...ConsumerOption) (*Consumer, error) {
	cfg := ConsumerConfig{
		GroupID:     "default",
		WorkerCount: 1,
		BufferSize:  16,
		RetryMax:    3,
		BackoffMin:  50 * time.Millisecond,
		BackoffMax:  2 * time.Second,
		MinBytes:    1,
		MaxBytes:    10e6,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka: brokers are required")
	}
	if log == nil {
		log = logger.Nop()
	}

	c := &Consumer{
		cfg:      cfg,
		log:      log.With(logger.String("component", "kafka_consumer")),
		handlers: make(map[string]MessageHandler),
		msgs:     make(chan message, cfg.BufferSize),
		metrics:  newConsumerMetrics(cfg.Registerer),
	}
	if cfg.DLQTopic != "" {
		c.dlq = &kafka.Writer{Addr: kafka.TCP(cfg.Brokers...), Balancer: &kafka.LeastBytes{}}
	}
	return c, nil
}

// RegisterHandler registers a handler for its topic. Later registrations for
// the same topic are ignored.
func (c *Consumer) RegisterHandler(h MessageHandler) {
	if _, ok := c.handlers[h.Topic()]; ok {
		c.log.Warn("handler already registered", logger.String("topic", h.Topic()))
		return
	}
	c.handlers[h.Topic()] = h
}

// Start opens one reader per registered topic and launches the workers.
func (c *Consumer) Start(ctx context.Context) error {
	if len(c.handlers) == 0 {
		return errors.New("kafka: no handlers registered")
	}
	ctx, c.cancel = context.WithCancel(ctx)

	for topic := range c.handlers {
		reader := kafka.NewReader(kafka.ReaderConfig{
			Brokers:  c.cfg.Brokers,
			Topic:    topic,
			GroupID:  c.cfg.GroupID,
			MinBytes: c.cfg.MinBytes,
			MaxBytes: c.cfg.MaxBytes,
		})
		c.readers = append(c.readers, reader)
		c.wg.Add(1)
		go c.fetch(ctx, topic, reader)
	}
	for range c.cfg.WorkerCount {
		c.wg.Add(1)
		go c.work(ctx)
	}
	c.log.Info("kafka consumer started",
		logger.Int("topics", len(c.handlers)),
		logger.Int("workers", c.cfg.WorkerCount),
	)
	return nil
}

// Stop cancels reading, waits for in-flight handlers and closes readers.
func (c *Consumer) Stop(ctx context.Context) error {
	var stopErr error
	c.stopOnce.Do(func() {
		if c.cancel != nil {
			c.cancel()
		}
		done := make(chan struct{})
		go func() {
			c.wg.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			stopErr = fmt.Errorf("timeout waiting for consumer to stop: %w", ctx.Err())
		}

		var errs []error
		for _, r := range c.readers {
			errs = append(errs, r.Close())
		}
		if c.dlq != nil {
			errs = append(errs, c.dlq.Close())
		}
		stopErr = errors.Join(append([]error{stopErr}, errs...)...)
		c.log.Info("kafka consumer stopped")
	})
	return stopErr
}

func (c *Consumer) fetch(ctx context.Context, topic string, reader *kafka.Reader) {
	defer c.wg.Done()
	attempt := 0
	for {
		km, err := reader.FetchMessage(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			attempt++
			c.log.Error("kafka fetch error", logger.String("topic", topic), logger.Error(err))
			if !sleepCtx(ctx, backoffWithJitter(c.cfg.BackoffMin, c.cfg.BackoffMax, attempt)) {
				return
			}
			continue
		}
		attempt = 0

		select {
		case c.msgs <- message{km: km, commit: reader}:
			c.metrics.queue(topic, len(c.msgs))
		case <-ctx.Done():
			return
		}
	}
}

func (c *Consumer) work(ctx context.Context) {
	defer c.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case m := <-c.msgs:
			_ = c.process(ctx, m)
		}
	}
}

// process runs the handler with retries and settles the offset. The returned
// error is the last handler error, if any.
func (c *Consumer) process(ctx context.Context, m message) error {
	topic := m.km.Topic
	h, ok := c.handlers[topic]
	if !ok {
		return fmt.Errorf("kafka: no handler for topic %s", topic)
	}
	start := time.Now()

	var err error
	attempts := 0
	for {
		attempts++
		err = safeHandle(ctx, h, m.km.Value)
		if err == nil || attempts > c.cfg.RetryMax {
			break
		}
		if !sleepCtx(ctx, backoffWithJitter(c.cfg.BackoffMin, c.cfg.BackoffMax, attempts)) {
			// Shutting down; leave the offset uncommitted for redelivery.
			return err
		}
	}

	settled := err == nil
	if err != nil {
		c.log.Error("kafka handler failed",
			logger.String("topic", topic),
			logger.Int("attempts", attempts),
			logger.Int64("offset", m.km.Offset),
			logger.Error(err),
		)
		if c.dlq != nil {
			dlqErr := c.dlq.WriteMessages(ctx, kafka.Message{
				Topic: c.cfg.DLQTopic,
				Key:   m.km.Key,
				Value: m.km.Value,
				Time:  time.Now(),
				Headers: []kafka.Header{
					{Key: "source_topic", Value: []byte(topic)},
					{Key: "source_offset", Value: []byte(strconv.FormatInt(m.km.Offset, 10))},
					{Key: "error", Value: []byte(err.Error())},
				},
			})
			if dlqErr != nil {
				c.log.Error("kafka dlq write failed", logger.String("dlq", c.cfg.DLQTopic), logger.Error(dlqErr))
			}
			settled = dlqErr == nil
		}
	}

	if settled && m.commit != nil {
		if cerr := m.commit.CommitMessages(ctx, m.km); cerr != nil {
			c.log.Error("kafka commit failed", logger.String("topic", topic), logger.Error(cerr))
		}
	}
	c.metrics.handled(topic, err, time.Since(start))
	return err
}

func safeHandle(ctx context.Context, h MessageHandler, data []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in handler for %s: %v", h.Topic(), r)
		}
	}()
	return h.Handle(ctx, data)
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func backoffWithJitter(min, max time.Duration, attempt int) time.Duration {
	if min <= 0 {
		min = 50 * time.Millisecond
	}
	if max < min {
		max = min
	}
	exp := max
	if attempt < 30 {
		exp = min * time.Duration(1<<uint(attempt-1))
	}
	if exp > max || exp <= 0 {
		exp = max
	}
	// jitter up to 50%
	if half := int64(exp) / 2; half > 0 {
		exp -= time.Duration(rand.Int64N(half))
	}
	return exp
}

type consumerMetrics struct {
	depth   *prometheus.GaugeVec
	results *prometheus.CounterVec
	latency *prometheus.HistogramVec
}

func newConsumerMetrics(reg prometheus.Registerer) *consumerMetrics {
	if reg == nil {
		return nil
	}
	f := promauto.With(reg)
	return &consumerMetrics{
		depth: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "stockcast_kafka_consumer_queue_depth",
			Help: "Messages waiting in the consumer queue",
		}, []string{"topic"}),
		results: f.NewCounterVec(prometheus.CounterOpts{
			Name: "stockcast_kafka_consumer_messages_total",
			Help: "Messages handled by result",
		}, []string{"topic", "result"}),
		latency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name: "stockcast_kafka_consumer_handle_seconds",
			Help: "Handling time per message including retries",
		}, []string{"topic"}),
	}
}

func (m *consumerMetrics) queue(topic string, depth int) {
	if m == nil {
		return
	}
	m.depth.WithLabelValues(topic).Set(float64(depth))
}

func (m *consumerMetrics) handled(topic string, err error, dur time.Duration) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.results.WithLabelValues(topic, result).Inc()
	m.latency.WithLabelValues(topic).Observe(dur.Seconds())
}
