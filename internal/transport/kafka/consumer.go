package kafka

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"github.com/prometheus/client_golang/prometheus"

	"marketplace-delivery/internal/domain"
	"marketplace-delivery/internal/logx"
)

// HandleFunc processes a single status update from Kafka.
type HandleFunc func(context.Context, domain.StatusUpdate) error

// Config selects the brokers, group and topic.
type Config struct {
	Brokers []string
	GroupID string
	Topic   string
}

// Enabled reports whether enough settings are present to start a consumer.
func (c Config) Enabled() bool {
	return len(c.Brokers) > 0 && strings.TrimSpace(c.Topic) != "" && strings.TrimSpace(c.GroupID) != ""
}

// Consumer wraps a Sarama consumer group and dispatches status events to a handler.
type Consumer struct {
	group   sarama.ConsumerGroup
	topic   string
	handler HandleFunc
	logger  logx.Logger
	events  *prometheus.CounterVec
	backoff time.Duration
}

// NewConsumer creates a consumer. It returns nil, nil when cfg is not enabled.
func NewConsumer(cfg Config, h HandleFunc, logger logx.Logger, events *prometheus.CounterVec) (*Consumer, error) {
	// не стартуем, если у кафки нет настроек
	if !cfg.Enabled() {
		return nil, nil
	}
	if logger == nil {
		logger = logx.Nop()
	}

	sc := sarama.NewConfig()
	sc.Consumer.Offsets.Initial = sarama.OffsetOldest
	sc.Consumer.Return.Errors = true

	group, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.GroupID, sc)
	if err != nil {
		return nil, err
	}

	return &Consumer{
		group:   group,
		topic:   cfg.Topic,
		handler: h,
		logger:  logger,
		events:  events,
		backoff: time.Second,
	}, nil
}

// Run consumes until ctx is done.
func (c *Consumer) Run(ctx context.Context) error {
	if c == nil {
		return nil
	}

	go func() {
		for err := range c.group.Errors() {
			c.logger.Warn("kafka group error", logx.Err(err))
		}
	}()

	h := &groupHandler{c: c}
	for {
		if err := c.group.Consume(ctx, []string{c.topic}, h); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Error("kafka consume error", logx.Err(err))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.backoff):
			}
			continue
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// Close closes the consumer group.
func (c *Consumer) Close() error {
	if c == nil {
		return nil
	}
	return c.group.Close()
}

func (c *Consumer) count(result string) {
	if c.events != nil {
		c.events.WithLabelValues(result).Inc()
	}
}

type groupHandler struct{ c *Consumer }

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

// ConsumeClaim marks malformed and permanently failing messages and stops on
// a transient failure so the message is delivered again.
func (h *groupHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		var dto StatusEventDTO
		if err := json.Unmarshal(msg.Value, &dto); err != nil {
			h.c.logger.Warn("kafka bad json", logx.Int("partition", int(msg.Partition)), logx.Err(err))
			h.c.count("malformed")
			sess.MarkMessage(msg, "")
			continue
		}

		u := ToDomain(dto)
		if u.JobID == "" {
			h.c.logger.Warn("kafka empty job_id", logx.Int("partition", int(msg.Partition)))
			h.c.count("malformed")
			sess.MarkMessage(msg, "")
			continue
		}

		if err := h.c.handler(sess.Context(), u); err != nil {
			if IsPermanent(err) {
				h.c.logger.Warn("kafka permanent failure, skipping message",
					logx.String("job_id", u.JobID),
					logx.String("status", u.Status),
					logx.Err(err),
				)
				h.c.count("skipped")
				sess.MarkMessage(msg, "")
				continue
			}
			h.c.logger.Error("kafka handle failed, will retry",
				logx.String("job_id", u.JobID),
				logx.String("status", u.Status),
				logx.Err(err),
			)
			h.c.count("retry")
			return err
		}

		h.c.count("applied")
		sess.MarkMessage(msg, "")
	}
	return nil
}
