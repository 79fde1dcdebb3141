package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// InstanceGroupID derives a per-instance consumer group from the
// configured base. Change notifications are a broadcast, not a work
// queue: instances sharing one group would each see only a slice of the
// stream and their clients would miss events.
func InstanceGroupID(base string) string {
	return base + "-" + uuid.NewString()[:8]
}

// Consumer reads change notifications published by other instances and
// hands them to the bus for local delivery.
type Consumer struct {
	reader *kafkago.Reader
	logger *zap.SugaredLogger
}

func NewConsumer(brokers []string, topic, groupID string, logger *zap.SugaredLogger) *Consumer {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return &Consumer{reader: r, logger: logger}
}

// Run blocks until ctx is cancelled, delivering each message locally.
func (c *Consumer) Run(ctx context.Context, bus *Bus) {
	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Warnw("kafka read", "err", err)
			time.Sleep(time.Second)
			continue
		}
		bus.DeliverLocal(string(m.Key), m.Value)
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
