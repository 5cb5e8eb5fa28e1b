package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/nerrad567/tartan-home-core/internal/house"
	"github.com/nerrad567/tartan-home-core/internal/infrastructure/mqtt"
)

const defaultPublishQueue = 256

// Errors returned by HandleUpdate.
var (
	ErrUnexpectedTopic = errors.New("feed: unexpected topic")
	ErrBadPayload      = errors.New("feed: payload is not a JSON object")
)

// Broker is the part of the MQTT client the feed uses.
type Broker interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	PublishRetained(topic string, payload []byte) error
	Topics() mqtt.Topics
	QoS() byte
}

// Houses opens houses by name.
type Houses interface {
	Open(name string) (*house.Store, error)
}

// UpdateRecorder counts update outcomes per source.
type UpdateRecorder interface {
	RecordUpdate(source string, err error)
}

// Logger is the logging interface used by the feed.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

type noopRecorder struct{}

func (noopRecorder) RecordUpdate(string, error) {}

// MQTTFeed bridges houses and the broker.
//
// It implements house.Observer: commits are queued and published by Run
// so the committing goroutine never waits on the network.
type MQTTFeed struct {
	broker   Broker
	houses   Houses
	logger   Logger
	recorder UpdateRecorder

	queue   chan house.Commit
	dropped atomic.Int64
}

// MQTTOption configures an MQTTFeed.
type MQTTOption func(*MQTTFeed)

// WithFeedLogger sets the logger.
func WithFeedLogger(l Logger) MQTTOption {
	return func(f *MQTTFeed) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithRecorder sets the update outcome recorder.
func WithRecorder(r UpdateRecorder) MQTTOption {
	return func(f *MQTTFeed) {
		if r != nil {
			f.recorder = r
		}
	}
}

// WithQueueSize bounds the number of commits waiting for publication.
func WithQueueSize(n int) MQTTOption {
	return func(f *MQTTFeed) {
		if n > 0 {
			f.queue = make(chan house.Commit, n)
		}
	}
}

// NewMQTTFeed creates a feed. Call Start to subscribe and Run to publish.
func NewMQTTFeed(broker Broker, houses Houses, opts ...MQTTOption) *MQTTFeed {
	f := &MQTTFeed{
		broker:   broker,
		houses:   houses,
		logger:   noopLogger{},
		recorder: noopRecorder{},
		queue:    make(chan house.Commit, defaultPublishQueue),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Start subscribes to every house's update topic.
func (f *MQTTFeed) Start() error {
	topic := f.broker.Topics().AllHouseUpdates()
	if err := f.broker.Subscribe(topic, f.broker.QoS(), f.HandleUpdate); err != nil {
		return fmt.Errorf("subscribing to %s: %w", topic, err)
	}
	f.logger.Info("mqtt feed subscribed", "topic", topic)
	return nil
}

// HandleUpdate runs one cycle for the house named in topic with the
// JSON field-set in payload.
func (f *MQTTFeed) HandleUpdate(topic string, payload []byte) error {
	name, kind, ok := f.broker.Topics().ParseHouseTopic(topic)
	if !ok || kind != mqtt.KindUpdate {
		return fmt.Errorf("%w: %s", ErrUnexpectedTopic, topic)
	}

	var fields house.Fields
	if err := json.Unmarshal(payload, &fields); err != nil || fields == nil {
		f.recorder.RecordUpdate("mqtt", ErrBadPayload)
		return fmt.Errorf("%w: house %s", ErrBadPayload, name)
	}

	st, err := f.houses.Open(name)
	if err != nil {
		f.recorder.RecordUpdate("mqtt", err)
		return fmt.Errorf("opening house %s: %w", name, err)
	}

	_, err = st.ApplyUpdate(fields)
	f.recorder.RecordUpdate("mqtt", err)
	if err != nil {
		return err
	}
	f.logger.Debug("mqtt update applied", "house", name, "fields", len(fields))
	return nil
}

// OnCommit implements house.Observer.
func (f *MQTTFeed) OnCommit(c house.Commit) {
	select {
	case f.queue <- c:
	default:
		f.dropped.Add(1)
		f.logger.Warn("state publish queue full, dropping state", "house", c.House)
	}
}

// Dropped returns how many commits were not published because the
// queue was full.
func (f *MQTTFeed) Dropped() int64 {
	return f.dropped.Load()
}

// Run publishes queued states until ctx is cancelled.
func (f *MQTTFeed) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case c := <-f.queue:
			f.publish(c)
		}
	}
}

func (f *MQTTFeed) publish(c house.Commit) {
	payload, err := json.Marshal(c.Next.Envelope())
	if err != nil {
		f.logger.Error("encoding house state failed", "house", c.House, "error", err)
		return
	}
	topic := f.broker.Topics().HouseState(c.House)
	if err := f.broker.PublishRetained(topic, payload); err != nil {
		f.logger.Warn("publishing house state failed", "house", c.House, "topic", topic, "error", err)
	}
}
