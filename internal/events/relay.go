// Package events relays change notices between instances over Redis pub/sub
// so every change feed subscriber hears about every admin write.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/consultorio-web/consultorio-backend/logger"
	"github.com/consultorio-web/consultorio-backend/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultChannel is the pub/sub channel shared by all instances.
const DefaultChannel = "consultorio:cambios"

// Config holds configuration for RedisRelay
type Config struct {
	Channel        string
	PublishTimeout time.Duration
}

// DefaultConfig returns default configuration values
func DefaultConfig() Config {
	return Config{
		Channel:        DefaultChannel,
		PublishTimeout: 5 * time.Second,
	}
}

// Broadcaster delivers events to local subscribers, typically the websocket hub.
type Broadcaster interface {
	Broadcast(event types.ChangeEvent)
}

type metrics struct {
	publishLatency prometheus.Histogram
	errorCount     *prometheus.CounterVec
	eventCount     *prometheus.CounterVec
}

var (
	metricsInstance *metrics
	metricsOnce     sync.Once
	defaultRegistry = prometheus.DefaultRegisterer
)

func newMetrics() *metrics {
	metricsOnce.Do(func() {
		factory := promauto.With(defaultRegistry)
		metricsInstance = &metrics{
			publishLatency: factory.NewHistogram(prometheus.HistogramOpts{
				Name:    "change_event_publish_duration_seconds",
				Help:    "Time taken to publish change events",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			}),
			errorCount: factory.NewCounterVec(prometheus.CounterOpts{
				Name: "change_event_errors_total",
				Help: "Change event relay errors by operation",
			}, []string{"operation"}),
			eventCount: factory.NewCounterVec(prometheus.CounterOpts{
				Name: "change_events_total",
				Help: "Change events relayed by operation and scope",
			}, []string{"operation", "scope"}),
		}
	})
	return metricsInstance
}

func resetMetricsForTesting() {
	defaultRegistry = prometheus.NewRegistry()
	metricsInstance = nil
	metricsOnce = sync.Once{}
}

// RedisRelay publishes change events to Redis and forwards events received
// from Redis to the local broadcaster. It satisfies cache.Broadcaster, so the
// invalidator can hand it events in place of the hub.
type RedisRelay struct {
	rdb     redis.UniversalClient
	local   Broadcaster
	log     *zap.SugaredLogger
	metrics *metrics
	config  Config
}

func NewRedisRelay(rdb redis.UniversalClient, local Broadcaster, cfg ...Config) *RedisRelay {
	config := DefaultConfig()
	if len(cfg) > 0 {
		config = cfg[0]
	}
	return &RedisRelay{
		rdb:     rdb,
		local:   local,
		log:     logger.GetLogger().Named("events"),
		metrics: newMetrics(),
		config:  config,
	}
}

// Broadcast publishes the event. When Redis is unreachable the event is still
// delivered locally so this instance's subscribers are not left stale.
func (r *RedisRelay) Broadcast(event types.ChangeEvent) {
	if err := r.Publish(context.Background(), event); err != nil {
		r.log.Warnw("Failed to publish change event, delivering locally", "scope", event.Scope, "error", err)
		r.local.Broadcast(event)
	}
}

// Publish sends one event to the shared channel.
func (r *RedisRelay) Publish(ctx context.Context, event types.ChangeEvent) error {
	start := time.Now()
	defer func() {
		r.metrics.publishLatency.Observe(time.Since(start).Seconds())
	}()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	data, err := json.Marshal(event)
	if err != nil {
		r.metrics.errorCount.WithLabelValues("marshal").Inc()
		return fmt.Errorf("marshal change event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.config.PublishTimeout)
	defer cancel()
	if err := r.rdb.Publish(ctx, r.config.Channel, data).Err(); err != nil {
		r.metrics.errorCount.WithLabelValues("publish").Inc()
		return fmt.Errorf("redis publish: %w", err)
	}

	r.metrics.eventCount.WithLabelValues("publish", string(event.Scope)).Inc()
	return nil
}

// Run forwards events from the shared channel to the local broadcaster until
// ctx is cancelled.
func (r *RedisRelay) Run(ctx context.Context) error {
	pubsub := r.rdb.Subscribe(ctx, r.config.Channel)
	defer func() {
		if err := pubsub.Close(); err != nil {
			r.log.Errorw("Error closing change event subscription", "error", err)
		}
	}()

	if _, err := pubsub.Receive(ctx); err != nil {
		r.metrics.errorCount.WithLabelValues("subscribe").Inc()
		return fmt.Errorf("subscribe %s: %w", r.config.Channel, err)
	}
	r.log.Infow("Change event relay subscribed", "channel", r.config.Channel)

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			r.deliver(msg.Payload)
		}
	}
}

func (r *RedisRelay) deliver(payload string) {
	var event types.ChangeEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		r.metrics.errorCount.WithLabelValues("unmarshal").Inc()
		r.log.Errorw("Failed to unmarshal change event", "error", err)
		return
	}
	if event.Scope == "" {
		r.metrics.errorCount.WithLabelValues("validation").Inc()
		return
	}
	r.metrics.eventCount.WithLabelValues("receive", string(event.Scope)).Inc()
	r.local.Broadcast(event)
}
