package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/AjayKumar0077/Resumelit/internal/bootstrap"
	"github.com/AjayKumar0077/Resumelit/internal/events"
	"github.com/AjayKumar0077/Resumelit/internal/shared/config"
	"github.com/AjayKumar0077/Resumelit/internal/shared/metrics"
	"github.com/AjayKumar0077/Resumelit/internal/shared/storage/object"
	"github.com/AjayKumar0077/Resumelit/internal/shared/telemetry"
)

const (
	defaultWorkerConcurrency  = 4
	defaultShutdownTimeoutSec = 30
	consumerTag               = "resume-worker"
)

func main() {
	cfg := config.Load()
	telemetry.SetLevel(cfg.LogLevel)

	if strings.TrimSpace(cfg.EventsAMQPURL) == "" {
		telemetry.Error("worker.config", map[string]any{"error": "EVENTS_AMQP_URL is required"})
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	concurrency := max(1, envInt("WORKER_CONCURRENCY", defaultWorkerConcurrency))
	shutdownTimeout := time.Duration(envInt("SHUTDOWN_TIMEOUT_SECONDS", defaultShutdownTimeoutSec)) * time.Second

	objects, err := bootstrap.NewObjectStore(ctx, cfg)
	if err != nil {
		telemetry.Error("worker.objects", map[string]any{"error": err.Error()})
		os.Exit(1)
	}

	consumer, err := events.NewAMQPConsumer(cfg.EventsAMQPURL, cfg.EventsQueue, concurrency)
	if err != nil {
		telemetry.Error("worker.connect", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	defer consumer.Close()

	deliveries, err := consumer.Deliveries(consumerTag)
	if err != nil {
		telemetry.Error("worker.consume", map[string]any{"error": err.Error()})
		os.Exit(1)
	}

	telemetry.Info("worker started", map[string]any{
		"queue":        consumer.Queue(),
		"concurrency":  concurrency,
		"object_store": cfg.ObjectStoreType,
	})

	run(ctx, deliveries, objects, concurrency, shutdownTimeout)
}

// run dispatches deliveries to at most concurrency handlers until ctx ends
// or the broker closes the channel, then waits up to shutdownTimeout.
func run(ctx context.Context, deliveries <-chan amqp.Delivery, objects object.Store, concurrency int, shutdownTimeout time.Duration) {
	sem := make(chan struct{}, max(1, concurrency))
	var wg sync.WaitGroup

loop:
	for {
		var d amqp.Delivery
		var ok bool
		select {
		case <-ctx.Done():
			break loop
		case d, ok = <-deliveries:
			if !ok {
				telemetry.Warn("worker.deliveries_closed", nil)
				break loop
			}
		}

		select {
		case <-ctx.Done():
			_ = d.Nack(false, true)
			break loop
		case sem <- struct{}{}:
		}
		wg.Add(1)
		go func(d amqp.Delivery) {
			defer wg.Done()
			defer func() { <-sem }()
			handleDelivery(ctx, objects, d)
		}(d)
	}

	telemetry.Info("worker shutting down", map[string]any{"timeout": shutdownTimeout.String()})
	waitDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(waitDone)
	}()
	select {
	case <-waitDone:
	case <-time.After(shutdownTimeout):
		telemetry.Warn("worker shutdown timeout reached; exiting with in-flight events", nil)
	}
}

// handleDelivery removes the source file of a deleted upload record.
// Malformed messages are dropped; storage failures are requeued once.
func handleDelivery(ctx context.Context, objects object.Store, d amqp.Delivery) {
	ev, err := events.Decode(d.Body)
	if err != nil {
		fields := baseFields(d, events.RecordEvent{})
		fields["body_len"] = len(d.Body)
		fields["error"] = err.Error()
		telemetry.Error("worker.event.decode_failed", fields)
		if reject(d, false) {
			metrics.IncWorkerEvent("unknown", "dropped")
		}
		return
	}

	if ev.Kind != events.KindDeleted || strings.TrimSpace(ev.SourceKey) == "" {
		if ack(d, ev) {
			metrics.IncWorkerEvent(string(ev.Kind), "skipped")
		}
		return
	}

	if err := objects.Delete(ctx, ev.SourceKey); err != nil && !errors.Is(err, object.ErrNotFound) {
		fields := baseFields(d, ev)
		fields["error"] = err.Error()
		if errors.Is(err, object.ErrInvalidKey) {
			telemetry.Error("worker.event.invalid_key", fields)
			if reject(d, false) {
				metrics.IncWorkerEvent(string(ev.Kind), "dropped")
			}
			return
		}
		telemetry.Error("worker.event.failed", fields)
		requeue := !d.Redelivered
		if err := d.Nack(false, requeue); err != nil {
			telemetry.Error("worker.event.nack_failed", map[string]any{"error": err.Error()})
		}
		metrics.IncWorkerEvent(string(ev.Kind), "failed")
		return
	}

	if ack(d, ev) {
		telemetry.Info("worker.event.source_removed", baseFields(d, ev))
		metrics.IncWorkerEvent(string(ev.Kind), "ok")
	}
}

func ack(d amqp.Delivery, ev events.RecordEvent) bool {
	if err := d.Ack(false); err != nil {
		fields := baseFields(d, ev)
		fields["error"] = err.Error()
		telemetry.Error("worker.event.ack_failed", fields)
		return false
	}
	return true
}

func reject(d amqp.Delivery, requeue bool) bool {
	if err := d.Reject(requeue); err != nil {
		fields := baseFields(d, events.RecordEvent{})
		fields["error"] = err.Error()
		telemetry.Error("worker.event.reject_failed", fields)
		return false
	}
	return true
}

func baseFields(d amqp.Delivery, ev events.RecordEvent) map[string]any {
	fields := map[string]any{
		"message_id":  d.MessageId,
		"redelivered": d.Redelivered,
	}
	if ev.RecordID != "" {
		fields["record_id"] = ev.RecordID
		fields["owner_id"] = ev.OwnerID
		fields["kind"] = string(ev.Kind)
	}
	if ev.SourceKey != "" {
		fields["source_key"] = ev.SourceKey
	}
	return fields
}

func envInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return val
}
