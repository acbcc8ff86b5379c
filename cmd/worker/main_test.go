package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AjayKumar0077/Resumelit/internal/events"
	"github.com/AjayKumar0077/Resumelit/internal/shared/storage/object"
)

type fakeAcker struct {
	mu       sync.Mutex
	acked    []uint64
	nacked   []uint64
	rejected []uint64
	requeued bool
}

func (f *fakeAcker) Ack(tag uint64, _ bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acked = append(f.acked, tag)
	return nil
}

func (f *fakeAcker) Nack(tag uint64, _ bool, requeue bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nacked = append(f.nacked, tag)
	f.requeued = requeue
	return nil
}

func (f *fakeAcker) Reject(tag uint64, requeue bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rejected = append(f.rejected, tag)
	f.requeued = requeue
	return nil
}

type fakeObjects struct {
	mu      sync.Mutex
	deleted []string
	err     error
}

func (f *fakeObjects) Put(context.Context, string, string, io.Reader) (int64, error) {
	return 0, nil
}

func (f *fakeObjects) Open(context.Context, string) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(nil)), nil
}

func (f *fakeObjects) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key)
	return f.err
}

func delivery(t *testing.T, acker *fakeAcker, tag uint64, ev events.RecordEvent) amqp.Delivery {
	t.Helper()
	body, err := events.Encode(ev)
	require.NoError(t, err)
	return amqp.Delivery{Acknowledger: acker, DeliveryTag: tag, MessageId: "m", Body: body}
}

func deletedEvent(key string) events.RecordEvent {
	ev := events.NewRecordEvent(events.KindDeleted, "rec-1", "guest:g1", "", 0, time.Unix(0, 0))
	ev.SourceKey = key
	return ev
}

func TestWorkerRemovesSourceAndAcks(t *testing.T) {
	acker := &fakeAcker{}
	objects := &fakeObjects{}

	handleDelivery(context.Background(), objects, delivery(t, acker, 1, deletedEvent("sources/g1/cv.pdf")))

	assert.Equal(t, []string{"sources/g1/cv.pdf"}, objects.deleted)
	assert.Equal(t, []uint64{1}, acker.acked)
}

func TestWorkerSkipsEventsWithoutSource(t *testing.T) {
	acker := &fakeAcker{}
	objects := &fakeObjects{}

	created := events.NewRecordEvent(events.KindCreated, "rec-1", "u1", "upload", 1, time.Unix(0, 0))
	handleDelivery(context.Background(), objects, delivery(t, acker, 1, created))
	handleDelivery(context.Background(), objects, delivery(t, acker, 2, deletedEvent("")))

	assert.Empty(t, objects.deleted)
	assert.Equal(t, []uint64{1, 2}, acker.acked)
}

func TestWorkerTreatsMissingObjectAsDone(t *testing.T) {
	acker := &fakeAcker{}
	objects := &fakeObjects{err: object.ErrNotFound}

	handleDelivery(context.Background(), objects, delivery(t, acker, 7, deletedEvent("sources/g1/gone.pdf")))

	assert.Equal(t, []uint64{7}, acker.acked)
	assert.Empty(t, acker.nacked)
}

func TestWorkerRequeuesStorageFailureOnce(t *testing.T) {
	acker := &fakeAcker{}
	objects := &fakeObjects{err: errors.New("s3 unavailable")}

	d := delivery(t, acker, 3, deletedEvent("sources/g1/cv.pdf"))
	handleDelivery(context.Background(), objects, d)
	assert.Equal(t, []uint64{3}, acker.nacked)
	assert.True(t, acker.requeued)

	d.Redelivered = true
	handleDelivery(context.Background(), objects, d)
	assert.Equal(t, []uint64{3, 3}, acker.nacked)
	assert.False(t, acker.requeued)
	assert.Empty(t, acker.acked)
}

func TestWorkerDropsInvalidJSON(t *testing.T) {
	acker := &fakeAcker{}
	objects := &fakeObjects{}

	handleDelivery(context.Background(), objects, amqp.Delivery{Acknowledger: acker, DeliveryTag: 9, Body: []byte("{not-json")})

	assert.Equal(t, []uint64{9}, acker.rejected)
	assert.False(t, acker.requeued)
	assert.Empty(t, objects.deleted)
}

func TestRunDrainsUntilChannelCloses(t *testing.T) {
	acker := &fakeAcker{}
	objects := &fakeObjects{}
	ch := make(chan amqp.Delivery, 3)
	for i := uint64(1); i <= 3; i++ {
		ch <- delivery(t, acker, i, deletedEvent("sources/g1/cv.pdf"))
	}
	close(ch)

	run(context.Background(), ch, objects, 2, time.Second)

	assert.Len(t, objects.deleted, 3)
	assert.ElementsMatch(t, []uint64{1, 2, 3}, acker.acked)
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		run(ctx, make(chan amqp.Delivery), &fakeObjects{}, 1, time.Second)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("run did not return after cancel")
	}
}

func TestEnvInt(t *testing.T) {
	t.Setenv("WORKER_CONCURRENCY", "8")
	assert.Equal(t, 8, envInt("WORKER_CONCURRENCY", 4))
	t.Setenv("WORKER_CONCURRENCY", "eight")
	assert.Equal(t, 4, envInt("WORKER_CONCURRENCY", 4))
}
