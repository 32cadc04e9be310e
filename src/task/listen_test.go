package task

import (
	"context"
	"sync"
	"testing"

	"github.com/seventv/SpriteProcessor/src/configure"
	"github.com/seventv/SpriteProcessor/src/global"
	"github.com/seventv/SpriteProcessor/src/job"
	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRmq struct {
	mtx       sync.Mutex
	published map[string][][]byte
}

func (f *fakeRmq) Subscribe(name string) (<-chan amqp.Delivery, error) {
	return nil, nil
}

func (f *fakeRmq) Publish(queue string, contentType string, deliveryMode uint8, msg []byte) error {
	f.mtx.Lock()
	defer f.mtx.Unlock()

	if f.published == nil {
		f.published = map[string][][]byte{}
	}
	f.published[queue] = append(f.published[queue], msg)

	return nil
}

func (f *fakeRmq) Shutdown() {}

type fakeAck struct {
	acked, rejected int
}

func (f *fakeAck) Ack(tag uint64, multiple bool) error {
	f.acked++
	return nil
}

func (f *fakeAck) Nack(tag uint64, multiple bool, requeue bool) error {
	return nil
}

func (f *fakeAck) Reject(tag uint64, requeue bool) error {
	f.rejected++
	return nil
}

func workerContext(t *testing.T) (global.Context, *fakeRmq) {
	t.Helper()

	cfg := &configure.Config{WorkingDir: t.TempDir(), MaxTaskDuration: 30}
	cfg.Rmq.ResultQueueName = "results"
	cfg.Rmq.UpdateQueueName = "updates"

	gCtx := global.New(context.Background(), cfg)
	rmq := &fakeRmq{}
	gCtx.Instances().Rmq = rmq

	return gCtx, rmq
}

func TestProcessPublishesResult(t *testing.T) {
	gCtx, rmq := workerContext(t)
	in, out := t.TempDir(), t.TempDir()

	j := job.Job{
		ID:      "job-7",
		Sources: []job.Source{localSource(t, writePNG(t, in, "a.png", 5, 5))},
	}
	j.ResultConsumer, j.ResultConsumerDetails = localConsumer(t, out)

	body, err := json.Marshal(j)
	require.NoError(t, err)

	ack := &fakeAck{}
	(&taskWorker{}).process(gCtx, amqp.Delivery{Acknowledger: ack, Body: body})

	assert.Equal(t, 1, ack.acked)
	assert.Equal(t, 0, ack.rejected)
	assert.NotEmpty(t, rmq.published["updates"])

	require.Len(t, rmq.published["results"], 1)
	result := RmqResult{}
	require.NoError(t, json.Unmarshal(rmq.published["results"][0], &result))
	assert.Equal(t, "job-7", result.JobID)
	assert.True(t, result.Success)
	require.Len(t, result.Files, 1)
	assert.Equal(t, 5, result.Files[0].Width)
}

func TestProcessRejectsFailedJob(t *testing.T) {
	gCtx, rmq := workerContext(t)

	j := job.Job{ID: "job-8", Sources: []job.Source{{RawProvider: "ftp"}}}
	j.ResultConsumer, j.ResultConsumerDetails = localConsumer(t, t.TempDir())

	body, err := json.Marshal(j)
	require.NoError(t, err)

	ack := &fakeAck{}
	(&taskWorker{}).process(gCtx, amqp.Delivery{Acknowledger: ack, Body: body})

	assert.Equal(t, 1, ack.rejected)

	require.Len(t, rmq.published["results"], 1)
	result := RmqResult{}
	require.NoError(t, json.Unmarshal(rmq.published["results"][0], &result))
	assert.False(t, result.Success)
	assert.Equal(t, ErrUnknownJobProvider.Error(), result.Error)
}

func TestProcessRejectsBadMessage(t *testing.T) {
	gCtx, rmq := workerContext(t)

	ack := &fakeAck{}
	(&taskWorker{}).process(gCtx, amqp.Delivery{Acknowledger: ack, Body: []byte("{nope")})

	assert.Equal(t, 1, ack.rejected)
	assert.Empty(t, rmq.published)
}
