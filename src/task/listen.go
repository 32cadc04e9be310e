package task

import (
	"context"
	"runtime"
	"time"

	"github.com/seventv/SpriteProcessor/src/global"
	"github.com/seventv/SpriteProcessor/src/job"
	"github.com/seventv/SpriteProcessor/src/utils"
	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

func Listen(ctx global.Context) {
	msgCh, err := ctx.Instances().Rmq.Subscribe(ctx.Config().Rmq.JobQueueName)
	if err != nil {
		logrus.Fatal("failed to listen to jobs: ", err)
	}

	maxProcs := runtime.GOMAXPROCS(0)
	workers := make(chan *taskWorker, maxProcs)
	for i := 0; i < maxProcs; i++ {
		workers <- &taskWorker{id: i}
	}

	for msg := range msgCh {
		worker := <-workers
		ctx.Go(func() {
			defer func() { workers <- worker }()
			worker.process(ctx, msg)
		})
	}
}

type taskWorker struct {
	id int
}

type RmqResult struct {
	JobID   string     `json:"job_id"`
	Success bool       `json:"success"`
	Files   []job.File `json:"files"`
	Skipped []string   `json:"skipped"`
	Error   string     `json:"error"`
}

func (w *taskWorker) process(ctx global.Context, msg amqp.Delivery) {
	j := job.Job{}

	err := json.Unmarshal(msg.Body, &j)
	if err != nil {
		logrus.WithField("body", utils.B2S(msg.Body)).Warn("bad job message: ", err)
		if err := msg.Reject(false); err != nil {
			logrus.Warn("failed to reject: ", err)
		}
		return
	}

	lCtx, cancel := context.WithTimeout(ctx, time.Second*time.Duration(ctx.Config().MaxTaskDuration))
	defer cancel()

	task := New(lCtx, j)

	task.Start(ctx)

	logrus.WithFields(logrus.Fields{
		"worker":  w.id,
		"sources": len(j.Sources),
	}).Info("starting new task: ", j.ID)

	for event := range task.Events() {
		event.JobID = j.ID
		event, _ := json.Marshal(event)
		if err := ctx.Instances().Rmq.Publish(ctx.Config().Rmq.UpdateQueueName, "application/json", amqp.Transient, event); err != nil {
			logrus.Warn("failed to send update: ", err)
		}
	}
	<-task.Done()

	result := RmqResult{
		JobID:   j.ID,
		Success: true,
		Files:   task.Files(),
		Skipped: task.Skipped(),
	}

	if err := task.Failed(); err != nil {
		result.Success = false
		result.Error = err.Error()
		if err := msg.Reject(false); err != nil {
			logrus.Warn("failed to reject: ", err)
		}
		logrus.Errorf("task failed %s: %s", j.ID, err.Error())
	} else if err := msg.Ack(false); err != nil {
		logrus.Warn("failed to ack: ", err)
	}

	resp, _ := json.Marshal(result)

	if err := ctx.Instances().Rmq.Publish(ctx.Config().Rmq.ResultQueueName, "application/json", amqp.Persistent, resp); err != nil {
		logrus.Error("failed to publish result: ", err)
	}

	logrus.Info("finished task: ", j.ID)
}
