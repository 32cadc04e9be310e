package rmq

import (
	"time"

	"github.com/seventv/SpriteProcessor/src/global"
	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

type RmqInstance struct {
	rmq   *amqp.Connection
	chRmq *amqp.Channel
}

func New(ctx global.Context) global.Rmq {
	rmq, err := amqp.Dial(ctx.Config().Rmq.ServerURL)
	if err != nil {
		logrus.Fatal("failed to connect to rmq: ", err)
	}

	chRmq, err := rmq.Channel()
	if err != nil {
		logrus.Fatal("failed to connect to rmq: ", err)
	}

	// one compose job per worker at a time
	if err := chRmq.Qos(1, 0, false); err != nil {
		logrus.Fatal("failed to set rmq qos: ", err)
	}

	for _, queue := range []string{
		ctx.Config().Rmq.JobQueueName,
		ctx.Config().Rmq.ResultQueueName,
		ctx.Config().Rmq.UpdateQueueName,
	} {
		_, err = chRmq.QueueDeclare(
			queue, // queue name
			true,  // durable
			false, // auto delete
			false, // exclusive
			false, // no wait
			nil,   // arguments
		)
		if err != nil {
			logrus.Fatalf("failed to declare rmq queue %s: %s", queue, err)
		}
	}

	return &RmqInstance{
		rmq:   rmq,
		chRmq: chRmq,
	}
}

func (r *RmqInstance) Subscribe(queue string) (<-chan amqp.Delivery, error) {
	return r.chRmq.Consume(
		queue,              // queue name
		"sprite-processor", // consumer
		false,              // auto-ack
		false,              // exclusive
		false,              // no local
		false,              // no wait
		nil,                // arguments
	)
}

func (r *RmqInstance) Publish(queue string, contentType string, deliveryMode uint8, msg []byte) error {
	return r.chRmq.Publish(
		"",    // exchange
		queue, // queue name
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  contentType,
			DeliveryMode: deliveryMode,
			Timestamp:    time.Now(),
			Body:         msg,
		}, // message to publish
	)
}

func (r *RmqInstance) Shutdown() {
	_ = r.chRmq.Close()
	_ = r.rmq.Close()
}
