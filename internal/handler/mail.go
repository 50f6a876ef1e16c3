package handler

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/asset-tracker/backend/internal/domain"
)

// MailPublisher 把邮件任务投递给 cmd/mail 处理
type MailPublisher interface {
	Publish(ctx context.Context, msg domain.MailMessage) error
}

type AMQPPublisher struct {
	channel *amqp.Channel
	queue   string
	timeout time.Duration
}

func NewAMQPPublisher(ch *amqp.Channel, queue string, timeout time.Duration) *AMQPPublisher {
	return &AMQPPublisher{channel: ch, queue: queue, timeout: timeout}
}

func (p *AMQPPublisher) Publish(ctx context.Context, msg domain.MailMessage) error {
	// 序列化邮件
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	return p.channel.PublishWithContext(
		ctx,
		"",
		p.queue,
		true,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}
