package main

import (
	"context"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/asset-tracker/backend/internal/config"
	"github.com/wneessen/go-mail"
)

type sender interface {
	DialAndSend(messages ...*mail.Msg) error
}

type worker struct {
	cfg    *config.Config
	sender sender
	logger *slog.Logger
}

// handle 只有 SMTP 发送失败才重新入队，无法构建的消息直接丢弃
func (wk *worker) handle(d amqp.Delivery) {
	wk.logger.Info("收到报表邮件任务", slog.Int("size", len(d.Body)))

	m, err := buildMessage(wk.cfg, d.Body)
	if err != nil {
		wk.logger.Error("无法构建邮件，消息被丢弃", slog.String("error", err.Error()))
		_ = d.Nack(false, false)
		return
	}

	if err := wk.sender.DialAndSend(m); err != nil {
		wk.logger.Error("邮件发送失败", slog.String("error", err.Error()))
		_ = d.Nack(false, true)
		return
	}

	_ = d.Ack(false)
}

func (wk *worker) run(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				wk.logger.Error("消息通道已关闭")
				return
			}
			wk.handle(d)
		}
	}
}
