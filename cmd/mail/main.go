package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/asset-tracker/backend/internal/config"
	"github.com/wneessen/go-mail"
)

func main() {
	/**********************************************
	 * 创建 logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	/**********************************************
	 * 读取配置文件
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	/**********************************************
	 * SMTP 客户端
	 **********************************************/
	client, err := mail.NewClient(cfg.Email.SMTP.Host,
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithSSL(),
		mail.WithPort(cfg.Email.SMTP.Port),
		mail.WithUsername(cfg.Email.SMTP.Username),
		mail.WithPassword(cfg.Email.SMTP.Password),
	)
	if err != nil {
		logger.Error("无法创建 SMTP 客户端", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 启动时先连一次，配置错误可以尽早暴露
	dialCtx, cancelDial := context.WithTimeout(context.Background(), time.Duration(cfg.Email.SMTP.DialTimeout)*time.Second)
	err = client.DialWithContext(dialCtx)
	cancelDial()
	if err != nil {
		logger.Error("无法连接到 SMTP 服务器", slog.String("host", cfg.Email.SMTP.Host), slog.String("error", err.Error()))
		os.Exit(1)
	}
	_ = client.Close()

	/**********************************************
	 * 订阅报表邮件队列
	 **********************************************/
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("无法连接到 rabbitmq", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("无法建立通道", slog.String("error", err.Error()))
		return
	}
	defer ch.Close()

	// 报表附件可能很大，每次只取一条
	if err := ch.Qos(1, 0, false); err != nil {
		logger.Error("无法设置 prefetch", slog.String("error", err.Error()))
		return
	}

	// 与 api 使用同样的参数声明，先启动哪一方都可以
	q, err := ch.QueueDeclare(cfg.RabbitMQ.Queue, true, false, false, false, nil)
	if err != nil {
		logger.Error("无法声明队列", slog.String("queue", cfg.RabbitMQ.Queue), slog.String("error", err.Error()))
		return
	}

	// 手动确认，发送成功后才 ack
	deliveries, err := ch.Consume(q.Name, "", false, false, false, false, nil)
	if err != nil {
		logger.Error("无法订阅队列", slog.String("error", err.Error()))
		return
	}

	wk := &worker{cfg: cfg, sender: client, logger: logger}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	done := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(done)
		wk.run(ctx, deliveries)
	}()

	logger.Info("mail worker 已启动，等待报表邮件任务", slog.String("queue", q.Name))
	select {
	case <-ctx.Done():
	case <-done:
	}

	logger.Info("正在关闭 mail worker...")
	wg.Wait()
	logger.Info("mail worker 已关闭")
}
