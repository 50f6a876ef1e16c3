package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/asset-tracker/backend/internal/config"
	"github.com/sysu-ecnc-dev/asset-tracker/backend/internal/domain"
	"github.com/sysu-ecnc-dev/asset-tracker/backend/internal/handler"
	"github.com/sysu-ecnc-dev/asset-tracker/backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	/**********************************************
	 * 创建 logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	/**********************************************
	 * 加载配置
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法加载配置文件", "error", err)
		return
	}

	/**********************************************
	 * 连接存储后端
	 **********************************************/
	store, err := repository.NewStore(context.Background(), cfg)
	if err != nil {
		logger.Error("无法连接存储后端", "provider", cfg.Store.Provider, "error", err)
		return
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Store.ConnectTimeout)*time.Second)
		defer cancel()
		if err := store.Close(ctx); err != nil {
			logger.Error("关闭存储后端失败", "error", err)
		}
	}()
	logger.Info("已连接存储后端", "provider", cfg.Store.Provider)

	/**********************************************
	 * 确保存在初始管理员
	 **********************************************/
	if cfg.InitialAdmin.Email != "" && cfg.InitialAdmin.Password != "" {
		if err := ensureInitialAdmin(cfg, store); err != nil {
			logger.Error("无法创建初始管理员", "error", err)
			return
		}
	}

	/**********************************************
	 * 连接 rabbitmq
	 **********************************************/
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("无法连接到 rabbitmq", "error", err)
		return
	}
	defer conn.Close()

	// 建立通道
	ch, err := conn.Channel()
	if err != nil {
		logger.Error("无法建立通道", "error", err)
		return
	}
	defer ch.Close()

	// 声明队列，与 mail worker 的声明保持一致
	_, err = ch.QueueDeclare(
		cfg.RabbitMQ.Queue,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		logger.Error("无法声明队列", "error", err)
		return
	}

	/**********************************************
	 * 连接 redis
	 **********************************************/
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       0,
	})
	defer rdb.Close()

	/**********************************************
	 * 创建 handler
	 **********************************************/
	revoker := handler.NewRedisRevoker(rdb, time.Duration(cfg.Redis.OperationTimeout)*time.Second)
	publisher := handler.NewAMQPPublisher(ch, cfg.RabbitMQ.Queue, time.Duration(cfg.RabbitMQ.PublishTimeout)*time.Second)

	h, err := handler.NewHandler(cfg, store, revoker, publisher)
	if err != nil {
		logger.Error("无法创建 handler", "error", err)
		return
	}
	h.RegisterRoutes()

	/**********************************************
	 * 启动 HTTP 服务器
	 **********************************************/
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      h.Mux,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("正在启动服务器...", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("无法启动服务器", slog.String("error", err.Error()))
			quit <- syscall.SIGTERM
		}
	}()

	<-quit
	logger.Info("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("关闭服务器失败", slog.String("error", err.Error()))
	}
	logger.Info("服务器已成功关闭")
}

func ensureInitialAdmin(cfg *config.Config, store repository.Store) error {
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(cfg.InitialAdmin.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("无法生成初始管理员密码哈希: %w", err)
	}

	admin := &domain.User{
		Name:         cfg.InitialAdmin.Name,
		Email:        cfg.InitialAdmin.Email,
		PasswordHash: string(passwordHash),
	}
	if err := store.CreateUser(context.Background(), admin); err != nil {
		// 已经存在说明之前启动时创建过，不处理
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil
		}
		return err
	}

	slog.Info("已创建初始管理员", "email", admin.Email)
	return nil
}
