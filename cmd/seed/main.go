package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/sysu-ecnc-dev/asset-tracker/backend/internal/config"
	"github.com/sysu-ecnc-dev/asset-tracker/backend/internal/repository"
	"github.com/sysu-ecnc-dev/asset-tracker/backend/internal/seed"
	"github.com/sysu-ecnc-dev/asset-tracker/backend/internal/utils"
)

func main() {
	var op int
	var n int
	var file string

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机用户, 2: 插入随机资产, 3: 从 csv/xlsx 文件导入资产)")
	flag.IntVar(&n, "n", 5, "要插入的记录数量")
	flag.StringVar(&file, "file", "", "要导入的 csv 或 xlsx 文件路径")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()

	// 连接存储后端
	store, err := repository.NewStore(ctx, cfg)
	if err != nil {
		logger.Error("无法连接存储后端", slog.String("provider", cfg.Store.Provider), slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Close(ctx)

	// 执行操作
	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if n <= 0 {
			slog.Error("请输入合法的用户数量")
			return
		}

		cnt := 0
		for i := 0; i < n; i++ {
			user, err := utils.GenerateRandomUser(cfg.Seed.User.Password, cfg.Seed.UserDomain)
			if err != nil {
				slog.Error("无法生成随机用户", slog.String("error", err.Error()))
				continue
			}

			if err := store.CreateUser(ctx, user); err != nil {
				slog.Error("无法插入用户", slog.String("email", user.Email), slog.String("error", err.Error()))
				continue
			}

			cnt++
		}

		slog.Info("插入用户成功", slog.Int("count", cnt))
	case 2:
		if n <= 0 {
			slog.Error("请输入合法的资产数量")
			return
		}

		cnt := 0
		for i := 0; i < n; i++ {
			if err := store.CreateAsset(ctx, utils.GenerateRandomAsset()); err != nil {
				slog.Error("无法插入资产", slog.String("error", err.Error()))
				continue
			}

			cnt++
		}

		slog.Info("插入资产成功", slog.Int("count", cnt))
	case 3:
		if file == "" {
			slog.Error("请通过 -file 指定要导入的文件")
			return
		}

		rows, err := seed.ReadRows(file)
		if err != nil {
			slog.Error("无法读取文件", slog.String("file", file), slog.String("error", err.Error()))
			return
		}

		cnt, err := seed.ImportAssets(ctx, store, rows)
		if err != nil {
			slog.Error("导入资产失败", slog.Int("imported", cnt), slog.String("error", err.Error()))
			return
		}

		slog.Info("导入资产成功", slog.Int("count", cnt))
	default:
		slog.Error("指定的操作非法")
	}
}
