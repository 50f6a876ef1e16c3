package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/sysu-ecnc-dev/asset-tracker/backend/internal/client"
)

func usage() {
	fmt.Fprintln(os.Stderr, "用法: assetctl [-profile <path>] [-timeout <seconds>] <command> [flags]")
	fmt.Fprintln(os.Stderr)

	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(os.Stderr, "  %s\n", commands[name].usage)
	}
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	slog.SetDefault(logger)

	var profilePath string
	var timeout int

	flag.StringVar(&profilePath, "profile", "", "会话配置文件路径，默认位于用户配置目录")
	flag.IntVar(&timeout, "timeout", 30, "请求超时时间（秒）")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	cmd, ok := commands[flag.Arg(0)]
	if !ok {
		fmt.Fprintf(os.Stderr, "未知命令 %q\n\n", flag.Arg(0))
		usage()
		os.Exit(2)
	}

	if profilePath == "" {
		path, err := defaultProfilePath()
		if err != nil {
			logger.Error("无法确定配置目录", "error", err)
			os.Exit(1)
		}
		profilePath = path
	}

	profile, err := loadProfile(profilePath)
	if err != nil {
		logger.Error("无法读取会话配置", "error", err)
		os.Exit(1)
	}

	a := &app{
		profilePath: profilePath,
		profile:     profile,
		client: client.New(profile.BaseURL,
			client.WithToken(profile.Token),
			client.WithHTTPClient(&http.Client{Timeout: time.Duration(timeout) * time.Second}),
		),
		out: os.Stdout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.run(ctx, a, flag.Args()[1:]); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "用法: assetctl %s\n", cmd.usage)
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, client.ErrorMessage(err))
		os.Exit(1)
	}
}
