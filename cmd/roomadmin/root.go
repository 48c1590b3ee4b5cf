package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"roomadmin/internal/auth"
	"roomadmin/internal/client"
	"roomadmin/internal/config"
	"roomadmin/internal/logger"
	"roomadmin/internal/store"

	"github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app holds what every subcommand needs; built once in PersistentPreRunE.
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	session *auth.Session
	api     *client.Client
	closers []func() error
}

func (a *app) close() {
	for _, c := range a.closers {
		_ = c()
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
}

type rootOptions struct {
	BaseURL string
	Token   string
}

func newRootCmd() *cobra.Command {
	var opts rootOptions
	a := &app{}

	cmd := &cobra.Command{
		Use:           "roomadmin",
		Short:         "Administer rooms, room types and utilities over the property REST API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd.Context(), opts)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			a.close()
		},
	}
	cmd.PersistentFlags().StringVar(&opts.BaseURL, "base-url", "", "API base URL (overrides API_BASE_URL)")
	cmd.PersistentFlags().StringVar(&opts.Token, "token", os.Getenv("ROOMADMIN_TOKEN"), "access token for this invocation")

	cmd.AddCommand(newLoginCmd(a))
	cmd.AddCommand(newLogoutCmd(a))
	cmd.AddCommand(newStatusCmd(a))
	cmd.AddCommand(newRoomsCmd(a))
	cmd.AddCommand(newRoomTypesCmd(a))
	return cmd
}

func (a *app) init(ctx context.Context, opts rootOptions) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if opts.BaseURL != "" {
		cfg.API.BaseURL = opts.BaseURL
	}
	a.cfg = cfg

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "roomadmin")
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	a.log = log

	var kv store.KV
	switch cfg.Auth.Store {
	case "redis":
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		a.closers = append(a.closers, redisClient.Close)
		kv = store.NewRedisKV(redisClient)
	default:
		kv = store.NewMemoryKV()
	}

	// 命令行没有页面可跳转：直接提示登录路由
	nav := auth.NavigatorFunc(func(route string) {
		fmt.Fprintf(os.Stderr, "Run `roomadmin login` to sign in again (%s).\n", route)
	})
	a.session = auth.NewSession(kv, cfg.Auth, nav, log,
		auth.WithScheduler(func(_ time.Duration, f func()) { f() }))

	if opts.Token != "" {
		if _, err := a.session.Login(ctx, opts.Token); err != nil {
			return fmt.Errorf("use --token: %w", err)
		}
	}
	a.api = client.New(cfg.API.BaseURL, cfg.Timeout(), log, client.WithTokenSource(a.session.Token))
	return nil
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
