package main

import (
	"context"
	"errors"
	"flag"
	"time"

	"github.com/picklemart/internal/config"
	"github.com/picklemart/internal/constants"
	"github.com/picklemart/internal/logger"
	"github.com/picklemart/internal/provider"
	"github.com/picklemart/internal/service"
)

func main() {
	var (
		email    string
		username string
		password string
	)
	flag.StringVar(&email, "email", "", "演示账号邮箱，留空则只建表")
	flag.StringVar(&username, "username", "Demo Customer", "演示账号用户名")
	flag.StringVar(&password, "password", "", "演示账号密码")
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()

	// 建表由容器按存储驱动完成
	if cfg.Store.Driver == constants.StoreDriverDynamoDB {
		cfg.DynamoDB.AutoCreateTables = true
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	container, err := provider.NewContainer(ctx, cfg)
	if err != nil {
		stdLog.Fatalf("Failed to prepare store: %v", err)
	}
	defer func() { _ = container.Close() }()
	logger.Infow("seed_store_ready", "store", cfg.Store.Driver)

	if email == "" {
		return
	}
	user, err := container.UserAuthService.Register(ctx, service.RegisterInput{
		Username: username,
		Email:    email,
		Password: password,
	})
	switch {
	case errors.Is(err, service.ErrEmailExists):
		logger.Infow("seed_demo_user_exists", "email", email)
	case err != nil:
		stdLog.Fatalf("Failed to create demo user: %v", err)
	default:
		logger.Infow("seed_demo_user_created", "email", user.Email, "username", user.Username)
	}
}
