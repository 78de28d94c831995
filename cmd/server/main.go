package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/dujiao-next/storefront/internal/app"
	"github.com/dujiao-next/storefront/internal/config"
	"github.com/dujiao-next/storefront/internal/logger"
	"github.com/dujiao-next/storefront/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	envAdminUsername = "SF_DEFAULT_ADMIN_USERNAME"
	envAdminPassword = "SF_DEFAULT_ADMIN_PASSWORD"
	minSecretLength  = 32
)

var placeholderSecrets = []string{"change-me", "change-in-production", "your-secret-key"}

func main() {
	mode := flag.String("mode", app.ModeAll, "启动模式: all (默认), api, worker")
	flag.Parse()

	fmt.Println("\033[95m\033[1mStorefront API\033[0m\033[2m  order pricing · refunds · wallet\033[0m")

	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	release := cfg.Server.Mode == "release"

	for name, secret := range map[string]string{
		"jwt.secret":         cfg.JWT.SecretKey,
		"user_jwt.secret":    cfg.UserJWT.SecretKey,
		"gateway.key_secret": cfg.Gateway.KeySecret,
	} {
		if !isWeakSecret(secret) {
			continue
		}
		if release {
			stdLog.Fatalf("%s 过弱或仍为默认值，请在生产环境中配置强随机密钥", name)
		}
		stdLog.Printf("警告: %s 过弱或仍为默认值，建议在生产环境中更换", name)
	}

	if err := models.Setup(cfg.Database, cfg.Server.Mode == "debug"); err != nil {
		stdLog.Fatalf("数据库初始化失败: %v", err)
	}

	// 生产环境必须显式提供默认管理员密码
	password := os.Getenv(envAdminPassword)
	if release && password == "" {
		stdLog.Printf("警告: 未设置 %s，已跳过默认管理员初始化", envAdminPassword)
	} else if _, err := models.EnsureDefaultAdmin(models.DB, os.Getenv(envAdminUsername), password); err != nil {
		stdLog.Printf("警告: 初始化默认管理员失败: %v", err)
	}

	if release {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := app.Run(app.Options{
		Config:  cfg,
		Logger:  logger.S(),
		Signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		Mode:    *mode,
	}); err != nil {
		stdLog.Fatalf("服务运行失败: %v", err)
	}
}

func isWeakSecret(secret string) bool {
	if len(secret) < minSecretLength {
		return true
	}
	lower := strings.ToLower(secret)
	for _, placeholder := range placeholderSecrets {
		if strings.Contains(lower, placeholder) {
			return true
		}
	}
	return false
}
