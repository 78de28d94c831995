package app

import (
	"errors"
	"fmt"

	"github.com/dujiao-next/storefront/internal/config"
	"github.com/dujiao-next/storefront/internal/logger"
	"github.com/dujiao-next/storefront/internal/provider"
	"github.com/dujiao-next/storefront/internal/router"
	"github.com/dujiao-next/storefront/internal/worker"
)

// BuildRunner 按启动模式组装服务。
// all 模式下队列未启用时只跑 API，通知改为同步写日志；worker 模式必须启用队列。
func BuildRunner(cfg *config.Config, mode string) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	container := provider.NewContainer(cfg)
	return buildRunner(cfg, mode, container)
}

func buildRunner(cfg *config.Config, mode string, container *provider.Container) (*Runner, error) {
	var services []Service

	if mode == ModeAll || mode == ModeAPI {
		services = append(services, NewHTTPService(cfg.Server, router.SetupRouter(cfg, container)))
	}

	if mode == ModeAll || mode == ModeWorker {
		switch {
		case cfg.Queue.Enabled:
			workerService, err := worker.NewService(&cfg.Queue, worker.NewConsumer(container))
			if err != nil {
				return nil, fmt.Errorf("init worker failed: %w", err)
			}
			services = append(services, workerService)
		case mode == ModeWorker:
			return nil, errors.New("worker mode requires queue.enabled=true")
		default:
			logger.Warnw("app_worker_skipped", "reason", "queue_disabled")
		}
	}

	if len(services) == 0 {
		return nil, fmt.Errorf("no services for mode %q", mode)
	}
	return NewRunner(services...), nil
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}
	runner, err := BuildRunner(opts.Config, opts.Mode)
	if err != nil {
		return err
	}
	opts.Logger.Infow("app_start",
		"addr", opts.Config.Server.Host+":"+opts.Config.Server.Port,
		"mode", opts.Mode,
		"services", runner.Names(),
	)
	return RunWithOptions(runner, opts)
}
