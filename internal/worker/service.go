package worker

import (
	"context"
	"errors"
	"time"

	"github.com/dujiao-next/storefront/internal/config"
	"github.com/dujiao-next/storefront/internal/logger"
	"github.com/dujiao-next/storefront/internal/queue"

	"github.com/hibiken/asynq"
)

const (
	defaultReferralSyncInterval = 5 * time.Minute
)

// Service 异步队列服务
type Service struct {
	name         string
	server       *asynq.Server
	mux          *asynq.ServeMux
	consumer     *Consumer
	syncInterval time.Duration
}

// NewService 创建异步队列服务
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	interval := defaultReferralSyncInterval
	if cfg.ReferralSyncSeconds > 0 {
		interval = time.Duration(cfg.ReferralSyncSeconds) * time.Second
	}
	return &Service{
		name:         "worker",
		server:       server,
		mux:          mux,
		consumer:     consumer,
		syncInterval: interval,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.consumer != nil && s.consumer.Referral != nil {
		go s.runReferralSyncLoop(ctx)
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

// runReferralSyncLoop 定期补发漏发的邀请奖励
func (s *Service) runReferralSyncLoop(ctx context.Context) {
	if s == nil || s.consumer == nil || s.consumer.Referral == nil {
		return
	}
	runOnce := func() {
		processed, err := s.consumer.Referral.RetryPendingRewards(ctx, referralRetryBatch)
		if err != nil {
			logger.Warnw("worker_referral_sync_loop_failed", "error", err)
			return
		}
		if processed > 0 {
			logger.Infow("worker_referral_sync_loop_done", "processed", processed)
		}
	}
	runOnce()

	interval := s.syncInterval
	if interval <= 0 {
		interval = defaultReferralSyncInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
