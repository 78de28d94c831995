package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/dujiao-next/storefront/internal/logger"
	"github.com/dujiao-next/storefront/internal/provider"
	"github.com/dujiao-next/storefront/internal/queue"
	"github.com/dujiao-next/storefront/internal/service"

	"github.com/hibiken/asynq"
)

const referralRetryBatch = 100

// referralRewarder 奖励发放能力
type referralRewarder interface {
	GiveRewards(ctx context.Context, referralID uint) (*service.ReferralRewardResult, error)
	RetryPendingRewards(ctx context.Context, limit int) (int, error)
}

// Consumer 异步任务消费者
type Consumer struct {
	Sender   service.NotificationSender
	Referral referralRewarder
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	if c == nil {
		return &Consumer{}
	}
	consumer := &Consumer{Sender: c.NotificationSender}
	if c.ReferralService != nil {
		consumer.Referral = c.ReferralService
	}
	return consumer
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskNotifyOrderEvent, c.handleOrderEvent)
	mux.HandleFunc(queue.TaskReferralRewardSync, c.handleReferralRewardSync)
}

func (c *Consumer) handleOrderEvent(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_event_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParseOrderEventPayload(task.Payload())
	if err != nil {
		logger.Warnw("worker_order_event_unmarshal_failed", "error", err)
		// 载荷损坏时重试无意义
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	if payload.Event == "" {
		logger.Debugw("worker_order_event_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	sender := c.Sender
	if sender == nil {
		sender = service.LogSender{}
	}
	if err := sender.Send(ctx, payload); err != nil {
		logger.Warnw("worker_order_event_send_failed",
			"event", payload.Event,
			"order_id", payload.OrderID,
			"error", err,
		)
		return err
	}
	return nil
}

func (c *Consumer) handleReferralRewardSync(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		return nil
	}
	if c.Referral == nil {
		logger.Debugw("worker_referral_sync_skip_disabled")
		return nil
	}
	payload, err := queue.ParseReferralRewardSyncPayload(task.Payload())
	if err != nil {
		logger.Warnw("worker_referral_sync_unmarshal_failed", "error", err)
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	if payload.ReferralID == 0 {
		processed, err := c.Referral.RetryPendingRewards(ctx, referralRetryBatch)
		if err != nil {
			logger.Warnw("worker_referral_sync_batch_failed", "error", err)
			return err
		}
		logger.Infow("worker_referral_sync_batch_done", "processed", processed)
		return nil
	}
	result, err := c.Referral.GiveRewards(ctx, payload.ReferralID)
	if err != nil {
		if errors.Is(err, service.ErrReferralNotFound) {
			logger.Debugw("worker_referral_sync_skip_missing", "referral_id", payload.ReferralID)
			return nil
		}
		logger.Warnw("worker_referral_sync_failed", "referral_id", payload.ReferralID, "error", err)
		return err
	}
	if result != nil {
		logger.Infow("worker_referral_sync_done",
			"referral_id", payload.ReferralID,
			"referrer_credited", result.ReferrerCredited,
			"referred_credited", result.ReferredCredited,
		)
	}
	return nil
}
