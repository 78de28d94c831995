package queue

import (
	"encoding/json"
	"fmt"

	"github.com/dujiao-next/storefront/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	TaskNotifyOrderEvent   = constants.TaskNotifyOrderEvent
	TaskReferralRewardSync = constants.TaskReferralRewardSync
)

// OrderEventPayload 订单生命周期事件，由 worker 转为顾客通知
type OrderEventPayload struct {
	Event       string            `json:"event"`
	UserID      uint              `json:"user_id"`
	OrderID     uint              `json:"order_id,omitempty"`
	OrderItemID uint              `json:"order_item_id,omitempty"`
	Amount      string            `json:"amount,omitempty"`
	Extra       map[string]string `json:"extra,omitempty"`
}

// ReferralRewardSyncPayload ReferralID 为 0 时扫描全部待发奖励
type ReferralRewardSyncPayload struct {
	ReferralID uint `json:"referral_id"`
}

func newTask[T any](taskType string, payload T) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", taskType, err)
	}
	return asynq.NewTask(taskType, body), nil
}

func parsePayload[T any](body []byte) (T, error) {
	var payload T
	if len(body) == 0 {
		return payload, nil
	}
	err := json.Unmarshal(body, &payload)
	return payload, err
}

func NewOrderEventTask(payload OrderEventPayload) (*asynq.Task, error) {
	return newTask(TaskNotifyOrderEvent, payload)
}

func NewReferralRewardSyncTask(payload ReferralRewardSyncPayload) (*asynq.Task, error) {
	return newTask(TaskReferralRewardSync, payload)
}

// ParseOrderEventPayload 空载荷得到零值，由调用方判定是否可投递
func ParseOrderEventPayload(body []byte) (OrderEventPayload, error) {
	return parsePayload[OrderEventPayload](body)
}

func ParseReferralRewardSyncPayload(body []byte) (ReferralRewardSyncPayload, error) {
	return parsePayload[ReferralRewardSyncPayload](body)
}
