package queue

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/dujiao-next/storefront/internal/config"
	"github.com/dujiao-next/storefront/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// DefaultQueue 通知类任务
	DefaultQueue = constants.QueueDefault
	// CriticalQueue 涉及资金入账的任务
	CriticalQueue = constants.QueueCritical

	defaultConcurrency  = 10
	orderEventMaxRetry  = 5
	referralTaskIDStyle = "referral-reward-%d"
)

// Client 投递异步任务；未启用队列时所有投递均为空操作
type Client struct {
	inner *asynq.Client
}

// NewClient 队列关闭时返回可安全调用的空客户端
func NewClient(cfg *config.QueueConfig) (*Client, error) {
	if cfg == nil || !cfg.Enabled {
		return &Client{}, nil
	}
	return &Client{inner: asynq.NewClient(RedisOpt(cfg))}, nil
}

func (c *Client) Enabled() bool {
	return c != nil && c.inner != nil
}

func (c *Client) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.inner.Close()
}

func (c *Client) submit(task *asynq.Task, opts ...asynq.Option) error {
	if _, err := c.inner.Enqueue(task, opts...); err != nil {
		return fmt.Errorf("enqueue %s: %w", task.Type(), err)
	}
	return nil
}

// EnqueueOrderEvent 投递订单事件通知
func (c *Client) EnqueueOrderEvent(payload OrderEventPayload, opts ...asynq.Option) error {
	if !c.Enabled() {
		return nil
	}
	task, err := NewOrderEventTask(payload)
	if err != nil {
		return err
	}
	return c.submit(task, append([]asynq.Option{asynq.Queue(DefaultQueue), asynq.MaxRetry(orderEventMaxRetry)}, opts...)...)
}

// EnqueueReferralRewardSync 延迟投递邀请奖励补发。
// 指定邀请记录时以记录 ID 作为任务 ID，重复投递直接忽略。
func (c *Client) EnqueueReferralRewardSync(payload ReferralRewardSyncPayload, delay time.Duration) error {
	if !c.Enabled() {
		return nil
	}
	task, err := NewReferralRewardSyncTask(payload)
	if err != nil {
		return err
	}
	opts := []asynq.Option{asynq.Queue(CriticalQueue), asynq.ProcessIn(max(delay, 0))}
	if payload.ReferralID != 0 {
		opts = append(opts, asynq.TaskID(fmt.Sprintf(referralTaskIDStyle, payload.ReferralID)))
	}
	err = c.submit(task, opts...)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	return err
}

// BuildServerConfig worker 端连接与并发配置，资金队列权重高于通知队列
func BuildServerConfig(cfg *config.QueueConfig) (asynq.RedisClientOpt, asynq.Config) {
	serverCfg := asynq.Config{
		Concurrency: defaultConcurrency,
		Queues:      map[string]int{CriticalQueue: 6, DefaultQueue: 3},
	}
	if cfg != nil {
		if cfg.Concurrency > 0 {
			serverCfg.Concurrency = cfg.Concurrency
		}
		if len(cfg.Queues) > 0 {
			serverCfg.Queues = cfg.Queues
		}
	}
	return RedisOpt(cfg), serverCfg
}

// RedisOpt 队列使用的 redis 连接参数
func RedisOpt(cfg *config.QueueConfig) asynq.RedisClientOpt {
	opt := asynq.RedisClientOpt{Addr: "127.0.0.1:6379"}
	if cfg == nil {
		return opt
	}
	host, port := strings.TrimSpace(cfg.Host), cfg.Port
	if host == "" {
		host = "127.0.0.1"
	}
	if port <= 0 {
		port = 6379
	}
	opt.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	opt.Password = cfg.Password
	opt.DB = cfg.DB
	return opt
}
