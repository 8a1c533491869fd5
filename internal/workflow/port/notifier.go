package port

import (
	"context"
	"time"
)

// Delivery 一次外发消息的交付回执
type Delivery struct {
	// ID 由下游（例如 Redis Stream 消息 ID）分配，演示模式下为空
	ID       string
	Channel  string
	To       string
	DemoMode bool
	QueuedAt time.Time
}

// Notifier 外发消息通道（port）。实现只负责交付，不关心简历内容。
type Notifier interface {
	Notify(ctx context.Context, to, body string) (*Delivery, error)
}
