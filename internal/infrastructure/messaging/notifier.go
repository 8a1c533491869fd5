package messaging

import (
	"context"
	"strings"
	"time"

	workflowport "resume-ai-api/internal/workflow/port"
	"resume-ai-api/pkg/logger"
)

// StreamNotifier 将外发消息写入 Redis Stream，由下游投递服务发送
type StreamNotifier struct {
	producer *Producer
	stream   Stream
	channel  string
	from     string
}

// NewStreamNotifier 创建基于 Stream 的 Notifier，from 为发送方地址（已含通道前缀）
func NewStreamNotifier(producer *Producer, stream Stream, channel, from string) *StreamNotifier {
	if strings.TrimSpace(string(stream)) == "" {
		stream = StreamNotifyOutbound
	}
	return &StreamNotifier{producer: producer, stream: stream, channel: channel, from: from}
}

// Notify 实现 port.Notifier
func (n *StreamNotifier) Notify(ctx context.Context, to, body string) (*workflowport.Delivery, error) {
	id, err := n.producer.PublishOutbound(ctx, n.stream, &OutboundMessage{
		Channel: n.channel,
		From:    n.from,
		To:      to,
		Body:    body,
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "outbound message queued",
		"channel", n.channel,
		"stream", string(n.stream),
		"stream_id", id,
	)
	return &workflowport.Delivery{
		ID:       id,
		Channel:  n.channel,
		To:       to,
		QueuedAt: time.Now().UTC(),
	}, nil
}

// DemoNotifier 未配置发送方或消息队列时使用：只记录日志并报告成功
type DemoNotifier struct {
	channel string
}

func NewDemoNotifier(channel string) *DemoNotifier {
	return &DemoNotifier{channel: channel}
}

// Notify 实现 port.Notifier
func (n *DemoNotifier) Notify(ctx context.Context, to, body string) (*workflowport.Delivery, error) {
	logger.Info(ctx, "demo mode: outbound channel not configured, message not sent",
		"channel", n.channel,
		"to", maskAddress(to),
		"body_len", len([]rune(body)),
	)
	return &workflowport.Delivery{
		Channel:  n.channel,
		To:       to,
		DemoMode: true,
		QueuedAt: time.Now().UTC(),
	}, nil
}

// maskAddress 日志中只保留号码末四位
func maskAddress(addr string) string {
	r := []rune(addr)
	if len(r) <= 4 {
		return strings.Repeat("*", len(r))
	}
	return strings.Repeat("*", len(r)-4) + string(r[len(r)-4:])
}
