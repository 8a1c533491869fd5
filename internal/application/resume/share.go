package resume

import (
	"context"
	"strings"

	workflowport "resume-ai-api/internal/workflow/port"
	apperrors "resume-ai-api/pkg/errors"
	"resume-ai-api/pkg/logger"
	"resume-ai-api/pkg/metrics"
	"resume-ai-api/pkg/utils"
)

const (
	shareGreeting      = "Here is your resume from Resume Bot:\n\n"
	shareEmptyGreeting = "Here is your resume from Resume Bot. Thank you for using our service!"

	channelContentPrefix = "Your resume is ready! Here's the content:\n\n"
	channelSummaryPrefix = "Your resume is ready! Here's a summary:\n\n"
	channelTruncatedNote = "\n\n[Message truncated due to length limits. Download the full resume from the website.]"

	// DefaultMaxBodyRunes 单条消息正文上限
	DefaultMaxBodyRunes = 1000
)

// ErrPhoneRequired 手机号为空
var ErrPhoneRequired = apperrors.ErrInvalidParam.WithDetail("Phone number is required")

// ShareRequest 分享简历到消息通道
type ShareRequest struct {
	PhoneNumber string
	ResumeData  string
}

type ShareResult struct {
	DemoMode   bool
	DeliveryID string
}

// SharerOptions 通道相关配置
type SharerOptions struct {
	Channel       string
	AddressPrefix string
	MaxBodyRunes  int
}

// Sharer 组装消息并交给 Notifier，实际投递由下游负责
type Sharer struct {
	notifier workflowport.Notifier
	opts     SharerOptions
}

func NewSharer(notifier workflowport.Notifier, opts SharerOptions) *Sharer {
	if opts.Channel == "" {
		opts.Channel = "whatsapp"
	}
	if opts.MaxBodyRunes <= 0 {
		opts.MaxBodyRunes = DefaultMaxBodyRunes
	}
	return &Sharer{notifier: notifier, opts: opts}
}

// Share 校验请求、组装消息并交付
func (s *Sharer) Share(ctx context.Context, req ShareRequest) (*ShareResult, error) {
	phone := strings.TrimSpace(req.PhoneNumber)
	if phone == "" {
		return nil, ErrPhoneRequired
	}
	if s == nil || s.notifier == nil {
		return nil, apperrors.ErrNotifyFailed.WithDetail("notifier not configured")
	}

	to := FormatAddress(s.opts.AddressPrefix, phone)
	body := FormatForChannel(ComposeMessage(req.ResumeData), s.opts.MaxBodyRunes)

	logger.Info(ctx, "sharing resume",
		"channel", s.opts.Channel,
		"resume_len", utils.RuneLen(req.ResumeData),
		"body_len", utils.RuneLen(body),
	)

	delivery, err := s.notifier.Notify(ctx, to, body)
	if err != nil {
		metrics.NotifyTotal.WithLabelValues(s.opts.Channel, "error").Inc()
		logger.Error(ctx, "failed to hand off resume message", err, "channel", s.opts.Channel)
		return nil, apperrors.ErrNotifyFailed.WithError(err)
	}

	status := "queued"
	if delivery.DemoMode {
		status = "demo"
	}
	metrics.NotifyTotal.WithLabelValues(s.opts.Channel, status).Inc()

	return &ShareResult{
		DemoMode:   delivery.DemoMode,
		DeliveryID: delivery.ID,
	}, nil
}

// ComposeMessage 生成发给用户的正文
func ComposeMessage(resumeData string) string {
	if resumeData == "" {
		return shareEmptyGreeting
	}
	return shareGreeting + resumeData
}

// FormatForChannel 添加通道前缀；超过 maxRunes 时截断并附加提示
func FormatForChannel(body string, maxRunes int) string {
	if maxRunes <= 0 {
		maxRunes = DefaultMaxBodyRunes
	}
	if utils.RuneLen(body) > maxRunes {
		return channelSummaryPrefix + utils.TruncateByRunes(body, maxRunes) + channelTruncatedNote
	}
	return channelContentPrefix + body
}

// FormatAddress 为号码加上通道前缀，已带前缀时不重复添加
func FormatAddress(prefix, phone string) string {
	if prefix == "" || strings.HasPrefix(phone, prefix) {
		return phone
	}
	return prefix + phone
}
