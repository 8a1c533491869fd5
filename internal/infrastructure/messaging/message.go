package messaging

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Message 流消息信封
type Message struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	Payload   json.RawMessage   `json:"payload"`
	Metadata  map[string]string `json:"metadata"`
	CreatedAt time.Time         `json:"created_at"`
}

// NewMessage 创建新消息，ID 为随机 UUID
func NewMessage(msgType string, payload interface{}) (*Message, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Message{
		ID:        uuid.NewString(),
		Type:      msgType,
		Payload:   payloadBytes,
		Metadata:  make(map[string]string),
		CreatedAt: time.Now().UTC(),
	}, nil
}

// SetMetadata 设置元数据
func (m *Message) SetMetadata(key, value string) {
	if m.Metadata == nil {
		m.Metadata = make(map[string]string)
	}
	m.Metadata[key] = value
}

// GetMetadata 获取元数据
func (m *Message) GetMetadata(key string) string {
	if m.Metadata == nil {
		return ""
	}
	return m.Metadata[key]
}

// UnmarshalPayload 解析消息载荷
func (m *Message) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(m.Payload, v)
}

// Stream 流名称
type Stream string

// StreamNotifyOutbound 外发消息流，由独立的投递服务消费
const StreamNotifyOutbound Stream = "stream:notify:outbound"

// MessageTypeNotify 外发消息类型
const MessageTypeNotify = "notify.outbound"

// OutboundMessage 外发消息载荷
type OutboundMessage struct {
	Channel string `json:"channel"`
	From    string `json:"from,omitempty"`
	To      string `json:"to"`
	Body    string `json:"body"`
}
