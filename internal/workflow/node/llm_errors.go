package node

import "strings"

// responseFormatHints 供应商拒绝 response_format 时错误信息中的常见片段
var responseFormatHints = []string{
	"response_format",
	"json_object",
	"json_schema",
	"response_schema",
}

// IsResponseFormatUnsupportedError 判断错误是否由不支持 JSON 模式引起
func IsResponseFormatUnsupportedError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, hint := range responseFormatHints {
		if strings.Contains(msg, hint) {
			return true
		}
	}
	return strings.Contains(msg, "unknown parameter") && strings.Contains(msg, "response")
}
