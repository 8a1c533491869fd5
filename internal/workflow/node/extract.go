package node

import (
	"encoding/json"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// ParseErrorMessage 所有解析策略失败时返回给调用方的说明
const ParseErrorMessage = "Could not parse the AI response as valid JSON. Please try again."

const (
	DefaultReasoningOpen  = "<think>"
	DefaultReasoningClose = "</think>"
	DefaultFenceLanguage  = "json"

	fenceMarker = "```"
)

// Strategy 标识产生 Data 的解析策略
type Strategy string

const (
	StrategyFence     Strategy = "fence"
	StrategyWholeText Strategy = "whole_text"
	StrategyBraceSpan Strategy = "brace_span"
	StrategyRepair    Strategy = "repair"
	StrategyNone      Strategy = "none"
)

// ExtractionResult 一次解析的结果。
// Reasoning 为 nil 表示没有推理块（与空字符串不同）；Data 永不为 nil。
type ExtractionResult struct {
	Reasoning *string
	Data      map[string]any
	Strategy  Strategy
}

// Failed 所有策略均未成功，Data 为错误描述
func (r ExtractionResult) Failed() bool {
	return r.Strategy == StrategyNone
}

// ErrorDescriptor 返回兜底的错误描述，每次调用都是新的 map
func ErrorDescriptor() map[string]any {
	return map[string]any{"error": ParseErrorMessage}
}

type strategyFunc func(raw string) (map[string]any, bool)

type namedStrategy struct {
	name Strategy
	fn   strategyFunc
}

// ExtractorOptions 解析器配置，零值字段使用默认值
type ExtractorOptions struct {
	ReasoningOpen  string
	ReasoningClose string
	FenceLanguage  string
	// RepairEnabled 在 brace span 之后追加 jsonrepair 修复策略
	RepairEnabled bool
}

// Extractor 从模型输出中提取推理块与 JSON 对象。构造后不可变，可并发使用。
type Extractor struct {
	reasoningOpen  string
	reasoningClose string
	strategies     []namedStrategy
}

// NewExtractor 按配置创建解析器
func NewExtractor(opts ExtractorOptions) *Extractor {
	e := &Extractor{
		reasoningOpen:  firstNonEmpty(opts.ReasoningOpen, DefaultReasoningOpen),
		reasoningClose: firstNonEmpty(opts.ReasoningClose, DefaultReasoningClose),
	}

	fenceLang := strings.TrimSpace(opts.FenceLanguage)
	if opts.FenceLanguage == "" {
		fenceLang = DefaultFenceLanguage
	}

	// 置信度依次降低，先成功者胜出
	e.strategies = []namedStrategy{
		{name: StrategyFence, fn: fencedBlock(fenceMarker + fenceLang)},
		{name: StrategyWholeText, fn: wholeText},
		{name: StrategyBraceSpan, fn: braceSpan},
	}
	if opts.RepairEnabled {
		e.strategies = append(e.strategies, namedStrategy{name: StrategyRepair, fn: repaired})
	}
	return e
}

var defaultExtractor = NewExtractor(ExtractorOptions{})

// Extract 使用默认配置解析模型输出
func Extract(raw string) ExtractionResult {
	return defaultExtractor.Extract(raw)
}

// Extract 解析模型输出，对任意输入都返回结果
func (e *Extractor) Extract(raw string) ExtractionResult {
	res := ExtractionResult{
		Reasoning: extractBetween(raw, e.reasoningOpen, e.reasoningClose),
	}
	for _, s := range e.strategies {
		if data, ok := s.fn(raw); ok {
			res.Data = data
			res.Strategy = s.name
			return res
		}
	}
	res.Data = ErrorDescriptor()
	res.Strategy = StrategyNone
	return res
}

// extractBetween 返回首个 open 与首个 close 之间去除空白后的文本。
// 任一标记缺失，或 open 结束位置不早于 close 起始位置时返回 nil。
func extractBetween(s, open, close string) *string {
	start, ok := indexAfter(s, open)
	if !ok {
		return nil
	}
	end, ok := indexOf(s, close)
	if !ok || start >= end {
		return nil
	}
	text := strings.TrimSpace(s[start:end])
	return &text
}

// fencedBlock 优先匹配带语言标记的围栏，缺失时退回到第一个普通围栏；
// 内容截止到全文最后一个围栏标记，多个围栏块时取第一个块中的对象。
func fencedBlock(tagged string) strategyFunc {
	return func(raw string) (map[string]any, bool) {
		start, ok := indexAfter(raw, tagged)
		if !ok {
			start, ok = indexAfter(raw, fenceMarker)
			if !ok {
				return nil, false
			}
		}
		end, ok := lastIndexOf(raw, fenceMarker)
		if !ok || start >= end {
			return nil, false
		}
		return decodeObject(raw[start:end])
	}
}

func wholeText(raw string) (map[string]any, bool) {
	return decodeObject(raw)
}

func braceSpan(raw string) (map[string]any, bool) {
	span, ok := braceSpanText(raw)
	if !ok {
		return nil, false
	}
	return decodeObject(span)
}

func braceSpanText(raw string) (string, bool) {
	start, ok := indexOf(raw, "{")
	if !ok {
		return "", false
	}
	end, ok := lastIndexOf(raw, "}")
	if !ok || start >= end {
		return "", false
	}
	return raw[start : end+1], true
}

// repaired 对 brace span（不存在时为全文）执行 jsonrepair 后再解码
func repaired(raw string) (data map[string]any, ok bool) {
	candidate, found := braceSpanText(raw)
	if !found {
		candidate = raw
	}
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return nil, false
	}

	// 修复库对畸形输入可能 panic，这里必须保持总是有结果
	defer func() {
		if r := recover(); r != nil {
			data, ok = nil, false
		}
	}()

	fixed, err := jsonrepair.JSONRepair(candidate)
	if err != nil {
		return nil, false
	}
	return decodeObject(fixed)
}

// decodeObject 解码文本开头的第一个 JSON 对象，其后的内容忽略；
// 不接受 null、数组与标量。
func decodeObject(text string) (map[string]any, bool) {
	text = strings.TrimSpace(text)
	if text == "" || text[0] != '{' {
		return nil, false
	}

	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var out map[string]any
	if err := dec.Decode(&out); err != nil || out == nil {
		return nil, false
	}
	return out, true
}

func indexOf(s, substr string) (int, bool) {
	i := strings.Index(s, substr)
	return i, i >= 0
}

func indexAfter(s, substr string) (int, bool) {
	i, ok := indexOf(s, substr)
	if !ok {
		return 0, false
	}
	return i + len(substr), true
}

func lastIndexOf(s, substr string) (int, bool) {
	i := strings.LastIndex(s, substr)
	return i, i >= 0
}

func firstNonEmpty(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
