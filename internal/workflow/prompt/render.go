package prompt

import (
	"sort"
	"strings"
)

const (
	placeholderOpen  = "{{"
	placeholderClose = "}}"
)

// Placeholder 返回 name 对应的占位符文本，例如 {{userDescription}}
func Placeholder(name string) string {
	return placeholderOpen + name + placeholderClose
}

// Render 将模板中的 {{key}} 替换为 values 中对应的值。
//
// 替换是单遍的：替换值中出现的 {{...}} 不会被再次扫描。模板中没有对应键的占位符、
// 以及不成对的花括号都原样保留，Render 不会返回错误。
func Render(template string, values map[string]string) string {
	if len(values) == 0 || !strings.Contains(template, placeholderOpen) {
		return template
	}

	// 键排序保证 Replacer 的匹配优先级与 map 遍历顺序无关
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		pairs = append(pairs, Placeholder(k), values[k])
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// Placeholders 按首次出现顺序返回模板中的占位符名称（去重）
func Placeholders(template string) []string {
	var (
		names []string
		seen  = make(map[string]struct{})
		rest  = template
	)
	for {
		start := strings.Index(rest, placeholderOpen)
		if start < 0 {
			return names
		}
		rest = rest[start+len(placeholderOpen):]
		end := strings.Index(rest, placeholderClose)
		if end < 0 {
			return names
		}
		name := rest[:end]
		rest = rest[end+len(placeholderClose):]
		// "{{a{{b}}" 中只有 {{b}} 是完整占位符
		if i := strings.LastIndex(name, placeholderOpen); i >= 0 {
			name = name[i+len(placeholderOpen):]
		}
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
}

// Missing 返回模板中存在但 values 未提供的占位符名称
func Missing(template string, values map[string]string) []string {
	var missing []string
	for _, name := range Placeholders(template) {
		if _, ok := values[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}
