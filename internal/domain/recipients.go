package domain

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// RecipientState 记录单个收件组织对某封信函的已读状态。
//
// 持久化格式沿用历史数据：read 存 0/1 而不是布尔值，
// read_at 为 RFC3339 字符串或 null。
type RecipientState struct {
	ID     int64
	Read   bool
	ReadAt *time.Time
}

type recipientWire struct {
	ID     int64   `json:"id"`
	Read   int     `json:"read"`
	ReadAt *string `json:"read_at"`
}

// MarshalJSON 按持久化格式编码，read 输出 0/1
func (r RecipientState) MarshalJSON() ([]byte, error) {
	w := recipientWire{ID: r.ID}
	if r.Read {
		w.Read = 1
	}
	if r.ReadAt != nil {
		s := r.ReadAt.Format(time.RFC3339)
		w.ReadAt = &s
	}
	return json.Marshal(w)
}

// UnmarshalJSON 宽容解码历史数据中的各种形态：
// 完整对象、裸数字 id、数字字符串，read 字段接受 0/1、布尔或字符串。
func (r *RecipientState) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		return fmt.Errorf("empty recipient entry")
	}

	// 裸数字：视为未读的收件 id
	if trimmed[0] != '{' && trimmed[0] != '"' {
		id, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			return fmt.Errorf("recipient entry is not an id: %s", trimmed)
		}
		*r = RecipientState{ID: id}
		return nil
	}

	// 数字字符串："5"
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return fmt.Errorf("recipient entry is not an id: %q", s)
		}
		*r = RecipientState{ID: id}
		return nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	id, ok := coerceID(raw["id"])
	if !ok {
		return fmt.Errorf("recipient entry has no usable id")
	}

	out := RecipientState{ID: id, Read: coerceRead(raw["read"])}
	if at, ok := coerceReadAt(raw["read_at"]); ok {
		out.ReadAt = &at
	}
	*r = out
	return nil
}

func coerceID(raw json.RawMessage) (int64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if id, err := n.Int64(); err == nil {
			return id, true
		}
		if f, err := n.Float64(); err == nil {
			return int64(f), true
		}
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
			return id, true
		}
	}
	return 0, false
}

func coerceRead(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n != 0
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.ToLower(strings.TrimSpace(s))
		return s == "1" || s == "true"
	}
	return false
}

func coerceReadAt(raw json.RawMessage) (time.Time, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return time.Time{}, false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// NormalizeRecipients 把任意形态的收件人输入规整为状态列表。
//
// 接受结构化列表、单个数字、JSON 字符串（"[" 或 "{" 开头）、纯数字字符串；
// 无法识别的输入返回 nil（容错降级为无收件人，不报错）。
// 结果按 id 去重，保留首次出现的条目。
func NormalizeRecipients(input any) []RecipientState {
	switch v := input.(type) {
	case nil:
		return nil
	case []RecipientState:
		return dedupeRecipients(v)
	case []int64:
		states := make([]RecipientState, 0, len(v))
		for _, id := range v {
			states = append(states, RecipientState{ID: id})
		}
		return dedupeRecipients(states)
	case []int:
		states := make([]RecipientState, 0, len(v))
		for _, id := range v {
			states = append(states, RecipientState{ID: int64(id)})
		}
		return dedupeRecipients(states)
	case []any:
		return dedupeRecipients(coerceList(v))
	case int:
		return []RecipientState{{ID: int64(v)}}
	case int64:
		return []RecipientState{{ID: v}}
	case float64:
		return []RecipientState{{ID: int64(v)}}
	case json.Number:
		if id, err := v.Int64(); err == nil {
			return []RecipientState{{ID: id}}
		}
		return nil
	case string:
		return normalizeString(v)
	default:
		return nil
	}
}

func normalizeString(s string) []RecipientState {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	if s[0] == '[' || s[0] == '{' {
		states, ok := parseRecipientJSON(s)
		if !ok {
			return nil
		}
		return states
	}

	if isDigits(s) {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil
		}
		return []RecipientState{{ID: id}}
	}

	return nil
}

// MergeRecipients 将新收件列表与已存状态合并。
//
// 保留在 next 中的 id 继承 previous 的已读状态；
// 不在 next 中的 id 连同其已读历史一起消失。
func MergeRecipients(next, previous []RecipientState) []RecipientState {
	if len(next) == 0 {
		return next
	}
	prevByID := make(map[int64]RecipientState, len(previous))
	for _, p := range previous {
		prevByID[p.ID] = p
	}
	merged := make([]RecipientState, len(next))
	for i, n := range next {
		if p, ok := prevByID[n.ID]; ok {
			merged[i] = p
		} else {
			merged[i] = n
		}
	}
	return merged
}

// EncodeRecipients 将状态列表编码为待持久化的 JSON 字符串。
// 空列表返回 nil，表示该列缺失而不是空数组。
func EncodeRecipients(states []RecipientState) (*string, error) {
	if len(states) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(states)
	if err != nil {
		return nil, err
	}
	s := string(data)
	return &s, nil
}

var digitsPattern = regexp.MustCompile(`\d+`)

// DecodeRecipients 解码已存的 selected_csos 列并修复损坏数据。
//
// 解码顺序：直接 JSON 解析 → 清理常见损坏（外层引号、NaN、undefined）
// 后重试 → 正则提取数字重建未读条目。全部失败时返回 (nil, false)，
// 调用方按空收件列表继续，不向上抛错。
func DecodeRecipients(stored *string) ([]RecipientState, bool) {
	if stored == nil {
		return nil, true
	}
	s := strings.TrimSpace(*stored)
	if s == "" || s == "null" {
		return nil, true
	}

	if states, ok := parseRecipientJSON(s); ok {
		return states, true
	}

	if cleaned, changed := cleanupJSON(s); changed {
		if states, ok := parseRecipientJSON(cleaned); ok {
			return states, true
		}
	}

	// 终极回退：提取所有数字当作未读收件 id
	matches := digitsPattern.FindAllString(s, -1)
	if len(matches) > 0 {
		states := make([]RecipientState, 0, len(matches))
		for _, m := range matches {
			id, err := strconv.ParseInt(m, 10, 64)
			if err != nil {
				continue
			}
			states = append(states, RecipientState{ID: id})
		}
		states = dedupeRecipients(states)
		if len(states) > 0 {
			return states, true
		}
	}

	return nil, false
}

// parseRecipientJSON 解析 JSON 形态的收件列表。
// 顶层允许数组、单个对象或单个数字。
func parseRecipientJSON(s string) ([]RecipientState, bool) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil, false
	}

	if trimmed[0] == '[' {
		var entries []json.RawMessage
		if err := json.Unmarshal([]byte(trimmed), &entries); err != nil {
			return nil, false
		}
		states := make([]RecipientState, 0, len(entries))
		for _, e := range entries {
			var st RecipientState
			if err := json.Unmarshal(e, &st); err != nil {
				continue // 跳过无法识别的条目
			}
			states = append(states, st)
		}
		if len(states) == 0 && len(entries) > 0 {
			return nil, false
		}
		return dedupeRecipients(states), true
	}

	var st RecipientState
	if err := json.Unmarshal([]byte(trimmed), &st); err != nil {
		return nil, false
	}
	return []RecipientState{st}, true
}

func coerceList(items []any) []RecipientState {
	states := make([]RecipientState, 0, len(items))
	for _, item := range items {
		data, err := json.Marshal(item)
		if err != nil {
			continue
		}
		var st RecipientState
		if err := json.Unmarshal(data, &st); err != nil {
			continue
		}
		states = append(states, st)
	}
	return states
}

// cleanupJSON 修复历史数据中观察到的损坏形态：
// 双重编码的外层引号、JS 序列化漏出的 NaN 和 undefined。
func cleanupJSON(s string) (string, bool) {
	orig := s

	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		var inner string
		if err := json.Unmarshal([]byte(s), &inner); err == nil {
			s = strings.TrimSpace(inner)
		} else {
			s = strings.TrimSpace(s[1 : len(s)-1])
			s = strings.ReplaceAll(s, `\"`, `"`)
		}
	}

	s = strings.ReplaceAll(s, "NaN", "null")
	s = strings.ReplaceAll(s, "undefined", "null")

	return s, s != orig
}

func dedupeRecipients(states []RecipientState) []RecipientState {
	if len(states) == 0 {
		return states
	}
	seen := make(map[int64]bool, len(states))
	out := make([]RecipientState, 0, len(states))
	for _, st := range states {
		if seen[st.ID] {
			continue
		}
		seen[st.ID] = true
		out = append(out, st)
	}
	return out
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
