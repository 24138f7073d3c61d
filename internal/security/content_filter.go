package security

import (
	"errors"
	"regexp"
	"strings"
)

// ErrContentRejected 访客文本被内容过滤器拒绝
var ErrContentRejected = errors.New("content rejected by filter")

// ContentFilter 过滤访客提交的文本（联系消息、新闻评论）。
type ContentFilter struct {
	injectionPatterns []*regexp.Regexp
	spamKeywords      []string
}

// NewContentFilter 创建内容过滤器
func NewContentFilter() *ContentFilter {
	return &ContentFilter{
		injectionPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)<script[^>]*>`),
			regexp.MustCompile(`(?i)javascript:`),
			regexp.MustCompile(`(?i)onload\s*=`),
			regexp.MustCompile(`(?i)onerror\s*=`),
			regexp.MustCompile(`(?i)<iframe[^>]*>`),
		},
		spamKeywords: []string{
			"casino", "lottery", "free money", "click here",
			"limited time", "guaranteed", "earn money", "work from home",
		},
	}
}

// Check 校验访客文本，发现脚本注入或堆砌垃圾关键词时拒绝。
func (cf *ContentFilter) Check(content string) error {
	for _, pattern := range cf.injectionPatterns {
		if pattern.MatchString(content) {
			return ErrContentRejected
		}
	}

	lower := strings.ToLower(content)
	spamCount := 0
	for _, keyword := range cf.spamKeywords {
		if strings.Contains(lower, keyword) {
			spamCount++
		}
	}
	// 单个关键词可能是正常表述，重复命中才按垃圾内容处理
	if spamCount >= 3 {
		return ErrContentRejected
	}

	return nil
}
