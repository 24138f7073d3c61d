package security

import (
	"bytes"
	"errors"
	"strings"
)

// ErrUnsafeUpload 上传内容被安全检查拒绝
var ErrUnsafeUpload = errors.New("upload content rejected by security check")

// 可执行文件魔数
var executableSignatures = [][]byte{
	{0x4D, 0x5A},             // PE
	{0x7F, 0x45, 0x4C, 0x46}, // ELF
	{0xFE, 0xED, 0xFA, 0xCE}, // Mach-O
	{0xCE, 0xFA, 0xED, 0xFE}, // Mach-O (reverse)
}

// CheckUpload 检查上传文件的内容安全性。
// 扩展名白名单不能防住改名的可执行文件，这里按文件头魔数兜底，
// 并拒绝嵌入脚本标签的伪文档。
func CheckUpload(data []byte) error {
	header := data
	if len(header) > 512 {
		header = header[:512]
	}

	for _, sig := range executableSignatures {
		if bytes.HasPrefix(header, sig) {
			return errors.New("executable file content detected")
		}
	}

	lower := strings.ToLower(string(header))
	if strings.Contains(lower, "<script") || strings.Contains(lower, "javascript:") {
		return errors.New("script content detected in uploaded file")
	}

	return nil
}
