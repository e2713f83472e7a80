package utils

import (
	"strings"
	"unicode/utf8"

	"github.com/0xEcho/cloudfile/internal/pkg/xerr"
)

// 文件名/文件夹名中不允许出现的字符
const invalidNameChars = `<>:"/\|?*`

// ValidateName 校验文件/文件夹名称：去除首尾空白后非空、不超过 255 字符、
// 不含非法字符。返回清理后的名称。
func ValidateName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", xerr.ErrNameEmpty
	}
	// 上限按字符数而非字节数计，多字节名称不受影响
	if utf8.RuneCountInString(trimmed) > 255 {
		return "", xerr.ErrNameTooLong
	}
	if strings.ContainsAny(trimmed, invalidNameChars) {
		return "", xerr.ErrNameInvalid
	}
	return trimmed, nil
}

// SanitizeFileName 清理下载时写入 Content-Disposition 的文件名，
// 替换非法字符并去掉控制字符，避免响应头注入
func SanitizeFileName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r < 0x20 || r == 0x7f:
			// 丢弃控制字符
		case strings.ContainsRune(invalidNameChars, r):
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}
	cleaned := strings.TrimSpace(b.String())
	if cleaned == "" {
		return "download"
	}
	return cleaned
}
