package utils

import (
	"strings"
	"testing"

	"github.com/0xEcho/cloudfile/internal/pkg/xerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{"正常名称", "report.pdf", "report.pdf", nil},
		{"去除首尾空白", "  我的文档  ", "我的文档", nil},
		{"空串", "", "", xerr.ErrNameEmpty},
		{"只有空白", "   \t ", "", xerr.ErrNameEmpty},
		{"超长", strings.Repeat("a", 256), "", xerr.ErrNameTooLong},
		{"恰好 255", strings.Repeat("a", 255), strings.Repeat("a", 255), nil},
		{"多字节按字符数计", strings.Repeat("文", 100), strings.Repeat("文", 100), nil},
		{"多字节恰好 255", strings.Repeat("文", 255), strings.Repeat("文", 255), nil},
		{"多字节 256 超长", strings.Repeat("文", 256), "", xerr.ErrNameTooLong},
		{"斜杠", "a/b", "", xerr.ErrNameInvalid},
		{"反斜杠", `a\b`, "", xerr.ErrNameInvalid},
		{"尖括号", "<script>", "", xerr.ErrNameInvalid},
		{"冒号", "c:file", "", xerr.ErrNameInvalid},
		{"问号星号", "what?*", "", xerr.ErrNameInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateName(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSanitizeFileName(t *testing.T) {
	assert.Equal(t, "report.pdf", SanitizeFileName("report.pdf"))
	assert.Equal(t, "a_b_c", SanitizeFileName(`a/b\c`))
	assert.Equal(t, "safe", SanitizeFileName("safe\r\n"))
	assert.Equal(t, "download", SanitizeFileName("\x00\x01"), "全是非法字符时退回默认名")
}
