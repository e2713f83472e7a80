package explorer

// AllowedMimeTypes 按类别列出允许上传的 MIME 类型
var AllowedMimeTypes = map[string][]string{
	"image": {
		"image/jpeg",
		"image/png",
		"image/gif",
		"image/webp",
		"image/svg+xml",
	},
	"document": {
		"application/pdf",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/vnd.ms-excel",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"application/vnd.ms-powerpoint",
		"application/vnd.openxmlformats-officedocument.presentationml.presentation",
		"text/plain",
		"text/csv",
	},
	"video": {
		"video/mp4",
		"video/mpeg",
		"video/quicktime",
		"video/webm",
		"video/x-msvideo",
	},
	"audio": {
		"audio/mpeg",
		"audio/wav",
		"audio/ogg",
		"audio/webm",
	},
	"archive": {
		"application/zip",
		"application/x-rar-compressed",
		"application/x-7z-compressed",
		"application/gzip",
		"application/x-tar",
	},
}

var allowedMimeSet = func() map[string]struct{} {
	set := make(map[string]struct{})
	for _, types := range AllowedMimeTypes {
		for _, t := range types {
			set[t] = struct{}{}
		}
	}
	return set
}()

// IsAllowedMimeType 判断 MIME 类型是否在允许上传的白名单内
func IsAllowedMimeType(mimeType string) bool {
	_, ok := allowedMimeSet[mimeType]
	return ok
}

// MimeTypesOfCategory 返回类别对应的 MIME 类型列表，未知类别返回 nil。
// 用于文件列表按类别过滤。
func MimeTypesOfCategory(category string) []string {
	return AllowedMimeTypes[category]
}
