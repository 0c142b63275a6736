package util

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"
)

// ValidateMimeType 读文件头 512 字节做深度 MIME 校验，
// allowedTypes 可以是前缀（"video/"）或完整类型（"application/pdf"）
func ValidateMimeType(reader io.Reader, allowedTypes []string) (string, error) {
	buffer := make([]byte, 512)
	n, err := reader.Read(buffer)
	if err != nil && err != io.EOF {
		return "", err
	}

	mimeType := http.DetectContentType(buffer[:n])
	for _, allowed := range allowedTypes {
		if strings.HasPrefix(mimeType, allowed) || mimeType == allowed {
			return mimeType, nil
		}
	}
	return mimeType, errors.New("invalid file type: " + mimeType)
}

// IsImage 头像上传只收图片
func IsImage(mimeType string) bool {
	return strings.HasPrefix(mimeType, MimeImage)
}

// IsVideo 课程视频附件校验
func IsVideo(mimeType string) bool {
	return strings.HasPrefix(mimeType, MimeVideo)
}

// IsVideoFilename 按扩展名兜底判断，用于浏览器只给 octet-stream 的场景
func IsVideoFilename(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range AllowedVideoExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// IsAllowedDocMime 课程文档附件校验（PDF / Word / PPT）
func IsAllowedDocMime(mimeType string) bool {
	for _, allowed := range AllowedDocMimeTypes {
		if mimeType == allowed {
			return true
		}
	}
	return false
}
