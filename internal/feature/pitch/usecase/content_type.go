package usecase

import (
	"mime"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const (
	ContentTypePDF  = "application/pdf"
	ContentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	ContentTypeText = "text/plain"

	// MaxFileSize は受け付けるピッチファイルの最大サイズ（10MB）です。
	MaxFileSize = 10 << 20
)

var allowedTypes = []string{ContentTypePDF, ContentTypeDOCX, ContentTypeText}

var extensionTypes = map[string]string{
	".pdf":  ContentTypePDF,
	".docx": ContentTypeDOCX,
	".txt":  ContentTypeText,
}

// DetectContentType はアップロードのMIMEタイプを決定します。
// 宣言されたヘッダが具体的ならそれを使い、そうでなければ内容から判定し、
// それも失敗した場合は拡張子で決めます。
func DetectContentType(fileName, declared string, data []byte) string {
	if mt, _, err := mime.ParseMediaType(declared); err == nil && mt != "application/octet-stream" {
		return mt
	}
	if len(data) > 0 {
		sniffed := mimetype.Detect(data)
		for _, t := range allowedTypes {
			if sniffed.Is(t) {
				return t
			}
		}
	}
	if t, ok := extensionTypes[strings.ToLower(path.Ext(fileName))]; ok {
		return t
	}
	return "application/octet-stream"
}

// Allowed はcontentTypeが受け付け可能なピッチファイル形式かを返します。
func Allowed(contentType string) bool {
	for _, t := range allowedTypes {
		if t == contentType {
			return true
		}
	}
	return false
}
