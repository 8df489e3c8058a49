// Package textextract はアップロードされたピッチファイルからテキストを抽出します。
package textextract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"pitch_backend/internal/feature/pitch/usecase"
)

// PDFReader はPDF文書のテキストを読み取ります。
type PDFReader interface {
	ReadPDF(ctx context.Context, data []byte) (string, error)
}

// Extractor はContent-Typeに応じて抽出方法を切り替えます。
type Extractor struct {
	pdf PDFReader
}

// ExtractorがTextExtractorを実装していることをコンパイル時に検証します。
var _ usecase.TextExtractor = (*Extractor)(nil)

// NewExtractor はExtractorを生成します。pdfがnilの場合、PDFは生バイトをテキストとして扱います。
func NewExtractor(pdf PDFReader) *Extractor {
	return &Extractor{pdf: pdf}
}

// Extract はファイルの内容をプレーンテキストとして返します。
func (e *Extractor) Extract(ctx context.Context, contentType string, data []byte) (string, error) {
	switch contentType {
	case usecase.ContentTypeText:
		return plainText(data), nil
	case usecase.ContentTypeDOCX:
		return DOCXText(data)
	case usecase.ContentTypePDF:
		if e.pdf == nil {
			slog.Warn("no PDF reader configured, sending raw PDF bytes as text")
			return plainText(data), nil
		}
		return e.pdf.ReadPDF(ctx, data)
	default:
		return "", fmt.Errorf("unsupported content type %q", contentType)
	}
}

// plainText は不正なUTF-8とNULを取り除きます。
func plainText(data []byte) string {
	s := strings.ToValidUTF8(string(data), "")
	s = strings.TrimPrefix(s, "\ufeff")
	return strings.ReplaceAll(s, "\x00", "")
}
