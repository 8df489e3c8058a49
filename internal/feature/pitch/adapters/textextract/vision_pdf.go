package textextract

import (
	"context"
	"fmt"
	"strings"

	gvision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/googleapis/gax-go/v2"
)

const (
	// pagesPerRequest はオンライン(同期)ファイル注釈の1リクエストあたりの上限です。
	pagesPerRequest = 5
	// DefaultMaxPages は読み取るページ数の上限です。
	DefaultMaxPages = 30
)

// fileAnnotator は ImageAnnotatorClient のうち使用するメソッドです。
type fileAnnotator interface {
	BatchAnnotateFiles(ctx context.Context, req *visionpb.BatchAnnotateFilesRequest, opts ...gax.CallOption) (*visionpb.BatchAnnotateFilesResponse, error)
}

// VisionPDFReader はGoogle Cloud VisionのDOCUMENT_TEXT_DETECTIONでPDFを読み取ります。
type VisionPDFReader struct {
	client   fileAnnotator
	close    func() error
	maxPages int32
}

var _ PDFReader = (*VisionPDFReader)(nil)

// NewVisionPDFReader はADCを使用してVisionPDFReaderの新しいインスタンスを生成します。
func NewVisionPDFReader(ctx context.Context) (*VisionPDFReader, error) {
	client, err := gvision.NewImageAnnotatorClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create vision client: %w", err)
	}
	return &VisionPDFReader{client: client, close: client.Close, maxPages: DefaultMaxPages}, nil
}

// Close はVision APIクライアントを解放します。
func (v *VisionPDFReader) Close() error {
	if v.close == nil {
		return nil
	}
	return v.close()
}

// ReadPDF はPDFを5ページずつ注釈し、全ページのテキストを連結します。
func (v *VisionPDFReader) ReadPDF(ctx context.Context, data []byte) (string, error) {
	var b strings.Builder
	total := int32(pagesPerRequest)
	for first := int32(1); first <= total && first <= v.maxPages; first += pagesPerRequest {
		// 初回はページ指定なし(先頭5ページ)で総ページ数を取得する
		var pages []int32
		if first > 1 {
			last := min(first+pagesPerRequest-1, total, v.maxPages)
			for p := first; p <= last; p++ {
				pages = append(pages, p)
			}
		}

		fileResp, err := v.annotate(ctx, data, pages)
		if err != nil {
			return "", err
		}
		if fileResp == nil {
			break
		}
		if first == 1 && fileResp.TotalPages > 0 {
			total = fileResp.TotalPages
		}
		for _, page := range fileResp.Responses {
			if page.Error != nil {
				return "", fmt.Errorf("vision API page error: %s", page.Error.Message)
			}
			if page.FullTextAnnotation != nil {
				b.WriteString(page.FullTextAnnotation.Text)
				b.WriteByte('\n')
			}
		}
	}
	return strings.TrimSpace(b.String()), nil
}

func (v *VisionPDFReader) annotate(ctx context.Context, data []byte, pages []int32) (*visionpb.AnnotateFileResponse, error) {
	req := &visionpb.BatchAnnotateFilesRequest{
		Requests: []*visionpb.AnnotateFileRequest{
			{
				InputConfig: &visionpb.InputConfig{Content: data, MimeType: "application/pdf"},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
				},
				Pages: pages,
			},
		},
	}

	resp, err := v.client.BatchAnnotateFiles(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("vision API request failed: %w", err)
	}
	if len(resp.Responses) == 0 {
		return nil, nil
	}
	if resp.Responses[0].Error != nil {
		return nil, fmt.Errorf("vision API error: %s", resp.Responses[0].Error.Message)
	}
	return resp.Responses[0], nil
}
