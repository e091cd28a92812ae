package model

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Asset hosts for image URL resolution. BMP originals were converted to PNG
// and re-hosted by content hash; everything else is served from the CDN by
// its stored relative path.
const (
	imageBucketURL = "https://handai.s3.us-east-2.amazonaws.com"
	imageCDNURL    = "https://de90rgl81jte0.cloudfront.net"
)

// ExamMedia is one image or video attached to a question.
type ExamMedia struct {
	QuestionID       string
	AssetID          string
	Title            string
	Type             MediaType
	FigureTitle      string
	ShowInQuestion   bool
	ShowInCommentary bool
	RelativePath     string
	FileName         string
}

// URL resolves the public URL for this asset.
func (m *ExamMedia) URL() string {
	if strings.EqualFold(filepath.Ext(m.FileName), ".bmp") {
		hash := strings.TrimSuffix(m.FileName, filepath.Ext(m.FileName))
		return fmt.Sprintf("%s/%s.png", imageBucketURL, hash)
	}
	return imageCDNURL + strings.ReplaceAll(m.RelativePath, `\`, "/")
}

// Reference is one citation document for a question. Only uploaded
// references are usable as retrieval documents.
type Reference struct {
	QuestionNumber  int
	ReferenceNumber int
	FileID          string
	FileName        string
	Citation        string
	URL             string
	Uploaded        bool
	Year            int
}

// TextPath returns the path of the pre-processed document text under the
// given references root.
func (r *Reference) TextPath(root string) string {
	return filepath.Join(root,
		fmt.Sprintf("handai-%d-references", r.Year),
		"drive",
		fmt.Sprintf("question_%d", r.QuestionNumber),
		fmt.Sprintf("reference_%d", r.ReferenceNumber),
		fmt.Sprintf("question_%d_reference_%d_processed.txt", r.QuestionNumber, r.ReferenceNumber),
	)
}
