package model

import (
	"path/filepath"
	"testing"
)

func TestMediaURL(t *testing.T) {
	tests := []struct {
		name  string
		media ExamMedia
		want  string
	}{
		{
			name:  "bmp rehosted as png by hash",
			media: ExamMedia{FileName: "a1b2c3d4.bmp", RelativePath: `\2013\figures\a1b2c3d4.bmp`},
			want:  "https://handai.s3.us-east-2.amazonaws.com/a1b2c3d4.png",
		},
		{
			name:  "bmp extension is case insensitive",
			media: ExamMedia{FileName: "A1B2C3D4.BMP"},
			want:  "https://handai.s3.us-east-2.amazonaws.com/A1B2C3D4.png",
		},
		{
			name:  "cdn path with backslashes normalized",
			media: ExamMedia{FileName: "fig1.jpg", RelativePath: `\2013\figures\fig1.jpg`},
			want:  "https://de90rgl81jte0.cloudfront.net/2013/figures/fig1.jpg",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.media.URL(); got != tt.want {
				t.Fatalf("URL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReferenceTextPath(t *testing.T) {
	ref := Reference{QuestionNumber: 4, ReferenceNumber: 1, Year: 2013}
	want := filepath.Join("refs", "handai-2013-references", "drive",
		"question_4", "reference_1", "question_4_reference_1_processed.txt")
	if got := ref.TextPath("refs"); got != want {
		t.Fatalf("TextPath() = %q, want %q", got, want)
	}
}
