package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExtractRequiresDiscussionColumn(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "results.csv")
	data := "question,chatgpt_answer_0\nWhat is 1+1?,A\n"
	if err := os.WriteFile(input, []byte(data), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	cmd := extractCmd()
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	cmd.SetArgs([]string{"--input", input, "--output", filepath.Join(dir, "out.csv")})

	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "discussion column") {
		t.Fatalf("err = %v, want missing discussion column error", err)
	}
}
