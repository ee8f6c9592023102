package log

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPrintf_Enabled(t *testing.T) {
	var buf bytes.Buffer
	l := &Logger{Enabled: true, W: &buf}

	l.Printf("config: %s", ".figsplit.yml")

	want := "config: .figsplit.yml\n"
	if got := buf.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPrintf_Disabled(t *testing.T) {
	var buf bytes.Buffer
	l := &Logger{Enabled: false, W: &buf}

	l.Printf("config: %s", ".figsplit.yml")

	if got := buf.String(); got != "" {
		t.Errorf("expected no output, got %q", got)
	}
}

func TestPrintf_MultipleMessages(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, true)

	l.Printf("task: %s", "sentiment")
	l.Printf("setting: %s %s", "TRAIN_en-AU", "label_source")

	want := "task: sentiment\nsetting: TRAIN_en-AU label_source\n"
	if got := buf.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestWarnf_IgnoresEnabled(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, false)

	l.Warnf("skip %s: pool size %d", "FULL", 9)

	want := "warning: skip FULL: pool size 9\n"
	if got := buf.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestNilLogger(t *testing.T) {
	var l *Logger
	l.Printf("ignored")
	l.Warnf("ignored")
	if err := l.Sync(); err != nil {
		t.Errorf("Sync: %v", err)
	}
}

func TestFileWriter(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "figsplit.log")
	l := New(FileWriter(&buf, path), true)

	l.Printf("hello")

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "hello") || !strings.Contains(buf.String(), "hello") {
		t.Errorf("expected message in both sinks, file=%q buf=%q", content, buf.String())
	}
}
