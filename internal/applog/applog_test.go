package applog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultLogDir(t *testing.T) {
	dir := DefaultLogDir()
	if dir == "" {
		t.Fatal("DefaultLogDir returned empty string")
	}
	if !strings.Contains(dir, ".hybridctl") || !strings.Contains(dir, "logs") {
		t.Errorf("DefaultLogDir should contain .hybridctl/logs, got: %s", dir)
	}
}

func TestDefaultLogPath(t *testing.T) {
	path := DefaultLogPath()
	if filepath.Base(path) != "hybridctl.log" {
		t.Errorf("DefaultLogPath should end with hybridctl.log, got: %s", path)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Level != "info" {
		t.Errorf("expected level info, got %s", cfg.Level)
	}
	if cfg.MaxSizeMB != 10 || cfg.MaxFiles != 5 || !cfg.WriteToStderr {
		t.Errorf("unexpected default config: %+v", cfg)
	}
}

func TestDebugConfig(t *testing.T) {
	if DebugConfig().Level != "debug" {
		t.Error("DebugConfig should set level to debug")
	}
}

func TestSetup_WritesToFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")
	logger, cleanup, err := Setup(Config{
		Level: "debug", FilePath: logPath, MaxSizeMB: 1, MaxFiles: 3, WriteToStderr: false,
	})
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	defer cleanup()

	logger.Info("test message")

	if _, err := os.Stat(logPath); os.IsNotExist(err) {
		t.Error("log file was not created")
	}
}

func TestSetup_EmptyFilePathLogsToStderrOnly(t *testing.T) {
	logger, cleanup, err := Setup(Config{Level: "info"})
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	defer cleanup()
	if logger == nil {
		t.Fatal("expected a non-nil logger")
	}
}

func TestRotatingWriter_WriteAndSync(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "rotate.log")
	w, err := NewRotatingWriter(logPath, 1, 3)
	if err != nil {
		t.Fatalf("failed to create writer: %v", err)
	}
	defer w.Close()

	data := []byte("hello\n")
	n, err := w.Write(data)
	if err != nil || n != len(data) {
		t.Fatalf("write failed: n=%d err=%v", n, err)
	}

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if string(content) != string(data) {
		t.Errorf("expected %q, got %q", data, content)
	}
}

func TestRotatingWriter_RotatesPastSizeLimit(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "rotate.log")
	w, err := NewRotatingWriter(logPath, 0, 3)
	if err != nil {
		t.Fatalf("failed to create writer: %v", err)
	}
	defer w.Close()

	chunk := make([]byte, 2048)
	if _, err := w.Write(chunk); err != nil {
		t.Fatalf("first write failed: %v", err)
	}
	if _, err := w.Write(chunk); err != nil {
		t.Fatalf("second write failed: %v", err)
	}

	if _, err := os.Stat(logPath + ".1"); os.IsNotExist(err) {
		t.Error("expected rotated file .1 to exist")
	}
}

func TestRotatingWriter_RespectsMaxFiles(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "rotate.log")
	w, err := NewRotatingWriter(logPath, 0, 2)
	if err != nil {
		t.Fatalf("failed to create writer: %v", err)
	}
	defer w.Close()

	chunk := make([]byte, 1024)
	for i := 0; i < 5; i++ {
		_, _ = w.Write(chunk)
	}

	if _, err := os.Stat(logPath + ".3"); !os.IsNotExist(err) {
		t.Error("rotated file .3 should not exist beyond maxFiles=2")
	}
}

func TestEnsureLogDir(t *testing.T) {
	if err := EnsureLogDir(); err != nil {
		t.Fatalf("EnsureLogDir failed: %v", err)
	}
	info, err := os.Stat(DefaultLogDir())
	if err != nil || !info.IsDir() {
		t.Error("log directory should exist after EnsureLogDir")
	}
}
