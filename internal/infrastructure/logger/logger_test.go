package logger

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/taskmaster/todos/internal/infrastructure/config"
)

func observed() (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return &Logger{SugaredLogger: zap.New(core).Sugar()}, logs
}

func TestLogTodoEvent(t *testing.T) {
	log, logs := observed()

	log.WithComponent("todo_service").LogTodoEvent("completed", 42, map[string]interface{}{
		"spawned_id": int64(43),
	})

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["component"] != "todo_service" || fields["event"] != "completed" {
		t.Errorf("fields = %v", fields)
	}
	if fields["todo_id"] != int64(42) || fields["spawned_id"] != int64(43) {
		t.Errorf("ids = %v / %v", fields["todo_id"], fields["spawned_id"])
	}
}

func TestLogHTTPRequestLevels(t *testing.T) {
	log, logs := observed()

	log.LogHTTPRequest("GET", "/todos", "curl", "127.0.0.1", 200, 1.5, nil)
	log.LogHTTPRequest("PUT", "/todos/9", "curl", "127.0.0.1", 404, 0.7, errors.New("not found"))

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].Level != zapcore.InfoLevel || entries[1].Level != zapcore.ErrorLevel {
		t.Errorf("levels = %v, %v", entries[0].Level, entries[1].Level)
	}
	if entries[1].ContextMap()["error"] != "not found" {
		t.Errorf("error field = %v", entries[1].ContextMap()["error"])
	}
}

func TestLogSecurityEvent(t *testing.T) {
	log, logs := observed()

	log.LogSecurityEvent("invalid_token", "", "10.0.0.1", map[string]interface{}{"path": "/todos"})

	entries := logs.FilterField(zap.String("security_event", "invalid_token")).All()
	if len(entries) != 1 || entries[0].Level != zapcore.WarnLevel {
		t.Fatalf("security entries = %+v", entries)
	}
}

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	log, err := New(config.LoggerConfig{Level: "info", Format: "json", Output: "file", Filename: path})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	log.Debugw("hidden")
	log.Infow("visible", "todo_id", 7)
	_ = log.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	if strings.Contains(out, "hidden") {
		t.Error("debug entry written at info level")
	}
	if !strings.Contains(out, `"msg":"visible"`) || !strings.Contains(out, `"todo_id":7`) {
		t.Errorf("log output = %s", out)
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New(config.LoggerConfig{Level: "loud", Format: "json"}); err == nil {
		t.Fatal("expected an error for an unknown level")
	}
}
