package logger

import (
	"path/filepath"
	"testing"

	"github.com/chromegate/chromegate/internal/config"
	"github.com/rs/zerolog"
)

func TestNew_DefaultLogger(t *testing.T) {
	cfg := config.NewDefaultLogConfig()
	if _, err := New(cfg); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestNew_FileLogger(t *testing.T) {
	cfg := config.NewDefaultLogConfig()
	cfg.LogFile = filepath.Join(t.TempDir(), "chromegate.log")
	cfg.LogFormat = "json"

	if _, err := New(cfg); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestNew_UnknownLevelFallsBackToInfo(t *testing.T) {
	cfg := config.NewDefaultLogConfig()
	cfg.LogLevel = "chatty"

	log, err := New(cfg)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if log.GetLevel() != zerolog.InfoLevel {
		t.Fatalf("expected info level fallback, got %v", log.GetLevel())
	}
}

func TestParseLevel_Invalid(t *testing.T) {
	if _, err := NewLogLevelParser().ParseLevel("chatty"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestParseFormat(t *testing.T) {
	parser := NewLogFormatParser()
	if got := parser.ParseFormat("JSON"); got != FormatJSON {
		t.Fatalf("expected json format, got %v", got)
	}
	if got := parser.ParseFormat("unknown"); got != FormatConsole {
		t.Fatalf("expected console fallback, got %v", got)
	}
}
