package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func handleRecord(t *testing.T, h slog.Handler, r slog.Record) string {
	t.Helper()
	if err := h.Handle(context.Background(), r); err != nil {
		t.Fatalf("Handle() error: %v", err)
	}
	switch th := h.(type) {
	case *terminalHandler:
		return th.writer.(*bytes.Buffer).String()
	default:
		t.Fatalf("unexpected handler type %T", h)
		return ""
	}
}

func TestTerminalHandler_Format(t *testing.T) {
	var buf bytes.Buffer
	h := newTerminalHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})

	ts := time.Date(2026, 1, 15, 10, 30, 45, 123000000, time.UTC)
	r := slog.NewRecord(ts, slog.LevelInfo, "server started", 0)
	r.AddAttrs(slog.String("port", "8080"))

	output := handleRecord(t, h, r)

	for _, want := range []string{"10:30:45.123", "INF", "server started", "port=", "8080"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got: %s", want, output)
		}
	}
}

func TestTerminalHandler_LevelLabelsAndColours(t *testing.T) {
	tests := []struct {
		level  slog.Level
		label  string
		colour string
	}{
		{slog.LevelDebug, "DBG", ansiCyan},
		{slog.LevelInfo, "INF", ansiGreen},
		{slog.LevelWarn, "WRN", ansiYellow},
		{slog.LevelError, "ERR", ansiRed},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			var buf bytes.Buffer
			h := newTerminalHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})

			r := slog.NewRecord(time.Now(), tt.level, "msg", 0)
			output := handleRecord(t, h, r)

			if !strings.Contains(output, tt.label) {
				t.Errorf("expected %s in output, got: %s", tt.label, output)
			}
			if !strings.Contains(output, tt.colour) {
				t.Errorf("expected colour code for %s, got: %q", tt.label, output)
			}
			if !strings.Contains(output, ansiReset) {
				t.Error("expected reset code")
			}
		})
	}
}

func TestTerminalHandler_Enabled(t *testing.T) {
	h := newTerminalHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn})

	if h.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("DEBUG should be disabled at WARN level")
	}
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("INFO should be disabled at WARN level")
	}
	if !h.Enabled(context.Background(), slog.LevelWarn) {
		t.Error("WARN should be enabled at WARN level")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("ERROR should be enabled at WARN level")
	}
}

func TestTerminalHandler_DefaultLevelIsInfo(t *testing.T) {
	h := newTerminalHandler(&bytes.Buffer{}, nil)

	if !h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("default level should be INFO")
	}
	if h.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("DEBUG should be disabled at default INFO level")
	}
}

func TestTerminalHandler_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newTerminalHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	logger.Debug("debug")
	logger.Info("info")
	logger.Warn("warn")
	logger.Error("error")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Errorf("expected 2 log lines, got %d: %s", len(lines), buf.String())
	}
}

func TestTerminalHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	h := newTerminalHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})

	h2 := h.WithAttrs([]slog.Attr{slog.String("component", "api")})

	r := slog.NewRecord(time.Now(), slog.LevelInfo, "request", 0)
	r.AddAttrs(slog.Int("status", 200))
	output := handleRecord(t, h2, r)

	for _, want := range []string{"component=", "api", "status=", "200"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got: %s", want, output)
		}
	}
}

func TestTerminalHandler_WithGroup(t *testing.T) {
	var buf bytes.Buffer
	h := newTerminalHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})

	h2 := h.WithGroup("http")

	r := slog.NewRecord(time.Now(), slog.LevelInfo, "request", 0)
	r.AddAttrs(slog.String("method", "GET"))
	output := handleRecord(t, h2, r)

	if !strings.Contains(output, "http.method=") {
		t.Errorf("expected grouped attr http.method, got: %s", output)
	}
}

func TestTerminalHandler_WithGroupEmptyName(t *testing.T) {
	h := newTerminalHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelDebug})

	if h.WithGroup("") != slog.Handler(h) {
		t.Error("WithGroup with empty string should return same handler")
	}
}

func TestTerminalHandler_InlineGroupAttr(t *testing.T) {
	var buf bytes.Buffer
	h := newTerminalHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})

	r := slog.NewRecord(time.Now(), slog.LevelInfo, "msg", 0)
	r.AddAttrs(slog.Group("request",
		slog.String("method", "POST"),
		slog.Int("status", 201),
	))
	output := handleRecord(t, h, r)

	if !strings.Contains(output, "request.method=") {
		t.Errorf("expected grouped request.method, got: %s", output)
	}
	if !strings.Contains(output, "request.status=") {
		t.Errorf("expected grouped request.status, got: %s", output)
	}
}

func TestFormatAttrValue(t *testing.T) {
	tests := []struct {
		name string
		val  slog.Value
		want string
	}{
		{"bare string", slog.StringValue("simple"), "simple"},
		{"string with space", slog.StringValue("connection refused"), `"connection refused"`},
		{"string with quote", slog.StringValue(`say "hi"`), `"say \"hi\""`},
		{"int", slog.IntValue(42), "42"},
		{"duration", slog.DurationValue(1500 * time.Millisecond), "1.5s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatAttrValue(tt.val); got != tt.want {
				t.Errorf("formatAttrValue() = %q, want %q", got, tt.want)
			}
		})
	}
}
