package telemetry

import (
	"fmt"
	"log/slog"
)

// SlogAPI writes reports as structured log lines. A nil Logger means slog.Default().
type SlogAPI struct {
	Logger *slog.Logger
}

func (s SlogAPI) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

// attrs puts errors under "err" and everything else under its position.
func attrs(out []any, params []any) []any {
	errCount := 0
	for i, p := range params {
		if err, ok := p.(error); ok {
			key := "err"
			if errCount > 0 {
				key = fmt.Sprintf("err.%d", errCount)
			}
			errCount++
			out = append(out, key, err.Error())
			continue
		}
		out = append(out, fmt.Sprintf("params.%d", i), p)
	}
	return out
}

func (s SlogAPI) ReportBroken(id string, params ...any) {
	s.logger().Error("broken component", attrs([]any{"id", id}, params)...)
}

func (s SlogAPI) ReportWarning(id string, params ...any) {
	s.logger().Warn("warning", attrs([]any{"id", id}, params)...)
}

func (s SlogAPI) ReportDebug(message string, params ...any) {
	s.logger().Debug(message, attrs(nil, params)...)
}

func (s SlogAPI) ReportCount(id string, count int64) {
	s.logger().Info("count", "id", id, "n", count)
}
