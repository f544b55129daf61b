package usecase

import (
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("welcomecraft/usecase")

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
