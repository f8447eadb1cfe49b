package policy

import (
	"context"
	"log/slog"

	"github.com/moshez/ward/domain/ports"
)

// Ensure implementations satisfy the interface.
var _ ports.DenialHandler = (*LogDenialHandler)(nil)
var _ ports.DenialHandler = (*NopDenialHandler)(nil)

// LogDenialHandler logs denials at warn level.
type LogDenialHandler struct {
	Logger *slog.Logger
}

func (h *LogDenialHandler) OnDenial(ctx context.Context, kind string, request any, reason string) {
	logger := h.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.WarnContext(ctx, "permission denied", "kind", kind, "request", request, "reason", reason)
}

// NopDenialHandler does nothing.
type NopDenialHandler struct{}

func (h *NopDenialHandler) OnDenial(context.Context, string, any, string) {}
