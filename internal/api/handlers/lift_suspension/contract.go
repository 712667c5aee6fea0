package lift_suspension

import (
	"context"
)

type TrustService interface {
	LiftClientSuspension(ctx context.Context, suspensionID int64, reason string) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
