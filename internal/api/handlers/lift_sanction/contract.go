package lift_sanction

import (
	"context"
)

type TrustService interface {
	LiftSanction(ctx context.Context, sanctionID int64, reason string) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
