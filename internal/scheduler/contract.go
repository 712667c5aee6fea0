package scheduler

import (
	"context"

	sweepDeadlines "github.com/planeat-app/PLE-ReservationService/internal/usecase/sweep_deadlines"
)

// SweepUseCase интерфейс use case обработки дедлайнов
type SweepUseCase interface {
	Execute(ctx context.Context) (*sweepDeadlines.Result, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
