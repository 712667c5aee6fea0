package trust

import "errors"

// Ошибки репозитория доверия
var (
	ErrStatsNotFound      = errors.New("client stats not found")
	ErrProScoreNotFound   = errors.New("pro trust score not found")
	ErrSanctionNotFound   = errors.New("sanction not found")
	ErrSuspensionNotFound = errors.New("client suspension not found")
	ErrAlreadyLifted      = errors.New("sanction already lifted")
	ErrBuildQuery       = errors.New("failed to build query")
	ErrExecQuery        = errors.New("failed to execute query")
	ErrScanRow          = errors.New("failed to scan row")
)
