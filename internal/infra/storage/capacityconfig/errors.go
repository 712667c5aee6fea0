package capacityconfig

import "errors"

var (
	// ErrConfigNotFound возвращается, когда конфигурация вместимости не найдена
	ErrConfigNotFound = errors.New("capacityconfig.repository: config not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("capacityconfig.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("capacityconfig.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("capacityconfig.repository: failed to scan row")
)
