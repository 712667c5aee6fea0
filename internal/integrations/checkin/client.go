package checkin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client клиент сервиса верификации чек-ин токенов
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента верификации
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

type validateRequest struct {
	ReservationID int64  `json:"reservation_id"`
	Token         string `json:"token"`
}

type validateResponse struct {
	Valid bool `json:"valid"`
}

// Validate проверяет чек-ин токен брони во внешнем сервисе верификации
func (c *Client) Validate(ctx context.Context, reservationID int64, token string) error {
	url := fmt.Sprintf("%s/internal/checkin/validate", c.baseURL)

	payload, err := json.Marshal(validateRequest{
		ReservationID: reservationID,
		Token:         token,
	})
	if err != nil {
		return fmt.Errorf("%w: failed to marshal request: %v", ErrInternal, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	// Обработка статус-кодов
	switch resp.StatusCode {
	case http.StatusOK:
		// Продолжаем обработку
	case http.StatusUnprocessableEntity:
		return ErrTokenInvalid
	default:
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	var result validateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	if !result.Valid {
		return ErrTokenInvalid
	}

	return nil
}

// ValidateWithGracefulDegradation проверяет токен с graceful degradation
// При недоступности сервиса верификации возвращает ErrServiceDegraded,
// что позволяет принять чек-ин по локальному сравнению токена
func (c *Client) ValidateWithGracefulDegradation(ctx context.Context, reservationID int64, token string) error {
	err := c.Validate(ctx, reservationID, token)
	if err == nil {
		return nil
	}

	// Бизнес-отказ пробрасываем как есть
	if err == ErrTokenInvalid {
		c.log.Info("Check-in token rejected for reservation_id=%d", reservationID)
		return err
	}

	// Для всех остальных ошибок (недоступность сервиса, timeout, ошибки
	// парсинга) применяем graceful degradation
	c.log.Error("Checkin service unavailable, applying graceful degradation for reservation_id=%d: %v", reservationID, err)
	return fmt.Errorf("%w: reservation_id=%d, error=%v", ErrServiceDegraded, reservationID, err)
}
