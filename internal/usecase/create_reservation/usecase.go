package create_reservation

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/planeat-app/PLE-ReservationService/internal/domain"
	configRepo "github.com/planeat-app/PLE-ReservationService/internal/infra/storage/capacityconfig"
	trustRepo "github.com/planeat-app/PLE-ReservationService/internal/infra/storage/trust"
	"github.com/planeat-app/PLE-ReservationService/internal/integrations/notifier"
	"github.com/planeat-app/PLE-ReservationService/pkg/ptr"
)

// UseCase use case для создания брони
type UseCase struct {
	reservationRepo ReservationRepository
	configRepo      ConfigRepository
	statsReader     ClientStatsReader
	trustService    TrustService
	txManager       TransactionManager
	events          EventPublisher
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	reservationRepo ReservationRepository,
	configRepo ConfigRepository,
	statsReader ClientStatsReader,
	trustService TrustService,
	txManager TransactionManager,
	events EventPublisher,
	logger Logger,
) *UseCase {
	return &UseCase{
		reservationRepo: reservationRepo,
		configRepo:      configRepo,
		statsReader:     statsReader,
		trustService:    trustService,
		txManager:       txManager,
		events:          events,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute выполняет use case создания брони
// Проверка вместимости и вставка идут в сериализуемой транзакции с блокировкой
// строк слота - так конкурентные брони одного слота не пробивают пул
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateReservation: client=%d, establishment=%d, date=%s, time=%s, party=%d, type=%s",
		req.ClientID, req.EstablishmentID, req.Date.Format(domain.DateFormat), req.StartTime, req.PartySize, req.Type)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateReservation: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()

	if err := validateDate(req.Date, now); err != nil {
		uc.logger.Warn("CreateReservation: date in the past: %s", req.Date.Format(domain.DateFormat))
		return nil, err
	}

	// 2. Отстраненный или исключенный клиент бронировать не может
	if err := uc.checkClientAllowed(ctx, req.ClientID, now); err != nil {
		return nil, err
	}

	// 3. Заявка на групповое предложение не занимает слот - отдельная ветка
	if domain.ReservationType(req.Type) == domain.TypeGroupQuote {
		return uc.createQuoteRequest(ctx, req)
	}

	return uc.createStandard(ctx, req)
}

// createStandard создает обычную бронь с проверкой вместимости пула
func (uc *UseCase) createStandard(ctx context.Context, req *Request) (*Response, error) {
	now := uc.timeProvider.Now()

	// Пул определяется типом оплаты: paid -> paid_stock, free -> free_stock
	// только при промо-условиях, buffer для броней закрыт
	stock, err := domain.StockForBooking(domain.PaymentType(req.PaymentType), req.PromoEligible)
	if err != nil {
		uc.logger.Warn("CreateReservation: pool not bookable: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrPoolNotBookable, err)
	}

	var result *domain.Reservation

	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// Конфигурация вместимости: точная дата приоритетнее шаблона дня недели
		config, err := uc.configRepo.GetForDate(txCtx, req.EstablishmentID, req.Date)
		if err != nil {
			if errors.Is(err, configRepo.ErrConfigNotFound) {
				uc.logger.Warn("CreateReservation: no config for establishment=%d on %s",
					req.EstablishmentID, req.Date.Format(domain.DateFormat))
				return ErrConfigNotFound
			}
			uc.logger.Error("CreateReservation: failed to get config: %v", err)
			return fmt.Errorf("%w: failed to get config: %v", ErrInternal, err)
		}

		if config.IsClosed {
			uc.logger.Warn("CreateReservation: establishment=%d closed on %s",
				req.EstablishmentID, req.Date.Format(domain.DateFormat))
			return ErrEstablishmentClosed
		}

		if err := config.Validate(); err != nil {
			uc.logger.Error("CreateReservation: invalid config id=%d: %v", config.ID, err)
			return fmt.Errorf("%w: invalid capacity config: %v", ErrInternal, err)
		}

		if err := validateSlotTime(req.StartTime, config); err != nil {
			uc.logger.Warn("CreateReservation: slot time rejected: %v", err)
			return err
		}

		// Занимающие слот брони с блокировкой (FOR UPDATE)
		occupying, err := uc.reservationRepo.ListByFilter(txCtx, domain.ReservationFilter{
			EstablishmentID: ptr.Ptr(req.EstablishmentID),
			Date:            ptr.Ptr(req.Date),
			StartTime:       ptr.Ptr(req.StartTime),
			OccupyingOnly:   true,
		})
		if err != nil {
			uc.logger.Error("CreateReservation: failed to list occupying reservations: %v", err)
			return fmt.Errorf("%w: failed to list reservations: %v", ErrInternal, err)
		}

		totals := config.SplitCapacity()
		occupiedPaid, occupiedFree, occupiedBuffer := occupiedByPool(occupying)
		availability := domain.NewSlotAvailability(totals, occupiedPaid, occupiedFree, occupiedBuffer)

		pool := availability.ForStock(stock)
		if req.PartySize > pool.Available {
			uc.logger.Warn("CreateReservation: pool %s full, %d/%d seats taken, party=%d",
				stock, pool.Occupied, pool.Total, req.PartySize)
			return ErrSlotFull
		}

		uc.logger.Info("CreateReservation: pool %s has %d/%d seats free", stock, pool.Available, pool.Total)

		slotStart, err := req.StartTime.At(req.Date)
		if err != nil {
			return fmt.Errorf("%w: slot start: %v", ErrInternal, err)
		}

		token, err := newCheckinToken()
		if err != nil {
			return fmt.Errorf("%w: checkin token: %v", ErrInternal, err)
		}

		reservation := &domain.Reservation{
			ClientID:        req.ClientID,
			EstablishmentID: req.EstablishmentID,
			Status:          domain.StatusRequested,
			Type:            domain.TypeStandard,
			PaymentType:     domain.PaymentType(req.PaymentType),
			StockType:       stock,
			Date:            req.Date,
			StartTime:       req.StartTime,
			DurationMinutes: config.OccupationDurationMinutes,
			PartySize:       req.PartySize,
			DepositRequired: req.DepositRequired,
			DepositAmount:   req.DepositAmount,
			CheckinToken:    &token,
			// Дедлайн подтверждения: +2ч для брони день в день, иначе +12ч
			ProConfirmationDeadline: ptr.Ptr(domain.ProConfirmationDeadline(now, slotStart)),
			VenueAutoValidationAt:   ptr.Ptr(domain.VenueAutoValidationAt(slotStart)),
			Notes:                   req.Notes,
		}

		created, err := uc.reservationRepo.Create(txCtx, reservation)
		if err != nil {
			uc.logger.Error("CreateReservation: failed to create reservation: %v", err)
			return fmt.Errorf("%w: failed to create reservation: %v", ErrInternal, err)
		}

		result = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("CreateReservation: created reservation id=%d in pool %s", result.ID, result.StockType)

	uc.recordConversion(ctx, req)

	uc.events.ReservationStatusChanged(ctx, notifier.ReservationStatusChangedEvent{
		ReservationID:   result.ID,
		ClientID:        result.ClientID,
		EstablishmentID: result.EstablishmentID,
		ToStatus:        string(result.Status),
		OccurredAt:      now,
	})

	return toResponse(result), nil
}

// createQuoteRequest создает заявку на групповое предложение
// Слот не резервируется до принятия предложения
func (uc *UseCase) createQuoteRequest(ctx context.Context, req *Request) (*Response, error) {
	now := uc.timeProvider.Now()

	reservation := &domain.Reservation{
		ClientID:        req.ClientID,
		EstablishmentID: req.EstablishmentID,
		Status:          domain.StatusQuoteRequested,
		Type:            domain.TypeGroupQuote,
		PaymentType:     domain.PaymentType(req.PaymentType),
		StockType:       domain.StockPaid,
		Date:            req.Date,
		StartTime:       req.StartTime,
		PartySize:       req.PartySize,
		DepositRequired: req.DepositRequired,
		DepositAmount:   req.DepositAmount,
		// Заведение обязано подтвердить получение заявки за 48 часов
		QuoteAcknowledgeDeadline: ptr.Ptr(domain.QuoteAcknowledgeDeadline(now)),
		Notes:                    req.Notes,
	}

	created, err := uc.reservationRepo.Create(ctx, reservation)
	if err != nil {
		uc.logger.Error("CreateReservation: failed to create quote request: %v", err)
		return nil, fmt.Errorf("%w: failed to create quote request: %v", ErrInternal, err)
	}

	uc.logger.Info("CreateReservation: created quote request id=%d, ack deadline=%s",
		created.ID, created.QuoteAcknowledgeDeadline.Format(time.RFC3339))

	uc.events.ReservationStatusChanged(ctx, notifier.ReservationStatusChangedEvent{
		ReservationID:   created.ID,
		ClientID:        created.ClientID,
		EstablishmentID: created.EstablishmentID,
		ToStatus:        string(created.Status),
		OccurredAt:      now,
	})

	return toResponse(created), nil
}

// checkClientAllowed отклоняет брони отстраненных и исключенных клиентов
func (uc *UseCase) checkClientAllowed(ctx context.Context, clientID int64, now time.Time) error {
	stats, err := uc.statsReader.GetClientStats(ctx, clientID)
	if err != nil {
		if errors.Is(err, trustRepo.ErrStatsNotFound) {
			return nil
		}
		uc.logger.Error("CreateReservation: failed to get client stats for client=%d: %v", clientID, err)
		return fmt.Errorf("%w: failed to get client stats: %v", ErrInternal, err)
	}

	if stats.PermanentlyExcluded {
		uc.logger.Warn("CreateReservation: client=%d permanently excluded", clientID)
		return ErrClientSuspended
	}
	if stats.IsSuspended && stats.SuspendedUntil != nil && now.Before(*stats.SuspendedUntil) {
		uc.logger.Warn("CreateReservation: client=%d suspended until %s", clientID, stats.SuspendedUntil)
		return ErrClientSuspended
	}

	return nil
}

// recordConversion засчитывает конверсию free -> paid: первый платный визит
// клиента, у которого уже был состоявшийся бесплатный
func (uc *UseCase) recordConversion(ctx context.Context, req *Request) {
	if domain.PaymentType(req.PaymentType) != domain.PaymentPaid {
		return
	}

	history, err := uc.reservationRepo.ListByClient(ctx, req.ClientID, nil)
	if err != nil {
		uc.logger.Error("CreateReservation: failed to load client history for conversion check: %v", err)
		return
	}

	hasConsumedFree := false
	priorPaid := 0
	for _, res := range history {
		if res.PaymentType == domain.PaymentPaid {
			priorPaid++
		}
		if res.PaymentType == domain.PaymentFree &&
			(res.Status == domain.StatusConsumed || res.Status == domain.StatusConsumedDefault) {
			hasConsumedFree = true
		}
	}

	// История уже содержит только что созданную платную бронь
	if hasConsumedFree && priorPaid == 1 {
		if err := uc.trustService.RecordFreeToPaidConversion(ctx, req.ClientID); err != nil {
			uc.logger.Error("CreateReservation: conversion record failed for client=%d: %v", req.ClientID, err)
		}
	}
}

func newCheckinToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func toResponse(r *domain.Reservation) *Response {
	return &Response{
		ID:                       r.ID,
		ClientID:                 r.ClientID,
		EstablishmentID:          r.EstablishmentID,
		Status:                   string(r.Status),
		Type:                     string(r.Type),
		PaymentType:              string(r.PaymentType),
		StockType:                string(r.StockType),
		Date:                     r.Date,
		StartTime:                r.StartTime,
		DurationMinutes:          r.DurationMinutes,
		PartySize:                r.PartySize,
		CheckinToken:             r.CheckinToken,
		ProConfirmationDeadline:  r.ProConfirmationDeadline,
		QuoteAcknowledgeDeadline: r.QuoteAcknowledgeDeadline,
		Notes:                    r.Notes,
		CreatedAt:                r.CreatedAt,
		UpdatedAt:                r.UpdatedAt,
	}
}
