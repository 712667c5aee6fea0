package reservations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/planeat-app/PLE-ReservationService/internal/domain"
	reservationRepo "github.com/planeat-app/PLE-ReservationService/internal/infra/storage/reservation"
	checkinClient "github.com/planeat-app/PLE-ReservationService/internal/integrations/checkin"
	"github.com/planeat-app/PLE-ReservationService/internal/integrations/notifier"
	"github.com/planeat-app/PLE-ReservationService/internal/service/reservations/models"
)

// Переходы, закрытые для общего эндпоинта: у них есть выделенные операции
// (отмена, чек-ин, объявление неявки) либо их делает только планировщик
var reservedTargets = map[domain.ReservationStatus]bool{
	domain.StatusCancelledUser:   true,
	domain.StatusCancelledPro:    true,
	domain.StatusCheckedIn:       true,
	domain.StatusNoShowDeclared:  true,
	domain.StatusNoShowConfirmed: true,
	domain.StatusExpired:         true,
	domain.StatusQuoteExpired:    true,
}

// Переходы, которые делает заведение
var proTargets = map[domain.ReservationStatus]bool{
	domain.StatusPendingProValidation: true,
	domain.StatusConfirmed:            true,
	domain.StatusRefused:              true,
	domain.StatusDepositPending:       true,
	domain.StatusConsumed:             true,
	domain.StatusConsumedDefault:      true,
	domain.StatusQuoteAcknowledged:    true,
	domain.StatusQuoteSent:            true,
}

// Переходы, которые делает клиент
var clientTargets = map[domain.ReservationStatus]bool{
	domain.StatusDepositPaid:   true,
	domain.StatusQuoteAccepted: true,
	domain.StatusQuoteRefused:  true,
}

// Service сервис для работы с бронями
type Service struct {
	reservationRepo ReservationRepository
	checkinClient   CheckinClient
	trustService    TrustService
	events          EventPublisher
	logger          Logger
	now             func() time.Time
}

// NewService создает новый экземпляр сервиса броней
func NewService(
	reservationRepo ReservationRepository,
	checkinClient CheckinClient,
	trustService TrustService,
	events EventPublisher,
	logger Logger,
	now func() time.Time,
) *Service {
	return &Service{
		reservationRepo: reservationRepo,
		checkinClient:   checkinClient,
		trustService:    trustService,
		events:          events,
		logger:          logger,
		now:             now,
	}
}

// GetByID получает бронь по ID
// Клиент видит только свою бронь, заведение - только брони своего заведения
func (s *Service) GetByID(ctx context.Context, id int64, actorID int64) (*models.ReservationResponse, error) {
	res, err := s.getReservation(ctx, id, "GetByID")
	if err != nil {
		return nil, err
	}

	if res.ClientID != actorID && res.EstablishmentID != actorID {
		s.logger.Warn("GetByID: access denied for actor=%d to reservation=%d", actorID, id)
		return nil, ErrAccessDenied
	}

	return models.FromDomainReservation(res), nil
}

// GetClientReservations получает историю броней клиента
// Опционально фильтрует по статусу
func (s *Service) GetClientReservations(ctx context.Context, req *models.GetClientReservationsRequest) (*models.ReservationListResponse, error) {
	s.logger.Info("GetClientReservations: fetching reservations for client=%d, status=%v", req.ClientID, req.Status)

	var domainStatus *domain.ReservationStatus
	if req.Status != nil {
		status, err := models.ToDomainStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetClientReservations: invalid status=%s for client=%d", *req.Status, req.ClientID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		domainStatus = &status
	}

	reservations, err := s.reservationRepo.ListByClient(ctx, req.ClientID, domainStatus)
	if err != nil {
		s.logger.Error("GetClientReservations: repository error for client=%d: %v", req.ClientID, err)
		return nil, fmt.Errorf("%w: GetClientReservations - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetClientReservations: fetched %d reservations for client=%d", len(reservations), req.ClientID)
	return models.FromDomainReservationList(reservations), nil
}

// Transition переводит бронь в новый статус по общей машине состояний
// Отдельные операции (отмена, чек-ин, неявка) и sweep-переходы сюда не входят
func (s *Service) Transition(ctx context.Context, id int64, req *models.TransitionRequest) (*models.ReservationResponse, error) {
	s.logger.Info("Transition: actor=%d moves reservation=%d to status=%s", req.ActorID, id, req.Status)

	to, err := models.ToDomainStatus(req.Status)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidStatus, req.Status)
	}
	if reservedTargets[to] {
		return nil, fmt.Errorf("%w: %s", ErrTransitionReserved, to)
	}

	res, err := s.getReservation(ctx, id, "Transition")
	if err != nil {
		return nil, err
	}
	from := res.Status

	if err := s.checkTransitionAccess(res, to, req); err != nil {
		s.logger.Warn("Transition: access denied for actor=%d on reservation=%d", req.ActorID, id)
		return nil, err
	}

	// Самопереход - no-op: без записи в репозиторий и без побочных эффектов
	if from == to {
		s.logger.Info("Transition: reservation=%d already in status %s", id, to)
		return models.FromDomainReservation(res), nil
	}

	if err := domain.ValidateTransition(from, to); err != nil {
		s.logger.Warn("Transition: %s -> %s rejected for reservation=%d: %v", from, to, id, err)
		if errors.Is(err, domain.ErrAlreadyTerminal) {
			return nil, ErrAlreadyTerminal
		}
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}

	now := s.now()
	if err := s.applyTransition(ctx, res, to, now); err != nil {
		return nil, err
	}

	s.afterTransition(ctx, res, from, to, req, now)

	res.Status = to
	s.logger.Info("Transition: reservation=%d moved %s -> %s", id, from, to)
	return models.FromDomainReservation(res), nil
}

// Cancel отменяет бронь с классификацией по времени до слота
//
//	<= 3 часа до слота  - отмена клиентом блокируется
//	3..12 часов         - very_late, штраф -10 к счету клиента
//	12..24 часа         - late, штраф -5
//	> 24 часов          - free, без штрафа
//
// Заведение может отменить в любой момент (cancelled_pro), это двигает его
// долю отмен в счете доверия
func (s *Service) Cancel(ctx context.Context, id int64, req *models.CancelRequest) error {
	s.logger.Info("Cancel: actor=%d (pro=%t) cancels reservation=%d", req.ActorID, req.IsPro, id)

	if req.Reason != nil && len(*req.Reason) > domain.MaxCancellationReasonLength {
		return fmt.Errorf("%w: cancellation reason too long", ErrInvalidInput)
	}

	res, err := s.getReservation(ctx, id, "Cancel")
	if err != nil {
		return err
	}

	if req.IsPro {
		if res.EstablishmentID != req.ActorID {
			return ErrAccessDenied
		}
	} else if res.ClientID != req.ActorID {
		return ErrAccessDenied
	}

	to := domain.CancellationStatusFor(req.IsPro)
	// Повторная отмена: бронь уже терминальна, запись не переписывается
	if res.Status == to {
		s.logger.Warn("Cancel: reservation=%d already cancelled as %s", id, to)
		return ErrAlreadyTerminal
	}
	if err := domain.ValidateTransition(res.Status, to); err != nil {
		s.logger.Warn("Cancel: %s -> %s rejected for reservation=%d: %v", res.Status, to, id, err)
		if errors.Is(err, domain.ErrAlreadyTerminal) {
			return ErrAlreadyTerminal
		}
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, res.Status, to)
	}

	now := s.now()
	slotStart, err := res.SlotStart()
	if err != nil {
		return fmt.Errorf("%w: Cancel - slot start: %v", ErrInternal, err)
	}

	// Классификация по времени до слота касается клиентских отмен живых броней
	class := domain.CancellationFree
	if !req.IsPro {
		class = domain.ClassifyCancellation(slotStart, now)
		if class == domain.CancellationBlocked {
			if res.IsOccupying() {
				s.logger.Warn("Cancel: blocked for reservation=%d, %s before slot", id, slotStart.Sub(now))
				return ErrCancellationBlocked
			}
			// Заявки квот не занимают слот - отмена свободна
			class = domain.CancellationFree
		}
	}

	err = s.reservationRepo.Cancel(ctx, id, res.Status, to, class, req.Reason, now)
	if err != nil {
		if errors.Is(err, reservationRepo.ErrReservationNotFound) {
			return ErrReservationNotFound
		}
		if errors.Is(err, reservationRepo.ErrStatusConflict) {
			return ErrStatusConflict
		}
		s.logger.Error("Cancel: repository error for reservation=%d: %v", id, err)
		return fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
	}

	// Счетчики доверия двигаются после фиксации отмены: их сбой не отменяет отмену
	if req.IsPro {
		if err := s.trustService.RecomputeProScore(ctx, res.EstablishmentID); err != nil {
			s.logger.Error("Cancel: pro score recompute failed for establishment=%d: %v", res.EstablishmentID, err)
		}
	} else {
		if err := s.trustService.RecordCancellation(ctx, res.ClientID, class); err != nil {
			s.logger.Error("Cancel: trust update failed for client=%d: %v", res.ClientID, err)
		}
	}

	s.publishStatusChange(ctx, res, res.Status, to, now)
	s.logger.Info("Cancel: reservation=%d cancelled as %s (class=%s)", id, to, class)
	return nil
}

// CheckIn отмечает прибытие клиента по чек-ин токену
// Токен проверяется внешним сервисом верификации; при его недоступности
// принимается локальное сравнение
func (s *Service) CheckIn(ctx context.Context, id int64, req *models.CheckInRequest) (*models.ReservationResponse, error) {
	s.logger.Info("CheckIn: client=%d checks in reservation=%d", req.ClientID, id)

	res, err := s.getReservation(ctx, id, "CheckIn")
	if err != nil {
		return nil, err
	}

	if res.ClientID != req.ClientID {
		return nil, ErrAccessDenied
	}
	if res.Status != domain.StatusConfirmed && res.Status != domain.StatusDepositPaid {
		return nil, ErrNotCheckinable
	}
	if res.CheckinToken == nil || req.Token == "" {
		return nil, ErrCheckinTokenInvalid
	}

	if err := s.checkinClient.ValidateWithGracefulDegradation(ctx, id, req.Token); err != nil {
		if errors.Is(err, checkinClient.ErrTokenInvalid) {
			return nil, ErrCheckinTokenInvalid
		}
		// Сервис верификации недоступен - принимаем локальное сравнение
		if req.Token != *res.CheckinToken {
			return nil, ErrCheckinTokenInvalid
		}
		s.logger.Warn("CheckIn: verification degraded, reservation=%d accepted by local token match", id)
	}

	from := res.Status
	if err := s.reservationRepo.UpdateStatusIf(ctx, id, from, domain.StatusCheckedIn); err != nil {
		if errors.Is(err, reservationRepo.ErrStatusConflict) {
			return nil, ErrStatusConflict
		}
		s.logger.Error("CheckIn: repository error for reservation=%d: %v", id, err)
		return nil, fmt.Errorf("%w: CheckIn - repository error: %v", ErrInternal, err)
	}

	now := s.now()
	s.publishStatusChange(ctx, res, from, domain.StatusCheckedIn, now)

	res.Status = domain.StatusCheckedIn
	s.logger.Info("CheckIn: reservation=%d checked in", id)
	return models.FromDomainReservation(res), nil
}

// Вспомогательные методы

func (s *Service) getReservation(ctx context.Context, id int64, op string) (*domain.Reservation, error) {
	res, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, reservationRepo.ErrReservationNotFound) {
			s.logger.Warn("%s: reservation=%d not found", op, id)
			return nil, ErrReservationNotFound
		}
		s.logger.Error("%s: repository error for reservation=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return res, nil
}

// checkTransitionAccess проверяет, что переход делает правильная сторона:
// заведение действует от имени своего establishment_id, клиент - от своего
func (s *Service) checkTransitionAccess(res *domain.Reservation, to domain.ReservationStatus, req *models.TransitionRequest) error {
	switch {
	case proTargets[to]:
		if !req.IsPro || res.EstablishmentID != req.ActorID {
			return ErrAccessDenied
		}
	case clientTargets[to]:
		if req.IsPro || res.ClientID != req.ActorID {
			return ErrAccessDenied
		}
	default:
		return fmt.Errorf("%w: %s", ErrTransitionReserved, to)
	}
	return nil
}

func (s *Service) applyTransition(ctx context.Context, res *domain.Reservation, to domain.ReservationStatus, now time.Time) error {
	var err error
	switch to {
	case domain.StatusDepositPaid:
		err = s.reservationRepo.MarkDepositPaid(ctx, res.ID, res.Status, now)
	case domain.StatusQuoteAcknowledged:
		err = s.reservationRepo.AcknowledgeQuote(ctx, res.ID, now, domain.QuoteDeadline(now))
	default:
		err = s.reservationRepo.UpdateStatusIf(ctx, res.ID, res.Status, to)
	}

	if err != nil {
		if errors.Is(err, reservationRepo.ErrReservationNotFound) {
			return ErrReservationNotFound
		}
		if errors.Is(err, reservationRepo.ErrStatusConflict) {
			s.logger.Warn("Transition: status conflict for reservation=%d", res.ID)
			return ErrStatusConflict
		}
		s.logger.Error("Transition: repository error for reservation=%d: %v", res.ID, err)
		return fmt.Errorf("%w: Transition - repository error: %v", ErrInternal, err)
	}
	return nil
}

// afterTransition выполняет побочные эффекты перехода
// Сбои здесь логируются, но не откатывают уже сделанный переход
func (s *Service) afterTransition(ctx context.Context, res *domain.Reservation, from, to domain.ReservationStatus, req *models.TransitionRequest, now time.Time) {
	// Первый ответ заведения на заявку идет в счет его отзывчивости
	proResponse := (from == domain.StatusRequested || from == domain.StatusPendingProValidation) &&
		(to == domain.StatusConfirmed || to == domain.StatusRefused || to == domain.StatusDepositPending)
	if proResponse {
		if err := s.reservationRepo.MarkProResponded(ctx, res.ID, now); err != nil {
			s.logger.Error("Transition: mark pro responded failed for reservation=%d: %v", res.ID, err)
		}
		if err := s.trustService.RecomputeProScore(ctx, res.EstablishmentID); err != nil {
			s.logger.Error("Transition: pro score recompute failed for establishment=%d: %v", res.EstablishmentID, err)
		}
	}

	// Подтверждение исхода визита заведением
	if to == domain.StatusConsumed || to == domain.StatusConsumedDefault {
		if req.IsPro {
			if err := s.reservationRepo.MarkVenueConfirmed(ctx, res.ID, req.ActorID, now); err != nil {
				s.logger.Error("Transition: mark venue confirmed failed for reservation=%d: %v", res.ID, err)
			}
		}
		if err := s.trustService.RecordHonored(ctx, res.ClientID); err != nil {
			s.logger.Error("Transition: trust update failed for client=%d: %v", res.ClientID, err)
		}
	}

	s.publishStatusChange(ctx, res, from, to, now)
}

func (s *Service) publishStatusChange(ctx context.Context, res *domain.Reservation, from, to domain.ReservationStatus, now time.Time) {
	s.events.ReservationStatusChanged(ctx, notifier.ReservationStatusChangedEvent{
		ReservationID:   res.ID,
		ClientID:        res.ClientID,
		EstablishmentID: res.EstablishmentID,
		FromStatus:      string(from),
		ToStatus:        string(to),
		OccurredAt:      now,
	})
}
