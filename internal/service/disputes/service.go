package disputes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/planeat-app/PLE-ReservationService/internal/domain"
	disputeRepo "github.com/planeat-app/PLE-ReservationService/internal/infra/storage/dispute"
	reservationRepo "github.com/planeat-app/PLE-ReservationService/internal/infra/storage/reservation"
	"github.com/planeat-app/PLE-ReservationService/internal/integrations/notifier"
	"github.com/planeat-app/PLE-ReservationService/internal/service/disputes/models"
)

// Service сервис споров о неявке
type Service struct {
	disputeRepo     DisputeRepository
	reservationRepo ReservationRepository
	trustService    TrustService
	txManager       TransactionManager
	events          EventPublisher
	logger          Logger
	now             func() time.Time
}

// NewService создает новый экземпляр сервиса споров
func NewService(
	disputeRepo DisputeRepository,
	reservationRepo ReservationRepository,
	trustService TrustService,
	txManager TransactionManager,
	events EventPublisher,
	logger Logger,
	now func() time.Time,
) *Service {
	return &Service{
		disputeRepo:     disputeRepo,
		reservationRepo: reservationRepo,
		trustService:    trustService,
		txManager:       txManager,
		events:          events,
		logger:          logger,
		now:             now,
	}
}

// GetByID получает спор по ID
func (s *Service) GetByID(ctx context.Context, id int64) (*models.DisputeResponse, error) {
	dispute, err := s.disputeRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, disputeRepo.ErrDisputeNotFound) {
			return nil, ErrDisputeNotFound
		}
		s.logger.Error("GetByID: repository error for dispute=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}
	return models.FromDomainDispute(dispute), nil
}

// DeclareNoShow открывает спор о неявке по брони
// Допустимо только заведением брони, только после начала слота и только
// для confirmed / deposit_paid броней. Один спор на бронь
func (s *Service) DeclareNoShow(ctx context.Context, reservationID int64, req *models.DeclareNoShowRequest) (*models.DisputeResponse, error) {
	s.logger.Info("DeclareNoShow: establishment=%d declares no-show for reservation=%d", req.EstablishmentID, reservationID)

	now := s.now()
	var dispute *domain.NoShowDispute

	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		res, err := s.reservationRepo.GetByID(ctx, reservationID)
		if err != nil {
			if errors.Is(err, reservationRepo.ErrReservationNotFound) {
				return ErrReservationNotFound
			}
			return fmt.Errorf("%w: DeclareNoShow - get reservation: %v", ErrInternal, err)
		}

		if res.EstablishmentID != req.EstablishmentID {
			return ErrAccessDenied
		}

		if !res.EligibleForNoShowDeclaration() {
			return ErrNotEligible
		}

		slotStart, err := res.SlotStart()
		if err != nil {
			return fmt.Errorf("%w: DeclareNoShow - slot start: %v", ErrInternal, err)
		}
		if now.Before(slotStart) {
			return ErrSlotNotStarted
		}

		if err := s.reservationRepo.UpdateStatusIf(ctx, reservationID, res.Status, domain.StatusNoShowDeclared); err != nil {
			if errors.Is(err, reservationRepo.ErrStatusConflict) {
				return ErrNotEligible
			}
			return fmt.Errorf("%w: DeclareNoShow - transition reservation: %v", ErrInternal, err)
		}

		dispute = &domain.NoShowDispute{
			ReservationID:          reservationID,
			EstablishmentID:        res.EstablishmentID,
			ClientID:               res.ClientID,
			Status:                 domain.DisputePendingClientResponse,
			DeclaredBy:             domain.DeclaredByPro,
			DeclaredAt:             now,
			ClientResponseDeadline: domain.DisputeResponseDeadline(now),
		}
		created, err := s.disputeRepo.Create(ctx, dispute)
		if err != nil {
			if errors.Is(err, disputeRepo.ErrDisputeExists) {
				return ErrDisputeExists
			}
			return fmt.Errorf("%w: DeclareNoShow - create dispute: %v", ErrInternal, err)
		}
		dispute = created

		return nil
	})
	if err != nil {
		s.logger.Warn("DeclareNoShow: failed for reservation=%d: %v", reservationID, err)
		return nil, err
	}

	s.logger.Info("DeclareNoShow: dispute=%d opened for reservation=%d, deadline=%s",
		dispute.ID, reservationID, dispute.ClientResponseDeadline.Format(time.RFC3339))

	s.events.DisputeOpened(ctx, notifier.DisputeOpenedEvent{
		DisputeID:              dispute.ID,
		ReservationID:          reservationID,
		ClientID:               dispute.ClientID,
		EstablishmentID:        dispute.EstablishmentID,
		DeclaredBy:             string(dispute.DeclaredBy),
		ClientResponseDeadline: dispute.ClientResponseDeadline,
		OccurredAt:             now,
	})

	return models.FromDomainDispute(dispute), nil
}

// ClientRespond фиксирует ответ клиента в 48-часовом окне
// confirm закрывает спор подтвержденной неявкой, dispute передает его в арбитраж
func (s *Service) ClientRespond(ctx context.Context, disputeID int64, req *models.RespondRequest) (*models.DisputeResponse, error) {
	s.logger.Info("ClientRespond: client=%d responds %s to dispute=%d", req.ClientID, req.Response, disputeID)

	response, ok := models.ToDomainResponse(req.Response)
	if !ok {
		return nil, fmt.Errorf("%w: unknown response %q", ErrInvalidInput, req.Response)
	}

	now := s.now()
	var dispute *domain.NoShowDispute
	confirmed := false

	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		found, err := s.disputeRepo.GetByID(ctx, disputeID)
		if err != nil {
			if errors.Is(err, disputeRepo.ErrDisputeNotFound) {
				return ErrDisputeNotFound
			}
			return fmt.Errorf("%w: ClientRespond - get dispute: %v", ErrInternal, err)
		}
		dispute = found

		if dispute.ClientID != req.ClientID {
			return ErrAccessDenied
		}
		if dispute.Status != domain.DisputePendingClientResponse {
			return ErrDisputeClosed
		}
		if !dispute.ResponseWindowOpen(now) {
			return ErrWindowExpired
		}

		to := domain.DisputePendingArbitration
		if response == domain.ResponseConfirm {
			to = domain.DisputeNoShowConfirmed
			confirmed = true
		}

		if err := s.disputeRepo.RecordClientResponse(ctx, disputeID, response, now, to); err != nil {
			if errors.Is(err, disputeRepo.ErrStatusConflict) {
				return ErrDisputeClosed
			}
			return fmt.Errorf("%w: ClientRespond - record response: %v", ErrInternal, err)
		}
		dispute.Status = to
		dispute.ClientResponse = &response
		dispute.ClientRespondedAt = &now

		// Подтвержденная неявка сразу закрывает бронь
		if confirmed {
			err := s.reservationRepo.UpdateStatusIf(ctx, dispute.ReservationID,
				domain.StatusNoShowDeclared, domain.StatusNoShowConfirmed)
			if err != nil && !errors.Is(err, reservationRepo.ErrStatusConflict) {
				return fmt.Errorf("%w: ClientRespond - transition reservation: %v", ErrInternal, err)
			}
		}

		return nil
	})
	if err != nil {
		s.logger.Warn("ClientRespond: failed for dispute=%d: %v", disputeID, err)
		return nil, err
	}

	if confirmed {
		// Счетчики доверия двигаются вне транзакции: сбой здесь не должен
		// откатить уже принятый ответ
		if _, err := s.trustService.RecordNoShow(ctx, dispute.ClientID); err != nil {
			s.logger.Error("ClientRespond: trust update failed for client=%d: %v", dispute.ClientID, err)
		}

		s.events.DisputeResolved(ctx, notifier.DisputeResolvedEvent{
			DisputeID:       disputeID,
			ReservationID:   dispute.ReservationID,
			ClientID:        dispute.ClientID,
			EstablishmentID: dispute.EstablishmentID,
			Outcome:         string(domain.DisputeNoShowConfirmed),
			OccurredAt:      now,
		})
	}

	s.logger.Info("ClientRespond: dispute=%d moved to %s", disputeID, dispute.Status)
	return models.FromDomainDispute(dispute), nil
}

// Arbitrate выносит решение оператора по оспоренной неявке
//
//	resolved_favor_client - клиент был: бронь consumed, заведению засчитывается
//	                        ложное объявление
//	resolved_favor_pro    - неявка подтверждена: бронь no_show_confirmed,
//	                        клиенту засчитывается неявка
//	resolved_indeterminate - бронь consumed, счетчики не двигаются
func (s *Service) Arbitrate(ctx context.Context, disputeID int64, req *models.ArbitrateRequest) (*models.DisputeResponse, error) {
	s.logger.Info("Arbitrate: operator=%d rules %s on dispute=%d", req.OperatorID, req.Outcome, disputeID)

	outcome, ok := models.ToDomainOutcome(req.Outcome)
	if !ok {
		return nil, fmt.Errorf("%w: unknown outcome %q", ErrInvalidInput, req.Outcome)
	}
	if req.Notes != nil && len(*req.Notes) > domain.MaxArbitrationNotesLength {
		return nil, fmt.Errorf("%w: arbitration notes too long", ErrInvalidInput)
	}

	now := s.now()
	var dispute *domain.NoShowDispute

	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		found, err := s.disputeRepo.GetByID(ctx, disputeID)
		if err != nil {
			if errors.Is(err, disputeRepo.ErrDisputeNotFound) {
				return ErrDisputeNotFound
			}
			return fmt.Errorf("%w: Arbitrate - get dispute: %v", ErrInternal, err)
		}
		dispute = found

		if dispute.Status != domain.DisputePendingArbitration {
			return ErrNotPendingArbitration
		}

		to := domain.DisputeStatusForOutcome(outcome)
		if err := s.disputeRepo.RecordArbitration(ctx, disputeID, to, req.OperatorID, now, req.Notes); err != nil {
			if errors.Is(err, disputeRepo.ErrStatusConflict) {
				return ErrNotPendingArbitration
			}
			return fmt.Errorf("%w: Arbitrate - record arbitration: %v", ErrInternal, err)
		}
		dispute.Status = to
		dispute.ArbitratedBy = &req.OperatorID
		dispute.ArbitratedAt = &now
		dispute.ArbitrationNotes = req.Notes

		resStatus := domain.ReservationStatusForOutcome(outcome)
		err = s.reservationRepo.UpdateStatusIf(ctx, dispute.ReservationID, domain.StatusNoShowDeclared, resStatus)
		if err != nil && !errors.Is(err, reservationRepo.ErrStatusConflict) {
			return fmt.Errorf("%w: Arbitrate - transition reservation: %v", ErrInternal, err)
		}

		return nil
	})
	if err != nil {
		s.logger.Warn("Arbitrate: failed for dispute=%d: %v", disputeID, err)
		return nil, err
	}

	// Счетчики доверия двигаются вне транзакции
	switch outcome {
	case domain.OutcomeFavorPro:
		if _, err := s.trustService.RecordNoShow(ctx, dispute.ClientID); err != nil {
			s.logger.Error("Arbitrate: trust update failed for client=%d: %v", dispute.ClientID, err)
		}
	case domain.OutcomeFavorClient:
		if err := s.trustService.RecordHonored(ctx, dispute.ClientID); err != nil {
			s.logger.Error("Arbitrate: trust update failed for client=%d: %v", dispute.ClientID, err)
		}
		if err := s.trustService.RecordFalseNoShow(ctx, dispute.EstablishmentID, disputeID); err != nil {
			s.logger.Error("Arbitrate: pro trust update failed for establishment=%d: %v", dispute.EstablishmentID, err)
		}
	case domain.OutcomeIndeterminate:
		// Бронь считается состоявшейся, счетчики обеих сторон не двигаются
	}

	s.logger.Info("Arbitrate: dispute=%d resolved as %s", disputeID, dispute.Status)

	s.events.DisputeResolved(ctx, notifier.DisputeResolvedEvent{
		DisputeID:       disputeID,
		ReservationID:   dispute.ReservationID,
		ClientID:        dispute.ClientID,
		EstablishmentID: dispute.EstablishmentID,
		Outcome:         string(dispute.Status),
		OccurredAt:      now,
	})

	return models.FromDomainDispute(dispute), nil
}
