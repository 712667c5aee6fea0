package sweep_deadlines

import (
	"context"
	"errors"
	"time"

	"github.com/planeat-app/PLE-ReservationService/internal/domain"
	disputeRepo "github.com/planeat-app/PLE-ReservationService/internal/infra/storage/dispute"
	reservationRepo "github.com/planeat-app/PLE-ReservationService/internal/infra/storage/reservation"
	"github.com/planeat-app/PLE-ReservationService/internal/integrations/notifier"
)

// UseCase use case планового прохода по дедлайнам
//
// Каждый переход - условный UPDATE с проверкой ожидаемого статуса, поэтому
// проход идемпотентен: конкурентный sweep или успевший вручную сделанный
// переход просто дает ноль затронутых строк
type UseCase struct {
	reservationRepo ReservationRepository
	disputeRepo     DisputeRepository
	trustService    TrustService
	events          EventPublisher
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	reservationRepo ReservationRepository,
	disputeRepo DisputeRepository,
	trustService TrustService,
	events EventPublisher,
	logger Logger,
) *UseCase {
	return &UseCase{
		reservationRepo: reservationRepo,
		disputeRepo:     disputeRepo,
		trustService:    trustService,
		events:          events,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute выполняет один sweep-проход по всем дедлайнам
func (uc *UseCase) Execute(ctx context.Context) (*Result, error) {
	now := uc.timeProvider.Now()
	result := &Result{}

	uc.expireUnconfirmed(ctx, now, result)
	uc.requestVenueConfirmations(ctx, now, result)
	uc.autoValidate(ctx, now, result)
	uc.expireQuotes(ctx, now, result)
	uc.confirmSilentDisputes(ctx, now, result)

	if result.Transitions() > 0 || result.Errors > 0 {
		uc.logger.Info("Sweep: %d transitions, %d venue reminders, %d errors",
			result.Transitions(), result.VenueReminders, result.Errors)
	}

	return result, nil
}

// expireUnconfirmed переводит в expired заявки, которые заведение не
// подтвердило в срок (+2ч день в день, +12ч иначе)
func (uc *UseCase) expireUnconfirmed(ctx context.Context, now time.Time, result *Result) {
	expired, err := uc.reservationRepo.ListPastProConfirmation(ctx, now)
	if err != nil {
		uc.logger.Error("Sweep: list past pro confirmation failed: %v", err)
		result.Errors++
		return
	}

	for _, res := range expired {
		if !uc.transition(ctx, res, domain.StatusExpired, result) {
			continue
		}
		result.Expired = append(result.Expired, newTransition(res, domain.StatusExpired))

		// Молчание заведения портит его долю ответов в срок
		if err := uc.trustService.RecomputeProScore(ctx, res.EstablishmentID); err != nil {
			uc.logger.Error("Sweep: pro score recompute failed for establishment=%d: %v", res.EstablishmentID, err)
		}
	}
}

// requestVenueConfirmations отправляет заведениям запросы подтверждения исхода
// визита (слот + 12ч)
func (uc *UseCase) requestVenueConfirmations(ctx context.Context, now time.Time, result *Result) {
	due, err := uc.reservationRepo.ListDueVenueConfirmation(ctx, now)
	if err != nil {
		uc.logger.Error("Sweep: list due venue confirmation failed: %v", err)
		result.Errors++
		return
	}

	for _, res := range due {
		if err := uc.reservationRepo.MarkVenueConfirmationRequested(ctx, res.ID, now); err != nil {
			uc.logger.Error("Sweep: mark venue confirmation requested failed for reservation=%d: %v", res.ID, err)
			result.Errors++
			continue
		}
		result.VenueReminders++

		event := notifier.VenueConfirmationRequestedEvent{
			ReservationID:   res.ID,
			EstablishmentID: res.EstablishmentID,
			OccurredAt:      now,
		}
		if res.VenueAutoValidationAt != nil {
			event.AutoValidationAt = *res.VenueAutoValidationAt
		}
		uc.events.VenueConfirmationRequested(ctx, event)
	}
}

// autoValidate переводит в consumed_default подтвержденные брони, по которым
// заведение так и не ответило за 24 часа после слота
func (uc *UseCase) autoValidate(ctx context.Context, now time.Time, result *Result) {
	due, err := uc.reservationRepo.ListPastAutoValidation(ctx, now)
	if err != nil {
		uc.logger.Error("Sweep: list past auto validation failed: %v", err)
		result.Errors++
		return
	}

	for _, res := range due {
		if !uc.transition(ctx, res, domain.StatusConsumedDefault, result) {
			continue
		}
		result.AutoValidated = append(result.AutoValidated, newTransition(res, domain.StatusConsumedDefault))

		// Авто-валидация засчитывается клиенту как состоявшийся визит
		if err := uc.trustService.RecordHonored(ctx, res.ClientID); err != nil {
			uc.logger.Error("Sweep: trust update failed for client=%d: %v", res.ClientID, err)
		}
	}
}

// expireQuotes закрывает заявки и предложения квот, просрочившие свои окна
// (48ч на подтверждение заявки, 7 дней на принятие предложения)
func (uc *UseCase) expireQuotes(ctx context.Context, now time.Time, result *Result) {
	pastAck, err := uc.reservationRepo.ListQuotesPastAcknowledge(ctx, now)
	if err != nil {
		uc.logger.Error("Sweep: list quotes past acknowledge failed: %v", err)
		result.Errors++
		return
	}

	pastDeadline, err := uc.reservationRepo.ListQuotesPastDeadline(ctx, now)
	if err != nil {
		uc.logger.Error("Sweep: list quotes past deadline failed: %v", err)
		result.Errors++
		return
	}

	for _, res := range append(pastAck, pastDeadline...) {
		if !uc.transition(ctx, res, domain.StatusQuoteExpired, result) {
			continue
		}
		result.QuotesExpired = append(result.QuotesExpired, newTransition(res, domain.StatusQuoteExpired))
	}
}

// confirmSilentDisputes закрывает споры, по которым клиент молчал 48 часов:
// неявка считается подтвержденной
func (uc *UseCase) confirmSilentDisputes(ctx context.Context, now time.Time, result *Result) {
	silent, err := uc.disputeRepo.ListPastResponseDeadline(ctx, now)
	if err != nil {
		uc.logger.Error("Sweep: list disputes past deadline failed: %v", err)
		result.Errors++
		return
	}

	for _, d := range silent {
		err := uc.disputeRepo.UpdateStatusIf(ctx, d.ID, domain.DisputePendingClientResponse, domain.DisputeNoShowConfirmed)
		if err != nil {
			// Кто-то успел закрыть спор - пропускаем
			if uc.isConflict(err) {
				continue
			}
			uc.logger.Error("Sweep: dispute transition failed for dispute=%d: %v", d.ID, err)
			result.Errors++
			continue
		}

		err = uc.reservationRepo.UpdateStatusIf(ctx, d.ReservationID, domain.StatusNoShowDeclared, domain.StatusNoShowConfirmed)
		if err != nil && !uc.isConflict(err) {
			uc.logger.Error("Sweep: reservation transition failed for reservation=%d: %v", d.ReservationID, err)
			result.Errors++
		}

		result.NoShowConfirmed = append(result.NoShowConfirmed, Transition{
			ReservationID: d.ReservationID,
			DisputeID:     d.ID,
			From:          string(domain.DisputePendingClientResponse),
			To:            string(domain.DisputeNoShowConfirmed),
		})

		uc.logger.Info("Sweep: dispute=%d auto-confirmed after silent 48h window", d.ID)

		if _, err := uc.trustService.RecordNoShow(ctx, d.ClientID); err != nil {
			uc.logger.Error("Sweep: trust update failed for client=%d: %v", d.ClientID, err)
		}

		uc.events.DisputeResolved(ctx, notifier.DisputeResolvedEvent{
			DisputeID:       d.ID,
			ReservationID:   d.ReservationID,
			ClientID:        d.ClientID,
			EstablishmentID: d.EstablishmentID,
			Outcome:         string(domain.DisputeNoShowConfirmed),
			OccurredAt:      now,
		})
	}
}

// transition делает условный переход брони; false - переход не состоялся
func (uc *UseCase) transition(ctx context.Context, res *domain.Reservation, to domain.ReservationStatus, result *Result) bool {
	err := uc.reservationRepo.UpdateStatusIf(ctx, res.ID, res.Status, to)
	if err != nil {
		// Статус уже сменился конкурентно - это не ошибка sweep-прохода
		if uc.isConflict(err) {
			return false
		}
		uc.logger.Error("Sweep: transition %s -> %s failed for reservation=%d: %v", res.Status, to, res.ID, err)
		result.Errors++
		return false
	}

	uc.events.ReservationStatusChanged(ctx, notifier.ReservationStatusChangedEvent{
		ReservationID:   res.ID,
		ClientID:        res.ClientID,
		EstablishmentID: res.EstablishmentID,
		FromStatus:      string(res.Status),
		ToStatus:        string(to),
		OccurredAt:      uc.timeProvider.Now(),
	})

	return true
}

func (uc *UseCase) isConflict(err error) bool {
	return errors.Is(err, reservationRepo.ErrStatusConflict) ||
		errors.Is(err, reservationRepo.ErrReservationNotFound) ||
		errors.Is(err, disputeRepo.ErrStatusConflict) ||
		errors.Is(err, disputeRepo.ErrDisputeNotFound)
}
