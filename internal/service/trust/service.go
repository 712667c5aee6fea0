package trust

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/planeat-app/PLE-ReservationService/internal/domain"
	trustRepo "github.com/planeat-app/PLE-ReservationService/internal/infra/storage/trust"
	"github.com/planeat-app/PLE-ReservationService/internal/integrations/notifier"
	"github.com/planeat-app/PLE-ReservationService/internal/service/trust/models"
	"github.com/planeat-app/PLE-ReservationService/pkg/ptr"
)

// Service сервис доверия: счетчики клиентов, агрегаты заведений,
// эскалация санкций
type Service struct {
	trustRepo       TrustRepository
	reservationRepo ReservationRepository
	txManager       TransactionManager
	events          EventPublisher
	policy          domain.ProScorePolicy
	logger          Logger
	now             func() time.Time
}

// NewService создает новый экземпляр сервиса доверия
func NewService(
	trustRepo TrustRepository,
	reservationRepo ReservationRepository,
	txManager TransactionManager,
	events EventPublisher,
	policy domain.ProScorePolicy,
	logger Logger,
	now func() time.Time,
) *Service {
	return &Service{
		trustRepo:       trustRepo,
		reservationRepo: reservationRepo,
		txManager:       txManager,
		events:          events,
		policy:          policy,
		logger:          logger,
		now:             now,
	}
}

// GetClientScore возвращает счет доверия клиента
// Для клиента без истории возвращает базовый счет
func (s *Service) GetClientScore(ctx context.Context, clientID int64) (*models.ClientScoreResponse, error) {
	stats, err := s.trustRepo.GetClientStats(ctx, clientID)
	if err != nil {
		if errors.Is(err, trustRepo.ErrStatsNotFound) {
			fresh := domain.ClientStatsV2{ClientID: clientID}
			fresh.Score = domain.ComputeClientScoreV2(fresh)
			return models.FromDomainClientStats(&fresh), nil
		}
		s.logger.Error("GetClientScore: repository error for client=%d: %v", clientID, err)
		return nil, fmt.Errorf("%w: GetClientScore - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainClientStats(stats), nil
}

// GetEstablishmentTrust возвращает агрегат доверия заведения
func (s *Service) GetEstablishmentTrust(ctx context.Context, establishmentID int64) (*models.EstablishmentTrustResponse, error) {
	score, err := s.trustRepo.GetProScore(ctx, establishmentID)
	if err != nil {
		if errors.Is(err, trustRepo.ErrProScoreNotFound) {
			fresh := s.freshProScore(establishmentID)
			return models.FromDomainProScore(fresh), nil
		}
		s.logger.Error("GetEstablishmentTrust: repository error for establishment=%d: %v", establishmentID, err)
		return nil, fmt.Errorf("%w: GetEstablishmentTrust - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainProScore(score), nil
}

// RecordHonored фиксирует состоявшийся визит клиента
// После 5 подряд состоявшихся визитов серия неявок обнуляется (реабилитация)
func (s *Service) RecordHonored(ctx context.Context, clientID int64) error {
	return s.updateClientStats(ctx, clientID, "RecordHonored", func(stats *domain.ClientStatsV2) {
		stats.RecordHonored()
	})
}

// RecordCancellation фиксирует классифицированную отмену клиента
// Блокированные отмены сюда не попадают - сама отмена отклоняется раньше
func (s *Service) RecordCancellation(ctx context.Context, clientID int64, class domain.CancellationClass) error {
	return s.updateClientStats(ctx, clientID, "RecordCancellation", func(stats *domain.ClientStatsV2) {
		stats.RecordCancellation(class)
	})
}

// RecordReview фиксирует оставленный отзыв
func (s *Service) RecordReview(ctx context.Context, clientID int64) error {
	return s.updateClientStats(ctx, clientID, "RecordReview", func(stats *domain.ClientStatsV2) {
		stats.ReviewsPosted++
	})
}

// RecordFreeToPaidConversion фиксирует конверсию из бесплатной брони в платную
func (s *Service) RecordFreeToPaidConversion(ctx context.Context, clientID int64) error {
	return s.updateClientStats(ctx, clientID, "RecordFreeToPaidConversion", func(stats *domain.ClientStatsV2) {
		stats.FreeToPaidConversions++
	})
}

// RecordNoShow фиксирует подтвержденную неявку и применяет градуированную
// лестницу санкций: 3 подряд -> 7 дней, следующая после первого отстранения ->
// 30 дней, следующая -> постоянное исключение
func (s *Service) RecordNoShow(ctx context.Context, clientID int64) (*domain.ClientSanctionDecision, error) {
	var decision *domain.ClientSanctionDecision
	var suspensionID int64

	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		stats, err := s.loadOrInitClientStats(ctx, clientID)
		if err != nil {
			return err
		}

		stats.RecordNoShow()
		decision = domain.EscalateClientAfterNoShow(stats)

		now := s.now()
		if decision != nil {
			stats.SuspensionCount++
			stats.IsSuspended = true
			if decision.Permanent {
				stats.PermanentlyExcluded = true
				stats.SuspendedUntil = nil
			} else {
				stats.SuspendedUntil = ptr.Ptr(now.Add(decision.Duration))
			}

			// Неизменяемая аудиторская запись решения
			suspension := &domain.ClientSuspension{
				ClientID:       clientID,
				Reason:         decision.Reason,
				Permanent:      decision.Permanent,
				ImposedBy:      domain.SanctionBySystem,
				ImposedAt:      now,
				EffectiveUntil: stats.SuspendedUntil,
			}
			created, err := s.trustRepo.CreateClientSuspension(ctx, suspension)
			if err != nil {
				return fmt.Errorf("%w: RecordNoShow - create suspension: %v", ErrInternal, err)
			}
			suspensionID = created.ID
		}

		stats.Score = domain.ComputeClientScoreV2(*stats)
		if err := s.trustRepo.UpsertClientStats(ctx, stats); err != nil {
			return fmt.Errorf("%w: RecordNoShow - upsert stats: %v", ErrInternal, err)
		}

		return nil
	})
	if err != nil {
		s.logger.Error("RecordNoShow: failed for client=%d: %v", clientID, err)
		return nil, err
	}

	if decision != nil {
		s.logger.Warn("RecordNoShow: client=%d sanctioned: %s", clientID, decision.Reason)
		event := notifier.SanctionImposedEvent{
			SanctionID: suspensionID,
			ClientID:   ptr.Ptr(clientID),
			Reason:     decision.Reason,
			OccurredAt: s.now(),
		}
		if decision.Permanent {
			event.Type = "permanent_exclusion"
		} else {
			event.Type = fmt.Sprintf("suspension_%dd", int(decision.Duration.Hours()/24))
		}
		s.events.SanctionImposed(ctx, event)
	}

	return decision, nil
}

// RecordFalseNoShow фиксирует ложное объявление неявки заведением
// (арбитраж в пользу клиента) и двигает лестницу санкций заведения
func (s *Service) RecordFalseNoShow(ctx context.Context, establishmentID int64, disputeID int64) error {
	var sanction *domain.EstablishmentSanction

	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		score, err := s.loadOrInitProScore(ctx, establishmentID)
		if err != nil {
			return err
		}

		score.FalseNoShowCount++

		if err := s.refreshProAggregates(ctx, score); err != nil {
			return err
		}
		score.Score = domain.ComputeProScore(*score, s.policy)

		// Лестница санкций не шагает назад
		next := domain.NextProSanction(score.FalseNoShowCount, s.policy)
		if domain.ProSanctionEscalates(score.SanctionLevel, next) {
			now := s.now()
			score.SanctionLevel = next
			score.DeactivatedUntil = nil
			if d := domain.ProSanctionDuration(next); d > 0 {
				score.DeactivatedUntil = ptr.Ptr(now.Add(d))
			}

			record := &domain.EstablishmentSanction{
				EstablishmentID: establishmentID,
				Type:            next,
				Reason:          fmt.Sprintf("false no-show declarations: %d", score.FalseNoShowCount),
				DisputeID:       ptr.Ptr(disputeID),
				ImposedBy:       domain.SanctionBySystem,
				ImposedAt:       now,
				EffectiveUntil:  score.DeactivatedUntil,
			}
			created, err := s.trustRepo.CreateEstablishmentSanction(ctx, record)
			if err != nil {
				return fmt.Errorf("%w: RecordFalseNoShow - create sanction: %v", ErrInternal, err)
			}
			sanction = created
		}

		if err := s.trustRepo.UpsertProScore(ctx, score); err != nil {
			return fmt.Errorf("%w: RecordFalseNoShow - upsert score: %v", ErrInternal, err)
		}

		return nil
	})
	if err != nil {
		s.logger.Error("RecordFalseNoShow: failed for establishment=%d: %v", establishmentID, err)
		return err
	}

	if sanction != nil {
		s.logger.Warn("RecordFalseNoShow: establishment=%d sanctioned: %s", establishmentID, sanction.Type)
		s.events.SanctionImposed(ctx, notifier.SanctionImposedEvent{
			SanctionID:      sanction.ID,
			EstablishmentID: ptr.Ptr(establishmentID),
			Type:            string(sanction.Type),
			Reason:          sanction.Reason,
			EffectiveUntil:  sanction.EffectiveUntil,
			OccurredAt:      s.now(),
		})
	}

	return nil
}

// RecomputeProScore пересчитывает агрегаты ответственности заведения
// по истории броней и обновляет счет
func (s *Service) RecomputeProScore(ctx context.Context, establishmentID int64) error {
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		score, err := s.loadOrInitProScore(ctx, establishmentID)
		if err != nil {
			return err
		}

		if err := s.refreshProAggregates(ctx, score); err != nil {
			return err
		}
		score.Score = domain.ComputeProScore(*score, s.policy)

		if err := s.trustRepo.UpsertProScore(ctx, score); err != nil {
			return fmt.Errorf("%w: RecomputeProScore - upsert score: %v", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("RecomputeProScore: failed for establishment=%d: %v", establishmentID, err)
	}
	return err
}

// LiftSanction досрочно снимает санкцию заведения решением оператора
// Аудиторская запись не удаляется - фиксируются автор и причина снятия
func (s *Service) LiftSanction(ctx context.Context, sanctionID int64, reason string) error {
	var sanction *domain.EstablishmentSanction

	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		found, err := s.trustRepo.GetEstablishmentSanction(ctx, sanctionID)
		if err != nil {
			if errors.Is(err, trustRepo.ErrSanctionNotFound) {
				return ErrSanctionNotFound
			}
			return fmt.Errorf("%w: LiftSanction - get sanction: %v", ErrInternal, err)
		}
		sanction = found

		now := s.now()
		if err := s.trustRepo.LiftEstablishmentSanction(ctx, sanctionID, domain.SanctionByOperator, now, reason); err != nil {
			if errors.Is(err, trustRepo.ErrAlreadyLifted) {
				return ErrSanctionAlreadyLifted
			}
			return fmt.Errorf("%w: LiftSanction - lift sanction: %v", ErrInternal, err)
		}

		// Если снятая санкция была действующей - откатываем уровень заведения
		if sanction.IsActive(now) {
			score, err := s.loadOrInitProScore(ctx, sanction.EstablishmentID)
			if err != nil {
				return err
			}
			if score.SanctionLevel == sanction.Type {
				score.SanctionLevel = domain.ProSanctionNone
				score.DeactivatedUntil = nil
				if err := s.trustRepo.UpsertProScore(ctx, score); err != nil {
					return fmt.Errorf("%w: LiftSanction - upsert score: %v", ErrInternal, err)
				}
			}
		}

		return nil
	})
	if err != nil {
		s.logger.Error("LiftSanction: failed for sanction=%d: %v", sanctionID, err)
		return err
	}

	s.logger.Info("LiftSanction: sanction=%d lifted for establishment=%d", sanctionID, sanction.EstablishmentID)
	s.events.SanctionLifted(ctx, notifier.SanctionLiftedEvent{
		SanctionID:      sanctionID,
		EstablishmentID: ptr.Ptr(sanction.EstablishmentID),
		Reason:          reason,
		OccurredAt:      s.now(),
	})

	return nil
}

// LiftClientSuspension досрочно снимает отстранение клиента решением оператора
// Аудиторская запись не удаляется - фиксируются автор и причина снятия
func (s *Service) LiftClientSuspension(ctx context.Context, suspensionID int64, reason string) error {
	var suspension *domain.ClientSuspension

	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		found, err := s.trustRepo.GetClientSuspension(ctx, suspensionID)
		if err != nil {
			if errors.Is(err, trustRepo.ErrSuspensionNotFound) {
				return ErrSuspensionNotFound
			}
			return fmt.Errorf("%w: LiftClientSuspension - get suspension: %v", ErrInternal, err)
		}
		suspension = found

		now := s.now()
		if err := s.trustRepo.LiftClientSuspension(ctx, suspensionID, domain.SanctionByOperator, now, reason); err != nil {
			if errors.Is(err, trustRepo.ErrAlreadyLifted) {
				return ErrSanctionAlreadyLifted
			}
			return fmt.Errorf("%w: LiftClientSuspension - lift suspension: %v", ErrInternal, err)
		}

		// Если снятое отстранение было действующим - возвращаем клиенту доступ
		if suspension.IsActive(now) {
			stats, err := s.loadOrInitClientStats(ctx, suspension.ClientID)
			if err != nil {
				return err
			}
			stats.IsSuspended = false
			stats.SuspendedUntil = nil
			if suspension.Permanent {
				stats.PermanentlyExcluded = false
			}
			stats.Score = domain.ComputeClientScoreV2(*stats)
			if err := s.trustRepo.UpsertClientStats(ctx, stats); err != nil {
				return fmt.Errorf("%w: LiftClientSuspension - upsert stats: %v", ErrInternal, err)
			}
		}

		return nil
	})
	if err != nil {
		s.logger.Error("LiftClientSuspension: failed for suspension=%d: %v", suspensionID, err)
		return err
	}

	s.logger.Info("LiftClientSuspension: suspension=%d lifted for client=%d", suspensionID, suspension.ClientID)
	s.events.SanctionLifted(ctx, notifier.SanctionLiftedEvent{
		SanctionID: suspensionID,
		ClientID:   ptr.Ptr(suspension.ClientID),
		Reason:     reason,
		OccurredAt: s.now(),
	})

	return nil
}

// Вспомогательные методы

func (s *Service) updateClientStats(ctx context.Context, clientID int64, op string, apply func(*domain.ClientStatsV2)) error {
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		stats, err := s.loadOrInitClientStats(ctx, clientID)
		if err != nil {
			return err
		}

		apply(stats)
		stats.Score = domain.ComputeClientScoreV2(*stats)

		if err := s.trustRepo.UpsertClientStats(ctx, stats); err != nil {
			return fmt.Errorf("%w: %s - upsert stats: %v", ErrInternal, op, err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("%s: failed for client=%d: %v", op, clientID, err)
	}
	return err
}

func (s *Service) loadOrInitClientStats(ctx context.Context, clientID int64) (*domain.ClientStatsV2, error) {
	stats, err := s.trustRepo.GetClientStats(ctx, clientID)
	if err != nil {
		if errors.Is(err, trustRepo.ErrStatsNotFound) {
			return &domain.ClientStatsV2{ClientID: clientID}, nil
		}
		return nil, fmt.Errorf("%w: get client stats: %v", ErrInternal, err)
	}
	return stats, nil
}

func (s *Service) loadOrInitProScore(ctx context.Context, establishmentID int64) (*domain.ProTrustScore, error) {
	score, err := s.trustRepo.GetProScore(ctx, establishmentID)
	if err != nil {
		if errors.Is(err, trustRepo.ErrProScoreNotFound) {
			return s.freshProScore(establishmentID), nil
		}
		return nil, fmt.Errorf("%w: get pro score: %v", ErrInternal, err)
	}
	return score, nil
}

func (s *Service) freshProScore(establishmentID int64) *domain.ProTrustScore {
	fresh := &domain.ProTrustScore{
		EstablishmentID: establishmentID,
		ResponseRate:    1.0,
		SanctionLevel:   domain.ProSanctionNone,
	}
	fresh.Score = domain.ComputeProScore(*fresh, s.policy)
	return fresh
}

func (s *Service) refreshProAggregates(ctx context.Context, score *domain.ProTrustScore) error {
	agg, err := s.reservationRepo.GetProResponsivenessStats(ctx, score.EstablishmentID)
	if err != nil {
		return fmt.Errorf("%w: get responsiveness stats: %v", ErrInternal, err)
	}

	// Без истории запросов считаем заведение полностью отзывчивым
	score.ResponseRate = 1.0
	if agg.TotalRequests > 0 {
		score.ResponseRate = float64(agg.AnsweredInTime) / float64(agg.TotalRequests)
	}
	score.AvgResponseMinutes = agg.AvgResponseMinutes
	score.CancellationRate = 0
	if agg.TotalFinished > 0 {
		score.CancellationRate = float64(agg.CancelledByPro) / float64(agg.TotalFinished)
	}

	return nil
}
