package services

import (
	"context"
	"fmt"
	"time"

	"budgetbook/internal/core"
	"budgetbook/internal/log"
)

type SavingStore interface {
	CreateSaving(ctx context.Context, s *core.Saving) error
	DeleteSaving(ctx context.Context, id int64) error
}

// SavingService validates and persists deposits and withdrawals.
type SavingService struct {
	store  SavingStore
	logger *log.Logger
	now    func() time.Time
}

func NewSavingService(store SavingStore) *SavingService {
	return &SavingService{store: store, logger: serviceLogger(), now: time.Now}
}

func (s *SavingService) Create(ctx context.Context, in core.SavingInput) (sv core.Saving, dateFellBack bool, err error) {
	sv, dateFellBack, err = in.Parse(s.now())
	if err != nil {
		return core.Saving{}, false, err
	}
	if dateFellBack {
		s.logger.WarnContext(ctx, "Invalid saving date, using today", "submitted", in.Date)
	}
	if err := s.store.CreateSaving(ctx, &sv); err != nil {
		return core.Saving{}, false, fmt.Errorf("save saving: %w", err)
	}
	s.logger.InfoContext(ctx, "Saving recorded", "id", sv.ID, "type", string(sv.Type), "amount", sv.Amount.String())
	return sv, dateFellBack, nil
}

func (s *SavingService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteSaving(ctx, id); err != nil {
		return fmt.Errorf("delete saving %d: %w", id, err)
	}
	s.logger.InfoContext(ctx, "Saving deleted", "id", id)
	return nil
}
