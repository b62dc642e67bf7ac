package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/driano7/Xoco-POS-sub003/internal/model"
	"github.com/driano7/Xoco-POS-sub003/internal/repository"
	"github.com/driano7/Xoco-POS-sub003/pkg/logger"
)

// Service manages stock levels. Inventory is edited from the back
// office with the network up, so it talks to the remote store directly
// rather than through the offline write path.
type Service struct {
	repo   repository.InventoryRepository
	logger *logger.Logger
}

func NewService(repo repository.InventoryRepository, log *logger.Logger) *Service {
	return &Service{repo: repo, logger: log}
}

func (s *Service) CreateItem(ctx context.Context, req *model.CreateInventoryItemRequest) (*model.InventoryItem, error) {
	branchID, err := uuid.Parse(req.BranchID)
	if err != nil {
		return nil, fmt.Errorf("invalid branch id: %w", err)
	}

	now := time.Now()
	item := &model.InventoryItem{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		BranchID:     branchID,
		Name:         req.Name,
		SKU:          req.SKU,
		Unit:         req.Unit,
		Quantity:     req.Quantity,
		ReorderLevel: req.ReorderLevel,
		CostCents:    req.CostCents,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create inventory item: %w", err)
	}
	return item, nil
}

func (s *Service) GetItem(ctx context.Context, id uuid.UUID) (*model.InventoryItem, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) ListItems(ctx context.Context, branchID uuid.UUID) ([]*model.InventoryItem, error) {
	return s.repo.List(ctx, branchID)
}

// LowStock returns items at or below their reorder level, for the
// dashboard.
func (s *Service) LowStock(ctx context.Context, branchID uuid.UUID) ([]*model.InventoryItem, error) {
	items, err := s.repo.List(ctx, branchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	var low []*model.InventoryItem
	for _, item := range items {
		if item.LowStock() {
			low = append(low, item)
		}
	}
	return low, nil
}

func (s *Service) AdjustStock(ctx context.Context, id uuid.UUID, req *model.AdjustStockRequest) (*model.InventoryItem, error) {
	item, err := s.repo.AdjustQuantity(ctx, id, req.Delta)
	if err != nil {
		return nil, err
	}
	s.logger.Info("stock adjusted", "item_id", id.String(), "delta", req.Delta, "reason", req.Reason)
	return item, nil
}
