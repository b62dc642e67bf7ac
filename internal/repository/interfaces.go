package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/driano7/Xoco-POS-sub003/internal/model"
)

type StaffRepository interface {
	Create(ctx context.Context, staff *model.Staff) error
	Get(ctx context.Context, id uuid.UUID) (*model.Staff, error)
	GetByEmail(ctx context.Context, email string) (*model.Staff, error)
	List(ctx context.Context, branchID uuid.UUID) ([]*model.Staff, error)
	Update(ctx context.Context, staff *model.Staff) error
	RecordLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type OrderRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Order, error)
	List(ctx context.Context, filters *model.OrderFilters) ([]model.Order, error)
	NextTicketNumber(ctx context.Context, branchID uuid.UUID) (int, error)
}

type ReservationRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Reservation, error)
	List(ctx context.Context, filters *model.ReservationFilters) ([]model.Reservation, error)
}

type InventoryRepository interface {
	Create(ctx context.Context, item *model.InventoryItem) error
	Get(ctx context.Context, id uuid.UUID) (*model.InventoryItem, error)
	List(ctx context.Context, branchID uuid.UUID) ([]*model.InventoryItem, error)
	AdjustQuantity(ctx context.Context, id uuid.UUID, delta float64) (*model.InventoryItem, error)
}

type PaymentRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Payment, error)
	ListForDay(ctx context.Context, branchID uuid.UUID, from, to time.Time) ([]*model.Payment, error)
}

type LoyaltyRepository interface {
	Create(ctx context.Context, account *model.LoyaltyAccount) error
	Get(ctx context.Context, id uuid.UUID) (*model.LoyaltyAccount, error)
	GetByPhone(ctx context.Context, branchID uuid.UUID, phone string) (*model.LoyaltyAccount, error)
	AddPoints(ctx context.Context, id uuid.UUID, points int, visitAt time.Time) (*model.LoyaltyAccount, error)
}

type ChecklistRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*model.ComplianceChecklist, error)
	List(ctx context.Context, branchID uuid.UUID, kind model.ChecklistKind, limit int) ([]*model.ComplianceChecklist, error)
}

// LocalMirror reads back rows the writer copied to the local store
// while the remote was unreachable. Till read paths fall back to it so
// a fresh offline write is visible to the till that made it.
type LocalMirror interface {
	List(ctx context.Context, table string) ([]map[string]interface{}, error)
}
