package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sokoni/eventpos-api/internal/domain/entity"
	"github.com/sokoni/eventpos-api/internal/domain/enum"
	domainRepo "github.com/sokoni/eventpos-api/internal/domain/repository"
	"github.com/sokoni/eventpos-api/pkg/apperror"
)

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB) domainRepo.PaymentRepository {
	return &paymentRepository{db: db}
}

// Capture writes the payment row, its per-item allocations and the order's
// recomputed payment fields in one transaction. The order update is guarded
// by the order's version so a racing order mutation cannot be overwritten;
// the whole capture rolls back on conflict.
func (r *paymentRepository) Capture(ctx context.Context, payment *entity.Payment, order *entity.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(payment).Error; err != nil {
			return err
		}

		currentVersion := order.Version
		order.Version = currentVersion + 1

		result := tx.Model(&entity.Order{}).
			Where("id = ? AND version = ?", order.ID, currentVersion).
			Select("paid_amount", "tip_amount", "payment_status", "status", "completed_at", "version", "updated_at").
			Updates(order)
		if result.Error != nil {
			order.Version = currentVersion
			return result.Error
		}
		if result.RowsAffected == 0 {
			order.Version = currentVersion
			return apperror.ErrConflict
		}

		for i := range order.Items {
			item := &order.Items[i]
			if err := tx.Model(&entity.OrderItem{}).
				Where("id = ?", item.ID).
				Update("paid_quantity", item.PaidQuantity).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

func (r *paymentRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]entity.Payment, error) {
	var payments []entity.Payment
	err := r.db.WithContext(ctx).
		Scopes(OrganizationScope(ctx)).
		Preload("Allocations").
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&payments).Error
	return payments, err
}

func (r *paymentRepository) SumCapturedByOrder(ctx context.Context, orderID uuid.UUID) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&entity.Payment{}).
		Scopes(OrganizationScope(ctx)).
		Where("order_id = ? AND status = ?", orderID, enum.PaymentStateCaptured).
		Select("COALESCE(SUM(amount + tip_amount), 0)").
		Scan(&total).Error
	return total, err
}
