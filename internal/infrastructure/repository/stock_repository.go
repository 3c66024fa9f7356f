package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sokoni/eventpos-api/internal/domain/entity"
	domainRepo "github.com/sokoni/eventpos-api/internal/domain/repository"
	"github.com/sokoni/eventpos-api/pkg/pagination"
)

// errInsufficientStock aborts the reservation transaction without surfacing
// a database error to the caller.
var errInsufficientStock = errors.New("insufficient stock")

type stockRepository struct {
	db *gorm.DB
}

// NewStockRepository creates a new stock ledger repository
func NewStockRepository(db *gorm.DB) domainRepo.StockRepository {
	return &stockRepository{db: db}
}

// Reserve decrements the cached quantity with a single conditional update
// ("quantity >= n") and appends the movement row in the same transaction.
// A separate read-then-write would lose updates under concurrent
// reservations; the conditional update cannot.
func (r *stockRepository) Reserve(ctx context.Context, movement *entity.StockMovement) (bool, error) {
	qty := -movement.Quantity
	if qty <= 0 {
		return false, errors.New("reserve requires a negative movement quantity")
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&entity.Product{}).
			Where("id = ? AND quantity >= ?", movement.ProductID, qty).
			Update("quantity", gorm.Expr("quantity - ?", qty))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errInsufficientStock
		}

		var after int
		if err := tx.Model(&entity.Product{}).
			Select("quantity").
			Where("id = ?", movement.ProductID).
			Scan(&after).Error; err != nil {
			return err
		}

		movement.QuantityBefore = after + qty
		movement.QuantityAfter = after
		return tx.Create(movement).Error
	})

	if errors.Is(err, errInsufficientStock) {
		return false, nil
	}
	return err == nil, err
}

// Release increments the cached quantity and appends the movement row. When
// the cached quantity was negative beforehand it is clamped to zero first;
// the caller logs this as a prior inconsistency, the release itself always
// succeeds.
func (r *stockRepository) Release(ctx context.Context, movement *entity.StockMovement) (bool, error) {
	if movement.Quantity <= 0 {
		return false, errors.New("release requires a positive movement quantity")
	}

	var clamped bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product entity.Product
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "quantity").
			First(&product, "id = ?", movement.ProductID).Error; err != nil {
			return err
		}

		before := product.Quantity
		base := before
		if base < 0 {
			base = 0
			clamped = true
		}
		after := base + movement.Quantity

		if err := tx.Model(&entity.Product{}).
			Where("id = ?", movement.ProductID).
			Update("quantity", after).Error; err != nil {
			return err
		}

		movement.QuantityBefore = before
		movement.QuantityAfter = after
		return tx.Create(movement).Error
	})

	return clamped, err
}

// Adjust applies a signed delta. Negative deltas reuse the conditional
// decrement so an adjustment can never push stock below zero.
func (r *stockRepository) Adjust(ctx context.Context, movement *entity.StockMovement) (bool, error) {
	if movement.Quantity < 0 {
		return r.Reserve(ctx, movement)
	}
	if movement.Quantity == 0 {
		return false, errors.New("adjust requires a non-zero movement quantity")
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&entity.Product{}).
			Where("id = ?", movement.ProductID).
			Update("quantity", gorm.Expr("quantity + ?", movement.Quantity))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		var after int
		if err := tx.Model(&entity.Product{}).
			Select("quantity").
			Where("id = ?", movement.ProductID).
			Scan(&after).Error; err != nil {
			return err
		}

		movement.QuantityBefore = after - movement.Quantity
		movement.QuantityAfter = after
		return tx.Create(movement).Error
	})

	return err == nil, err
}

func (r *stockRepository) ListMovements(ctx context.Context, productID uuid.UUID, params *pagination.PaginationParams) ([]entity.StockMovement, int64, error) {
	var movements []entity.StockMovement
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.StockMovement{}).
		Scopes(OrganizationScope(ctx)).
		Where("product_id = ?", productID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Order("created_at DESC").
		Find(&movements).Error

	return movements, total, err
}
