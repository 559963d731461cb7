package repository

import (
	"context"
	"errors"
	"time"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/database"
	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/model"
)

// OrderRepository handles read/write operations for bridge orders.
type OrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new repository instance using the main database.
func NewOrderRepository() *OrderRepository {
	logger.WithField("component", "OrderRepository").
		Info("Creating new OrderRepository with MainDB")

	return &OrderRepository{
		db: database.MainDB,
	}
}

// WithDB allows overriding the underlying *gorm.DB instance.
// Useful for tests or when using a specific session/transaction.
func (r *OrderRepository) WithDB(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create inserts a new order into the database.
// The given order will be updated with the generated ID and timestamps.
func (r *OrderRepository) Create(ctx context.Context, order *model.BridgeOrder) error {
	logger.WithFields(map[string]interface{}{
		"repo":            "OrderRepository",
		"op":              "Create",
		"client_order_id": order.ClientOrderID,
		"symbol":          order.Symbol,
		"side":            order.Side,
		"qty":             order.Quantity,
	}).Debug("Creating new order")

	err := r.db.WithContext(ctx).Create(order).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "OrderRepository",
			"op":   "Create",
		}).WithError(err).Error("Failed to create order")
		return err
	}

	logger.WithFields(map[string]interface{}{
		"repo":     "OrderRepository",
		"op":       "Create",
		"order_id": order.ID,
	}).Info("Order created successfully")

	return nil
}

// FindByClientOrderID fetches an order by its idempotency key.
// Returns (nil, nil) if the order is not found.
func (r *OrderRepository) FindByClientOrderID(ctx context.Context, clientOrderID string) (*model.BridgeOrder, error) {
	var order model.BridgeOrder
	err := r.db.WithContext(ctx).
		Where("client_order_id = ?", clientOrderID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		logger.WithFields(map[string]interface{}{
			"repo":            "OrderRepository",
			"op":              "FindByClientOrderID",
			"client_order_id": clientOrderID,
		}).WithError(err).Error("Failed to fetch order by client order id")
		return nil, err
	}

	return &order, nil
}

// MarkFilled updates an order with its fill outcome.
func (r *OrderRepository) MarkFilled(
	ctx context.Context,
	orderID uint,
	fillPrice float64,
	filledQty int64,
) error {

	now := time.Now()
	err := r.db.WithContext(ctx).
		Model(&model.BridgeOrder{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"status":       model.OrderStatusFilled,
			"fill_price":   fillPrice,
			"filled_qty":   filledQty,
			"submitted_at": &now,
		}).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":     "OrderRepository",
			"op":       "MarkFilled",
			"order_id": orderID,
		}).WithError(err).Error("Failed to mark order filled")
		return err
	}

	return nil
}

// UpdateStatus sets a terminal status with a reason logged alongside.
func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID uint, status, reason string) error {
	logger.WithFields(map[string]interface{}{
		"repo":     "OrderRepository",
		"op":       "UpdateStatus",
		"order_id": orderID,
		"status":   status,
		"reason":   reason,
	}).Info("Updating order status")

	err := r.db.WithContext(ctx).
		Model(&model.BridgeOrder{}).
		Where("id = ?", orderID).
		Update("status", status).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":     "OrderRepository",
			"op":       "UpdateStatus",
			"order_id": orderID,
		}).WithError(err).Error("Failed to update order status")
		return err
	}

	return nil
}
