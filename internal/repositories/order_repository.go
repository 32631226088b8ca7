package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"autolot/models"
	"autolot/pkg/database"
	"autolot/pkg/logger"
)

// OrderRepositoryInterface persists orders and applies the order/availability
// pair as a single atomic unit. Orders are never deleted.
type OrderRepositoryInterface interface {
	Create(order *models.Order) error
	GetByID(id string) (*models.Order, error)
	List(status models.OrderStatus, limit, offset int) ([]*models.Order, int, error)
	Recent(limit int) ([]*models.Order, error)
	UpdateStatus(id string, from, to models.OrderStatus) (*models.Order, error)
	CountByStatus(status models.OrderStatus) (int, error)
}

type OrderRepository struct {
	logger *logger.Logger
	db     *database.DB
}

func NewOrderRepository(logger *logger.Logger, db *database.DB) *OrderRepository {
	return &OrderRepository{
		logger: logger.WithComponent("order_repository"),
		db:     db,
	}
}

const orderColumns = `id, car_id, user_id, customer_name, customer_email, customer_phone,
	customer_address, payment_method, total_amount, status, notes, created_at, updated_at`

func scanOrder(row rowScanner) (*models.Order, error) {
	order := &models.Order{}
	var userID sql.NullString

	err := row.Scan(
		&order.ID,
		&order.CarID,
		&userID,
		&order.CustomerInfo.Name,
		&order.CustomerInfo.Email,
		&order.CustomerInfo.Phone,
		&order.CustomerInfo.Address,
		&order.PaymentMethod,
		&order.TotalAmount,
		&order.Status,
		&order.Notes,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if userID.Valid {
		order.UserID = userID.String
	}
	return order, nil
}

// Create persists a new pending order and flips the referenced car to
// unavailable in one transaction. The availability flip is a conditional
// single-row update, so two concurrent creates against the same car leave
// exactly one winner; the loser gets ErrCarUnavailable. TotalAmount is
// snapshotted from the car's price inside the same statement.
func (r *OrderRepository) Create(order *models.Order) error {
	r.logger.Debug("Creating order", "order_id", order.ID, "car_id", order.CarID)

	err := r.db.ExecuteInTransaction(func(tx *sql.Tx) error {
		reserve := `
			UPDATE cars
			SET is_available = FALSE, updated_at = $2
			WHERE id = $1 AND is_available = TRUE
			RETURNING price
		`

		err := tx.QueryRow(reserve, order.CarID, order.UpdatedAt).Scan(&order.TotalAmount)
		if err == sql.ErrNoRows {
			var exists bool
			if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM cars WHERE id = $1)`, order.CarID).Scan(&exists); err != nil {
				return fmt.Errorf("failed to check car existence: %v", err)
			}
			if !exists {
				return models.ErrCarNotFound
			}
			return models.ErrCarUnavailable
		}
		if err != nil {
			return fmt.Errorf("failed to reserve car: %v", err)
		}

		var userID interface{}
		if order.UserID != "" {
			userID = order.UserID
		}

		insert := `
			INSERT INTO orders (id, car_id, user_id, customer_name, customer_email,
				customer_phone, customer_address, payment_method, total_amount,
				status, notes, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		`

		_, err = tx.Exec(insert,
			order.ID, order.CarID, userID,
			order.CustomerInfo.Name, order.CustomerInfo.Email,
			order.CustomerInfo.Phone, order.CustomerInfo.Address,
			string(order.PaymentMethod), order.TotalAmount,
			string(order.Status), order.Notes,
			order.CreatedAt, order.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert order: %v", err)
		}

		return nil
	})
	if err != nil {
		if err == models.ErrCarNotFound || err == models.ErrCarUnavailable {
			r.logger.Warn("Order creation rejected", "order_id", order.ID, "car_id", order.CarID, "reason", err)
			return err
		}
		r.logger.Error("Failed to create order", "error", err, "order_id", order.ID)
		return err
	}

	r.logger.Info("Order created", "order_id", order.ID, "car_id", order.CarID,
		"total_amount", order.TotalAmount)
	return nil
}

// GetByID retrieves a single order by ID
func (r *OrderRepository) GetByID(id string) (*models.Order, error) {
	r.logger.Debug("Retrieving order from database", "order_id", id)

	query := fmt.Sprintf(`SELECT %s FROM orders WHERE id = $1`, orderColumns)

	order, err := scanOrder(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			r.logger.Warn("Order not found", "order_id", id)
			return nil, models.ErrOrderNotFound
		}
		r.logger.Error("Failed to retrieve order", "error", err, "order_id", id)
		return nil, fmt.Errorf("failed to retrieve order: %v", err)
	}

	return order, nil
}

// List retrieves orders newest first, optionally filtered by status, with a
// total count for pagination
func (r *OrderRepository) List(status models.OrderStatus, limit, offset int) ([]*models.Order, int, error) {
	r.logger.Debug("Listing orders", "status", status, "limit", limit, "offset", offset)

	where := ""
	countArgs := []interface{}{}
	if status != "" {
		where = "WHERE status = $1"
		countArgs = append(countArgs, string(status))
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT count(*) FROM orders %s`, where)
	if err := r.db.QueryRow(countQuery, countArgs...).Scan(&total); err != nil {
		r.logger.Error("Failed to count orders", "error", err)
		return nil, 0, fmt.Errorf("failed to count orders: %v", err)
	}

	args := append(countArgs, limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM orders %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		orderColumns, where, len(countArgs)+1, len(countArgs)+2)

	orders, err := r.queryOrders(query, args...)
	if err != nil {
		return nil, 0, err
	}

	r.logger.Info("Listed orders", "count", len(orders), "total", total)
	return orders, total, nil
}

// Recent retrieves the most recently created orders
func (r *OrderRepository) Recent(limit int) ([]*models.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders ORDER BY created_at DESC LIMIT $1`, orderColumns)
	return r.queryOrders(query, limit)
}

// UpdateStatus moves an order from one status to another. The update is
// conditional on the current status so a concurrent transition loses
// cleanly. A transition into cancelled releases the referenced car in the
// same transaction; if the car row is gone the order still cancels and the
// skipped release is logged.
func (r *OrderRepository) UpdateStatus(id string, from, to models.OrderStatus) (*models.Order, error) {
	r.logger.Debug("Updating order status", "order_id", id, "from", from, "to", to)

	now := time.Now().UTC()

	err := r.db.ExecuteInTransaction(func(tx *sql.Tx) error {
		update := `
			UPDATE orders
			SET status = $3, updated_at = $4
			WHERE id = $1 AND status = $2
		`

		result, err := tx.Exec(update, id, string(from), string(to), now)
		if err != nil {
			return fmt.Errorf("failed to update order status: %v", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %v", err)
		}

		if rowsAffected == 0 {
			var exists bool
			if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists); err != nil {
				return fmt.Errorf("failed to check order existence: %v", err)
			}
			if !exists {
				return models.ErrOrderNotFound
			}
			// Status moved under us; the transition from the caller's
			// snapshot is no longer legal.
			return models.ErrInvalidTransition
		}

		if to == models.OrderStatusCancelled {
			release := `
				UPDATE cars
				SET is_available = TRUE, updated_at = $2
				WHERE id = (SELECT car_id FROM orders WHERE id = $1)
			`

			result, err := tx.Exec(release, id, now)
			if err != nil {
				return fmt.Errorf("failed to release car: %v", err)
			}
			released, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to get rows affected: %v", err)
			}
			if released == 0 {
				r.logger.Warn("Car no longer exists, skipping availability release", "order_id", id)
			}
		}

		return nil
	})
	if err != nil {
		if err == models.ErrOrderNotFound || err == models.ErrInvalidTransition {
			r.logger.Warn("Order status update rejected", "order_id", id, "from", from, "to", to, "reason", err)
			return nil, err
		}
		r.logger.Error("Failed to update order status", "error", err, "order_id", id)
		return nil, err
	}

	order, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}

	r.logger.Info("Order status updated", "order_id", id, "from", from, "to", to)
	return order, nil
}

// CountByStatus returns the number of orders in the given status, or all
// orders when status is empty
func (r *OrderRepository) CountByStatus(status models.OrderStatus) (int, error) {
	var count int
	var err error
	if status == "" {
		err = r.db.QueryRow(`SELECT count(*) FROM orders`).Scan(&count)
	} else {
		err = r.db.QueryRow(`SELECT count(*) FROM orders WHERE status = $1`, string(status)).Scan(&count)
	}
	if err != nil {
		r.logger.Error("Failed to count orders", "error", err, "status", status)
		return 0, fmt.Errorf("failed to count orders: %v", err)
	}
	return count, nil
}

func (r *OrderRepository) queryOrders(query string, args ...interface{}) ([]*models.Order, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		r.logger.Error("Failed to query orders", "error", err)
		return nil, fmt.Errorf("failed to query orders: %v", err)
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			r.logger.Error("Failed to scan order row", "error", err)
			return nil, fmt.Errorf("failed to scan order row: %v", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating order rows", "error", err)
		return nil, fmt.Errorf("error iterating order rows: %v", err)
	}

	return orders, nil
}
