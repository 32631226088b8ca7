package service

import (
	"sync"

	"autolot/models"
	"autolot/pkg/logger"

	"github.com/shopspring/decimal"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:  logger.LevelError,
		Format: "text",
		Output: "stderr",
	})
}

// fakeStore backs the fake repositories. A single mutex guards both
// tables so the reserve-and-insert step behaves like one transaction,
// matching the database-backed repositories.
type fakeStore struct {
	mu     sync.Mutex
	cars   map[string]*models.Car
	orders map[string]*models.Order
	users  map[string]*models.User
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		cars:   make(map[string]*models.Car),
		orders: make(map[string]*models.Order),
		users:  make(map[string]*models.User),
	}
}

func copyCar(c *models.Car) *models.Car {
	dup := *c
	return &dup
}

func copyOrder(o *models.Order) *models.Order {
	dup := *o
	return &dup
}

type fakeCarRepo struct {
	store *fakeStore
}

func (r *fakeCarRepo) GetByID(id string) (*models.Car, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	car, ok := r.store.cars[id]
	if !ok {
		return nil, models.ErrCarNotFound
	}
	return copyCar(car), nil
}

func (r *fakeCarRepo) GetAll(limit, offset int) ([]*models.Car, int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	all := make([]*models.Car, 0, len(r.store.cars))
	for _, car := range r.store.cars {
		all = append(all, copyCar(car))
	}
	total := len(all)
	if offset >= len(all) {
		return nil, total, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, total, nil
}

func (r *fakeCarRepo) Recent(limit int) ([]*models.Car, error) {
	cars, _, err := r.GetAll(limit, 0)
	return cars, err
}

func (r *fakeCarRepo) Search(filters models.CarFilters, limit, offset int) ([]*models.Car, int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	matched := make([]*models.Car, 0)
	for _, car := range r.store.cars {
		if !car.IsAvailable {
			continue
		}
		if filters.Make != "" && car.Make != filters.Make {
			continue
		}
		if filters.Year != 0 && car.Year != filters.Year {
			continue
		}
		matched = append(matched, copyCar(car))
	}
	total := len(matched)
	if offset >= len(matched) {
		return nil, total, nil
	}
	matched = matched[offset:]
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, total, nil
}

func (r *fakeCarRepo) Similar(car *models.Car, limit int) ([]*models.Car, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	similar := make([]*models.Car, 0)
	for _, other := range r.store.cars {
		if other.ID == car.ID || !other.IsAvailable {
			continue
		}
		if other.Make == car.Make {
			similar = append(similar, copyCar(other))
		}
		if len(similar) == limit {
			break
		}
	}
	return similar, nil
}

func (r *fakeCarRepo) FilterOptions() (*models.FilterOptions, error) {
	return &models.FilterOptions{}, nil
}

func (r *fakeCarRepo) Create(car *models.Car) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.cars[car.ID] = copyCar(car)
	return nil
}

func (r *fakeCarRepo) Update(car *models.Car) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.cars[car.ID]; !ok {
		return models.ErrCarNotFound
	}
	r.store.cars[car.ID] = copyCar(car)
	return nil
}

func (r *fakeCarRepo) Delete(id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.cars[id]; !ok {
		return models.ErrCarNotFound
	}
	for _, order := range r.store.orders {
		if order.CarID == id && order.Status.Valid() &&
			order.Status != models.OrderStatusCompleted && order.Status != models.OrderStatusCancelled {
			return models.ErrCarReserved
		}
	}
	delete(r.store.cars, id)
	return nil
}

func (r *fakeCarRepo) SetAvailability(id string, available bool) (*models.Car, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	car, ok := r.store.cars[id]
	if !ok {
		return nil, models.ErrCarNotFound
	}
	car.IsAvailable = available
	return copyCar(car), nil
}

func (r *fakeCarRepo) Counts() (int, int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	total, available := 0, 0
	for _, car := range r.store.cars {
		total++
		if car.IsAvailable {
			available++
		}
	}
	return total, available, nil
}

type fakeOrderRepo struct {
	store *fakeStore
}

// Create mirrors the transactional reserve-and-insert: the availability
// check, the flip and the price snapshot happen under one lock.
func (r *fakeOrderRepo) Create(order *models.Order) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	car, ok := r.store.cars[order.CarID]
	if !ok {
		return models.ErrCarNotFound
	}
	if !car.IsAvailable {
		return models.ErrCarUnavailable
	}

	car.IsAvailable = false
	order.TotalAmount = car.Price
	r.store.orders[order.ID] = copyOrder(order)
	return nil
}

func (r *fakeOrderRepo) GetByID(id string) (*models.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	order, ok := r.store.orders[id]
	if !ok {
		return nil, models.ErrOrderNotFound
	}
	return copyOrder(order), nil
}

func (r *fakeOrderRepo) List(status models.OrderStatus, limit, offset int) ([]*models.Order, int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	matched := make([]*models.Order, 0)
	for _, order := range r.store.orders {
		if status != "" && order.Status != status {
			continue
		}
		matched = append(matched, copyOrder(order))
	}
	total := len(matched)
	if offset >= len(matched) {
		return nil, total, nil
	}
	matched = matched[offset:]
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, total, nil
}

func (r *fakeOrderRepo) Recent(limit int) ([]*models.Order, error) {
	orders, _, err := r.List("", limit, 0)
	return orders, err
}

// UpdateStatus applies the compare-and-set transition and, on
// cancellation, releases the car when it still exists.
func (r *fakeOrderRepo) UpdateStatus(id string, from, to models.OrderStatus) (*models.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	order, ok := r.store.orders[id]
	if !ok {
		return nil, models.ErrOrderNotFound
	}
	if order.Status != from {
		return nil, models.ErrInvalidTransition
	}

	order.Status = to
	if to == models.OrderStatusCancelled {
		if car, ok := r.store.cars[order.CarID]; ok {
			car.IsAvailable = true
		}
	}
	return copyOrder(order), nil
}

func (r *fakeOrderRepo) CountByStatus(status models.OrderStatus) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	count := 0
	for _, order := range r.store.orders {
		if status == "" || order.Status == status {
			count++
		}
	}
	return count, nil
}

type fakeUserRepo struct {
	store *fakeStore
}

func (r *fakeUserRepo) Create(user *models.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.users {
		if existing.Email == user.Email {
			return models.ErrDuplicateUser
		}
	}
	dup := *user
	r.store.users[user.ID] = &dup
	return nil
}

func (r *fakeUserRepo) GetByID(id string) (*models.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	user, ok := r.store.users[id]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	dup := *user
	return &dup, nil
}

func (r *fakeUserRepo) FindByLogin(login string) (*models.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, user := range r.store.users {
		if user.Email == login || (user.Phone != "" && user.Phone == login) {
			dup := *user
			return &dup, nil
		}
	}
	return nil, models.ErrUserNotFound
}

func (r *fakeUserRepo) List(limit, offset int) ([]*models.User, int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	all := make([]*models.User, 0, len(r.store.users))
	for _, user := range r.store.users {
		dup := *user
		all = append(all, &dup)
	}
	total := len(all)
	if offset >= len(all) {
		return nil, total, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, total, nil
}

func (r *fakeUserRepo) Delete(id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	user, ok := r.store.users[id]
	if !ok {
		return models.ErrUserNotFound
	}
	if user.IsAdmin {
		return models.ErrAdminProtected
	}
	delete(r.store.users, id)
	return nil
}

func (r *fakeUserRepo) Count() (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return len(r.store.users), nil
}

// recordingNotifier captures the fan-out calls a lifecycle operation makes
type recordingNotifier struct {
	mu        sync.Mutex
	created   []*models.Order
	cancelled []*models.Order
	carSeen   map[string]*models.Car
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{carSeen: make(map[string]*models.Car)}
}

func (n *recordingNotifier) OrderCreated(order *models.Order, car *models.Car) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.created = append(n.created, order)
	n.carSeen[order.ID] = car
}

func (n *recordingNotifier) OrderCancelled(order *models.Order, car *models.Car) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cancelled = append(n.cancelled, order)
	n.carSeen[order.ID] = car
}

func testCar(id string, price int64) *models.Car {
	return &models.Car{
		ID:           id,
		Make:         "Toyota",
		Model:        "Camry",
		Year:         2018,
		Price:        decimal.NewFromInt(price),
		Mileage:      42000,
		FuelType:     models.FuelGasoline,
		Transmission: models.TransmissionAutomatic,
		Description:  "Clean title, one owner",
		Images:       []string{"/uploads/camry.jpg"},
		IsAvailable:  true,
	}
}

func testCustomer() models.CustomerInfo {
	return models.CustomerInfo{
		Name:    "Jordan Blake",
		Email:   "jordan@example.com",
		Phone:   "+1 (555) 010-2030",
		Address: "12 Elm Street, Springfield",
	}
}
