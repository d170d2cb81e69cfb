package memory

import (
	"context"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"masapos/backend/internal/domain"
	"masapos/backend/internal/store"
	"masapos/backend/internal/xid"
	"masapos/backend/pkg/logger"
)

type Store struct {
	mu              sync.RWMutex
	sales           []domain.SaleRecord
	salesByID       map[string]int
	usersByUsername map[string]domain.UserAccount
	failDelete      map[string]error
}

// seedUsers builds the initial in-memory user accounts for dev/demo mode.
// Credentials are read from SEED_ADMIN_PASSWORD and SEED_CASHIER_PASSWORD.
// If unset, dev defaults are used with a warning. The postgres store is used
// whenever DATABASE_URL is set, so these never reach production.
func seedUsers() map[string]domain.UserAccount {
	adminPwd := envOr("SEED_ADMIN_PASSWORD", "admin123")
	cashierPwd := envOr("SEED_CASHIER_PASSWORD", "cashier123")
	if os.Getenv("SEED_ADMIN_PASSWORD") == "" || os.Getenv("SEED_CASHIER_PASSWORD") == "" {
		logger.Log.Warn().Str("component", "memory-store").
			Msg("using default dev credentials, set SEED_ADMIN_PASSWORD and SEED_CASHIER_PASSWORD to override")
	}

	now := time.Now().UTC()
	users := map[string]domain.UserAccount{}
	for _, u := range []struct {
		username string
		password string
		role     string
	}{
		{"admin", adminPwd, "admin"},
		{"cashier", cashierPwd, "cashier"},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			logger.Log.Fatal().Err(err).Str("username", u.username).Msg("failed to hash seed password")
		}
		users[u.username] = domain.UserAccount{
			Username:  u.username,
			Password:  string(hash),
			Role:      u.role,
			Active:    true,
			CreatedAt: now,
		}
	}
	return users
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// New returns a store holding records in the given order and no user accounts.
func New(records []domain.SaleRecord) *Store {
	s := &Store{
		sales:           make([]domain.SaleRecord, 0, len(records)),
		salesByID:       make(map[string]int, len(records)),
		usersByUsername: make(map[string]domain.UserAccount),
		failDelete:      make(map[string]error),
	}
	for _, record := range records {
		_, _ = s.CreateSale(context.Background(), record)
	}
	return s
}

// NewSeeded returns a demo store: two tables with partial payments, a legacy row
// and an expense, plus the seed user accounts.
func NewSeeded() *Store {
	s := New(seedSales())
	s.usersByUsername = seedUsers()
	return s
}

func seedSales() []domain.SaleRecord {
	price := decimal.RequireFromString
	return []domain.SaleRecord{
		{
			ID: "sale-seed-1", TableName: "Masa 3", TableType: domain.TableTypeInside,
			SaleDate: "12.03.2024", SaleTime: "12:02:10", PaymentMethod: "Nakit",
			TotalAmount: price("60"), StaffName: "Ayşe",
			ItemsArray: []domain.LineItem{
				{ProductID: "p-cay", ProductName: "Çay", Price: price("15"), Quantity: 4},
			},
		},
		{
			ID: "sale-seed-2", TableName: "Masa 3", TableType: domain.TableTypeInside,
			SaleDate: "12.03.2024", SaleTime: "12:20:45", PaymentMethod: "Kredi Kartı",
			TotalAmount: price("180"), StaffName: "Mehmet",
			ItemsArray: []domain.LineItem{
				{ProductID: "p-kofte", ProductName: "Köfte", Price: price("150"), Quantity: 1},
				{ProductID: "p-cay", ProductName: "Çay", Price: price("15"), Quantity: 2},
				{ProductID: "p-lokum", ProductName: "Lokum", Price: price("20"), Quantity: 1, IsGift: true},
			},
		},
		{
			ID: "sale-seed-3", TableName: "Masa 3", TableType: domain.TableTypeInside,
			SaleDate: "12.03.2024", SaleTime: "19:05:00", PaymentMethod: "Nakit",
			TotalAmount: price("45"), StaffName: "Ayşe",
			ItemsArray: []domain.LineItem{
				{ProductID: "p-kahve", ProductName: "Türk Kahvesi", Price: price("45"), Quantity: 1},
			},
		},
		{
			ID: "sale-seed-4", TableName: "Bahçe 1", TableType: domain.TableTypeOutside,
			SaleDate: "12.03.2024", SaleTime: "13:10:00", PaymentMethod: "Nakit",
			TotalAmount: price("90"), StaffName: "Mehmet",
			Items: "Tost x2, Ayran x2, Lokum x1 (İKRAM)",
		},
		{
			ID: "sale-seed-5", TableName: "Kasa", TableType: domain.TableTypeInside,
			SaleDate: "12.03.2024", SaleTime: "18:00:00", PaymentMethod: domain.PaymentMethodExpense,
			TotalAmount: price("250"), IsExpense: true,
			ItemsArray: []domain.LineItem{
				{ProductName: "Tüp", Price: price("250"), Quantity: 1},
			},
		},
	}
}

func (s *Store) ListSales(_ context.Context) ([]domain.SaleRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.SaleRecord, 0, len(s.sales))
	for _, record := range s.sales {
		out = append(out, cloneSale(record))
	}
	return out, nil
}

func (s *Store) GetSale(_ context.Context, id string) (*domain.SaleRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.salesByID[strings.TrimSpace(id)]
	if !ok {
		return nil, store.ErrNotFound
	}
	dup := cloneSale(s.sales[idx])
	return &dup, nil
}

func (s *Store) CreateSale(_ context.Context, record domain.SaleRecord) (*domain.SaleRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record.ID = strings.TrimSpace(record.ID)
	if record.ID == "" {
		record.ID = xid.New("sale")
	}
	if _, exists := s.salesByID[record.ID]; exists {
		return nil, store.ErrInvalidRecord
	}
	if record.TotalAmount.IsNegative() {
		return nil, store.ErrInvalidRecord
	}
	for _, item := range record.ItemsArray {
		if item.Quantity < 0 || item.Price.IsNegative() {
			return nil, store.ErrInvalidRecord
		}
	}

	record = cloneSale(record)
	s.salesByID[record.ID] = len(s.sales)
	s.sales = append(s.sales, record)

	dup := cloneSale(record)
	return &dup, nil
}

func (s *Store) DeleteSale(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id = strings.TrimSpace(id)
	if err, ok := s.failDelete[id]; ok {
		return err
	}
	idx, ok := s.salesByID[id]
	if !ok {
		return store.ErrNotFound
	}
	s.sales = slices.Delete(s.sales, idx, idx+1)
	delete(s.salesByID, id)
	for i := idx; i < len(s.sales); i++ {
		s.salesByID[s.sales[i].ID] = i
	}
	return nil
}

// FailDeletes makes DeleteSale return err for the given record ids.
func (s *Store) FailDeletes(err error, ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.failDelete[id] = err
	}
}

func (s *Store) CreateUser(_ context.Context, user domain.UserAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	username := strings.ToLower(strings.TrimSpace(user.Username))
	if username == "" || strings.TrimSpace(user.Password) == "" {
		return store.ErrInvalidRecord
	}
	if _, exists := s.usersByUsername[username]; exists {
		return store.ErrInvalidRecord
	}
	user.Username = username
	if user.Role == "" {
		user.Role = "cashier"
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	user.Active = true
	s.usersByUsername[user.Username] = user
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]domain.UserAccount, 0, len(s.usersByUsername))
	for _, user := range s.usersByUsername {
		users = append(users, user)
	}
	slices.SortFunc(users, func(a, b domain.UserAccount) int {
		return strings.Compare(a.Username, b.Username)
	})
	return users, nil
}

func (s *Store) UpdateUserPassword(_ context.Context, username string, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || strings.TrimSpace(password) == "" {
		return store.ErrInvalidRecord
	}
	user, exists := s.usersByUsername[username]
	if !exists {
		return store.ErrNotFound
	}
	user.Password = password
	s.usersByUsername[username] = user
	return nil
}

// cloneSale keeps a nil ItemsArray nil so legacy rows stay legacy.
func cloneSale(src domain.SaleRecord) domain.SaleRecord {
	dup := src
	if src.ItemsArray != nil {
		dup.ItemsArray = slices.Clone(src.ItemsArray)
	}
	return dup
}
