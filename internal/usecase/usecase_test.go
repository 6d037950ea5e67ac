package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	memrepo "planmarket/internal/adapter/repository"
	"planmarket/internal/domain/entity"
	"planmarket/internal/domain/service"
	"planmarket/internal/infrastructure/metrics"
	"planmarket/internal/infrastructure/ratelimit"
	"planmarket/internal/infrastructure/storage"
	ws "planmarket/internal/infrastructure/websocket"
)

type pushed struct {
	userID string
	event  ws.Event
}

type recordingPusher struct {
	mu     sync.Mutex
	events []pushed
}

func (p *recordingPusher) SendToUser(userID string, event ws.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, pushed{userID: userID, event: event})
}

func (p *recordingPusher) typesFor(userID string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		if e.userID == userID {
			out = append(out, e.event.Type)
		}
	}
	return out
}

type mockAuth struct {
	mock.Mock
}

func (m *mockAuth) CreateUser(ctx context.Context, email, password, displayName string) (string, error) {
	args := m.Called(ctx, email, password, displayName)
	return args.String(0), args.Error(1)
}

func (m *mockAuth) DeleteUser(ctx context.Context, uid string) error {
	return m.Called(ctx, uid).Error(0)
}

func (m *mockAuth) VerifyToken(ctx context.Context, token string) (string, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Error(1)
}

func (m *mockAuth) RevokeTokens(ctx context.Context, uid string) error {
	return m.Called(ctx, uid).Error(0)
}

func (m *mockAuth) SignIn(ctx context.Context, email, password string) (string, string, string, error) {
	args := m.Called(ctx, email, password)
	return args.String(0), args.String(1), args.String(2), args.Error(3)
}

func (m *mockAuth) Refresh(ctx context.Context, refreshToken string) (string, string, string, error) {
	args := m.Called(ctx, refreshToken)
	return args.String(0), args.String(1), args.String(2), args.Error(3)
}

type fixture struct {
	repos   *memrepo.Repositories
	storage *storage.MemoryStorage
	pusher  *recordingPusher
	limiter *ratelimit.RateLimiter
	auth    *mockAuth

	notifications *NotificationUseCase
	catalog       *CatalogUseCase
	orders        *OrderUseCase
	reviews       *ReviewUseCase
	profiles      *ProfileUseCase
	chats         *ChatUseCase
	admin         *AdminUseCase
	authUC        *AuthUseCase
}

var testCategory = &entity.Category{ID: "cat-tables", Name: "Tables", Slug: "tables"}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		repos:   memrepo.NewMemoryRepositories(testCategory),
		storage: storage.NewMemoryStorage("http://files.test"),
		pusher:  &recordingPusher{},
		limiter: ratelimit.NewRateLimiter(ratelimit.Per(1000, time.Second)),
		auth:    &mockAuth{},
	}
	m := metrics.New()
	commission := service.NewCommissionCalculator(decimal.RequireFromString("0.10"))

	f.notifications = NewNotificationUseCase(f.repos.Notifications, f.pusher)
	f.catalog = NewCatalogUseCase(f.repos.Products, f.repos.Categories, f.repos.Profiles, f.repos.Reviews, f.repos.Orders, f.storage, m, 1<<20)
	f.orders = NewOrderUseCase(f.repos.Orders, f.repos.Products, f.repos.Profiles, f.catalog, commission, f.notifications, f.limiter, m)
	f.reviews = NewReviewUseCase(f.repos.Reviews, f.repos.Orders, f.repos.Products, f.repos.Profiles, f.notifications, m)
	f.profiles = NewProfileUseCase(f.repos.Profiles, f.repos.Products, f.storage, 1<<10)
	f.chats = NewChatUseCase(f.repos.Chats, f.repos.Products, f.repos.Profiles, f.notifications, f.pusher, f.limiter, m)
	f.admin = NewAdminUseCase(f.repos.Orders, f.repos.Products, f.repos.Profiles)
	f.authUC = NewAuthUseCase(f.repos.Profiles, f.auth)
	return f
}

func (f *fixture) profile(t *testing.T, id, role string) *entity.Profile {
	t.Helper()
	p := &entity.Profile{ID: id, Email: id + "@example.com", FullName: "User " + id, Role: role}
	require.NoError(t, f.repos.Profiles.Create(context.Background(), p))
	return p
}

func (f *fixture) product(t *testing.T, sellerID, price string) *entity.Product {
	t.Helper()
	p, err := f.catalog.CreateProduct(context.Background(), sellerID, CreateProductInput{
		Title:       "Oak dining table",
		Description: "Full plans for a six seat table",
		Price:       decimal.RequireFromString(price),
		CategoryID:  testCategory.ID,
	})
	require.NoError(t, err)
	return p
}

// completedOrder places an order and has the seller complete it.
func (f *fixture) completedOrder(t *testing.T, buyerID string, product *entity.Product) *entity.Order {
	t.Helper()
	ctx := context.Background()
	order, _, err := f.orders.CreateOrder(ctx, buyerID, CreateOrderInput{ProductID: product.ID})
	require.NoError(t, err)
	order, err = f.orders.UpdateStatus(ctx, product.SellerID, order.ID, entity.OrderStatusCompleted)
	require.NoError(t, err)
	return order
}
