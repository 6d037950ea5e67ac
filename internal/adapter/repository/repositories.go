package repository

import (
	"database/sql"

	"cloud.google.com/go/firestore"

	"planmarket/internal/domain/entity"
	"planmarket/internal/domain/repository"
	"planmarket/pkg/errors"
)

// Repositories bundles one backend's implementation of every store.
type Repositories struct {
	Products      repository.ProductRepository
	Categories    repository.CategoryRepository
	Orders        repository.OrderRepository
	Reviews       repository.ReviewRepository
	Profiles      repository.ProfileRepository
	Chats         repository.ChatRepository
	Notifications repository.NotificationRepository
}

func NewPostgresRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		Products:      NewPostgresProductRepository(db),
		Categories:    NewPostgresCategoryRepository(db),
		Orders:        NewPostgresOrderRepository(db),
		Reviews:       NewPostgresReviewRepository(db),
		Profiles:      NewPostgresProfileRepository(db),
		Chats:         NewPostgresChatRepository(db),
		Notifications: NewPostgresNotificationRepository(db),
	}
}

func NewFirestoreRepositories(client *firestore.Client) *Repositories {
	return &Repositories{
		Products:      NewFirestoreProductRepository(client),
		Categories:    NewFirestoreCategoryRepository(client),
		Orders:        NewFirestoreOrderRepository(client),
		Reviews:       NewFirestoreReviewRepository(client),
		Profiles:      NewFirestoreProfileRepository(client),
		Chats:         NewFirestoreChatRepository(client),
		Notifications: NewFirestoreNotificationRepository(client),
	}
}

func NewMemoryRepositories(categories ...*entity.Category) *Repositories {
	return &Repositories{
		Products:      NewMemoryProductRepository(),
		Categories:    NewMemoryCategoryRepository(categories...),
		Orders:        NewMemoryOrderRepository(),
		Reviews:       NewMemoryReviewRepository(),
		Profiles:      NewMemoryProfileRepository(),
		Chats:         NewMemoryChatRepository(),
		Notifications: NewMemoryNotificationRepository(),
	}
}

func errOrderStatusChanged() error {
	return errors.Conflict("Order status changed concurrently, reload and try again")
}
