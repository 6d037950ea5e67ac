package repository

import (
	"context"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"planmarket/internal/domain/entity"
	"planmarket/pkg/errors"
)

const (
	collectionProducts      = "products"
	collectionCategories    = "categories"
	collectionOrders        = "orders"
	collectionReviews       = "reviews"
	collectionProfiles      = "profiles"
	collectionChats         = "chats"
	collectionMessages      = "messages"
	collectionNotifications = "notifications"
)

// deterministicID derives a document ID from natural key parts so that
// Create on the same key fails with AlreadyExists.
func deterministicID(kind string, parts ...string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(kind+":"+strings.Join(parts, "\x00"))).String()
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

func isAlreadyExists(err error) bool {
	return status.Code(err) == codes.AlreadyExists
}

func fsGetError(err error, resource, action string) error {
	if isNotFound(err) {
		return errors.NotFound(resource, err)
	}
	return errors.Internal(action, err)
}

// collect drains a document iterator into T values.
func collect[T any](iter *firestore.DocumentIterator, resource string) ([]*T, error) {
	defer iter.Stop()
	out := []*T{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to iterate "+resource, err)
		}
		var v T
		if err := doc.DataTo(&v); err != nil {
			return nil, errors.Internal("Failed to parse "+resource+" data", err)
		}
		out = append(out, &v)
	}
	return out, nil
}

// countQuery runs a server-side COUNT aggregation.
func countQuery(ctx context.Context, q firestore.Query) (int64, error) {
	result, err := q.NewAggregationQuery().WithCount("total").Get(ctx)
	if err != nil {
		return 0, err
	}
	v, ok := result["total"]
	if !ok {
		return 0, nil
	}
	if pb, ok := v.(interface{ GetIntegerValue() int64 }); ok {
		return pb.GetIntegerValue(), nil
	}
	return 0, nil
}

func money(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f).Round(2)
}

func moneyFloat(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

// SeedFirestoreCategories creates category documents that do not exist yet.
func SeedFirestoreCategories(ctx context.Context, client *firestore.Client, categories []*entity.Category) error {
	for _, c := range categories {
		doc := *c
		if doc.CreatedAt.IsZero() {
			doc.CreatedAt = time.Now().UTC()
		}
		if _, err := client.Collection(collectionCategories).Doc(c.ID).Create(ctx, doc); err != nil && !isAlreadyExists(err) {
			return errors.Internal("Failed to seed category "+c.ID, err)
		}
	}
	return nil
}
