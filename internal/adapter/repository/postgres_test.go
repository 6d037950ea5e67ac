package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planmarket/internal/domain/entity"
)

var fixedTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func TestApplySchemaExecutesEveryStatement(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	for i := 0; i < SchemaStatements; i++ {
		mock.ExpectExec(".*").WillReturnResult(sqlmock.NewResult(0, 0))
	}

	require.NoError(t, ApplySchema(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplySchemaStopsOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS profiles").WillReturnError(assert.AnError)

	err = ApplySchema(context.Background(), db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema statement 1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeedCategoriesIgnoresExisting(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	categories := []*entity.Category{
		{ID: "tables", Name: "Tables", Slug: "tables"},
		{ID: "beds", Name: "Beds", Slug: "beds"},
	}
	mock.ExpectExec("INSERT INTO categories .* ON CONFLICT DO NOTHING").
		WithArgs("tables", "Tables", "tables", "").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO categories").
		WithArgs("beds", "Beds", "beds", "").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, SeedCategories(context.Background(), db, categories))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	assert.Equal(t, []int{1, 2}, paginate(items, 2, 0))
	assert.Equal(t, []int{5}, paginate(items, 2, 4))
	assert.Equal(t, []int{}, paginate(items, 2, 10))
	assert.Equal(t, []int{3, 4, 5}, paginate(items, 0, 2))
}
