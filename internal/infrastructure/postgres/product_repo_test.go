package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluecart/commerce/internal/domain"
	"github.com/bluecart/commerce/internal/product"
)

func TestProductRepoReserveForOrder(t *testing.T) {
	items := []product.Reservation{{ProductID: "prod-1", Quantity: 3}}

	t.Run("locks_decrements_and_marks", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT inventory FROM products").
			WithArgs("prod-1").
			WillReturnRows(sqlmock.NewRows([]string{"inventory"}).AddRow(12))
		mock.ExpectExec("UPDATE products SET inventory").
			WithArgs("prod-1", 3, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO processed_orders").
			WithArgs("o1", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		levels, err := NewProductRepo(db).ReserveForOrder(context.Background(), "o1", items, time.Now())
		require.NoError(t, err)
		require.Len(t, levels, 1)
		assert.Equal(t, 12, levels[0].Before)
		assert.Equal(t, 9, levels[0].After)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insufficient_stock_rolls_back", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT inventory FROM products").
			WithArgs("prod-1").
			WillReturnRows(sqlmock.NewRows([]string{"inventory"}).AddRow(2))
		mock.ExpectRollback()

		_, err = NewProductRepo(db).ReserveForOrder(context.Background(), "o1", items, time.Now())
		assert.True(t, domain.IsCode(err, domain.CodeValidation))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown_product_rolls_back", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT inventory FROM products").
			WithArgs("prod-1").
			WillReturnRows(sqlmock.NewRows([]string{"inventory"}))
		mock.ExpectRollback()

		_, err = NewProductRepo(db).ReserveForOrder(context.Background(), "o1", items, time.Now())
		assert.True(t, domain.IsCode(err, domain.CodeValidation))
	})

	t.Run("duplicate_marker_reports_already_processed", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT inventory FROM products").
			WithArgs("prod-1").
			WillReturnRows(sqlmock.NewRows([]string{"inventory"}).AddRow(12))
		mock.ExpectExec("UPDATE products SET inventory").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO processed_orders").
			WillReturnError(&pq.Error{Code: "23505"})
		mock.ExpectRollback()

		_, err = NewProductRepo(db).ReserveForOrder(context.Background(), "o1", items, time.Now())
		assert.True(t, errors.Is(err, product.ErrAlreadyProcessed))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestProductRepoOrderProcessed(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("o1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	done, err := NewProductRepo(db).OrderProcessed(context.Background(), "o1")
	require.NoError(t, err)
	assert.True(t, done)
}

func TestProductRepoUpdate(t *testing.T) {
	t.Run("missing_product", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec("UPDATE products SET name").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err = NewProductRepo(db).Update(context.Background(), &product.Product{ID: "missing"})
		assert.True(t, domain.IsNotFound(err))
	})
}
