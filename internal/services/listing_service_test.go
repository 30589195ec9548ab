package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ahmetcoskunkizilkaya/roomfinder-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/roomfinder-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newPostgresMockDB opens GORM's postgres dialector over a sqlmock connection.
func newPostgresMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)
	return gdb, mock, sqlDB
}

var listingColumns = []string{
	"id", "owner_id", "title", "description", "location", "price",
	"property_type", "tenant_preference", "image_urls", "contact_phone", "created_at",
}

func cozyStudioRow(rows *sqlmock.Rows, id int64, price int) *sqlmock.Rows {
	return rows.AddRow(id, "owner-1", "Cozy Studio", "Sunny room near the metro", "Downtown",
		price, "1 Bed", "Working", "{https://img.example/1.jpg}", "555-0100", time.Now())
}

func cozyStudioRequest() dto.CreateListingRequest {
	return dto.CreateListingRequest{
		Title:            "Cozy Studio",
		Description:      "Sunny room near the metro",
		Location:         "Downtown",
		Price:            8000,
		PropertyType:     models.PropertyType1Bed,
		TenantPreference: models.TenantWorking,
		ImageURLs:        []string{"https://img.example/1.jpg"},
		ContactPhone:     "555-0100",
	}
}

func TestListingService_Create(t *testing.T) {
	db, mock, sqlDB := newPostgresMockDB(t)
	defer sqlDB.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "listings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectCommit()

	listing, err := NewListingService(db).Create(context.Background(), cozyStudioRequest(), "owner-1")
	require.NoError(t, err)
	assert.Equal(t, int64(7), listing.ID)
	assert.Equal(t, "owner-1", listing.OwnerID)
	assert.Equal(t, "Cozy Studio", listing.Title)
	assert.Equal(t, 8000, listing.Price)
	assert.False(t, listing.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListingService_Get(t *testing.T) {
	db, mock, sqlDB := newPostgresMockDB(t)
	defer sqlDB.Close()

	mock.ExpectQuery(`SELECT \* FROM "listings" WHERE "listings"."id" = \$1`).
		WillReturnRows(cozyStudioRow(sqlmock.NewRows(listingColumns), 7, 8000))

	listing, err := NewListingService(db).Get(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), listing.ID)
	assert.Equal(t, models.PropertyType1Bed, listing.PropertyType)
	assert.Equal(t, models.TenantWorking, listing.TenantPreference)
	assert.Equal(t, []string{"https://img.example/1.jpg"}, []string(listing.ImageURLs))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListingService_Get_NotFound(t *testing.T) {
	db, mock, sqlDB := newPostgresMockDB(t)
	defer sqlDB.Close()

	mock.ExpectQuery(`SELECT \* FROM "listings" WHERE "listings"."id" = \$1`).
		WillReturnRows(sqlmock.NewRows(listingColumns))

	listing, err := NewListingService(db).Get(context.Background(), 99)
	assert.Nil(t, listing)
	assert.ErrorIs(t, err, ErrListingNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListingService_List(t *testing.T) {
	db, mock, sqlDB := newPostgresMockDB(t)
	defer sqlDB.Close()

	rows := sqlmock.NewRows(listingColumns)
	cozyStudioRow(rows, 1, 6000)
	cozyStudioRow(rows, 2, 9000)
	mock.ExpectQuery(`SELECT \* FROM "listings" WHERE price >= \$1 AND price <= \$2`).
		WithArgs(5000, 10000).
		WillReturnRows(rows)

	minPrice, maxPrice := 5000, 10000
	listings, err := NewListingService(db).List(context.Background(), dto.ListingFilter{MinPrice: &minPrice, MaxPrice: &maxPrice})
	require.NoError(t, err)
	require.Len(t, listings, 2)
	for _, l := range listings {
		assert.GreaterOrEqual(t, l.Price, 5000)
		assert.LessOrEqual(t, l.Price, 10000)
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListingService_List_EmptyIsNonNil(t *testing.T) {
	db, mock, sqlDB := newPostgresMockDB(t)
	defer sqlDB.Close()

	mock.ExpectQuery(`SELECT \* FROM "listings"`).WillReturnRows(sqlmock.NewRows(listingColumns))

	listings, err := NewListingService(db).List(context.Background(), dto.ListingFilter{})
	require.NoError(t, err)
	assert.NotNil(t, listings)
	assert.Empty(t, listings)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListingService_Update_PriceOnly(t *testing.T) {
	db, mock, sqlDB := newPostgresMockDB(t)
	defer sqlDB.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "listings" SET "price"=\$1 WHERE id = \$2`).
		WithArgs(9500, 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery(`SELECT \* FROM "listings" WHERE "listings"."id" = \$1`).
		WillReturnRows(cozyStudioRow(sqlmock.NewRows(listingColumns), 7, 9500))

	price := 9500
	listing, err := NewListingService(db).Update(context.Background(), 7, dto.UpdateListingRequest{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, 9500, listing.Price)
	assert.Equal(t, "Cozy Studio", listing.Title)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListingService_Update_NotFound(t *testing.T) {
	db, mock, sqlDB := newPostgresMockDB(t)
	defer sqlDB.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "listings" SET`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	title := "Renamed"
	listing, err := NewListingService(db).Update(context.Background(), 42, dto.UpdateListingRequest{Title: &title})
	assert.Nil(t, listing)
	assert.ErrorIs(t, err, ErrListingNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListingService_Delete_MissingRowIsNotAnError(t *testing.T) {
	db, mock, sqlDB := newPostgresMockDB(t)
	defer sqlDB.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "listings" WHERE "listings"."id" = \$1`).
		WithArgs(42).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	assert.NoError(t, NewListingService(db).Delete(context.Background(), 42))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFilterListings_SQL(t *testing.T) {
	db, _, sqlDB := newPostgresMockDB(t)
	defer sqlDB.Close()

	loc := "50%_off"
	minPrice := 0
	pt := models.PropertyType2BHK
	owner := "owner-1"

	stmt := db.Session(&gorm.Session{DryRun: true}).
		Scopes(FilterListings(dto.ListingFilter{Location: &loc, MinPrice: &minPrice, PropertyType: &pt, OwnerID: &owner})).
		Find(&[]models.Listing{}).Statement

	assert.Equal(t,
		`SELECT * FROM "listings" WHERE location LIKE $1 AND price >= $2 AND property_type = $3 AND owner_id = $4`,
		stmt.SQL.String(),
	)
	assert.Equal(t, []interface{}{`%50\%\_off%`, 0, "2 BHK", "owner-1"}, stmt.Vars)
}

func TestFilterListings_Empty(t *testing.T) {
	db, _, sqlDB := newPostgresMockDB(t)
	defer sqlDB.Close()

	stmt := db.Session(&gorm.Session{DryRun: true}).
		Scopes(FilterListings(dto.ListingFilter{})).
		Find(&[]models.Listing{}).Statement

	assert.Equal(t, `SELECT * FROM "listings"`, stmt.SQL.String())
	assert.Empty(t, stmt.Vars)
}
