package store

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/alpentrace/harvester/internal/listing"
)

func newMockStore(t *testing.T) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	s, err := NewWithPool(mock)
	require.NoError(t, err)
	return s, mock
}

func TestStoredSize(t *testing.T) {
	t.Parallel()

	s, mock := newMockStore(t)
	mock.ExpectQuery("SELECT pg_total_relation_size").
		WithArgs(listingsTable).
		WillReturnRows(pgxmock.NewRows([]string{"pg_total_relation_size"}).AddRow(int64(1024)))

	size, err := s.StoredSize(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(1024), size)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOldestDate(t *testing.T) {
	t.Parallel()

	s, mock := newMockStore(t)
	date := "2026-08-01"
	mock.ExpectQuery("SELECT min").
		WillReturnRows(pgxmock.NewRows([]string{"min"}).AddRow(&date))

	got, ok, err := s.OldestDate(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "2026-08-01", got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOldestDateEmptyTable(t *testing.T) {
	t.Parallel()

	s, mock := newMockStore(t)
	mock.ExpectQuery("SELECT min").
		WillReturnRows(pgxmock.NewRows([]string{"min"}).AddRow((*string)(nil)))

	_, ok, err := s.OldestDate(context.Background())
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteDate(t *testing.T) {
	t.Parallel()

	s, mock := newMockStore(t)
	mock.ExpectExec("DELETE FROM listings WHERE scrape_date").
		WithArgs("2026-08-01").
		WillReturnResult(pgxmock.NewResult("DELETE", 37))

	deleted, err := s.DeleteDate(context.Background(), "2026-08-01")
	require.NoError(t, err)
	require.Equal(t, int64(37), deleted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClear(t *testing.T) {
	t.Parallel()

	s, mock := newMockStore(t)
	mock.ExpectExec("DELETE FROM listings WHERE collection").
		WithArgs("acmimmobilier").
		WillReturnResult(pgxmock.NewResult("DELETE", 5))

	require.NoError(t, s.Clear(context.Background(), "acmimmobilier"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertWritesOneRowPerRecord(t *testing.T) {
	t.Parallel()

	s, mock := newMockStore(t)
	rec := listing.Record{
		listing.FieldDate:      "2026-08-23",
		listing.FieldPrice:     float64(395000),
		listing.FieldReference: "ACM-77",
		listing.FieldSourceID:  "acmimmobilier_1",
		listing.FieldTitle:     "Appartement T3 Morzine",
		listing.FieldURL:       "https://www.acm-immobilier.fr/fr/bien/77",
	}
	doc, err := rec.MarshalJSON()
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO listings").
		WithArgs("acmimmobilier", "2026-08-23", doc).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, s.Insert(context.Background(), "acmimmobilier", []listing.Record{rec}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertRejectsUndatedRecord(t *testing.T) {
	t.Parallel()

	s, _ := newMockStore(t)
	err := s.Insert(context.Background(), "acmimmobilier", []listing.Record{{
		listing.FieldTitle: "no date",
	}})
	require.ErrorContains(t, err, "without a scrape date")
}

func TestNewWithPoolRequiresPool(t *testing.T) {
	t.Parallel()

	_, err := NewWithPool(nil)
	require.Error(t, err)
}
