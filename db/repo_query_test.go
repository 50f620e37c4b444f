// db/repo_query_test.go
package db

import (
	"context"
	"testing"
	"time"

	"uniloans/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListLoansFiltersAndPagination(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	ana := seedUser(t, r, "Ana Castillo", "111222333")
	beto := seedUser(t, r, "Beto Mejia", "444555666")
	balon := seedItem(t, r, "Balon", 10)
	red := seedItem(t, r, "Red", 10)

	for i := 0; i < 3; i++ {
		_, err := r.CreateDirectLoan(ctx, ana.ID, balon.ID, time.Hour)
		require.NoError(t, err)
	}
	loan, err := r.CreateDirectLoan(ctx, beto.ID, red.ID, time.Hour)
	require.NoError(t, err)
	_, err = r.FinishLoan(ctx, loan.ID)
	require.NoError(t, err)

	res, err := r.ListLoans(ctx, LoanFilters{State: models.LoanActive})
	require.NoError(t, err)
	assert.EqualValues(t, 3, res.Page.Total)
	for _, row := range res.Loans {
		assert.Equal(t, "Ana Castillo", row.FullName)
		assert.Equal(t, "111222333", row.Cedula)
	}

	res, err = r.ListLoans(ctx, LoanFilters{Search: "beto"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Page.Total)
	assert.Equal(t, models.LoanReturned, res.Loans[0].State)

	res, err = r.ListLoans(ctx, LoanFilters{Item: "Bal"})
	require.NoError(t, err)
	assert.EqualValues(t, 3, res.Page.Total)

	res, err = r.ListLoans(ctx, LoanFilters{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 4, res.Page.Total)
	assert.Len(t, res.Loans, 2)
	assert.Equal(t, 2, res.Page.TotalPages)
}

func TestListPendingRequestsNewestFirst(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	u := seedUser(t, r, "Caro Luna", "777888999")
	seedItem(t, r, "Balon", 5)
	seedItem(t, r, "Red", 5)

	first, err := r.CreateLoanRequest(ctx, u.ID, "Balon")
	require.NoError(t, err)
	second, err := r.CreateLoanRequest(ctx, u.ID, "Red")
	require.NoError(t, err)

	rows, err := r.ListPendingRequests(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, second.ID, rows[0].ID)
	assert.Equal(t, first.ID, rows[1].ID)
}

func TestListExpiringLoansWindow(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	u := seedUser(t, r, "Dario Paz", "123123123")
	it := seedItem(t, r, "Cronometro", 3)

	soon, err := r.CreateDirectLoan(ctx, u.ID, it.ID, 10*time.Minute)
	require.NoError(t, err)
	_, err = r.CreateDirectLoan(ctx, u.ID, it.ID, 5*time.Hour)
	require.NoError(t, err)
	_, err = r.CreateDirectLoan(ctx, u.ID, it.ID, -time.Minute) // already overdue
	require.NoError(t, err)

	rows, err := r.ListExpiringLoans(ctx, 30*time.Minute)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, soon.ID, rows[0].ID)
}

func TestGetUserStats(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	u := seedUser(t, r, "Elsa Roa", "321321321")
	balon := seedItem(t, r, "Balon", 5)
	red := seedItem(t, r, "Red", 5)

	returned, err := r.CreateDirectLoan(ctx, u.ID, balon.ID, time.Hour)
	require.NoError(t, err)
	_, err = r.FinishLoan(ctx, returned.ID)
	require.NoError(t, err)

	_, err = r.CreateDirectLoan(ctx, u.ID, red.ID, time.Hour)
	require.NoError(t, err)

	lost, err := r.CreateDirectLoan(ctx, u.ID, balon.ID, time.Hour)
	require.NoError(t, err)
	_, err = r.MarkLoanLost(ctx, lost.ID)
	require.NoError(t, err)

	stats, err := r.GetUserStats(ctx, u.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.TotalLoans)
	assert.EqualValues(t, 1, stats.ActiveLoans)
	assert.EqualValues(t, 1, stats.ReturnedLoans)
	assert.EqualValues(t, 1, stats.LostLoans)
	assert.EqualValues(t, 0, stats.PendingLoans)
	assert.EqualValues(t, 2, stats.DistinctItems)
	assert.GreaterOrEqual(t, stats.RealHours, 0.0)

	_, err = r.GetUserStats(ctx, "no-such-user")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListUsersSearchAndPaging(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	seedUser(t, r, "Felipe Mora", "900900900")
	seedUser(t, r, "Fernanda Mora", "800800800")
	seedUser(t, r, "Gustavo Rey", "700700700")

	res, err := r.ListUsers(ctx, "mora", 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, res.Total)

	res, err = r.ListUsers(ctx, "700700700", 1, 10)
	require.NoError(t, err)
	require.Len(t, res.Users, 1)
	assert.Equal(t, "Gustavo Rey", res.Users[0].FullName)

	res, err = r.ListUsers(ctx, "", 2, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, res.Total)
	assert.Len(t, res.Users, 1)
}
