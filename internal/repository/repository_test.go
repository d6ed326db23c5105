package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/database/dbtest"
	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/domain"
	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/repository"
)

var t0 = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func seedPartner(t *testing.T, r *repository.Repos, suffix string) domain.Partner {
	t.Helper()
	u := domain.User{ID: "user-" + suffix, Email: suffix + "@partners.test", PasswordHash: "hash", CreatedAt: t0}
	p := domain.Partner{ID: "partner-" + suffix, UserID: u.ID, Name: "Partner " + suffix, Phone: "+91 9999999999",
		Email: u.Email, Address: "MG Road", BusinessType: domain.BusinessInstaller, CreatedAt: t0}
	require.NoError(t, r.CreateUserWithPartner(context.Background(), u, p))
	return p
}

func TestRepos_UserAndPartner(t *testing.T) {
	ctx := context.Background()
	r := repository.New(dbtest.New(t))
	p := seedPartner(t, r, "a")

	u, err := r.UserByEmail(ctx, "A@partners.test")
	require.NoError(t, err)
	assert.Equal(t, "user-a", u.ID)
	assert.Equal(t, "hash", u.PasswordHash)

	got, err := r.PartnerByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, domain.BusinessInstaller, got.BusinessType)
	assert.True(t, got.CreatedAt.Equal(t0))

	_, err = r.UserByEmail(ctx, "nobody@partners.test")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = r.PartnerByUserID(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRepos_DuplicateEmail(t *testing.T) {
	r := repository.New(dbtest.New(t))
	seedPartner(t, r, "dup")

	u := domain.User{ID: "user-2", Email: "dup@partners.test", PasswordHash: "x", CreatedAt: t0}
	p := domain.Partner{ID: "partner-2", UserID: "user-2", Name: "Other", Phone: "1", Email: u.Email, BusinessType: domain.BusinessDealer, CreatedAt: t0}
	err := r.CreateUserWithPartner(context.Background(), u, p)
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	_, err = r.PartnerByUserID(context.Background(), "user-2")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRepos_Sessions(t *testing.T) {
	ctx := context.Background()
	r := repository.New(dbtest.New(t))
	seedPartner(t, r, "s")

	live := domain.SessionRecord{TokenHash: "live", UserID: "user-s", CreatedAt: t0, ExpiresAt: t0.Add(time.Hour)}
	old := domain.SessionRecord{TokenHash: "old", UserID: "user-s", CreatedAt: t0.Add(-48 * time.Hour), ExpiresAt: t0.Add(-time.Hour)}
	require.NoError(t, r.CreateSession(ctx, live))
	require.NoError(t, r.CreateSession(ctx, old))

	got, err := r.SessionByHash(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, "user-s", got.UserID)
	assert.True(t, got.ExpiresAt.Equal(live.ExpiresAt))

	n, err := r.DeleteExpiredSessions(ctx, t0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, r.DeleteSession(ctx, "live"))
	_, err = r.SessionByHash(ctx, "live")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestQuotations_OrderingAndScoping(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	r := repository.New(db)
	qs := repository.NewQuotations(db)
	a := seedPartner(t, r, "qa")
	b := seedPartner(t, r, "qb")

	for i, name := range []string{"first", "second", "third"} {
		_, err := qs.Create(ctx, domain.Quotation{
			ID: "q-" + name, PartnerID: a.ID, CustomerName: name, CustomerEmail: name + "@c.test", CustomerPhone: "1",
			SystemSize: 5, PanelBrand: "tata", InverterBrand: "luminous", WiringBrand: "polycab",
			TotalCost: 215000, Status: domain.StatusNew, DateSubmitted: t0.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}
	_, err := qs.Create(ctx, domain.Quotation{
		ID: "q-other", PartnerID: b.ID, CustomerName: "other", CustomerEmail: "o@c.test", CustomerPhone: "1",
		SystemSize: 1, PanelBrand: "tata", InverterBrand: "luminous", WiringBrand: "polycab",
		TotalCost: 1, Status: domain.StatusNew, DateSubmitted: t0.Add(time.Hour),
	})
	require.NoError(t, err)

	list, err := qs.ListByPartner(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"q-third", "q-second", "q-first"}, []string{list[0].ID, list[1].ID, list[2].ID})

	updated, err := qs.UpdateStatus(ctx, a.ID, "q-first", domain.StatusContacted)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusContacted, updated.Status)

	_, err = qs.UpdateStatus(ctx, a.ID, "q-other", domain.StatusLost)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	other, err := qs.Get(ctx, b.ID, "q-other")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNew, other.Status)

	empty, err := qs.ListByPartner(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestRepos_QuoteRequests(t *testing.T) {
	ctx := context.Background()
	r := repository.New(dbtest.New(t))

	require.NoError(t, r.InsertQuoteRequest(ctx, domain.QuoteRequest{ID: "l1", Name: "Asha", Email: "a@x.test", Phone: "1", Source: domain.LeadSourceWeb, CreatedAt: t0}))
	require.NoError(t, r.InsertQuoteRequest(ctx, domain.QuoteRequest{ID: "l2", Name: "Ravi", Email: "r@x.test", Phone: "2", Location: "pune", MonthlyBill: 4500, SystemType: "hybrid", Source: domain.LeadSourceMQTT, CreatedAt: t0.Add(time.Minute)}))

	list, err := r.ListQuoteRequests(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "l2", list[0].ID)
	assert.Equal(t, domain.LeadSourceMQTT, list[0].Source)
	assert.Equal(t, 4500.0, list[0].MonthlyBill)
}
