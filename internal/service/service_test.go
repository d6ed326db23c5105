package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/database/dbtest"
	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/domain"
	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/pricing"
	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/service"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type recorder struct {
	mu    sync.Mutex
	names []string
}

func (r *recorder) Publish(_ context.Context, name string, _ any) error {
	r.mu.Lock()
	r.names = append(r.names, name)
	r.mu.Unlock()
	return nil
}

type memArchive struct {
	objects map[string][]byte
}

func (a *memArchive) Put(_ context.Context, key string, data []byte, _ string) error {
	a.objects[key] = data
	return nil
}

func (a *memArchive) URL(_ context.Context, key string) (string, error) {
	if _, ok := a.objects[key]; !ok {
		return "", errors.New("no such key")
	}
	return "https://archive.test/" + key, nil
}

type fixture struct {
	svcs    *service.Services
	clock   *clock
	events  *recorder
	archive *memArchive
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		clock:   &clock{t: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)},
		events:  &recorder{},
		archive: &memArchive{objects: map[string][]byte{}},
	}
	f.svcs = service.New(dbtest.New(t), "test-key",
		service.WithClock(f.clock.Now),
		service.WithPublisher(f.events),
		service.WithArchive(f.archive),
	)
	return f
}

func (f *fixture) signUpAndIn(t *testing.T, email string) service.Session {
	t.Helper()
	ctx := context.Background()
	_, err := f.svcs.Auth.SignUp(ctx, service.SignUpInput{
		Email: email, Password: "sunshine", Name: "Surya Installers", Phone: "+91 98450 00000",
		Address: "Indiranagar", BusinessType: domain.BusinessInstaller,
	})
	require.NoError(t, err)
	sess, err := f.svcs.Auth.SignIn(ctx, email, "sunshine")
	require.NoError(t, err)
	return sess
}

func defaultQuotation(name string) service.QuotationInput {
	d := pricing.DefaultQuoteInput()
	return service.QuotationInput{
		CustomerName: name, CustomerEmail: "customer@example.in", CustomerPhone: "98450",
		SystemSize: d.SystemSize, PanelBrand: d.PanelBrand, InverterBrand: d.InverterBrand, WiringBrand: d.WiringBrand,
	}
}

func TestAuth_SignUpSignInResolve(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	sess := f.signUpAndIn(t, "Owner@Surya.test")

	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, "owner@surya.test", sess.Partner.Email)
	assert.Equal(t, domain.BusinessInstaller, sess.Partner.BusinessType)
	assert.True(t, sess.ExpiresAt.Equal(f.clock.Now().Add(service.SessionTTL)))

	resolved, err := f.svcs.Auth.Resolve(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.Partner.ID, resolved.Partner.ID)

	require.NoError(t, f.svcs.Auth.SignOut(ctx, sess.Token))
	_, err = f.svcs.Auth.Resolve(ctx, sess.Token)
	assert.ErrorIs(t, err, service.ErrUnauthenticated)
}

func TestAuth_SignInFailureLeavesNoSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.signUpAndIn(t, "owner@surya.test")

	sess, err := f.svcs.Auth.SignIn(ctx, "owner@surya.test", "wrong-password")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	assert.Empty(t, sess.Token)

	_, err = f.svcs.Auth.SignIn(ctx, "nobody@surya.test", "sunshine")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, err = f.svcs.Auth.Resolve(ctx, "")
	assert.ErrorIs(t, err, service.ErrUnauthenticated)
	_, err = f.svcs.Auth.Resolve(ctx, "made-up-token")
	assert.ErrorIs(t, err, service.ErrUnauthenticated)
}

func TestAuth_SignUpRejects(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.signUpAndIn(t, "taken@surya.test")

	_, err := f.svcs.Auth.SignUp(ctx, service.SignUpInput{
		Email: "TAKEN@surya.test", Password: "sunshine", Name: "Copy", Phone: "1", BusinessType: domain.BusinessDealer,
	})
	assert.ErrorIs(t, err, service.ErrEmailTaken)

	_, err = f.svcs.Auth.SignUp(ctx, service.SignUpInput{Email: "bad", Password: "123", BusinessType: "shop"})
	require.ErrorIs(t, err, service.ErrInvalidInput)
	var verr *service.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "invalid_email", verr.Violations["email"])
	assert.Equal(t, "min_length_6", verr.Violations["password"])
	assert.Equal(t, "required", verr.Violations["name"])
	assert.Equal(t, "required", verr.Violations["phone"])
	assert.Equal(t, "invalid_choice", verr.Violations["business_type"])
}

func TestAuth_SessionExpires(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	sess := f.signUpAndIn(t, "owner@surya.test")

	f.clock.Advance(service.SessionTTL)
	_, err := f.svcs.Auth.Resolve(ctx, sess.Token)
	assert.ErrorIs(t, err, service.ErrUnauthenticated)
}

func TestAuth_TokensDifferPerSignIn(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	first := f.signUpAndIn(t, "owner@surya.test")
	second, err := f.svcs.Auth.SignIn(ctx, "owner@surya.test", "sunshine")
	require.NoError(t, err)
	assert.NotEqual(t, first.Token, second.Token)

	require.NoError(t, f.svcs.Auth.SignOut(ctx, first.Token))
	_, err = f.svcs.Auth.Resolve(ctx, second.Token)
	assert.NoError(t, err)
}

func TestQuotations_SubmitAppearsFirst(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	sess := f.signUpAndIn(t, "owner@surya.test")

	first, err := f.svcs.Quotations.Submit(ctx, sess, defaultQuotation("Anand"))
	require.NoError(t, err)
	assert.Equal(t, 215000.0, first.TotalCost)
	assert.Equal(t, domain.StatusNew, first.Status)

	f.clock.Advance(time.Minute)
	second, err := f.svcs.Quotations.Submit(ctx, sess, defaultQuotation("Bhavna"))
	require.NoError(t, err)

	list, err := f.svcs.Quotations.List(ctx, sess)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)

	assert.Equal(t, []string{"quotation.submitted", "quotation.submitted"}, f.events.names)
	assert.Len(t, f.archive.objects, 2)

	url, err := f.svcs.Quotations.Document(ctx, sess, first.ID)
	require.NoError(t, err)
	assert.Contains(t, url, first.ID)
}

func TestQuotations_SubmitRejects(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	sess := f.signUpAndIn(t, "owner@surya.test")

	in := defaultQuotation("")
	_, err := f.svcs.Quotations.Submit(ctx, sess, in)
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	in = defaultQuotation("Anand")
	in.SystemSize = 0
	_, err = f.svcs.Quotations.Submit(ctx, sess, in)
	assert.ErrorIs(t, err, pricing.ErrInvalidParams)

	in = defaultQuotation("Anand")
	in.PanelBrand = "acme"
	_, err = f.svcs.Quotations.Submit(ctx, sess, in)
	assert.ErrorIs(t, err, pricing.ErrInvalidParams)

	list, err := f.svcs.Quotations.List(ctx, sess)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestQuotations_UpdateStatusScopedToPartner(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.signUpAndIn(t, "owner@surya.test")
	other := f.signUpAndIn(t, "other@surya.test")

	q, err := f.svcs.Quotations.Submit(ctx, owner, defaultQuotation("Anand"))
	require.NoError(t, err)

	_, err = f.svcs.Quotations.UpdateStatus(ctx, other, q.ID, domain.StatusLost)
	assert.ErrorIs(t, err, service.ErrQuotationNotFound)
	_, err = f.svcs.Quotations.Document(ctx, other, q.ID)
	assert.ErrorIs(t, err, service.ErrQuotationNotFound)

	_, err = f.svcs.Quotations.UpdateStatus(ctx, owner, q.ID, "archived")
	assert.ErrorIs(t, err, service.ErrInvalidStatus)

	updated, err := f.svcs.Quotations.UpdateStatus(ctx, owner, q.ID, domain.StatusConverted)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConverted, updated.Status)

	// any status may follow any other
	updated, err = f.svcs.Quotations.UpdateStatus(ctx, owner, q.ID, domain.StatusNew)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNew, updated.Status)

	assert.Contains(t, f.events.names, "quotation.status_changed")
}

func TestQuotations_DocumentsDisabled(t *testing.T) {
	ctx := context.Background()
	svcs := service.New(dbtest.New(t), "k")
	_, err := svcs.Auth.SignUp(ctx, service.SignUpInput{Email: "a@b.test", Password: "sunshine", Name: "A", Phone: "1", BusinessType: domain.BusinessDealer})
	require.NoError(t, err)
	sess, err := svcs.Auth.SignIn(ctx, "a@b.test", "sunshine")
	require.NoError(t, err)

	_, err = svcs.Quotations.Document(ctx, sess, "anything")
	assert.ErrorIs(t, err, service.ErrDocumentsDisabled)
}

func TestSummary_ForPartner(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	sess := f.signUpAndIn(t, "owner@surya.test")

	empty, err := f.svcs.Summary.ForPartner(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, domain.Summary{}, empty)

	a, err := f.svcs.Quotations.Submit(ctx, sess, defaultQuotation("Anand"))
	require.NoError(t, err)
	f.clock.Advance(24 * time.Hour)
	big := defaultQuotation("Bhavna")
	big.SystemSize = 10
	b, err := f.svcs.Quotations.Submit(ctx, sess, big)
	require.NoError(t, err)
	_, err = f.svcs.Quotations.UpdateStatus(ctx, sess, a.ID, domain.StatusConverted)
	require.NoError(t, err)

	sum, err := f.svcs.Summary.ForPartner(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.TotalQuotations)
	assert.Equal(t, 1, sum.TodayQuotations)
	assert.Equal(t, a.TotalCost+b.TotalCost, sum.TotalValue)
	assert.Equal(t, (a.TotalCost+b.TotalCost)/2, sum.AverageValue)
	assert.Equal(t, 50.0, sum.ConversionRate)
	assert.Equal(t, domain.StatusBreakdown{New: 1, Converted: 1}, sum.StatusBreakdown)
}

func TestSummarize_TodayUsesUTCDay(t *testing.T) {
	now := time.Date(2026, 3, 14, 0, 30, 0, 0, time.UTC)
	list := []domain.Quotation{
		{TotalCost: 100, Status: domain.StatusLost, DateSubmitted: now.Add(-time.Hour)},
		{TotalCost: 300, Status: domain.StatusContacted, DateSubmitted: now.Add(-10 * time.Minute)},
	}
	sum := service.Summarize(list, now)
	assert.Equal(t, 1, sum.TodayQuotations)
	assert.Equal(t, 400.0, sum.TotalValue)
	assert.Equal(t, 200.0, sum.AverageValue)
	assert.Equal(t, 0.0, sum.ConversionRate)
	assert.Equal(t, domain.StatusBreakdown{Contacted: 1, Lost: 1}, sum.StatusBreakdown)
}

func TestLeads_Submit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	lead, err := f.svcs.Leads.Submit(ctx, domain.QuoteRequest{Name: " Asha ", Email: "asha@example.in", Phone: "98450", Location: "pune", MonthlyBill: 4500})
	require.NoError(t, err)
	assert.NotEmpty(t, lead.ID)
	assert.Equal(t, "Asha", lead.Name)
	assert.Equal(t, domain.LeadSourceWeb, lead.Source)
	assert.Equal(t, []string{"lead.received"}, f.events.names)

	recent, err := f.svcs.Leads.Recent(ctx, 5)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, lead.ID, recent[0].ID)
}

func TestLeads_SubmitRejects(t *testing.T) {
	f := newFixture(t)
	_, err := f.svcs.Leads.Submit(context.Background(), domain.QuoteRequest{Name: "Asha", Email: "asha@example.in", Location: "goa"})
	var verr *service.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "required", verr.Violations["phone"])
	assert.Equal(t, "invalid_choice", verr.Violations["location"])
	assert.Empty(t, f.events.names)
}
