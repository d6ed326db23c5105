// Package web serves the public site and the partner portal pages. All data
// goes through the JSON API; the live calculator runs here over a websocket.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/domain"
	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/pricing"
	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/service"
	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/web/api"
)

//go:embed templates/*.html
var templateFS embed.FS

type Server struct {
	mux      *http.ServeMux
	tmpl     *template.Template
	api      *api.Client
	key      []byte
	debounce time.Duration
	now      func() time.Time
}

func New(client *api.Client, authKey string, debounce time.Duration) *Server {
	funcMap := template.FuncMap{
		"inr":    pricing.FormatINR,
		"toJSON": toJSON,
		"formatDate": func(t time.Time) string {
			return t.Local().Format("02 Jan 2006, 15:04")
		},
		"percent": func(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) + "%" },
	}
	tmpl := template.Must(template.New("base").Funcs(funcMap).ParseFS(templateFS, "templates/*.html"))

	s := &Server{
		mux:      http.NewServeMux(),
		tmpl:     tmpl,
		api:      client,
		key:      []byte(authKey),
		debounce: debounce,
		now:      time.Now,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)
	s.mux.HandleFunc("GET /{$}", s.handleHome)
	s.mux.HandleFunc("GET /ws/calculator", s.handleCalculator)
	s.mux.HandleFunc("POST /quote-request", s.handleQuoteRequest)

	s.mux.HandleFunc("GET /partner/login", s.handleLoginPage)
	s.mux.HandleFunc("POST /partner/login", s.handleLogin)
	s.mux.HandleFunc("GET /partner/signup", s.handleSignupPage)
	s.mux.HandleFunc("POST /partner/signup", s.handleSignup)
	s.mux.HandleFunc("POST /partner/logout", s.handleLogout)

	s.mux.HandleFunc("GET /partner/dashboard", s.requirePartner(s.handleDashboard))
	s.mux.HandleFunc("POST /partner/quotations/{id}/status", s.requirePartner(s.handleStatus))
	s.mux.HandleFunc("GET /partner/quotations/{id}/document", s.requirePartner(s.handleDocument))
	s.mux.HandleFunc("GET /partner/quotation", s.requirePartner(s.handleQuotationPage))
	s.mux.HandleFunc("POST /partner/quotation", s.requirePartner(s.handleQuotation))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

type partnerHandler func(w http.ResponseWriter, r *http.Request, cs cookieSession)

// requirePartner sends visitors without a valid session to the login page.
func (s *Server) requirePartner(h partnerHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cs, ok := s.readSession(r)
		if !ok {
			http.Redirect(w, r, "/partner/login", http.StatusSeeOther)
			return
		}
		h(w, r, cs)
	}
}

// signedOut handles an API 401 on a protected page: the stored token is no
// longer valid, so the cookie goes too.
func (s *Server) signedOut(w http.ResponseWriter, r *http.Request) {
	s.clearSession(w)
	http.Redirect(w, r, "/partner/login", http.StatusSeeOther)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "online"
	if err := s.api.Health(ctx); err != nil {
		status = "offline"
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.renderHome(w, http.StatusOK, domain.QuoteRequest{}, nil, r.URL.Query().Get("lead") == "sent")
}

func (s *Server) renderHome(w http.ResponseWriter, status int, lead domain.QuoteRequest, leadErr error, sent bool) {
	params := pricing.DefaultParams()
	result, _ := pricing.Estimate(params)
	data := map[string]any{
		"Title":    "Solar Savings",
		"Catalog":  pricing.DefaultCatalog(),
		"Params":   params,
		"Result":   result,
		"Payback":  result.Payback(),
		"Lead":     lead,
		"LeadSent": sent,
	}
	if leadErr != nil {
		data["LeadError"] = errorMessage(leadErr)
		data["Violations"] = violations(leadErr)
	}
	s.render(w, status, "home.html", data)
}

func (s *Server) handleQuoteRequest(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	lead := domain.QuoteRequest{
		Name:        r.FormValue("name"),
		Email:       r.FormValue("email"),
		Phone:       r.FormValue("phone"),
		Location:    r.FormValue("location"),
		MonthlyBill: formFloat(r, "monthly_bill"),
		SystemType:  r.FormValue("system_type"),
		Message:     r.FormValue("message"),
	}
	if _, err := s.api.SubmitQuoteRequest(ctx, lead); err != nil {
		s.renderHome(w, statusFor(err), lead, err, false)
		return
	}
	http.Redirect(w, r, "/?lead=sent#quote", http.StatusSeeOther)
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.readSession(r); ok {
		http.Redirect(w, r, "/partner/dashboard", http.StatusSeeOther)
		return
	}
	s.render(w, http.StatusOK, "login.html", map[string]any{"Title": "Partner Login"})
}

// handleLogin never redirects on failure: the form is shown again with the error.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	email := strings.TrimSpace(r.FormValue("email"))
	sess, err := s.api.SignIn(ctx, email, r.FormValue("password"))
	if err != nil {
		s.render(w, statusFor(err), "login.html", map[string]any{
			"Title": "Partner Login",
			"Email": email,
			"Error": errorMessage(err),
		})
		return
	}
	s.setSession(w, fromSession(sess))
	log.Info().Str("partner_id", sess.Partner.ID).Msg("partner signed in")
	http.Redirect(w, r, "/partner/dashboard", http.StatusSeeOther)
}

func (s *Server) handleSignupPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "signup.html", map[string]any{
		"Title":         "Become a Partner",
		"BusinessTypes": domain.BusinessTypes,
		"Form":          service.SignUpInput{BusinessType: domain.BusinessDealer},
	})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	in := service.SignUpInput{
		Email:        strings.TrimSpace(r.FormValue("email")),
		Password:     r.FormValue("password"),
		Name:         r.FormValue("name"),
		Phone:        r.FormValue("phone"),
		Address:      r.FormValue("address"),
		BusinessType: domain.BusinessType(r.FormValue("business_type")),
	}
	fail := func(err error) {
		in.Password = ""
		s.render(w, statusFor(err), "signup.html", map[string]any{
			"Title":         "Become a Partner",
			"BusinessTypes": domain.BusinessTypes,
			"Form":          in,
			"Error":         errorMessage(err),
			"Violations":    violations(err),
		})
	}
	if r.FormValue("confirm_password") != in.Password {
		fail(errPasswordMismatch)
		return
	}
	if _, err := s.api.SignUp(ctx, in); err != nil {
		fail(err)
		return
	}
	sess, err := s.api.SignIn(ctx, in.Email, in.Password)
	if err != nil {
		fail(err)
		return
	}
	s.setSession(w, fromSession(sess))
	http.Redirect(w, r, "/partner/dashboard", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cs, ok := s.readSession(r); ok {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := s.api.SignOut(ctx, cs.Token); err != nil && !api.IsUnauthorized(err) {
			log.Warn().Err(err).Msg("api sign out failed")
		}
	}
	s.clearSession(w)
	http.Redirect(w, r, "/partner/login", http.StatusSeeOther)
}

// handleDashboard loads the summary and the quotation list in parallel.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request, cs cookieSession) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var (
		summary    domain.Summary
		quotations []domain.Quotation
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		summary, err = s.api.Summary(gctx, cs.Token)
		return err
	})
	g.Go(func() error {
		var err error
		quotations, err = s.api.Quotations(gctx, cs.Token)
		return err
	})
	err := g.Wait()
	if api.IsUnauthorized(err) {
		s.signedOut(w, r)
		return
	}

	data := map[string]any{
		"Title":      "Partner Dashboard",
		"Partner":    cs.PartnerName,
		"Summary":    summary,
		"Quotations": quotations,
		"Statuses":   domain.QuotationStatuses,
		"Submitted":  r.URL.Query().Get("submitted") != "",
		"Notice":     r.URL.Query().Get("error"),
	}
	status := http.StatusOK
	if err != nil {
		log.Error().Err(err).Str("partner_id", cs.PartnerID).Msg("dashboard load failed")
		data["Error"] = "Could not load your quotations, please refresh."
		status = http.StatusBadGateway
	}
	s.render(w, status, "dashboard.html", data)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request, cs cookieSession) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	_, err := s.api.UpdateStatus(ctx, cs.Token, r.PathValue("id"), domain.QuotationStatus(r.FormValue("status")))
	switch {
	case api.IsUnauthorized(err):
		s.signedOut(w, r)
	case err != nil:
		log.Warn().Err(err).Str("quotation_id", r.PathValue("id")).Msg("status update failed")
		http.Redirect(w, r, "/partner/dashboard?error=status", http.StatusSeeOther)
	default:
		http.Redirect(w, r, "/partner/dashboard", http.StatusSeeOther)
	}
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request, cs cookieSession) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	url, err := s.api.Document(ctx, cs.Token, r.PathValue("id"))
	switch {
	case api.IsUnauthorized(err):
		s.signedOut(w, r)
	case err != nil:
		http.Redirect(w, r, "/partner/dashboard?error=document", http.StatusSeeOther)
	default:
		http.Redirect(w, r, url, http.StatusFound)
	}
}

func (s *Server) handleQuotationPage(w http.ResponseWriter, r *http.Request, cs cookieSession) {
	d := pricing.DefaultQuoteInput()
	in := service.QuotationInput{SystemSize: d.SystemSize, PanelBrand: d.PanelBrand, InverterBrand: d.InverterBrand, WiringBrand: d.WiringBrand}
	s.renderQuotation(r.Context(), w, http.StatusOK, cs, in, nil)
}

func (s *Server) handleQuotation(w http.ResponseWriter, r *http.Request, cs cookieSession) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	size, _ := strconv.Atoi(r.FormValue("system_size"))
	in := service.QuotationInput{
		CustomerName:  r.FormValue("customer_name"),
		CustomerEmail: r.FormValue("customer_email"),
		CustomerPhone: r.FormValue("customer_phone"),
		SystemSize:    size,
		PanelBrand:    r.FormValue("panel_brand"),
		InverterBrand: r.FormValue("inverter_brand"),
		WiringBrand:   r.FormValue("wiring_brand"),
	}
	if r.FormValue("action") == "preview" {
		s.renderQuotation(ctx, w, http.StatusOK, cs, in, nil)
		return
	}

	q, err := s.api.SubmitQuotation(ctx, cs.Token, in)
	if api.IsUnauthorized(err) {
		s.signedOut(w, r)
		return
	}
	if err != nil {
		s.renderQuotation(ctx, w, statusFor(err), cs, in, err)
		return
	}
	http.Redirect(w, r, "/partner/dashboard?submitted="+q.ID, http.StatusSeeOther)
}

func (s *Server) renderQuotation(ctx context.Context, w http.ResponseWriter, status int, cs cookieSession, in service.QuotationInput, submitErr error) {
	data := map[string]any{
		"Title":   "New Quotation",
		"Partner": cs.PartnerName,
		"Catalog": pricing.DefaultCatalog(),
		"Form":    in,
	}
	preview, err := s.api.Preview(ctx, pricing.QuoteInput{
		SystemSize: in.SystemSize, PanelBrand: in.PanelBrand, InverterBrand: in.InverterBrand, WiringBrand: in.WiringBrand,
	})
	if err == nil {
		data["Preview"] = preview
	} else {
		data["PreviewError"] = errorMessage(err)
	}
	if submitErr != nil {
		data["Error"] = errorMessage(submitErr)
		data["Violations"] = violations(submitErr)
	}
	s.render(w, status, "quotation.html", data)
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		log.Error().Err(err).Str("template", name).Msg("render failed")
	}
}

// errPasswordMismatch is the only check the web layer makes itself.
var errPasswordMismatch = errors.New("passwords do not match")

// statusFor picks the page status for a failed call: client mistakes keep
// their API status, anything else is a bad gateway.
func statusFor(err error) int {
	var apiErr *api.Error
	switch {
	case errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError:
		return apiErr.Status
	case errors.Is(err, errPasswordMismatch):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

func errorMessage(err error) string {
	var apiErr *api.Error
	switch {
	case errors.As(err, &apiErr):
		return apiErr.Error()
	case errors.Is(err, errPasswordMismatch):
		return "Passwords do not match"
	default:
		return "The service is unavailable, please try again shortly."
	}
}

func violations(err error) map[string]string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.Violations
	}
	return nil
}

func formFloat(r *http.Request, key string) float64 {
	v, _ := strconv.ParseFloat(strings.TrimSpace(r.FormValue(key)), 64)
	return v
}

func toJSON(v any) template.JS {
	b, _ := json.Marshal(v)
	return template.JS(b)
}
