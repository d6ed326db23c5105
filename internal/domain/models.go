package domain

import "time"

type BusinessType string

const (
	BusinessDealer      BusinessType = "dealer"
	BusinessInstaller   BusinessType = "installer"
	BusinessDistributor BusinessType = "distributor"
	BusinessConsultant  BusinessType = "consultant"
)

var BusinessTypes = []BusinessType{BusinessDealer, BusinessInstaller, BusinessDistributor, BusinessConsultant}

func (b BusinessType) Valid() bool {
	for _, v := range BusinessTypes {
		if v == b {
			return true
		}
	}
	return false
}

// QuotationStatus is the sales lifecycle of a partner quotation:
// new -> contacted -> converted, or lost.
type QuotationStatus string

const (
	StatusNew       QuotationStatus = "new"
	StatusContacted QuotationStatus = "contacted"
	StatusConverted QuotationStatus = "converted"
	StatusLost      QuotationStatus = "lost"
)

var QuotationStatuses = []QuotationStatus{StatusNew, StatusContacted, StatusConverted, StatusLost}

func (s QuotationStatus) Valid() bool {
	for _, v := range QuotationStatuses {
		if v == s {
			return true
		}
	}
	return false
}

type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type Partner struct {
	ID           string       `db:"id" json:"id"`
	UserID       string       `db:"user_id" json:"user_id"`
	Name         string       `db:"name" json:"name"`
	Phone        string       `db:"phone" json:"phone"`
	Email        string       `db:"email" json:"email"`
	Address      string       `db:"address" json:"address"`
	BusinessType BusinessType `db:"business_type" json:"business_type"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
}

// SessionRecord is the stored form of a session; only the token hash is kept.
type SessionRecord struct {
	TokenHash string    `db:"token_hash"`
	UserID    string    `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
	ExpiresAt time.Time `db:"expires_at"`
}

type Quotation struct {
	ID            string          `db:"id" json:"id"`
	PartnerID     string          `db:"partner_id" json:"partner_id"`
	CustomerName  string          `db:"customer_name" json:"customer_name"`
	CustomerEmail string          `db:"customer_email" json:"customer_email"`
	CustomerPhone string          `db:"customer_phone" json:"customer_phone"`
	SystemSize    int             `db:"system_size" json:"system_size"`
	PanelBrand    string          `db:"panel_brand" json:"panel_brand"`
	InverterBrand string          `db:"inverter_brand" json:"inverter_brand"`
	WiringBrand   string          `db:"wiring_brand" json:"wiring_brand"`
	TotalCost     float64         `db:"total_cost" json:"total_cost"`
	Status        QuotationStatus `db:"status" json:"status"`
	DateSubmitted time.Time       `db:"date_submitted" json:"date_submitted"`
}

type LeadSource string

const (
	LeadSourceWeb  LeadSource = "web"
	LeadSourceMQTT LeadSource = "mqtt"
)

// QuoteRequest is a lead captured from the public site.
type QuoteRequest struct {
	ID          string     `db:"id" json:"id"`
	Name        string     `db:"name" json:"name"`
	Email       string     `db:"email" json:"email"`
	Phone       string     `db:"phone" json:"phone"`
	Location    string     `db:"location" json:"location"`
	MonthlyBill float64    `db:"monthly_bill" json:"monthly_bill"`
	SystemType  string     `db:"system_type" json:"system_type"`
	Message     string     `db:"message" json:"message"`
	Source      LeadSource `db:"source" json:"source"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

type StatusBreakdown struct {
	New       int `json:"new"`
	Contacted int `json:"contacted"`
	Converted int `json:"converted"`
	Lost      int `json:"lost"`
}

// Summary aggregates a partner's quotations for the dashboard.
type Summary struct {
	TotalQuotations int             `json:"total_quotations"`
	TodayQuotations int             `json:"today_quotations"`
	TotalValue      float64         `json:"total_value"`
	AverageValue    float64         `json:"average_value"`
	ConversionRate  float64         `json:"conversion_rate"`
	StatusBreakdown StatusBreakdown `json:"status_breakdown"`
}
