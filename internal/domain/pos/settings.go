package pos

import (
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/posify/internal/domain/pricing"
)

// Theme is the terminal colour scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ErrInvalidSettings is returned when a settings update is rejected.
var ErrInvalidSettings = errors.New("invalid settings")

// Settings are the restaurant-wide preferences of the terminal.
type Settings struct {
	RestaurantName  string          `json:"restaurantName"`
	Currency        string          `json:"currency"`
	TaxRate         decimal.Decimal `json:"taxRate"`
	ServiceCharge   decimal.Decimal `json:"serviceCharge"`
	OrderAutoAccept bool            `json:"orderAutoAccept"`
	PrintReceipts   bool            `json:"printReceipts"`
	Theme           Theme           `json:"theme"`
}

// DefaultSettings returns the settings of a fresh install.
func DefaultSettings() Settings {
	return Settings{
		RestaurantName:  "POSify Restaurant",
		Currency:        "USD",
		TaxRate:         decimal.RequireFromString("0.08"),
		ServiceCharge:   decimal.RequireFromString("0.10"),
		OrderAutoAccept: true,
		PrintReceipts:   true,
		Theme:           ThemeLight,
	}
}

// Rates returns the pricing rates.
func (s Settings) Rates() pricing.Rates {
	return pricing.Rates{Tax: s.TaxRate, Service: s.ServiceCharge}
}

// Validate checks the settings are usable for pricing.
func (s Settings) Validate() error {
	switch {
	case strings.TrimSpace(s.RestaurantName) == "":
		return errors.Wrap(ErrInvalidSettings, "restaurant name is required")
	case len(s.Currency) != 3:
		return errors.Wrapf(ErrInvalidSettings, "currency %q must be a 3-letter code", s.Currency)
	case s.TaxRate.IsNegative() || s.TaxRate.GreaterThanOrEqual(decimal.NewFromInt(1)):
		return errors.Wrapf(ErrInvalidSettings, "tax rate %s must be in [0, 1)", s.TaxRate)
	case s.ServiceCharge.IsNegative() || s.ServiceCharge.GreaterThanOrEqual(decimal.NewFromInt(1)):
		return errors.Wrapf(ErrInvalidSettings, "service charge %s must be in [0, 1)", s.ServiceCharge)
	case s.Theme != ThemeLight && s.Theme != ThemeDark:
		return errors.Wrapf(ErrInvalidSettings, "theme %q", s.Theme)
	}
	return nil
}

// SettingsUpdate is a partial settings change. Nil fields are kept.
type SettingsUpdate struct {
	RestaurantName  *string          `json:"restaurantName,omitempty"`
	Currency        *string          `json:"currency,omitempty"`
	TaxRate         *decimal.Decimal `json:"taxRate,omitempty"`
	ServiceCharge   *decimal.Decimal `json:"serviceCharge,omitempty"`
	OrderAutoAccept *bool            `json:"orderAutoAccept,omitempty"`
	PrintReceipts   *bool            `json:"printReceipts,omitempty"`
	Theme           *Theme           `json:"theme,omitempty"`
}

// apply returns s with u merged in.
func (u SettingsUpdate) apply(s Settings) Settings {
	if u.RestaurantName != nil {
		s.RestaurantName = *u.RestaurantName
	}
	if u.Currency != nil {
		s.Currency = strings.ToUpper(*u.Currency)
	}
	if u.TaxRate != nil {
		s.TaxRate = *u.TaxRate
	}
	if u.ServiceCharge != nil {
		s.ServiceCharge = *u.ServiceCharge
	}
	if u.OrderAutoAccept != nil {
		s.OrderAutoAccept = *u.OrderAutoAccept
	}
	if u.PrintReceipts != nil {
		s.PrintReceipts = *u.PrintReceipts
	}
	if u.Theme != nil {
		s.Theme = *u.Theme
	}
	return s
}
