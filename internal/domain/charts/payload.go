// Package charts models the structured spending breakdown returned by the
// LLM and renders it as a page of charts.
package charts

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/paisalens/paisalens/pkg/money"
)

// Paise is a rupee amount in integer minor units. The model returns rupee
// numbers (sometimes quoted); decoding goes through decimal so float noise
// never reaches stored amounts.
type Paise int64

// UnmarshalJSON accepts a JSON number or a numeric string.
func (p *Paise) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(strings.Trim(string(b), `"`))
	if s == "" || s == "null" {
		*p = 0
		return nil
	}

	// Tolerate thousands separators the model sometimes emits.
	s = strings.ReplaceAll(s, ",", "")

	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", s, err)
	}

	*p = Paise(d.Mul(decimal.NewFromInt(100)).Round(0).IntPart())
	return nil
}

// MarshalJSON writes the amount back as a rupee number.
func (p Paise) MarshalJSON() ([]byte, error) {
	return []byte(decimal.NewFromInt(int64(p)).Div(decimal.NewFromInt(100)).String()), nil
}

// Rupees returns the amount as a float for chart values.
func (p Paise) Rupees() float64 {
	return money.Rupees(int64(p))
}

// Display formats the amount as a rupee string.
func (p Paise) Display() string {
	return money.Display(int64(p))
}

// Payload is the spending breakdown schema the chart prompt requests.
type Payload struct {
	CategorySpending          []CategoryAmount  `json:"category_spending"`
	TopMerchants              []MerchantAmount  `json:"top_merchants"`
	MonthlySpending           []MonthAmount     `json:"monthly_spending"`
	CreditVsDebit             Totals            `json:"credit_vs_debit"`
	DailySpending             []DailyFlow       `json:"daily_spending"`
	EssentialsVsDiscretionary []TypeAmount      `json:"essentials_vs_discretionary"`
	CumulativeSpending        []CumulativePoint `json:"cumulative_spending"`
	WeekdaySpending           []WeekdayAmount   `json:"weekday_spending"`
	TimeOfDaySpending         []PeriodAmount    `json:"time_of_day_spending"`
	IncomeVsSpendTrend        []DailyFlow       `json:"income_vs_spend_trend"`
}

type CategoryAmount struct {
	Category string `json:"category"`
	Amount   Paise  `json:"amount"`
}

type MerchantAmount struct {
	Merchant string `json:"merchant"`
	Amount   Paise  `json:"amount"`
}

type MonthAmount struct {
	Month  string `json:"month"`
	Amount Paise  `json:"amount"`
}

type Totals struct {
	TotalCredit Paise `json:"total_credit"`
	TotalDebit  Paise `json:"total_debit"`
}

type DailyFlow struct {
	Date   string `json:"date"`
	Debit  Paise  `json:"debit"`
	Credit Paise  `json:"credit"`
}

type TypeAmount struct {
	Type   string `json:"type"`
	Amount Paise  `json:"amount"`
}

type CumulativePoint struct {
	Date            string `json:"date"`
	CumulativeDebit Paise  `json:"cumulative_debit"`
}

type WeekdayAmount struct {
	Weekday string `json:"weekday"`
	Amount  Paise  `json:"amount"`
}

type PeriodAmount struct {
	Period string `json:"period"`
	Amount Paise  `json:"amount"`
}

// Parse decodes a cleaned model response into a Payload.
func Parse(cleanedJSON string) (*Payload, error) {
	var p Payload
	if err := json.Unmarshal([]byte(cleanedJSON), &p); err != nil {
		return nil, fmt.Errorf("failed to parse chart data: %w", err)
	}
	return &p, nil
}
