package models

import (
	"fmt"
	"strings"
	"time"
)

// MilkingType tags a milk-in entry with its session of the day.
type MilkingType string

const (
	MilkingMorning MilkingType = "MORNING"
	MilkingEvening MilkingType = "EVENING"
)

// ParseMilkingType maps free text onto a milking session.
func ParseMilkingType(value string) (MilkingType, error) {
	switch t := MilkingType(strings.ToUpper(strings.TrimSpace(value))); t {
	case MilkingMorning, MilkingEvening:
		return t, nil
	default:
		return "", NewValidationError("milkingType", fmt.Sprintf("unknown milking type %q", value))
	}
}

// PaymentMode is how a customer paid for a sale.
type PaymentMode string

const (
	PaymentCash  PaymentMode = "CASH"
	PaymentMpesa PaymentMode = "MPESA"
)

// ParsePaymentMode maps free text onto a payment mode.
func ParsePaymentMode(value string) (PaymentMode, error) {
	switch m := PaymentMode(strings.ToUpper(strings.TrimSpace(value))); m {
	case PaymentCash, PaymentMpesa:
		return m, nil
	default:
		return "", NewValidationError("paymentMode", fmt.Sprintf("unknown payment mode %q", value))
	}
}

// SpoilageCause explains a loss.
type SpoilageCause string

const (
	CauseContamination    SpoilageCause = "CONTAMINATION"
	CauseTemperature      SpoilageCause = "TEMPERATURE"
	CauseSour             SpoilageCause = "SOUR"
	CauseImproperStorage  SpoilageCause = "IMPROPER_STORAGE"
	CauseEquipmentFailure SpoilageCause = "EQUIPMENT_FAILURE"
	CauseExpired          SpoilageCause = "EXPIRED"
	CauseOther            SpoilageCause = "OTHER"
)

// ParseSpoilageCause maps free text onto a cause. Blank input means no cause.
func ParseSpoilageCause(value string) (*SpoilageCause, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	c := SpoilageCause(strings.ToUpper(strings.TrimSpace(value)))
	switch c {
	case CauseContamination, CauseTemperature, CauseSour, CauseImproperStorage,
		CauseEquipmentFailure, CauseExpired, CauseOther:
		return &c, nil
	default:
		return nil, NewValidationError("cause", fmt.Sprintf("unknown spoilage cause %q", value))
	}
}

// MilkInEntry records milk collected from a cow (or an owner's herd when CowID is empty).
// Entries are immutable once stored.
type MilkInEntry struct {
	EntryID     string      `bson:"_id" json:"entryId"`
	CowID       string      `bson:"cow_id,omitempty" json:"cowId,omitempty"`
	OwnerID     string      `bson:"owner_id" json:"ownerId"`
	Liters      float64     `bson:"liters" json:"liters"`
	Date        time.Time   `bson:"date" json:"date"`
	MilkingType MilkingType `bson:"milking_type" json:"milkingType"`
}

// MilkOutEntry records a sale.
type MilkOutEntry struct {
	SaleID        string      `bson:"_id" json:"saleId"`
	CustomerID    string      `bson:"customer_id" json:"customerId"`
	CustomerName  string      `bson:"customer_name" json:"customerName"`
	Date          time.Time   `bson:"date" json:"date"`
	QuantitySold  float64     `bson:"quantity_sold" json:"quantitySold"`
	PricePerLiter float64     `bson:"price_per_liter" json:"pricePerLiter"`
	PaymentMode   PaymentMode `bson:"payment_mode" json:"paymentMode"`
}

// MilkSpoiltEntry records milk lost to spoilage.
type MilkSpoiltEntry struct {
	SpoiltID     string         `bson:"_id" json:"spoiltId"`
	Date         time.Time      `bson:"date" json:"date"`
	AmountSpoilt float64        `bson:"amount_spoilt" json:"amountSpoilt"`
	LossAmount   float64        `bson:"loss_amount" json:"lossAmount"`
	Cause        *SpoilageCause `bson:"cause,omitempty" json:"cause,omitempty"`
}

// InventorySnapshot is the cached stock level. It is derived from the milk-in, milk-out and
// spoilage facts and may lag them; the ledger recomputes it on read.
type InventorySnapshot struct {
	CurrentStock float64   `bson:"current_stock" json:"currentStock"`
	LastUpdated  time.Time `bson:"last_updated" json:"lastUpdated"`
}
