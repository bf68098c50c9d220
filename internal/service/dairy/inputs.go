package dairy

// MilkInInput is a milk collection request. CowID is optional: without it the liters are
// attributed to the owner's herd and no eligibility check applies.
type MilkInInput struct {
	CowID       string  `json:"cowId"`
	OwnerID     string  `json:"ownerId"`
	Liters      float64 `json:"liters"`
	Date        string  `json:"date"`
	MilkingType string  `json:"milkingType"`
}

// SaleInput is a milk sale request. The customer is looked up by name and created if unknown.
type SaleInput struct {
	CustomerName  string  `json:"customerName"`
	Date          string  `json:"date"`
	QuantitySold  float64 `json:"quantitySold"`
	PricePerLiter float64 `json:"pricePerLiter"`
	PaymentMode   string  `json:"paymentMode"`
}

// SpoilageInput records a loss.
type SpoilageInput struct {
	Date         string  `json:"date"`
	AmountSpoilt float64 `json:"amountSpoilt"`
	LossAmount   float64 `json:"lossAmount"`
	Cause        string  `json:"cause"`
}

// CowInput registers or updates a cow. Dates are YYYY-MM-DD; blank means not recorded.
type CowInput struct {
	OwnerID             string  `json:"ownerId"`
	Name                string  `json:"name"`
	Breed               string  `json:"breed"`
	Age                 int     `json:"age"`
	Weight              float64 `json:"weight"`
	EntryDate           string  `json:"entryDate"`
	HealthStatus        string  `json:"healthStatus"`
	ActionStatus        string  `json:"actionStatus"`
	DewormingDue        string  `json:"dewormingDue"`
	DewormingLast       string  `json:"dewormingLast"`
	CalvingDate         string  `json:"calvingDate"`
	VaccinationDue      string  `json:"vaccinationDue"`
	VaccinationLast     string  `json:"vaccinationLast"`
	AntibioticTreatment string  `json:"antibioticTreatment"`
	Note                string  `json:"note"`
}

// MemberInput registers a member.
type MemberInput struct {
	Name string `json:"name"`
}

// ArchiveInput deactivates a cow or member. A blank date means today.
type ArchiveInput struct {
	Reason string `json:"reason"`
	Date   string `json:"archiveDate"`
}
