package models

import (
	"encoding/json"
	"time"

	"github.com/mamadbah2/dairycoop/internal/domain/calendar"
)

// Dates travel as YYYY-MM-DD on the wire and as time.Time in storage. Each dated model
// shadows its date fields with strings in an alias struct.

func decodeDate(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	d, err := calendar.Parse(value)
	if err != nil {
		return time.Time{}, NewValidationError(field, "must be a date in YYYY-MM-DD format")
	}
	return d, nil
}

func decodeDatePtr(field string, value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	d, err := decodeDate(field, *value)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ===============================
// MILK FACTS
// ===============================

func (e MilkInEntry) MarshalJSON() ([]byte, error) {
	type alias MilkInEntry
	return json.Marshal(struct {
		alias
		Date string `json:"date"`
	}{alias(e), calendar.Format(e.Date)})
}

func (e *MilkInEntry) UnmarshalJSON(data []byte) error {
	type alias MilkInEntry
	aux := struct {
		*alias
		Date string `json:"date"`
	}{alias: (*alias)(e)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	var err error
	e.Date, err = decodeDate("date", aux.Date)
	return err
}

func (e MilkOutEntry) MarshalJSON() ([]byte, error) {
	type alias MilkOutEntry
	return json.Marshal(struct {
		alias
		Date string `json:"date"`
	}{alias(e), calendar.Format(e.Date)})
}

func (e *MilkOutEntry) UnmarshalJSON(data []byte) error {
	type alias MilkOutEntry
	aux := struct {
		*alias
		Date string `json:"date"`
	}{alias: (*alias)(e)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	var err error
	e.Date, err = decodeDate("date", aux.Date)
	return err
}

func (e MilkSpoiltEntry) MarshalJSON() ([]byte, error) {
	type alias MilkSpoiltEntry
	return json.Marshal(struct {
		alias
		Date string `json:"date"`
	}{alias(e), calendar.Format(e.Date)})
}

func (e *MilkSpoiltEntry) UnmarshalJSON(data []byte) error {
	type alias MilkSpoiltEntry
	aux := struct {
		*alias
		Date string `json:"date"`
	}{alias: (*alias)(e)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	var err error
	e.Date, err = decodeDate("date", aux.Date)
	return err
}

// ===============================
// HERD
// ===============================

func (s CowStatus) MarshalJSON() ([]byte, error) {
	type alias CowStatus
	return json.Marshal(struct {
		alias
		DewormingDue        *string `json:"dewormingDue,omitempty"`
		DewormingLast       *string `json:"dewormingLast,omitempty"`
		CalvingDate         *string `json:"calvingDate,omitempty"`
		VaccinationDue      *string `json:"vaccinationDue,omitempty"`
		VaccinationLast     *string `json:"vaccinationLast,omitempty"`
		AntibioticTreatment *string `json:"antibioticTreatment,omitempty"`
	}{
		alias:               alias(s),
		DewormingDue:        calendar.FormatPtr(s.DewormingDue),
		DewormingLast:       calendar.FormatPtr(s.DewormingLast),
		CalvingDate:         calendar.FormatPtr(s.CalvingDate),
		VaccinationDue:      calendar.FormatPtr(s.VaccinationDue),
		VaccinationLast:     calendar.FormatPtr(s.VaccinationLast),
		AntibioticTreatment: calendar.FormatPtr(s.AntibioticTreatment),
	})
}

func (s *CowStatus) UnmarshalJSON(data []byte) error {
	type alias CowStatus
	aux := struct {
		*alias
		DewormingDue        *string `json:"dewormingDue,omitempty"`
		DewormingLast       *string `json:"dewormingLast,omitempty"`
		CalvingDate         *string `json:"calvingDate,omitempty"`
		VaccinationDue      *string `json:"vaccinationDue,omitempty"`
		VaccinationLast     *string `json:"vaccinationLast,omitempty"`
		AntibioticTreatment *string `json:"antibioticTreatment,omitempty"`
	}{alias: (*alias)(s)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	fields := []struct {
		name   string
		value  *string
		target **time.Time
	}{
		{"dewormingDue", aux.DewormingDue, &s.DewormingDue},
		{"dewormingLast", aux.DewormingLast, &s.DewormingLast},
		{"calvingDate", aux.CalvingDate, &s.CalvingDate},
		{"vaccinationDue", aux.VaccinationDue, &s.VaccinationDue},
		{"vaccinationLast", aux.VaccinationLast, &s.VaccinationLast},
		{"antibioticTreatment", aux.AntibioticTreatment, &s.AntibioticTreatment},
	}
	for _, f := range fields {
		d, err := decodeDatePtr(f.name, f.value)
		if err != nil {
			return err
		}
		*f.target = d
	}
	return nil
}

func (c Cow) MarshalJSON() ([]byte, error) {
	type alias Cow
	return json.Marshal(struct {
		alias
		EntryDate   string  `json:"entryDate"`
		ArchiveDate *string `json:"archiveDate,omitempty"`
	}{alias(c), calendar.Format(c.EntryDate), calendar.FormatPtr(c.ArchiveDate)})
}

func (c *Cow) UnmarshalJSON(data []byte) error {
	type alias Cow
	aux := struct {
		*alias
		EntryDate   string  `json:"entryDate"`
		ArchiveDate *string `json:"archiveDate,omitempty"`
	}{alias: (*alias)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	var err error
	if c.EntryDate, err = decodeDate("entryDate", aux.EntryDate); err != nil {
		return err
	}
	c.ArchiveDate, err = decodeDatePtr("archiveDate", aux.ArchiveDate)
	return err
}

func (c CowWithStats) MarshalJSON() ([]byte, error) {
	type alias CowWithStats
	return json.Marshal(struct {
		alias
		LastMilkingDate *string `json:"lastMilkingDate,omitempty"`
	}{alias(c), calendar.FormatPtr(c.LastMilkingDate)})
}

func (c *CowWithStats) UnmarshalJSON(data []byte) error {
	type alias CowWithStats
	aux := struct {
		*alias
		LastMilkingDate *string `json:"lastMilkingDate,omitempty"`
	}{alias: (*alias)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	var err error
	c.LastMilkingDate, err = decodeDatePtr("lastMilkingDate", aux.LastMilkingDate)
	return err
}

func (m Member) MarshalJSON() ([]byte, error) {
	type alias Member
	return json.Marshal(struct {
		alias
		ArchiveDate *string `json:"archiveDate,omitempty"`
	}{alias(m), calendar.FormatPtr(m.ArchiveDate)})
}

func (m *Member) UnmarshalJSON(data []byte) error {
	type alias Member
	aux := struct {
		*alias
		ArchiveDate *string `json:"archiveDate,omitempty"`
	}{alias: (*alias)(m)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	var err error
	m.ArchiveDate, err = decodeDatePtr("archiveDate", aux.ArchiveDate)
	return err
}

// ===============================
// REPORTS
// ===============================

func (r DailyReport) MarshalJSON() ([]byte, error) {
	type alias DailyReport
	return json.Marshal(struct {
		alias
		Date string `json:"date"`
	}{alias(r), calendar.Format(r.Date)})
}

func (r *DailyReport) UnmarshalJSON(data []byte) error {
	type alias DailyReport
	aux := struct {
		*alias
		Date string `json:"date"`
	}{alias: (*alias)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	var err error
	r.Date, err = decodeDate("date", aux.Date)
	return err
}
