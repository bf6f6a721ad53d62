package amqp

import (
	"encoding/json"
	"time"
)

// CompanyImportedMessage announces that a company and its disclosed incomes
// were persisted. Consumers fetch whatever else they need from the database.
type CompanyImportedMessage struct {
	CompanyID   int64     `json:"company_id"`
	CIK         int64     `json:"cik"`
	Name        string    `json:"name"`
	IncomeYears int       `json:"income_years"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewCompanyImportedMessage(companyID, cik int64, name string, incomeYears int) *CompanyImportedMessage {
	return &CompanyImportedMessage{
		CompanyID:   companyID,
		CIK:         cik,
		Name:        name,
		IncomeYears: incomeYears,
		Timestamp:   time.Now(),
	}
}

func (m *CompanyImportedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func CompanyImportedMessageFromJSON(data []byte) (*CompanyImportedMessage, error) {
	var msg CompanyImportedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
