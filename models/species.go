package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// LocalizedName is a JSON object keyed by locale, e.g. {"en": "Acacia"}.
type LocalizedName map[string]string

// Value stores the name as a JSON document.
func (n LocalizedName) Value() (driver.Value, error) {
	if n == nil {
		return nil, nil
	}
	b, err := json.Marshal(map[string]string(n))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan reads a JSON document from the database.
func (n *LocalizedName) Scan(value interface{}) error {
	if value == nil {
		*n = nil
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported common_name type %T", value)
	}
	m := map[string]string{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return err
	}
	*n = m
	return nil
}

// English returns the "en" value.
func (n LocalizedName) English() string {
	return n["en"]
}

// Species is read-only reference data.
type Species struct {
	ID         uint          `json:"id" gorm:"primaryKey"`
	CommonName LocalizedName `json:"common_name" gorm:"type:jsonb"`
}

func (Species) TableName() string { return "species" }

// SpeciesRow is the API shape of a species: its English common name only.
type SpeciesRow struct {
	ID         uint    `json:"id"`
	CommonName *string `json:"common_name"`
}
