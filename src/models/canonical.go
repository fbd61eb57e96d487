package models

// CanonicalField is one of the internal column names every recognized header maps to.
type CanonicalField string

const (
	FieldName     CanonicalField = "name"
	FieldPrice    CanonicalField = "price"
	FieldQuantity CanonicalField = "quantity"
	FieldDate     CanonicalField = "date"
	FieldRegion   CanonicalField = "region"

	// Optional fields. They are recognized but never required or persisted.
	FieldDiscount CanonicalField = "discount"
	FieldCurrency CanonicalField = "currency"
	FieldID       CanonicalField = "id"
)

// RequiredFields lists the mandatory fields in the order used by the standardized file header.
var RequiredFields = []CanonicalField{FieldName, FieldPrice, FieldQuantity, FieldDate, FieldRegion}

// RawRow maps an original header to its raw cell value.
type RawRow map[string]string

// StandardizedRow maps canonical fields to trimmed values. Unrecognized headers are absent.
type StandardizedRow map[CanonicalField]string

// StandardizedRecord is the persisted shape of a validated row.
// Field order matches RequiredFields.
type StandardizedRecord struct {
	Name     string `csv:"name"`
	Price    string `csv:"price"`
	Quantity string `csv:"quantity"`
	Date     string `csv:"date"`
	Region   string `csv:"region"`
}

// ToRecord projects a row onto the required fields, dropping optional ones.
func (r StandardizedRow) ToRecord() StandardizedRecord {
	return StandardizedRecord{
		Name:     r[FieldName],
		Price:    r[FieldPrice],
		Quantity: r[FieldQuantity],
		Date:     r[FieldDate],
		Region:   r[FieldRegion],
	}
}
