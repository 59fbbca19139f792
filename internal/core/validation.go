package core

// validation.go applies the business rules to one decoded row.
//
// Rules run in this order:
//  1. Building type must resolve in the CategoryMap. An unknown label fails
//     the row immediately and no other rule runs, since the room-number rule
//     depends on the resolved type.
//  2. The external ID must be non-blank (it is the upsert key).
//  3. Name must be non-blank.
//  4. Room number must be non-blank unless the building is a house. For a
//     house the room number is cleared (or rejected with StrictHouseRoom).
//  5. Rent and area, when present, must be numbers the columns can hold.
//
// Every message from rules 2-5 is joined into a single ValidationFailure.

import (
	"errors"

	"github.com/JonMunkholm/propimport/internal/i18n"
)

// ValidatorOptions tunes the row rules.
type ValidatorOptions struct {
	// StrictHouseRoom rejects a house row that carries a room number instead
	// of silently clearing it.
	StrictHouseRoom bool
}

// Validator turns raw rows into PropertyRecords. It holds no mutable state
// and is safe for concurrent use.
type Validator struct {
	categories *CategoryMap
	locale     *i18n.Locale
	opts       ValidatorOptions

	colID, colName, colAddress, colRoom, colRent, colArea, colCategory string
}

// NewValidator creates a validator for the given label set and locale.
// Column names are the locale's header labels.
func NewValidator(categories *CategoryMap, locale *i18n.Locale, opts ValidatorOptions) *Validator {
	return &Validator{
		categories:  categories,
		locale:      locale,
		opts:        opts,
		colID:       locale.Field(i18n.FieldID),
		colName:     locale.Field(i18n.FieldName),
		colAddress:  locale.Field(i18n.FieldAddress),
		colRoom:     locale.Field(i18n.FieldRoomNumber),
		colRent:     locale.Field(i18n.FieldRent),
		colArea:     locale.Field(i18n.FieldArea),
		colCategory: locale.Field(i18n.FieldCategory),
	}
}

// Validate checks one row. Exactly one of the return values is meaningful:
// a nil failure means the record is valid.
func (v *Validator) Validate(row Row) (PropertyRecord, *ValidationFailure) {
	id := row.Get(v.colID)

	label := row.Get(v.colCategory)
	category, ok := v.categories.Lookup(label)
	if !ok {
		msg := v.locale.Sprintf(i18n.KeyUnknownCategory, label, v.locale.JoinList(v.categories.Labels()))
		return PropertyRecord{}, v.failure(row, id, []string{msg})
	}

	var msgs []string
	rec := PropertyRecord{
		ID:       id,
		Name:     row.Text(v.colName),
		Address:  ToPgText(row.Text(v.colAddress)),
		Category: category,
	}

	if rec.ID == "" {
		msgs = append(msgs, v.blank(i18n.FieldID))
	}
	if rec.Name == "" {
		msgs = append(msgs, v.blank(i18n.FieldName))
	}

	room := row.Get(v.colRoom)
	switch {
	case category == CategoryHouse && room != "" && v.opts.StrictHouseRoom:
		msgs = append(msgs, v.locale.Sprintf(i18n.KeyHouseRoomNumber, v.locale.Field(i18n.FieldRoomNumber)))
	case category == CategoryHouse:
		rec.RoomNumber = ToPgText("")
	case room == "":
		msgs = append(msgs, v.blank(i18n.FieldRoomNumber))
	default:
		rec.RoomNumber = ToPgText(room)
	}

	rent, err := ParseRent(row.Get(v.colRent))
	if err != nil {
		msgs = append(msgs, v.numberMessage(i18n.FieldRent, err))
	}
	rec.Rent = rent

	area, err := ParseArea(row.Get(v.colArea))
	if err != nil {
		msgs = append(msgs, v.numberMessage(i18n.FieldArea, err))
	}
	rec.Area = area

	if len(msgs) > 0 {
		return PropertyRecord{}, v.failure(row, id, msgs)
	}
	return rec, nil
}

func (v *Validator) blank(f i18n.Field) string {
	return v.locale.Sprintf(i18n.KeyBlank, v.locale.Field(f))
}

func (v *Validator) numberMessage(f i18n.Field, err error) string {
	switch {
	case errors.Is(err, ErrNotInteger):
		return v.locale.Sprintf(i18n.KeyNotInteger, v.locale.Field(f))
	case errors.Is(err, ErrOutOfRange):
		return v.locale.Sprintf(i18n.KeyOutOfRange, v.locale.Field(f))
	}
	return v.locale.Sprintf(i18n.KeyNotNumber, v.locale.Field(f))
}

func (v *Validator) failure(row Row, id string, msgs []string) *ValidationFailure {
	return &ValidationFailure{
		Line:     row.Line,
		RowID:    id,
		Messages: msgs,
		Message:  v.locale.Sprintf(i18n.KeyRowFailure, v.locale.Field(i18n.FieldID), id, v.locale.JoinMessages(msgs)),
	}
}
