// Package i18n holds the user-facing strings of the property importer.
//
// Strings are registered per locale in a golang.org/x/text catalog that is
// built explicitly (no process-wide default catalog), so tests and callers can
// construct a Locale for any supported language without touching global state.
//
// Counts are always passed as pre-formatted strings: the x/text printer applies
// locale digit grouping to %d, and the import notice must read "2345件", not
// "2,345件".
package i18n

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Key identifies a message in the catalog.
type Key string

const (
	KeyUnknownCategory Key = "unknown_category"
	KeyBlank           Key = "blank"
	KeyNotNumber       Key = "not_number"
	KeyNotInteger      Key = "not_integer"
	KeyOutOfRange      Key = "out_of_range"
	KeyHouseRoomNumber Key = "house_room_number"
	KeyRowFailure      Key = "row_failure"
	KeyOverflow        Key = "overflow"
	KeyNotice          Key = "notice"
	KeyFatal           Key = "fatal"
	KeyNotCSV          Key = "not_csv"
	KeyNoFile          Key = "no_file"
	KeyListSeparator   Key = "list_separator"
	KeyMessageJoin     Key = "message_join"
)

// Field identifies one column of the property CSV.
type Field int

const (
	FieldID Field = iota
	FieldName
	FieldAddress
	FieldRoomNumber
	FieldRent
	FieldArea
	FieldCategory
)

// Fields lists all CSV columns in template order.
var Fields = []Field{FieldID, FieldName, FieldAddress, FieldRoomNumber, FieldRent, FieldArea, FieldCategory}

type localeStrings struct {
	messages map[Key]string
	fields   map[Field]string
}

var japanese = localeStrings{
	messages: map[Key]string{
		KeyUnknownCategory: "「%s」は許可された建物の種類（%s）ではありません",
		KeyBlank:           "%s を入力してください",
		KeyNotNumber:       "%s は数値で入力してください",
		KeyNotInteger:      "%s は整数で入力してください",
		KeyOutOfRange:      "%s の値が大きすぎます",
		KeyHouseRoomNumber: "%s は一戸建ての場合は入力できません",
		KeyRowFailure:      "%s %s: %s",
		KeyOverflow:        "他に %s 件のエラーがあります...CSVファイルを確認してください。",
		KeyNotice:          "登録・更新:%s件、エラー:%s件",
		KeyFatal:           "%s処理中にエラーが発生しました: %s",
		KeyNotCSV:          "CSVファイルをアップロードしてください。",
		KeyNoFile:          "ファイルを選択してください。",
		KeyListSeparator:   "、",
		KeyMessageJoin:     "、",
	},
	fields: map[Field]string{
		FieldID:         "ユニークID",
		FieldName:       "物件名",
		FieldAddress:    "住所",
		FieldRoomNumber: "部屋番号",
		FieldRent:       "賃料",
		FieldArea:       "広さ",
		FieldCategory:   "建物の種類",
	},
}

var english = localeStrings{
	messages: map[Key]string{
		KeyUnknownCategory: "\"%s\" is not an allowed building type (%s)",
		KeyBlank:           "%s can't be blank",
		KeyNotNumber:       "%s is not a number",
		KeyNotInteger:      "%s must be a whole number",
		KeyOutOfRange:      "%s is out of range",
		KeyHouseRoomNumber: "%s must be blank for a house",
		KeyRowFailure:      "%s %s: %s",
		KeyOverflow:        "%s more errors not shown... please check the CSV file.",
		KeyNotice:          "Created/updated: %s, errors: %s",
		KeyFatal:           "An error occurred during %s: %s",
		KeyNotCSV:          "Please upload a CSV file.",
		KeyNoFile:          "Please choose a file.",
		KeyListSeparator:   ", ",
		KeyMessageJoin:     ", ",
	},
	fields: map[Field]string{
		FieldID:         "ID",
		FieldName:       "Name",
		FieldAddress:    "Address",
		FieldRoomNumber: "Room number",
		FieldRent:       "Rent",
		FieldArea:       "Area",
		FieldCategory:   "Building type",
	},
}

var supported = map[language.Tag]localeStrings{
	language.Japanese: japanese,
	language.English:  english,
}

// Locale renders messages and column labels for one language.
type Locale struct {
	tag     language.Tag
	printer *message.Printer
	fields  map[Field]string
}

// New returns the Locale for tag. Only Japanese and English are registered;
// any other tag is an error.
func New(tag language.Tag) (*Locale, error) {
	strs, ok := supported[tag]
	if !ok {
		return nil, fmt.Errorf("unsupported locale %q", tag)
	}

	b := catalog.NewBuilder(catalog.Fallback(tag))
	for key, msg := range strs.messages {
		if err := b.SetString(tag, string(key), msg); err != nil {
			return nil, fmt.Errorf("register %s/%s: %w", tag, key, err)
		}
	}

	return &Locale{
		tag:     tag,
		printer: message.NewPrinter(tag, message.Catalog(b)),
		fields:  strs.fields,
	}, nil
}

// Parse resolves a locale name such as "ja", "ja-JP" or "en".
func Parse(name string) (*Locale, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Japanese(), nil
	}
	tag, err := language.Parse(name)
	if err != nil {
		return nil, fmt.Errorf("parse locale %q: %w", name, err)
	}
	base, _ := tag.Base()
	switch base.String() {
	case "ja":
		return New(language.Japanese)
	case "en":
		return New(language.English)
	}
	return nil, fmt.Errorf("unsupported locale %q", name)
}

// Japanese returns the default Japanese locale.
func Japanese() *Locale {
	return mustNew(language.Japanese)
}

// English returns the English locale.
func English() *Locale {
	return mustNew(language.English)
}

func mustNew(tag language.Tag) *Locale {
	l, err := New(tag)
	if err != nil {
		panic(err)
	}
	return l
}

// Tag returns the language of the locale.
func (l *Locale) Tag() language.Tag {
	return l.tag
}

// Sprintf renders the message for key with args.
func (l *Locale) Sprintf(key Key, args ...any) string {
	return l.printer.Sprintf(string(key), args...)
}

// Field returns the column label for f. Labels double as CSV header names.
func (l *Locale) Field(f Field) string {
	return l.fields[f]
}

// Header returns the CSV header row for this locale in template order.
func (l *Locale) Header() []string {
	h := make([]string, len(Fields))
	for i, f := range Fields {
		h[i] = l.fields[f]
	}
	return h
}

// JoinList joins items with the locale's list separator.
func (l *Locale) JoinList(items []string) string {
	return strings.Join(items, l.Sprintf(KeyListSeparator))
}

// JoinMessages joins several rule messages belonging to the same row.
func (l *Locale) JoinMessages(msgs []string) string {
	return strings.Join(msgs, l.Sprintf(KeyMessageJoin))
}
