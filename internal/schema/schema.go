// Package schema holds the versioned, declarative description of the vendor
// call-log export and the roster vocabularies. The normalizer, aggregator and
// roster import read these tables instead of carrying their own literals.
package schema

import (
	"fmt"

	"github.com/angelmondragon/callpay-backend/pkg/enums"
)

// Field is a canonical internal field name.
type Field string

const (
	FieldCallID              Field = "call_id"
	FieldCallerID            Field = "caller_id"
	FieldCallTime            Field = "call_time"
	FieldBilledSeconds       Field = "billed_seconds"
	FieldOperator            Field = "operator"
	FieldDatacapture         Field = "datacapture"
	FieldCustomerCalltime    Field = "customer_calltime"
	FieldInterpreterCalltime Field = "interpreter_calltime"
	FieldInterpreterNumber   Field = "interpreter_number"
	FieldLanguageID          Field = "language_id"
	FieldLanguage            Field = "language"
	FieldInterpreterPay      Field = "interpreter_pay"
	FieldBillCustomer        Field = "bill_customer"
	FieldAccountCode         Field = "account_code"
	FieldInterpreterName     Field = "interpreter_name"
	FieldCustomerName        Field = "customer_name"
)

// HeaderMapping ties a canonical field to the vendor header spellings seen in
// exports. The first header is the one the current vendor layout uses.
type HeaderMapping struct {
	Field   Field
	Headers []string
}

// Revision is one versioned layout of the vendor export plus the roster
// vocabularies that were valid alongside it.
type Revision struct {
	Version int
	Name    string

	// Mappings is the fixed header-rename table (vendor header -> canonical field).
	Mappings []HeaderMapping
	// Drop lists the canonical fields the normalizer removes on purpose.
	// Headers outside Keep and Drop are reported as unknown.
	Drop []Field
	// Keep lists the canonical fields that must be present after dropping.
	Keep []Field

	// TracksMinutes controls whether reconciliation writes Interpreter.TotalMinutes.
	TracksMinutes bool

	PaymentMethods []enums.PaymentMethod
	ServiceCenters []enums.ServiceCenter
	// RenamedCenters maps a retired center label onto its replacement so rows
	// exported under an older revision migrate forward on import.
	RenamedCenters map[string]enums.ServiceCenter
}

// vendorMappings is the vendor header vocabulary shared by every revision.
var vendorMappings = []HeaderMapping{
	{Field: FieldCallID, Headers: []string{"CallId", "Call Id", "Call ID"}},
	{Field: FieldCallerID, Headers: []string{"Caller Id", "Caller ID"}},
	{Field: FieldCallTime, Headers: []string{"Call Time"}},
	{Field: FieldBilledSeconds, Headers: []string{"Billed Seconds"}},
	{Field: FieldOperator, Headers: []string{"Operator"}},
	{Field: FieldDatacapture, Headers: []string{"Datacapture"}},
	{Field: FieldCustomerCalltime, Headers: []string{"Customer Calltime"}},
	{Field: FieldInterpreterCalltime, Headers: []string{"Interpreter Calltime"}},
	{Field: FieldInterpreterNumber, Headers: []string{"Interpreter Number"}},
	{Field: FieldLanguageID, Headers: []string{"Language Id", "Language ID"}},
	{Field: FieldLanguage, Headers: []string{"Language"}},
	{Field: FieldInterpreterPay, Headers: []string{"Interpreter Pay"}},
	{Field: FieldBillCustomer, Headers: []string{"Bill Customer"}},
	{Field: FieldAccountCode, Headers: []string{"Account Code"}},
	{Field: FieldInterpreterName, Headers: []string{"Interpreter Name"}},
	{Field: FieldCustomerName, Headers: []string{"Customer Name"}},
}

var vendorMetadata = []Field{
	FieldCallerID,
	FieldBilledSeconds,
	FieldOperator,
	FieldDatacapture,
	FieldCustomerCalltime,
	FieldInterpreterNumber,
	FieldLanguageID,
	FieldLanguage,
	FieldBillCustomer,
	FieldAccountCode,
}

var legacyPaymentMethods = []enums.PaymentMethod{
	enums.PaymentMethodBCheck,
	enums.PaymentMethodBTransfer,
	enums.PaymentMethodCheck,
	enums.PaymentMethodGusto,
	enums.PaymentMethodMichaelKings,
	enums.PaymentMethodQBD,
	enums.PaymentMethodSergio,
	enums.PaymentMethodTrolly,
	enums.PaymentMethodVIP,
}

var revisions = []Revision{
	{
		Version:  1,
		Name:     "pay-only",
		Mappings: vendorMappings,
		Drop:     append(append([]Field{}, vendorMetadata...), FieldCustomerName, FieldCallTime),
		Keep: []Field{
			FieldInterpreterName,
			FieldInterpreterPay,
			FieldInterpreterCalltime,
			FieldCallID,
		},
		TracksMinutes:  false,
		PaymentMethods: legacyPaymentMethods,
		ServiceCenters: []enums.ServiceCenter{
			enums.ServiceCenterMichaelKings,
			enums.ServiceCenterSergio,
			enums.ServiceCenterVIP,
			enums.ServiceCenterWWIForeign,
			enums.ServiceCenterWWISpanish,
		},
	},
	{
		Version:  2,
		Name:     "pay-and-minutes",
		Mappings: vendorMappings,
		Drop:     append([]Field{}, vendorMetadata...),
		Keep: []Field{
			FieldInterpreterName,
			FieldInterpreterPay,
			FieldInterpreterCalltime,
			FieldCallID,
			FieldCustomerName,
			FieldCallTime,
		},
		TracksMinutes:  true,
		PaymentMethods: legacyPaymentMethods,
		ServiceCenters: []enums.ServiceCenter{
			enums.ServiceCenterMichaelKings,
			enums.ServiceCenterSergio,
			enums.ServiceCenterVIPOPI,
			enums.ServiceCenterWWIForeign,
			enums.ServiceCenterWWISpanish,
		},
		RenamedCenters: map[string]enums.ServiceCenter{
			string(enums.ServiceCenterVIP): enums.ServiceCenterVIPOPI,
		},
	},
}

// Latest returns the newest revision.
func Latest() Revision {
	return revisions[len(revisions)-1]
}

// Lookup returns the revision with the given version; zero selects Latest.
func Lookup(version int) (Revision, error) {
	if version == 0 {
		return Latest(), nil
	}
	for _, rev := range revisions {
		if rev.Version == version {
			return rev, nil
		}
	}
	return Revision{}, fmt.Errorf("unknown schema revision %d", version)
}

// FieldForHeader resolves a vendor header to its canonical field.
func (r Revision) FieldForHeader(header string) (Field, bool) {
	for _, m := range r.Mappings {
		for _, h := range m.Headers {
			if h == header {
				return m.Field, true
			}
		}
	}
	return "", false
}

// HeadersFor lists the accepted vendor spellings of a canonical field.
func (r Revision) HeadersFor(field Field) []string {
	for _, m := range r.Mappings {
		if m.Field == field {
			return m.Headers
		}
	}
	return nil
}

// Keeps reports whether the field survives normalization.
func (r Revision) Keeps(field Field) bool {
	for _, f := range r.Keep {
		if f == field {
			return true
		}
	}
	return false
}

// Drops reports whether the field is in the drop set.
func (r Revision) Drops(field Field) bool {
	for _, f := range r.Drop {
		if f == field {
			return true
		}
	}
	return false
}

// AllowsPaymentMethod reports whether v is valid for new roster rows; blank is allowed.
func (r Revision) AllowsPaymentMethod(v enums.PaymentMethod) bool {
	if v == "" {
		return true
	}
	for _, candidate := range r.PaymentMethods {
		if candidate == v {
			return true
		}
	}
	return false
}

// AllowsServiceCenter reports whether v is valid for new roster rows; blank is allowed.
func (r Revision) AllowsServiceCenter(v enums.ServiceCenter) bool {
	if v == "" {
		return true
	}
	for _, candidate := range r.ServiceCenters {
		if candidate == v {
			return true
		}
	}
	return false
}

// MigrateServiceCenter maps a retired center label onto its current name.
func (r Revision) MigrateServiceCenter(value string) string {
	if renamed, ok := r.RenamedCenters[value]; ok {
		return string(renamed)
	}
	return value
}
