package repo

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/ovaphlow/pitchfork/service-bi-dashboard/internal/dataset/entity"
)

// Table names double as CSV file stems, S3 object stems and warehouse tables.
const (
	TableEvents    = "backend_events"
	TableDeals     = "hubspot_deals"
	TableCompanies = "hubspot_companies"
	TableContacts  = "hubspot_contacts"
)

// Tables lists every table a source must provide, in load order.
var Tables = []string{TableEvents, TableDeals, TableCompanies, TableContacts}

var (
	ErrMissingColumn = errors.New("missing column")
	ErrUnknownTable  = errors.New("unknown table")
)

// RequiredColumns is the column contract per table. Other columns are ignored.
var RequiredColumns = map[string][]string{
	TableEvents: {"user_id", "event_timestamp"},
	TableDeals: {
		"hubspot_company_id", "amount", "deal_type", "is_closed", "is_closed_won", "close_date",
		"date_entered_pre_pitch", "date_entered_pitching", "date_entered_product_testing",
		"date_entered_price_offering", "date_entered_contract_negotiation",
	},
	TableCompanies: {"company_id", "country", "industry"},
	TableContacts:  {"company_id", "lifecycle_stage"},
}

// record reads one column of the current row as text; absent columns read "".
type record func(col string) string

// Decoder turns text records into entities and counts coerced values.
type Decoder struct {
	tables  *entity.Tables
	coerced map[string]int
	table   string
}

func NewDecoder() *Decoder {
	return &Decoder{
		tables:  &entity.Tables{},
		coerced: make(map[string]int),
	}
}

// CheckColumns verifies that every required column of table is present.
func CheckColumns(table string, has func(col string) bool) error {
	cols, ok := RequiredColumns[table]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	for _, c := range cols {
		if !has(c) {
			return fmt.Errorf("%s: %w %q", table, ErrMissingColumn, c)
		}
	}
	return nil
}

// Add decodes one row of table into the accumulated tables.
func (d *Decoder) Add(table string, get record) error {
	d.table = table
	switch table {
	case TableEvents:
		d.tables.Events = append(d.tables.Events, entity.Event{
			UserID:    NormalizeID(get("user_id")),
			Timestamp: d.timestamp(get("event_timestamp")),
		})
	case TableDeals:
		won := d.flag(get("is_closed_won"))
		closed := d.flag(get("is_closed"))
		d.tables.Deals = append(d.tables.Deals, entity.Deal{
			ID:                         NormalizeID(get("deal_id")),
			CompanyID:                  NormalizeID(get("hubspot_company_id")),
			Amount:                     d.number(get("amount")),
			DealType:                   NormalizeText(get("deal_type")),
			IsClosed:                   closed,
			IsClosedWon:                won,
			CreateDate:                 d.timestamp(get("create_date")),
			CloseDate:                  d.timestamp(get("close_date")),
			EnteredPrePitch:            d.timestamp(get("date_entered_pre_pitch")),
			EnteredPitching:            d.timestamp(get("date_entered_pitching")),
			EnteredProductTesting:      d.timestamp(get("date_entered_product_testing")),
			EnteredPriceOffering:       d.timestamp(get("date_entered_price_offering")),
			EnteredContractNegotiation: d.timestamp(get("date_entered_contract_negotiation")),
		})
	case TableCompanies:
		d.tables.Companies = append(d.tables.Companies, entity.Company{
			ID:       NormalizeID(get("company_id")),
			Country:  NormalizeText(get("country")),
			Industry: NormalizeText(get("industry")),
		})
	case TableContacts:
		d.tables.Contacts = append(d.tables.Contacts, entity.Contact{
			ID:             NormalizeID(get("contact_id")),
			CompanyID:      NormalizeID(get("company_id")),
			LifecycleStage: NormalizeText(get("lifecycle_stage")),
		})
	default:
		return fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	return nil
}

// Tables returns the decoded tables with their coercion counts.
func (d *Decoder) Tables() *entity.Tables {
	d.tables.Coerced = d.coerced
	return d.tables
}

func (d *Decoder) timestamp(s string) *time.Time {
	t, coerced := ParseTime(s)
	if coerced {
		d.coerced[d.table]++
	}
	return t
}

func (d *Decoder) number(s string) *float64 {
	f, coerced := ParseAmount(s)
	if coerced {
		d.coerced[d.table]++
	}
	return f
}

func (d *Decoder) flag(s string) bool {
	b, coerced := ParseBool(s)
	if coerced {
		d.coerced[d.table]++
	}
	return b
}

// stringify renders a driver or BigQuery value as the text the parsers expect.
func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	case bool:
		return strconv.FormatBool(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case *big.Rat:
		return x.FloatString(9)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// mapRecord adapts a column->value row (sqlx MapScan, BigQuery) to a record.
func mapRecord(row map[string]any) record {
	return func(col string) string {
		return stringify(row[col])
	}
}
