// Package expense maps completed conversations onto persisted expense records.
package expense

import (
	"strconv"

	"github.com/m3rciful/expensebot/internal/convo"
)

// fieldOrder is the canonical projection order of the 10-column record.
var fieldOrder = []string{
	convo.SlotOwner,
	convo.SlotCorrelationID,
	convo.SlotDatetime,
	convo.SlotDescription,
	convo.SlotAmount,
	convo.SlotShop,
	convo.SlotLocation,
	convo.SlotPurpose,
	convo.SlotPayment,
	convo.SlotVerified,
}

// Record is one persisted expense. Absent optional fields are stored as empty
// strings; the amount is an integer count of cents. Records are immutable
// once written.
type Record struct {
	Owner         int64  `db:"owner"`
	CorrelationID int64  `db:"correlation_id"`
	Datetime      string `db:"occurred_at"`
	Description   string `db:"description"`
	Amount        int64  `db:"amount"`
	Shop          string `db:"shop"`
	Location      string `db:"location"`
	Purpose       string `db:"purpose"`
	Payment       string `db:"payment"`
	Verified      string `db:"verified"`
}

// FromValues projects collected session values onto the fixed record columns,
// substituting empty values for any field the conversation never filled.
func FromValues(owner, correlationID int64, values map[string]any) Record {
	rec := Record{Owner: owner, CorrelationID: correlationID}
	for _, name := range fieldOrder {
		v, ok := values[name]
		if !ok {
			continue
		}
		switch name {
		case convo.SlotDatetime:
			rec.Datetime, _ = v.(string)
		case convo.SlotDescription:
			rec.Description, _ = v.(string)
		case convo.SlotAmount:
			rec.Amount, _ = v.(int64)
		case convo.SlotShop:
			rec.Shop, _ = v.(string)
		case convo.SlotLocation:
			rec.Location, _ = v.(string)
		case convo.SlotPurpose:
			rec.Purpose, _ = v.(string)
		case convo.SlotPayment:
			rec.Payment, _ = v.(string)
		case convo.SlotVerified:
			if b, ok := v.(bool); ok {
				rec.Verified = strconv.FormatBool(b)
			}
		}
	}
	return rec
}
