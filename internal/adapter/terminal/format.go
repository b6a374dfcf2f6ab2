package terminal

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// CurrencyCode is the display currency, TREDT Credits
const CurrencyCode = "TC"

func init() {
	money.AddCurrency(CurrencyCode, "TC", "1 $", ".", ",", 2)
}

// FormatPrice renders a price as "987.00 TC"
func FormatPrice(d decimal.Decimal) string {
	cur := money.GetCurrency(CurrencyCode)
	minor := d.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return money.New(minor, CurrencyCode).Display()
}
