package entity_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/tu-usuario/tienda-backoffice/internal/domain/entity"
)

func TestMovementType_Enum(t *testing.T) {
	valid := []entity.MovementType{
		entity.MovementPurchase, entity.MovementSale, entity.MovementReturn,
		entity.MovementExchange, entity.MovementCorrection,
		entity.MovementAdjustmentIn, entity.MovementAdjustmentOut,
	}
	for _, mt := range valid {
		assert.True(t, mt.Valid(), "%s debe ser válido", mt)
	}
	assert.False(t, entity.MovementType("regalo").Valid())
	assert.False(t, entity.MovementType("").Valid())
}

// Las convenciones de signo: entradas positivas, salidas negativas.
// correction y exchange admiten ambos signos y no aparecen en ninguna lista.
func TestMovementType_ConvencionDeSigno(t *testing.T) {
	assert.True(t, entity.MovementPurchase.Inbound())
	assert.True(t, entity.MovementReturn.Inbound())
	assert.True(t, entity.MovementAdjustmentIn.Inbound())
	assert.True(t, entity.MovementSale.Outbound())
	assert.True(t, entity.MovementAdjustmentOut.Outbound())

	assert.False(t, entity.MovementCorrection.Inbound())
	assert.False(t, entity.MovementCorrection.Outbound())
	assert.False(t, entity.MovementExchange.Inbound())
	assert.False(t, entity.MovementExchange.Outbound())
}

func TestCurrency_Enum(t *testing.T) {
	assert.True(t, entity.CurrencyUSD.Valid())
	assert.True(t, entity.CurrencyVES.Valid())
	assert.False(t, entity.Currency("EUR").Valid())
}

func TestTransactionType_Enum(t *testing.T) {
	assert.True(t, entity.TransactionIncome.Valid())
	assert.True(t, entity.TransactionExpense.Valid())
	assert.False(t, entity.TransactionType("transferencia").Valid())
}

func TestCreditType_Enum(t *testing.T) {
	assert.True(t, entity.CreditReturn.Valid())
	assert.True(t, entity.CreditExchange.Valid())
	assert.True(t, entity.CreditManual.Valid())
	assert.False(t, entity.CreditType("regalo").Valid())
}

func TestFinanceTransaction_SignedAmount(t *testing.T) {
	income := &entity.FinanceTransaction{Type: entity.TransactionIncome, Amount: decimal.NewFromInt(40)}
	expense := &entity.FinanceTransaction{Type: entity.TransactionExpense, Amount: decimal.NewFromInt(30)}

	assert.True(t, income.SignedAmount().Equal(decimal.NewFromInt(40)))
	assert.True(t, expense.SignedAmount().Equal(decimal.NewFromInt(-30)))
}

func TestProductVariant_EffectivePrice(t *testing.T) {
	p := &entity.Product{Price: decimal.NewFromInt(25)}

	v := &entity.ProductVariant{}
	assert.True(t, v.EffectivePrice(p).Equal(decimal.NewFromInt(25)),
		"sin override rige el precio del producto")

	override := decimal.NewFromInt(30)
	v.PriceOverride = &override
	assert.True(t, v.EffectivePrice(p).Equal(override))
}

func TestOrderItem_LineTotal(t *testing.T) {
	it := &entity.OrderItem{Quantity: 3, UnitPrice: decimal.RequireFromString("12.50")}
	assert.True(t, it.LineTotal().Equal(decimal.RequireFromString("37.50")))
}

func TestReturnLine_LineCredit(t *testing.T) {
	l := &entity.ReturnLine{Quantity: 2, UnitPrice: decimal.RequireFromString("8.25")}
	assert.True(t, l.LineCredit().Equal(decimal.RequireFromString("16.50")))
}
