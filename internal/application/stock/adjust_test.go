package stock_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appstock "github.com/jhoicas/labstock-api/internal/application/stock"
	"github.com/jhoicas/labstock-api/internal/domain"
	"github.com/jhoicas/labstock-api/internal/domain/entity"
)

func newAdjustUC(f *fixture) *appstock.AdjustLotUseCase {
	return appstock.NewAdjustLotUseCase(f.runner, &seqCodeGen{})
}

func TestAdjust_PositivoSumaAlRemanente(t *testing.T) {
	f := newFixture()
	f.addLot("lot-a", 1, nil, 10, 25)
	f.store.lots["lot-a"].RemainingQuantity = qty(4) // ya hubo consumo
	uc := newAdjustUC(f)

	movement, err := uc.Adjust(context.Background(), appstock.AdjustLotInput{
		CompanyID: fixCompanyID,
		LotID:     "lot-a",
		Delta:     qty(3),
		Reason:    "conteo físico: se hallaron 3 unidades más",
		UserID:    fixUserID,
	})
	require.NoError(t, err)

	assert.Equal(t, entity.MovementTypeAdjust, movement.Type)
	assert.True(t, movement.Quantity.Equal(qty(3)))
	assert.True(t, movement.Signed().Equal(qty(3)))
	assert.True(t, movement.UnitPrice.Equal(qty(25)), "conserva el costo del lote")
	assert.True(t, f.remainingOf("lot-a").Equal(qty(7)))
	assert.True(t, f.stockOf(fixArticleID).CurrentQuantity.Equal(qty(7)),
		"el agregado se recalcula en la misma transacción")
}

func TestAdjust_NegativoAsientaElDeltaConSigno(t *testing.T) {
	f := newFixture()
	f.addLot("lot-a", 1, nil, 10, 10)
	uc := newAdjustUC(f)

	movement, err := uc.Adjust(context.Background(), appstock.AdjustLotInput{
		CompanyID: fixCompanyID,
		LotID:     "lot-a",
		Delta:     qty(-4),
		Reason:    "merma por rotura",
		UserID:    fixUserID,
	})
	require.NoError(t, err)

	assert.True(t, movement.Quantity.Equal(qty(-4)),
		"el ajuste guarda el delta con signo, no el valor absoluto")
	assert.True(t, movement.Signed().Equal(qty(-4)))
	assert.True(t, f.remainingOf("lot-a").Equal(qty(6)))
	assert.True(t, f.stockOf(fixArticleID).CurrentQuantity.Equal(qty(6)))
}

func TestAdjust_NoDejaRemanenteNegativo(t *testing.T) {
	f := newFixture()
	f.addLot("lot-a", 1, nil, 4, 10)
	uc := newAdjustUC(f)

	_, err := uc.Adjust(context.Background(), appstock.AdjustLotInput{
		CompanyID: fixCompanyID,
		LotID:     "lot-a",
		Delta:     qty(-10),
		Reason:    "merma",
		UserID:    fixUserID,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrLotQuantityExceeded)

	assert.True(t, f.remainingOf("lot-a").Equal(qty(4)), "rollback completo")
	assert.Empty(t, f.store.movements)
}

func TestAdjust_NoSuperaLaCantidadInicial(t *testing.T) {
	f := newFixture()
	f.addLot("lot-a", 1, nil, 10, 10)
	uc := newAdjustUC(f)

	_, err := uc.Adjust(context.Background(), appstock.AdjustLotInput{
		CompanyID: fixCompanyID,
		LotID:     "lot-a",
		Delta:     qty(1), // remanente ya está en la inicial
		Reason:    "conteo",
		UserID:    fixUserID,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity,
		"un ajuste no puede dejar más remanente que la cantidad recibida")
}

func TestAdjust_RequiereMotivo(t *testing.T) {
	f := newFixture()
	f.addLot("lot-a", 1, nil, 10, 10)
	uc := newAdjustUC(f)

	_, err := uc.Adjust(context.Background(), appstock.AdjustLotInput{
		CompanyID: fixCompanyID,
		LotID:     "lot-a",
		Delta:     qty(-1),
		UserID:    fixUserID,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput,
		"todo ajuste debe quedar explicado en el libro")
}

func TestAdjust_DeltaCero(t *testing.T) {
	f := newFixture()
	f.addLot("lot-a", 1, nil, 10, 10)
	uc := newAdjustUC(f)

	_, err := uc.Adjust(context.Background(), appstock.AdjustLotInput{
		CompanyID: fixCompanyID,
		LotID:     "lot-a",
		Delta:     decimal.Zero,
		Reason:    "nada",
		UserID:    fixUserID,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestAdjust_LoteDeOtraEmpresa(t *testing.T) {
	f := newFixture()
	f.addLot("lot-a", 1, nil, 10, 10)
	uc := newAdjustUC(f)

	_, err := uc.Adjust(context.Background(), appstock.AdjustLotInput{
		CompanyID: fixOtherCo,
		LotID:     "lot-a",
		Delta:     qty(-1),
		Reason:    "merma",
		UserID:    fixUserID,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdjust_ElLibroReconstruyeElSaldo(t *testing.T) {
	// Recepción, ajuste negativo y consumo: la suma de Signed sobre el libro
	// debe coincidir con el agregado resultante.
	f := newFixture()
	receive := appstock.NewReceiveLotUseCase(f.runner, &memArticleRepo{store: f.store}, &seqCodeGen{})
	adjust := newAdjustUC(f)

	lot, _, err := receive.Receive(context.Background(), appstock.ReceiveLotInput{
		CompanyID:       fixCompanyID,
		ArticleID:       fixArticleID,
		InitialQuantity: qty(20),
		UnitPrice:       qty(5),
		UserID:          fixUserID,
	})
	require.NoError(t, err)

	_, err = adjust.Adjust(context.Background(), appstock.AdjustLotInput{
		CompanyID: fixCompanyID,
		LotID:     lot.ID,
		Delta:     qty(-3),
		Reason:    "rotura en almacenamiento",
		UserID:    fixUserID,
	})
	require.NoError(t, err)

	balance := decimal.Zero
	for _, m := range f.store.movements {
		balance = balance.Add(m.Signed())
	}
	assert.True(t, balance.Equal(qty(17)))
	assert.True(t, f.stockOf(fixArticleID).CurrentQuantity.Equal(balance),
		"libro y agregado cuentan la misma historia")
}
