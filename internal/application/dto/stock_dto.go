package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReceiveLotRequest body para POST /api/stock/entries.
type ReceiveLotRequest struct {
	ArticleID       string          `json:"article_id"`
	InitialQuantity decimal.Decimal `json:"initial_quantity"`
	EntryDate       *time.Time      `json:"entry_date,omitempty"`
	ExpirationDate  *time.Time      `json:"expiration_date,omitempty"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	LotNumber       string          `json:"lot_number,omitempty"`
	Supplier        string          `json:"supplier,omitempty"`
	Comment         string          `json:"comment,omitempty"`
	Reason          string          `json:"reason,omitempty"`
}

// LotSelectionDTO par (lote, cantidad) de la política manual.
type LotSelectionDTO struct {
	LotID    string          `json:"lot_id"`
	Quantity decimal.Decimal `json:"quantity"`
}

// AllocateRequest body para POST /api/stock/allocations.
// policy: fifo | fefo | manual. Para manual se usan selections; para el resto, quantity.
type AllocateRequest struct {
	ArticleID  string            `json:"article_id"`
	Quantity   decimal.Decimal   `json:"quantity,omitempty"`
	Policy     string            `json:"policy"`
	Selections []LotSelectionDTO `json:"selections,omitempty"`
	Reason     string            `json:"reason,omitempty"`
	Reference  string            `json:"reference,omitempty"`
}

// ConsumeRequirementsRequest body para POST /api/stock/consume.
// Requirements ya viene sumado por artículo (mapeo exámenes -> cantidades,
// calculado por el módulo de exámenes).
type ConsumeRequirementsRequest struct {
	Requirements map[string]decimal.Decimal `json:"requirements"` // article_id -> cantidad
	Policy       string                     `json:"policy,omitempty"`
	Reason       string                     `json:"reason,omitempty"`
	Reference    string                     `json:"reference,omitempty"`
}

// AdjustLotRequest body para POST /api/stock/lots/{id}/adjust.
// delta positivo suma al remanente del lote, negativo resta; reason es obligatorio.
type AdjustLotRequest struct {
	Delta  decimal.Decimal `json:"delta"`
	Reason string          `json:"reason"`
}

// MovementDTO representación de un movimiento en respuestas. signed_quantity
// trae la cantidad con el signo del tipo, lista para sumar saldos.
type MovementDTO struct {
	ID             string          `json:"id"`
	Code           string          `json:"code"`
	StockID        string          `json:"stock_id"`
	LotID          *string         `json:"lot_id,omitempty"`
	Type           string          `json:"type"`
	Quantity       decimal.Decimal `json:"quantity"`
	SignedQuantity decimal.Decimal `json:"signed_quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Date           time.Time       `json:"date"`
	Reason         string          `json:"reason,omitempty"`
	Reference      string          `json:"reference,omitempty"`
}

// LotDTO representación de un lote en respuestas.
type LotDTO struct {
	ID                string          `json:"id"`
	ArticleID         string          `json:"article_id"`
	Code              string          `json:"code"`
	InitialQuantity   decimal.Decimal `json:"initial_quantity"`
	RemainingQuantity decimal.Decimal `json:"remaining_quantity"`
	EntryDate         time.Time       `json:"entry_date"`
	ExpirationDate    *time.Time      `json:"expiration_date,omitempty"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	LotNumber         string          `json:"lot_number,omitempty"`
	Supplier          string          `json:"supplier,omitempty"`
	Comment           string          `json:"comment,omitempty"`
}
