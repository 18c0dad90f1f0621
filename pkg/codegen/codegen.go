// Package codegen genera códigos legibles y únicos para lotes y movimientos:
// prefijo + fecha + fragmento de UUID (ej. LOT-20260828-3F9A21C4). El prefijo
// y la fecha permiten leer el código a simple vista; el fragmento aleatorio
// evita colisiones sin coordinar secuencias.
package codegen

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	lotPrefix      = "LOT"
	movementPrefix = "MV"
)

// Generator implementa el puerto stock.CodeGenerator.
type Generator struct{}

// New construye el generador.
func New() *Generator {
	return &Generator{}
}

// LotCode genera el código de un lote para la fecha dada.
func (g *Generator) LotCode(at time.Time) string {
	return build(lotPrefix, at)
}

// MovementCode genera el código de un movimiento para la fecha dada.
func (g *Generator) MovementCode(at time.Time) string {
	return build(movementPrefix, at)
}

func build(prefix string, at time.Time) string {
	if at.IsZero() {
		at = time.Now()
	}
	frag := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))[:8]
	return fmt.Sprintf("%s-%s-%s", prefix, at.Format("20060102"), frag)
}
