package codegen_test

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/labstock-api/pkg/codegen"
)

var codePattern = regexp.MustCompile(`^(LOT|MV)-\d{8}-[0-9A-F]{8}$`)

func TestLotCode_Formato(t *testing.T) {
	g := codegen.New()
	at := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)

	code := g.LotCode(at)
	assert.Regexp(t, codePattern, code)
	assert.Contains(t, code, "LOT-20260828-", "prefijo y fecha legibles a simple vista")
}

func TestMovementCode_Formato(t *testing.T) {
	g := codegen.New()
	at := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)

	code := g.MovementCode(at)
	assert.Regexp(t, codePattern, code)
	assert.Contains(t, code, "MV-20260102-")
}

func TestCodes_NoColisionan(t *testing.T) {
	g := codegen.New()
	at := time.Now()

	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		code := g.MovementCode(at)
		_, dup := seen[code]
		require.False(t, dup, "código repetido: %s", code)
		seen[code] = struct{}{}
	}
}

func TestCodes_FechaCeroUsaAhora(t *testing.T) {
	g := codegen.New()
	code := g.LotCode(time.Time{})
	assert.Contains(t, code, "LOT-"+time.Now().Format("20060102")+"-")
}
