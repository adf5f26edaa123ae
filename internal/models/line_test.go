package models_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"kirana/internal/models"
)

func TestNewID(t *testing.T) {
	id := models.NewID("item")
	assert.True(t, strings.HasPrefix(id, "item_"))
	assert.Len(t, id, len("item_")+12)
	assert.NotEqual(t, id, models.NewID("item"))

	token := models.NewSessionToken()
	assert.True(t, strings.HasPrefix(token, "session_"))
	assert.Len(t, token, len("session_")+32)
}

func TestLineNormalizeTotal(t *testing.T) {
	line := models.Line{Rate: 150, Quantity: 2, Total: 9999}
	line.NormalizeTotal()
	assert.Equal(t, 300.0, line.Total)

	// Rounding noise within a cent is left alone.
	line = models.Line{Rate: 33.33, Quantity: 3, Total: 99.99}
	line.NormalizeTotal()
	assert.Equal(t, 99.99, line.Total)
}

func TestSumLineTotals(t *testing.T) {
	sum := models.SumLineTotals([]models.Line{
		{Total: 150.50},
		{Total: 80.25},
	})
	assert.Equal(t, 230.75, sum)

	assert.Equal(t, 0.0, models.SumLineTotals(nil))
}
