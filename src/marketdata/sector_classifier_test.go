package marketdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSectorForKnownSymbol(t *testing.T) {
	classifier := NewSectorClassifier(Config{})
	assert.Equal(t, "TECHNOLOGY", classifier.SectorFor("AAPL"))
	assert.Equal(t, "TECHNOLOGY", classifier.SectorFor("aapl"))
}

func TestSectorForUnknownSymbol(t *testing.T) {
	classifier := NewSectorClassifier(Config{})
	assert.Equal(t, "UNKNOWN", classifier.SectorFor("ZZZZ"))
}

func TestSectorOverridesFromConfig(t *testing.T) {
	classifier := NewSectorClassifier(Config{
		SectorOverridesJSON: `{"ACME":"industrials","AAPL":"CONSUMER_ELECTRONICS"}`,
	})
	assert.Equal(t, "INDUSTRIALS", classifier.SectorFor("ACME"))
	assert.Equal(t, "CONSUMER_ELECTRONICS", classifier.SectorFor("AAPL"))
}

func TestSectorOverridesInvalidJSONFallsBack(t *testing.T) {
	classifier := NewSectorClassifier(Config{SectorOverridesJSON: "{not json"})
	assert.Equal(t, "TECHNOLOGY", classifier.SectorFor("MSFT"))
}

func TestSectorSetAtRuntime(t *testing.T) {
	classifier := NewSectorClassifier(Config{})
	classifier.Set("abnb", "consumer_discretionary")
	assert.Equal(t, "CONSUMER_DISCRETIONARY", classifier.SectorFor("ABNB"))
}
