package parsers

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidate(declared any, components map[string]any) map[string]any {
	c := map[string]any{"build_name": "Test Build"}
	if declared != nil {
		c["total_price_estimate_thb"] = declared
	}
	for k, v := range components {
		c[k] = v
	}
	return c
}

func component(name string, price any) map[string]any {
	m := map[string]any{"name": name}
	if price != nil {
		m["price_thb"] = price
	}
	return m
}

func TestReconcile_OverridesMismatchedTotal(t *testing.T) {
	// Declared 20000 but the components only sum to 19000.
	build, warnings := Reconcile(candidate(float64(20000), map[string]any{
		"cpu": component("AMD Ryzen 5 5600", float64(5000)),
		"gpu": component("RTX 4060", float64(14000)),
	}))

	assert.Empty(t, warnings)
	assert.Equal(t, float64(19000), build.CalculatedTotal)
	assert.Equal(t, float64(19000), build.TotalPrice)
	assert.Equal(t, NoteTotalRecomputed, build.PriceNote)
	require.NotNil(t, build.CPU)
	assert.Equal(t, "AMD Ryzen 5 5600", build.CPU.Name)
	assert.Equal(t, float64(5000), build.CPU.Price)
}

func TestReconcile_ToleranceBoundary(t *testing.T) {
	components := map[string]any{
		"cpu": component("CPU", float64(10000)),
		"gpu": component("GPU", float64(9000)),
	}

	t.Run("difference of exactly one baht keeps declared total", func(t *testing.T) {
		build, _ := Reconcile(candidate(float64(19001), components))
		assert.Equal(t, float64(19001), build.TotalPrice)
		assert.Equal(t, float64(19000), build.CalculatedTotal)
		assert.Empty(t, build.PriceNote)
	})

	t.Run("difference just over one baht is overridden", func(t *testing.T) {
		build, _ := Reconcile(candidate(float64(19001.01), components))
		assert.Equal(t, float64(19000), build.TotalPrice)
		assert.Equal(t, NoteTotalRecomputed, build.PriceNote)
	})
}

func TestReconcile_MissingDeclaredTotal(t *testing.T) {
	build, warnings := Reconcile(candidate(nil, map[string]any{
		"cpu": component("CPU", float64(5000)),
		"ram": component("RAM", float64(1800)),
	}))

	assert.Empty(t, warnings)
	assert.Equal(t, float64(6800), build.TotalPrice)
	assert.Equal(t, NoteTotalMissing, build.PriceNote)
}

func TestReconcile_InvalidDeclaredTotal(t *testing.T) {
	build, warnings := Reconcile(candidate("around twenty grand", map[string]any{
		"cpu": component("CPU", float64(5000)),
	}))

	require.Len(t, warnings, 1)
	assert.Equal(t, float64(5000), build.TotalPrice)
	assert.Equal(t, NoteTotalInvalid, build.PriceNote)
}

func TestReconcile_NumericStringTotalAndPrice(t *testing.T) {
	build, warnings := Reconcile(candidate("7000", map[string]any{
		"cpu": component("CPU", "5000"),
		"ram": component("RAM", " 2000 "),
	}))

	assert.Empty(t, warnings)
	assert.Equal(t, float64(7000), build.CalculatedTotal)
	assert.Equal(t, float64(7000), build.TotalPrice)
	assert.Empty(t, build.PriceNote)
}

func TestReconcile_MalformedComponents(t *testing.T) {
	build, warnings := Reconcile(candidate(float64(5000), map[string]any{
		"cpu":     component("CPU", float64(5000)),
		"gpu":     "RTX 4060 8GB", // bare string instead of an object
		"ram":     component("RAM", "free"),
		"storage": component("SSD", nil),
	}))

	// gpu and ram each produce one warning; storage without a price is fine.
	assert.Len(t, warnings, 2)

	require.NotNil(t, build.GPU)
	assert.Equal(t, "RTX 4060 8GB", build.GPU.Name)
	assert.Zero(t, build.GPU.Price)

	require.NotNil(t, build.RAM)
	assert.Zero(t, build.RAM.Price)

	require.NotNil(t, build.Storage)
	assert.Zero(t, build.Storage.Price)

	// Only the cpu contributes, and it matches the declared total.
	assert.Equal(t, float64(5000), build.CalculatedTotal)
	assert.Equal(t, float64(5000), build.TotalPrice)
	assert.Empty(t, build.PriceNote)
}

func TestReconcile_EmptyCandidate(t *testing.T) {
	build, warnings := Reconcile(map[string]any{})

	assert.Empty(t, warnings)
	assert.Zero(t, build.CalculatedTotal)
	assert.Zero(t, build.TotalPrice)
	assert.Equal(t, NoteTotalMissing, build.PriceNote)
	assert.Nil(t, build.CPU)
}

func TestReconcile_Idempotent(t *testing.T) {
	first, _ := Reconcile(candidate(float64(20000), map[string]any{
		"cpu": component("CPU", float64(5000)),
		"gpu": component("GPU", float64(14000)),
	}))

	// Feed the reconciled build back through as if the model had emitted it.
	data, err := json.Marshal(first)
	require.NoError(t, err)
	var roundTrip map[string]any
	require.NoError(t, json.Unmarshal(data, &roundTrip))

	second, warnings := Reconcile(roundTrip)
	assert.Empty(t, warnings)
	assert.Equal(t, first.TotalPrice, second.TotalPrice)
	assert.Equal(t, first.CalculatedTotal, second.CalculatedTotal)
	assert.Empty(t, second.PriceNote)
}
