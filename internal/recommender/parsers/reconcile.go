package parsers

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/pcbuilder-api/server/internal/recommender/model"
	logx "github.com/pcbuilder-api/server/pkg/logger"
)

const (
	priceField         = "price_thb"
	declaredTotalField = "total_price_estimate_thb"
)

// Reconciliation notes attached when the declared total had to be corrected.
const (
	NoteTotalMissing    = "Total price calculated from components as it was missing."
	NoteTotalInvalid    = "Gemini total price was invalid, recalculated from components."
	NoteTotalRecomputed = "Total price was recalculated from components for accuracy."
)

// totalTolerance is the absolute THB difference within which the model's
// declared total is trusted. A difference of exactly one baht is kept.
var totalTolerance = decimal.NewFromInt(1)

// Reconcile converts one raw candidate into a Build whose total is guaranteed
// to agree with the sum of its component prices. It never fails: malformed
// pieces contribute zero and are reported in the returned warning list.
// Reconciliation is deterministic and idempotent.
func Reconcile(candidate map[string]any) (model.Build, []string) {
	build := model.Build{
		Name:  stringField(candidate, "build_name"),
		Notes: stringField(candidate, "notes"),
	}

	var warnings []string
	warn := func(format string, args ...any) {
		msg := fmt.Sprintf(format, args...)
		warnings = append(warnings, msg)
		logx.Warn().Str("component", "price_reconciler").Str("build", build.Name).Msg(msg)
	}

	sum := decimal.Zero
	for _, key := range model.ComponentKeys {
		raw, present := candidate[key]
		if !present || raw == nil {
			continue
		}
		details, ok := raw.(map[string]any)
		if !ok {
			// Keep the entry visible in the build, but it prices at zero.
			build.SetComponent(key, &model.ComponentSpec{Name: fmt.Sprintf("%v", raw)})
			warn("component %s is %T, not an object; priced as 0", key, raw)
			continue
		}

		spec := &model.ComponentSpec{Name: stringField(details, "name")}
		if pv, has := details[priceField]; has && pv != nil {
			price, err := toDecimal(pv)
			if err != nil {
				warn("invalid %s for %s: %v", priceField, key, pv)
			} else {
				spec.Price = price.InexactFloat64()
				sum = sum.Add(price)
			}
		}
		build.SetComponent(key, spec)
	}
	build.CalculatedTotal = sum.InexactFloat64()

	declared, present := candidate[declaredTotalField]
	switch {
	case !present || declared == nil:
		build.TotalPrice = build.CalculatedTotal
		build.PriceNote = NoteTotalMissing
	default:
		declaredDec, err := toDecimal(declared)
		switch {
		case err != nil:
			warn("declared total %v is not a valid number, using calculated value", declared)
			build.TotalPrice = build.CalculatedTotal
			build.PriceNote = NoteTotalInvalid
		case declaredDec.Sub(sum).Abs().GreaterThan(totalTolerance):
			logx.Warn().
				Str("component", "price_reconciler").
				Str("build", build.Name).
				Str("declared", declaredDec.String()).
				Str("calculated", sum.String()).
				Msg("price mismatch, overriding declared total with calculated value")
			build.TotalPrice = build.CalculatedTotal
			build.PriceNote = NoteTotalRecomputed
		default:
			build.TotalPrice = declaredDec.InexactFloat64()
		}
	}

	return build, warnings
}

// toDecimal converts a decoded JSON value into an exact decimal. Numbers and
// numeric strings are accepted; anything else is an error.
func toDecimal(v any) (decimal.Decimal, error) {
	switch t := v.(type) {
	case float64:
		return decimal.NewFromFloat(t), nil
	case json.Number:
		return decimal.NewFromString(t.String())
	case string:
		return decimal.NewFromString(strings.TrimSpace(t))
	default:
		return decimal.Zero, fmt.Errorf("unsupported numeric type %T", v)
	}
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
