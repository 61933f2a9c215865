package llama

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Stablecoin is a row of the stablecoin listing. Changes are the percentage
// move in USD circulation over each window.
type Stablecoin struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Symbol      string  `json:"symbol"`
	Circulating float64 `json:"circulating"`
	Price       float64 `json:"price"`
	Chains      string  `json:"chains"`
	Change1d    float64 `json:"change_1d"`
	Change7d    float64 `json:"change_7d"`
	Change1m    float64 `json:"change_1m"`
}

// Stablecoins maps GET /stablecoins.
func Stablecoins(doc gjson.Result, q Query) (any, error) {
	assets, err := requiredArray(doc, "peggedAssets")
	if err != nil {
		return nil, err
	}
	return each(assets, q, func(s gjson.Result) Stablecoin {
		cur := num(s, "circulating.peggedUSD")
		return Stablecoin{
			ID:          str(s, "id"),
			Name:        str(s, "name"),
			Symbol:      str(s, "symbol"),
			Circulating: cur,
			Price:       numOr(s, "price", 1),
			Chains:      strings.Join(keys(s.Get("chainCirculating")), ", "),
			Change1d:    PctChange(cur, num(s, "circulatingPrevDay.peggedUSD")),
			Change7d:    PctChange(cur, num(s, "circulatingPrevWeek.peggedUSD")),
			Change1m:    PctChange(cur, num(s, "circulatingPrevMonth.peggedUSD")),
		}
	}), nil
}

// keys returns the object's keys in document order.
func keys(obj gjson.Result) []string {
	var out []string
	obj.ForEach(func(k, _ gjson.Result) bool {
		out = append(out, k.String())
		return true
	})
	return out
}

// StablecoinHistory maps GET /stablecoin/{asset}. Each row carries the
// point's token balances as extra keys.
func StablecoinHistory(doc gjson.Result, _ Query) (any, error) {
	if _, err := requiredObject(doc, ""); err != nil {
		return nil, err
	}
	balances := doc.Get("chainBalances")
	if balances.Exists() && balances.Type != gjson.Null && !balances.IsArray() {
		return nil, fmt.Errorf("%w: %q is not an array", ErrShape, "chainBalances")
	}
	return each(balances, Query{}, func(p gjson.Result) map[string]any {
		ts := num(p, "date")
		row := map[string]any{
			"date":             DayDate(ts),
			"timestamp":        int64(ts),
			"totalCirculating": num(p, "totalCirculating.peggedUSD"),
		}
		if tokens := p.Get("tokens"); tokens.IsObject() {
			tokens.ForEach(func(k, v gjson.Result) bool {
				row[k.String()] = json.RawMessage(v.Raw)
				return true
			})
		}
		return row
	}), nil
}

// StablecoinChain is the stablecoin supply on one chain.
type StablecoinChain struct {
	GeckoID             string  `json:"gecko_id"`
	TotalCirculatingUSD float64 `json:"totalCirculatingUSD"`
	Name                string  `json:"name"`
}

// StablecoinChains maps GET /stablecoins/chains.
func StablecoinChains(doc gjson.Result, _ Query) (any, error) {
	list, err := requiredArray(doc, "")
	if err != nil {
		return nil, err
	}
	return each(list, Query{}, func(c gjson.Result) StablecoinChain {
		return StablecoinChain{
			GeckoID:             str(c, "gecko_id"),
			TotalCirculatingUSD: num(c, "totalCirculatingUSD.peggedUSD"),
			Name:                str(c, "name"),
		}
	}), nil
}

// StablecoinSupplyPoint is one point of the aggregate supply history. Date
// is passed through as the origin formats it.
type StablecoinSupplyPoint struct {
	Date                json.RawMessage `json:"date,omitempty"`
	TotalCirculatingUSD float64         `json:"totalCirculatingUSD"`
}

// StablecoinCharts maps GET /stablecoins/charts/all.
func StablecoinCharts(doc gjson.Result, _ Query) (any, error) {
	list, err := requiredArray(doc, "")
	if err != nil {
		return nil, err
	}
	return each(list, Query{}, func(p gjson.Result) StablecoinSupplyPoint {
		return StablecoinSupplyPoint{
			Date:                raw(p, "date", ""),
			TotalCirculatingUSD: num(p, "totalCirculatingUSD.peggedUSD"),
		}
	}), nil
}

// StablecoinMcapChart maps GET /charts/stablecoins.
func StablecoinMcapChart(doc gjson.Result, _ Query) (any, error) {
	list, err := requiredArray(doc, "")
	if err != nil {
		return nil, err
	}
	return objectChart(list, "date", "totalCirculatingUSD.peggedUSD"), nil
}
