package llama

import (
	"cmp"
	"slices"

	"github.com/tidwall/gjson"
)

// topChains is how many chains the TVL chart shows.
const topChains = 20

// Chain is a row of the chain listing. ChainID is the numeric EVM chain id,
// or "" when the chain has none.
type Chain struct {
	Name        string  `json:"name"`
	TVL         float64 `json:"tvl"`
	TokenSymbol string  `json:"tokenSymbol"`
	ChainID     any     `json:"chainId"`
}

// ChainValue is a bar of the chain TVL chart.
type ChainValue struct {
	Name        string  `json:"name"`
	Value       float64 `json:"value"`
	TokenSymbol string  `json:"tokenSymbol"`
	ChainID     any     `json:"chainId"`
}

// chainID returns the chain id as a number, or "" when absent or zero.
func chainID(c gjson.Result) any {
	v := c.Get("chainId")
	if v.Type == gjson.Number && v.Float() != 0 {
		return v.Float()
	}
	if v.Type == gjson.String && v.String() != "" {
		return v.String()
	}
	return ""
}

// Chains maps GET /chains.
func Chains(doc gjson.Result, q Query) (any, error) {
	list, err := requiredArray(doc, "")
	if err != nil {
		return nil, err
	}
	return each(list, q, func(c gjson.Result) Chain {
		return Chain{
			Name:        str(c, "name"),
			TVL:         num(c, "tvl"),
			TokenSymbol: str(c, "tokenSymbol"),
			ChainID:     chainID(c),
		}
	}), nil
}

// ChainsChart maps GET /charts/chains: the top chains by TVL, descending.
func ChainsChart(doc gjson.Result, _ Query) (any, error) {
	list, err := requiredArray(doc, "")
	if err != nil {
		return nil, err
	}
	rows := each(list, Query{}, func(c gjson.Result) ChainValue {
		return ChainValue{
			Name:        str(c, "name"),
			Value:       num(c, "tvl"),
			TokenSymbol: str(c, "tokenSymbol"),
			ChainID:     chainID(c),
		}
	})
	slices.SortStableFunc(rows, func(a, b ChainValue) int {
		return cmp.Compare(b.Value, a.Value)
	})
	if len(rows) > topChains {
		rows = rows[:topChains]
	}
	return rows, nil
}

// ChainTVLPoint is one day of a chain's TVL history.
type ChainTVLPoint struct {
	Date      string  `json:"date"`
	Timestamp int64   `json:"timestamp"`
	TVL       float64 `json:"tvl"`
}

// ChainHistory maps GET /chain/{chain}.
func ChainHistory(doc gjson.Result, _ Query) (any, error) {
	list, err := requiredArray(doc, "")
	if err != nil {
		return nil, err
	}
	return each(list, Query{}, func(p gjson.Result) ChainTVLPoint {
		ts := num(p, "date")
		return ChainTVLPoint{Date: DayDate(ts), Timestamp: int64(ts), TVL: num(p, "tvl")}
	}), nil
}

// GlobalTVLChart maps GET /charts/global-tvl.
func GlobalTVLChart(doc gjson.Result, _ Query) (any, error) {
	list, err := requiredArray(doc, "")
	if err != nil {
		return nil, err
	}
	return objectChart(list, "date", "tvl"), nil
}
