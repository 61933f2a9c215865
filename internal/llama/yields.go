package llama

import (
	"encoding/json"
	"time"

	"github.com/tidwall/gjson"
)

// Pool is a row of the yield pool listing.
type Pool struct {
	Pool        string          `json:"pool"`
	Chain       string          `json:"chain"`
	Project     string          `json:"project"`
	Symbol      string          `json:"symbol"`
	TVLUsd      float64         `json:"tvlUsd"`
	APY         float64         `json:"apy"`
	APYBase     float64         `json:"apyBase"`
	APYReward   float64         `json:"apyReward"`
	APYPct1D    float64         `json:"apyPct1D"`
	APYPct7D    float64         `json:"apyPct7D"`
	APYPct30D   float64         `json:"apyPct30D"`
	Stablecoin  bool            `json:"stablecoin"`
	ILRisk      string          `json:"ilRisk"`
	Exposure    string          `json:"exposure"`
	Predictions json.RawMessage `json:"predictions"`
}

// YieldPools maps GET /yields/pools.
func YieldPools(doc gjson.Result, q Query) (any, error) {
	pools, err := requiredArray(doc, "data")
	if err != nil {
		return nil, err
	}
	return each(pools, q, func(p gjson.Result) Pool {
		return Pool{
			Pool:        str(p, "pool"),
			Chain:       str(p, "chain"),
			Project:     str(p, "project"),
			Symbol:      str(p, "symbol"),
			TVLUsd:      num(p, "tvlUsd"),
			APY:         num(p, "apy"),
			APYBase:     num(p, "apyBase"),
			APYReward:   num(p, "apyReward"),
			APYPct1D:    num(p, "apyPct1D"),
			APYPct7D:    num(p, "apyPct7D"),
			APYPct30D:   num(p, "apyPct30D"),
			Stablecoin:  p.Get("stablecoin").Bool(),
			ILRisk:      strOr(p, "ilRisk", "no"),
			Exposure:    str(p, "exposure"),
			Predictions: rawObject(p, "predictions"),
		}
	}), nil
}

// PoolPoint is one point of a pool's APY history.
type PoolPoint struct {
	Date      string  `json:"date"`
	TVLUsd    float64 `json:"tvlUsd"`
	APY       float64 `json:"apy"`
	APYBase   float64 `json:"apyBase"`
	APYReward float64 `json:"apyReward"`
}

// PoolChart is the APY history of one pool.
type PoolChart struct {
	Status string      `json:"status"`
	Data   []PoolPoint `json:"data"`
}

// YieldChart maps GET /yields/chart/{pool}.
func YieldChart(doc gjson.Result, _ Query) (any, error) {
	points, err := requiredArray(doc, "data")
	if err != nil {
		return nil, err
	}
	return PoolChart{
		Status: str(doc, "status"),
		Data: each(points, Query{}, func(p gjson.Result) PoolPoint {
			return PoolPoint{
				Date:      isoTimestamp(p.Get("timestamp")),
				TVLUsd:    num(p, "tvlUsd"),
				APY:       num(p, "apy"),
				APYBase:   num(p, "apyBase"),
				APYReward: num(p, "apyReward"),
			}
		}),
	}, nil
}

// isoTimestamp normalizes an origin timestamp (RFC 3339 text or unix
// milliseconds) to the ISO layout. Unparseable text is returned as is.
func isoTimestamp(v gjson.Result) string {
	if v.Type == gjson.Number {
		return time.UnixMilli(v.Int()).UTC().Format(isoLayout)
	}
	s := v.String()
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return s
	}
	return t.UTC().Format(isoLayout)
}
