package llama

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// VolumeProtocol is a row of the DEX and options overviews.
type VolumeProtocol struct {
	DefillamaID  string   `json:"defillamaId"`
	Name         string   `json:"name"`
	DisplayName  string   `json:"displayName"`
	Module       string   `json:"module"`
	Category     string   `json:"category"`
	Logo         string   `json:"logo"`
	Chains       []string `json:"chains"`
	Total24h     float64  `json:"total24h"`
	Total7d      float64  `json:"total7d"`
	Total30d     float64  `json:"total30d"`
	TotalAllTime float64  `json:"totalAllTime"`
	Change1d     float64  `json:"change_1d"`
	Change7d     float64  `json:"change_7d"`
	Change1m     float64  `json:"change_1m"`
}

// VolumeOverview maps GET /dexs and GET /options.
func VolumeOverview(doc gjson.Result, q Query) (any, error) {
	list, err := requiredArray(doc, "protocols")
	if err != nil {
		return nil, err
	}
	return each(list, q, func(p gjson.Result) VolumeProtocol {
		return VolumeProtocol{
			DefillamaID:  str(p, "defillamaId"),
			Name:         str(p, "name"),
			DisplayName:  str(p, "displayName"),
			Module:       str(p, "module"),
			Category:     str(p, "category"),
			Logo:         str(p, "logo"),
			Chains:       strs(p, "chains"),
			Total24h:     num(p, "total24h"),
			Total7d:      num(p, "total7d"),
			Total30d:     num(p, "total30d"),
			TotalAllTime: num(p, "totalAllTime"),
			Change1d:     num(p, "change_1d"),
			Change7d:     num(p, "change_7d"),
			Change1m:     num(p, "change_1m"),
		}
	}), nil
}

// ChainVolume is a row of a per-chain DEX or options overview.
type ChainVolume struct {
	DefillamaID string  `json:"defillamaId"`
	Name        string  `json:"name"`
	DisplayName string  `json:"displayName"`
	Total24h    float64 `json:"total24h"`
	Total7d     float64 `json:"total7d"`
	Change1d    float64 `json:"change_1d"`
	Change7d    float64 `json:"change_7d"`
}

// ChainVolumeOverview maps GET /dexs/{chain} and GET /options/{chain}.
func ChainVolumeOverview(doc gjson.Result, _ Query) (any, error) {
	list, err := requiredArray(doc, "protocols")
	if err != nil {
		return nil, err
	}
	return each(list, Query{}, func(p gjson.Result) ChainVolume {
		return ChainVolume{
			DefillamaID: str(p, "defillamaId"),
			Name:        str(p, "name"),
			DisplayName: str(p, "displayName"),
			Total24h:    num(p, "total24h"),
			Total7d:     num(p, "total7d"),
			Change1d:    num(p, "change_1d"),
			Change7d:    num(p, "change_7d"),
		}
	}), nil
}

// FeeProtocol is a row of the fees overview.
type FeeProtocol struct {
	DisplayName    string   `json:"displayName"`
	Category       string   `json:"category"`
	Definition     string   `json:"definition"`
	Chains         []string `json:"chains"`
	Revenue24h     float64  `json:"revenue24h"`
	Revenue7d      float64  `json:"revenue7d"`
	Revenue30d     float64  `json:"revenue30d"`
	RevenueAllTime float64  `json:"revenueAllTime"`
	MonthlyAverage float64  `json:"monthlyAverage"`
	Change1d       float64  `json:"change_1d"`
	Change7d       float64  `json:"change_7d"`
	Change1m       float64  `json:"change_1m"`
}

// FeesOverview maps GET /fees.
func FeesOverview(doc gjson.Result, _ Query) (any, error) {
	list, err := requiredArray(doc, "protocols")
	if err != nil {
		return nil, err
	}
	return each(list, Query{}, func(p gjson.Result) FeeProtocol {
		return FeeProtocol{
			DisplayName:    str(p, "displayName"),
			Category:       str(p, "category"),
			Definition:     str(p, "methodology.Revenue"),
			Chains:         strs(p, "chains"),
			Revenue24h:     num(p, "total24h"),
			Revenue7d:      num(p, "total7d"),
			Revenue30d:     num(p, "total30d"),
			RevenueAllTime: num(p, "totalAllTime"),
			MonthlyAverage: num(p, "monthlyAverage1y"),
			Change1d:       num(p, "change_1d"),
			Change7d:       num(p, "change_7d"),
			Change1m:       num(p, "change_1m"),
		}
	}), nil
}

// ChainFees is a row of a per-chain fees overview.
type ChainFees struct {
	DefillamaID string  `json:"defillamaId"`
	Name        string  `json:"name"`
	DisplayName string  `json:"displayName"`
	Total24h    float64 `json:"total24h"`
	Total7d     float64 `json:"total7d"`
	Revenue24h  float64 `json:"revenue24h"`
	Revenue7d   float64 `json:"revenue7d"`
	Change1d    float64 `json:"change_1d"`
	Change7d    float64 `json:"change_7d"`
}

// ChainFeesOverview maps GET /fees/{chain}.
func ChainFeesOverview(doc gjson.Result, _ Query) (any, error) {
	list, err := requiredArray(doc, "protocols")
	if err != nil {
		return nil, err
	}
	return each(list, Query{}, func(p gjson.Result) ChainFees {
		return ChainFees{
			DefillamaID: str(p, "defillamaId"),
			Name:        str(p, "name"),
			DisplayName: str(p, "displayName"),
			Total24h:    num(p, "total24h"),
			Total7d:     num(p, "total7d"),
			Revenue24h:  num(p, "revenue24h"),
			Revenue7d:   num(p, "revenue7d"),
			Change1d:    num(p, "change_1d"),
			Change7d:    num(p, "change_7d"),
		}
	}), nil
}

// Summary is one protocol's totals with its full daily series. The series
// entries are keyed by valueKey ("volume" or "fees").
type Summary struct {
	Name                    string           `json:"name"`
	DisplayName             string           `json:"displayName"`
	Total24h                float64          `json:"total24h"`
	Total7d                 float64          `json:"total7d"`
	Total30d                float64          `json:"total30d"`
	TotalAllTime            float64          `json:"totalAllTime"`
	TotalDataChart          []map[string]any `json:"totalDataChart"`
	TotalDataChartBreakdown json.RawMessage  `json:"totalDataChartBreakdown,omitempty"`
}

// SummaryTransform returns the transform for a protocol summary whose series
// points are emitted as {date, valueKey}. withBreakdown keeps the origin's
// per-chain breakdown.
func SummaryTransform(valueKey string, withBreakdown bool) Transform {
	return func(doc gjson.Result, _ Query) (any, error) {
		if _, err := requiredObject(doc, ""); err != nil {
			return nil, err
		}
		s := Summary{
			Name:         str(doc, "name"),
			DisplayName:  str(doc, "displayName"),
			Total24h:     num(doc, "total24h"),
			Total7d:      num(doc, "total7d"),
			Total30d:     num(doc, "total30d"),
			TotalAllTime: num(doc, "totalAllTime"),
			TotalDataChart: each(doc.Get("totalDataChart"), Query{}, func(p gjson.Result) map[string]any {
				return map[string]any{
					"date":   ISODate(p.Get("0").Float()),
					valueKey: p.Get("1").Float(),
				}
			}),
		}
		if withBreakdown {
			s.TotalDataChartBreakdown = rawArray(doc, "totalDataChartBreakdown")
		}
		return s, nil
	}
}

// SummaryChart maps GET /charts/dex/{protocol}, GET /charts/fees/{protocol}
// and GET /open-interest/chart/total.
func SummaryChart(doc gjson.Result, _ Query) (any, error) {
	if _, err := requiredObject(doc, ""); err != nil {
		return nil, err
	}
	return pairChart(doc.Get("totalDataChart")), nil
}
