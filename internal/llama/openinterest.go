package llama

import "github.com/tidwall/gjson"

// OpenInterestProtocol is a row of the open-interest protocol table.
type OpenInterestProtocol struct {
	Name        string  `json:"name"`
	DisplayName string  `json:"displayName"`
	Total24h    float64 `json:"total24h"`
	Total7d     float64 `json:"total7d"`
	Change1d    float64 `json:"change_1d"`
	Change7d    float64 `json:"change_7d"`
	Chains      string  `json:"chains"`
}

// OpenInterestProtocols maps GET /open-interest/protocols.
func OpenInterestProtocols(doc gjson.Result, q Query) (any, error) {
	list, err := requiredArray(doc, "protocols")
	if err != nil {
		return nil, err
	}
	return each(list, q, func(p gjson.Result) OpenInterestProtocol {
		return OpenInterestProtocol{
			Name:        str(p, "name"),
			DisplayName: str(p, "displayName"),
			Total24h:    num(p, "total24h"),
			Total7d:     num(p, "total7d"),
			Change1d:    num(p, "change_1d"),
			Change7d:    num(p, "change_7d"),
			Chains:      joined(p, "chains"),
		}
	}), nil
}

// OpenInterestBreakdown maps GET /open-interest/chart/breakdown.
func OpenInterestBreakdown(doc gjson.Result, _ Query) (any, error) {
	if _, err := requiredObject(doc, ""); err != nil {
		return nil, err
	}
	return NormalizeBreakdown(doc.Get("totalDataChartBreakdown")), nil
}

// OpenInterestSummary maps GET /open-interest/stats.
func OpenInterestSummary(doc gjson.Result, _ Query) (any, error) {
	if _, err := requiredObject(doc, ""); err != nil {
		return nil, err
	}
	return OpenInterestStats(doc), nil
}
