package llama

import "github.com/tidwall/gjson"

// Bridge is a row of the bridge listing.
type Bridge struct {
	DisplayName      string   `json:"displayName"`
	VolumePrevDay    float64  `json:"volumePrevDay"`
	VolumePrev2Day   float64  `json:"volumePrev2Day"`
	WeeklyVolume     float64  `json:"weeklyVolume"`
	MonthlyVolume    float64  `json:"monthlyVolume"`
	Chains           []string `json:"chains"`
	DestinationChain string   `json:"destinationChain"`
}

// Bridges maps GET /bridges.
func Bridges(doc gjson.Result, _ Query) (any, error) {
	list, err := requiredArray(doc, "bridges")
	if err != nil {
		return nil, err
	}
	return each(list, Query{}, func(b gjson.Result) Bridge {
		return Bridge{
			DisplayName:      str(b, "displayName"),
			VolumePrevDay:    num(b, "volumePrevDay"),
			VolumePrev2Day:   num(b, "volumePrev2Day"),
			WeeklyVolume:     num(b, "weeklyVolume"),
			MonthlyVolume:    num(b, "monthlyVolume"),
			Chains:           strs(b, "chains"),
			DestinationChain: str(b, "destinationChain"),
		}
	}), nil
}
