package llama

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// Protocol is a row of the protocol listing.
type Protocol struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Symbol   string  `json:"symbol"`
	Category string  `json:"category"`
	Chains   string  `json:"chains"`
	TVL      float64 `json:"tvl"`
	Change1d float64 `json:"change_1d"`
	Change7d float64 `json:"change_7d"`
	Change1m float64 `json:"change_1m"`
	Mcap     float64 `json:"mcap"`
	Slug     string  `json:"slug"`
}

// Protocols maps GET /protocols.
func Protocols(doc gjson.Result, q Query) (any, error) {
	list, err := requiredArray(doc, "")
	if err != nil {
		return nil, err
	}
	return each(list, q, func(p gjson.Result) Protocol {
		return Protocol{
			ID:       str(p, "id"),
			Name:     str(p, "name"),
			Symbol:   str(p, "symbol"),
			Category: str(p, "category"),
			Chains:   joined(p, "chains"),
			TVL:      num(p, "tvl"),
			Change1d: num(p, "change_1d"),
			Change7d: num(p, "change_7d"),
			Change1m: num(p, "change_1m"),
			Mcap:     num(p, "mcap"),
			Slug:     str(p, "slug"),
		}
	}), nil
}

// ProtocolDetail is a single protocol with its raw TVL history.
type ProtocolDetail struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Symbol      string          `json:"symbol"`
	Category    string          `json:"category"`
	Chains      []string        `json:"chains"`
	Description string          `json:"description"`
	Logo        string          `json:"logo"`
	URL         string          `json:"url"`
	Twitter     string          `json:"twitter"`
	TVL         json.RawMessage `json:"tvl"`
	ChainTvls   json.RawMessage `json:"chainTvls"`
	Mcap        float64         `json:"mcap"`
	Slug        string          `json:"slug"`
}

// ProtocolInfo maps GET /protocol/{slug}.
func ProtocolInfo(doc gjson.Result, _ Query) (any, error) {
	p, err := requiredObject(doc, "")
	if err != nil {
		return nil, err
	}
	return ProtocolDetail{
		ID:          str(p, "id"),
		Name:        str(p, "name"),
		Symbol:      str(p, "symbol"),
		Category:    str(p, "category"),
		Chains:      strs(p, "chains"),
		Description: str(p, "description"),
		Logo:        str(p, "logo"),
		URL:         str(p, "url"),
		Twitter:     str(p, "twitter"),
		TVL:         rawArray(p, "tvl"),
		ChainTvls:   rawObject(p, "chainTvls"),
		Mcap:        num(p, "mcap"),
		Slug:        str(p, "slug"),
	}, nil
}

// LiquidityPoint is one day of a protocol's TVL history.
type LiquidityPoint struct {
	Date              string  `json:"date"`
	Timestamp         int64   `json:"timestamp"`
	TotalLiquidityUSD float64 `json:"totalLiquidityUSD"`
}

// ProtocolTVL maps GET /protocol/{slug}/tvl.
func ProtocolTVL(doc gjson.Result, _ Query) (any, error) {
	p, err := requiredObject(doc, "")
	if err != nil {
		return nil, err
	}
	return each(p.Get("tvl"), Query{}, func(pt gjson.Result) LiquidityPoint {
		ts := num(pt, "date")
		return LiquidityPoint{
			Date:              DayDate(ts),
			Timestamp:         int64(ts),
			TotalLiquidityUSD: num(pt, "totalLiquidityUSD"),
		}
	}), nil
}

// ProtocolChart maps GET /charts/protocol/{slug}.
func ProtocolChart(doc gjson.Result, _ Query) (any, error) {
	p, err := requiredObject(doc, "")
	if err != nil {
		return nil, err
	}
	return objectChart(p.Get("tvl"), "date", "totalLiquidityUSD"), nil
}

// Category is a row of the category listing.
type Category struct {
	Name        string  `json:"name"`
	TVL         float64 `json:"tvl"`
	Change1d    float64 `json:"change_1d"`
	Change7d    float64 `json:"change_7d"`
	McapTvl     float64 `json:"mcapTvl"`
	Protocols   float64 `json:"protocols"`
	Description string  `json:"description"`
}

// Categories maps GET /categories.
func Categories(doc gjson.Result, _ Query) (any, error) {
	list, err := requiredArray(doc, "")
	if err != nil {
		return nil, err
	}
	return each(list, Query{}, func(c gjson.Result) Category {
		return Category{
			Name:        str(c, "name"),
			TVL:         num(c, "tvl"),
			Change1d:    num(c, "change_1d"),
			Change7d:    num(c, "change_7d"),
			McapTvl:     num(c, "mcapTvl"),
			Protocols:   num(c, "protocols"),
			Description: str(c, "description"),
		}
	}), nil
}
