package pricefeed

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/kilianp07/energyadvisor/core/price"
)

// wholesaleResponse is the france_power_exchanges payload. Prices are in
// EUR/MWh.
type wholesaleResponse struct {
	FrancePowerExchanges []struct {
		StartDate   string `json:"start_date"`
		EndDate     string `json:"end_date"`
		UpdatedDate string `json:"updated_date"`
		Values      []struct {
			StartDate string      `json:"start_date"`
			EndDate   string      `json:"end_date"`
			Value     json.Number `json:"value"`
			Price     json.Number `json:"price"`
		} `json:"values"`
	} `json:"france_power_exchanges"`
}

func decodeWholesale(body []byte) (*price.SensorState, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var r wholesaleResponse
	if err := dec.Decode(&r); err != nil {
		return nil, fmt.Errorf("decode wholesale response: %w", err)
	}
	var entries []any
	var updated string
	for _, exchange := range r.FrancePowerExchanges {
		if exchange.UpdatedDate > updated {
			updated = exchange.UpdatedDate
		}
		for _, v := range exchange.Values {
			entries = append(entries, map[string]any{
				"start": v.StartDate,
				"end":   v.EndDate,
				"value": v.Price,
			})
		}
	}
	attrs := map[string]any{
		"currency":            "EUR",
		"unit_of_measurement": "EUR/MWh",
	}
	if len(entries) > 0 {
		attrs["raw_today"] = entries
	}
	return &price.SensorState{EntityID: "rte.wholesale_market", State: updated, Attributes: attrs}, nil
}
