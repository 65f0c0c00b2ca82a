package state

import "iot-dashboard/internal/modules/dashboard/types"

// CardsView holds the current-reading cards.
type CardsView struct {
	Temperature string `json:"temperature"`
	Humidity    string `json:"humidity"`
	Light       string `json:"light"`
}

// RenderCards shows placeholders until the first reading arrives.
func RenderCards(latest *types.Reading) CardsView {
	if latest == nil {
		return CardsView{
			Temperature: PlaceholderTemperature,
			Humidity:    PlaceholderHumidity,
			Light:       PlaceholderLight,
		}
	}
	return CardsView{
		Temperature: formatTemperature(latest.Temperature),
		Humidity:    formatHumidity(latest.Humidity),
		Light:       formatLight(latest.Light),
	}
}
