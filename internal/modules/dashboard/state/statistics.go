package state

import (
	"strconv"

	"iot-dashboard/internal/modules/dashboard/types"
)

type StatisticsView struct {
	TemperatureMax string `json:"temperatureMax"`
	TemperatureMin string `json:"temperatureMin"`
	TemperatureAvg string `json:"temperatureAvg"`
	HumidityAvg    string `json:"humidityAvg"`
	LightAvg       string `json:"lightAvg"`
	TotalRecords   string `json:"totalRecords"`
}

// RenderStatistics renders placeholders for a nil summary, never stale numbers.
func RenderStatistics(st *types.Statistics) StatisticsView {
	v := StatisticsView{
		TemperatureMax: PlaceholderTemperature,
		TemperatureMin: PlaceholderTemperature,
		TemperatureAvg: PlaceholderTemperature,
		HumidityAvg:    PlaceholderHumidity,
		LightAvg:       PlaceholderLight,
		TotalRecords:   PlaceholderText,
	}
	if st == nil {
		return v
	}
	v.TemperatureMax = formatTemperature(st.Temperature.Maximum)
	v.TemperatureMin = formatTemperature(st.Temperature.Minimum)
	v.TemperatureAvg = formatTemperature(st.Temperature.Average)
	if st.Humidity != nil {
		v.HumidityAvg = formatHumidity(st.Humidity.Average)
	}
	if st.Light != nil {
		v.LightAvg = formatLight(st.Light.Average)
	}
	if st.TotalRecords != nil {
		v.TotalRecords = strconv.Itoa(*st.TotalRecords)
	}
	return v
}
