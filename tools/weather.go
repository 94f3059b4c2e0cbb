package tools

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/callwire/callwire"
)

// WeatherArgs are the parameters of the weather tool. The definition is
// derived from this struct, so weather exercises the introspection
// registration path.
type WeatherArgs struct {
	Location string `json:"location" description:"City name or coordinates"`
	Units    string `json:"units,omitempty" description:"Temperature units" enum:"metric,imperial"`
}

// WeatherReport is the weather tool's result shape.
type WeatherReport struct {
	Location        string  `json:"location"`
	Temperature     float64 `json:"temperature"`
	TemperatureUnit string  `json:"temperature_unit"`
	Conditions      string  `json:"conditions"`
	Humidity        int     `json:"humidity"`
	HumidityUnit    string  `json:"humidity_unit"`
	WindSpeed       float64 `json:"wind_speed"`
	WindUnit        string  `json:"wind_unit"`
	Forecast        string  `json:"forecast"`
}

var knownConditions = map[string]string{
	"new york": "cloudy",
	"london":   "rainy",
	"tokyo":    "sunny",
	"sydney":   "clear",
	"paris":    "partly cloudy",
}

// GetWeather returns deterministic mock weather for a location. Values are
// derived from the location string so repeated calls agree, which also
// makes the result cache observable in examples.
func GetWeather(location, units string) (WeatherReport, error) {
	if location == "" {
		return WeatherReport{}, errors.New("location is required")
	}
	if units == "" {
		units = "metric"
	}
	normalized := strings.ToLower(location)
	condition, ok := knownConditions[normalized]
	if !ok {
		condition = "sunny"
	}

	var sum, sum3 int
	for i, c := range normalized {
		sum += int(c)
		if i < 3 {
			sum3 += int(c)
		}
	}
	temp := float64(sum%30 + 5)
	humidity := sum%50 + 30
	wind := float64(sum3%20 + 5)

	report := WeatherReport{
		Location:     location,
		Conditions:   condition,
		Humidity:     humidity,
		HumidityUnit: "%",
		Forecast:     "Mock forecast; a real implementation would call a weather service.",
	}
	if units == "imperial" {
		report.Temperature = round1(temp*9/5 + 32)
		report.TemperatureUnit = "fahrenheit"
		report.WindSpeed = round1(wind * 0.621371)
		report.WindUnit = "mph"
	} else {
		report.Temperature = round1(temp)
		report.TemperatureUnit = "celsius"
		report.WindSpeed = round1(wind)
		report.WindUnit = "km/h"
	}
	return report, nil
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

// RegisterWeather registers the weather tool through the introspection path.
func RegisterWeather(r *callwire.Registry) error {
	return callwire.RegisterFunc(r, "weather", "Get current weather for a location",
		func(_ context.Context, args WeatherArgs) (WeatherReport, error) {
			return GetWeather(args.Location, args.Units)
		})
}
