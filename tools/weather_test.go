package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/callwire/callwire"
)

func TestGetWeather_Deterministic(t *testing.T) {
	first, err := GetWeather("London", "metric")
	require.NoError(t, err)
	second, err := GetWeather("London", "metric")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	assert.Equal(t, "London", first.Location)
	assert.Equal(t, "rainy", first.Conditions)
	assert.Equal(t, "celsius", first.TemperatureUnit)
	assert.Equal(t, "km/h", first.WindUnit)
	assert.Equal(t, "%", first.HumidityUnit)
	assert.GreaterOrEqual(t, first.Humidity, 30)
}

func TestGetWeather_CaseInsensitiveLocation(t *testing.T) {
	lower, err := GetWeather("tokyo", "metric")
	require.NoError(t, err)
	upper, err := GetWeather("TOKYO", "metric")
	require.NoError(t, err)
	assert.Equal(t, lower.Temperature, upper.Temperature)
	assert.Equal(t, "sunny", lower.Conditions)
}

func TestGetWeather_ImperialConversion(t *testing.T) {
	metric, err := GetWeather("Sydney", "metric")
	require.NoError(t, err)
	imperial, err := GetWeather("Sydney", "imperial")
	require.NoError(t, err)

	assert.Equal(t, "fahrenheit", imperial.TemperatureUnit)
	assert.Equal(t, "mph", imperial.WindUnit)
	assert.InDelta(t, metric.Temperature*9/5+32, imperial.Temperature, 0.1)
	assert.InDelta(t, metric.WindSpeed*0.621371, imperial.WindSpeed, 0.1)
}

func TestGetWeather_DefaultsToMetric(t *testing.T) {
	report, err := GetWeather("Paris", "")
	require.NoError(t, err)
	assert.Equal(t, "celsius", report.TemperatureUnit)
	assert.Equal(t, "partly cloudy", report.Conditions)
}

func TestGetWeather_RequiresLocation(t *testing.T) {
	_, err := GetWeather("", "metric")
	require.EqualError(t, err, "location is required")
}

func TestWeather_ThroughExecutor(t *testing.T) {
	exec := newExecutor(t, RegisterWeather)

	// The derived definition enforces the units enum before the handler runs.
	resp := exec.Execute(context.Background(), callwire.FunctionCall{
		Name:       "weather",
		Parameters: map[string]any{"location": "London", "units": "kelvin"},
	})
	require.False(t, resp.OK())
	assert.Equal(t, callwire.KindInvalidParameters, resp.Error.Kind)

	resp = exec.Execute(context.Background(), callwire.FunctionCall{
		Name:       "weather",
		Parameters: map[string]any{"location": "London"},
	})
	require.True(t, resp.OK(), "unexpected error: %+v", resp.Error)

	report, ok := resp.Result.(WeatherReport)
	require.True(t, ok)
	assert.Equal(t, "London", report.Location)
	assert.Equal(t, "rainy", report.Conditions)
}
