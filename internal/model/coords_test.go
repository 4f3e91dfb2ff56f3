package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoordFormatting(t *testing.T) {
	assert.Equal(t, "12.97160000", Latitude(12.9716).String())
	assert.Equal(t, "77.5946000", Longitude(77.5946).String())
	assert.Equal(t, "-33.86882000", Latitude(-33.86882).String())
	assert.Equal(t, "0.00000000", Latitude(0).String())
	assert.Equal(t, "0.0000000", Longitude(0).String())
}

func TestCoordJSONRoundTrip(t *testing.T) {
	point := struct {
		Lat Latitude  `json:"lat"`
		Lng Longitude `json:"lng"`
	}{Lat: 12.9716, Lng: 77.5946}

	data, err := json.Marshal(point)
	require.NoError(t, err)
	assert.JSONEq(t, `{"lat":"12.97160000","lng":"77.5946000"}`, string(data))

	var decoded struct {
		Lat Latitude  `json:"lat"`
		Lng Longitude `json:"lng"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.InDelta(t, 12.9716, float64(decoded.Lat), 1e-9)
	assert.InDelta(t, 77.5946, float64(decoded.Lng), 1e-9)
}

func TestCoordUnmarshalAcceptsNumbers(t *testing.T) {
	var lat Latitude
	require.NoError(t, json.Unmarshal([]byte(`12.9716`), &lat))
	assert.InDelta(t, 12.9716, float64(lat), 1e-9)

	var lng Longitude
	require.NoError(t, json.Unmarshal([]byte(`"77.5946"`), &lng))
	assert.InDelta(t, 77.5946, float64(lng), 1e-9)

	assert.Error(t, json.Unmarshal([]byte(`true`), &lat))
	assert.Error(t, json.Unmarshal([]byte(`"not a number"`), &lat))
}

func TestCoordScan(t *testing.T) {
	var lat Latitude
	require.NoError(t, lat.Scan([]byte("12.97160000")))
	assert.InDelta(t, 12.9716, float64(lat), 1e-9)

	require.NoError(t, lat.Scan("45.5"))
	assert.InDelta(t, 45.5, float64(lat), 1e-9)

	require.NoError(t, lat.Scan(float64(1.5)))
	assert.InDelta(t, 1.5, float64(lat), 1e-9)

	require.NoError(t, lat.Scan(nil))
	assert.Zero(t, float64(lat))

	assert.Error(t, lat.Scan(42))
}

func TestCoordValue(t *testing.T) {
	v, err := Latitude(12.9716).Value()
	require.NoError(t, err)
	assert.Equal(t, "12.97160000", v)

	v, err = Longitude(77.5946).Value()
	require.NoError(t, err)
	assert.Equal(t, "77.5946000", v)
}
