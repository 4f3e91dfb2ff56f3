package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
)

// Latitude is stored as NUMERIC(10,8) and rendered with exactly eight
// fractional digits, e.g. "12.97160000".
type Latitude float64

// Longitude is stored as NUMERIC(11,7) and rendered with exactly seven
// fractional digits, e.g. "77.5946000".
type Longitude float64

func (l Latitude) String() string  { return strconv.FormatFloat(float64(l), 'f', 8, 64) }
func (l Longitude) String() string { return strconv.FormatFloat(float64(l), 'f', 7, 64) }

func (l Latitude) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

func (l Longitude) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

func (l *Latitude) UnmarshalJSON(data []byte) error {
	f, err := parseCoord(data)
	if err != nil {
		return err
	}
	*l = Latitude(f)
	return nil
}

func (l *Longitude) UnmarshalJSON(data []byte) error {
	f, err := parseCoord(data)
	if err != nil {
		return err
	}
	*l = Longitude(f)
	return nil
}

// parseCoord accepts both a JSON number and a numeric string, since
// clients cache coordinates as strings.
func parseCoord(data []byte) (float64, error) {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		return f, nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return 0, fmt.Errorf("invalid coordinate %q", string(data))
	}
	return strconv.ParseFloat(s, 64)
}

func (l Latitude) Value() (driver.Value, error)  { return l.String(), nil }
func (l Longitude) Value() (driver.Value, error) { return l.String(), nil }

func (l *Latitude) Scan(src interface{}) error {
	f, err := scanCoord(src)
	if err != nil {
		return err
	}
	*l = Latitude(f)
	return nil
}

func (l *Longitude) Scan(src interface{}) error {
	f, err := scanCoord(src)
	if err != nil {
		return err
	}
	*l = Longitude(f)
	return nil
}

// scanCoord handles the driver representations lib/pq uses for NUMERIC.
func scanCoord(src interface{}) (float64, error) {
	switch v := src.(type) {
	case nil:
		return 0, nil
	case float64:
		return v, nil
	case []byte:
		return strconv.ParseFloat(string(v), 64)
	case string:
		return strconv.ParseFloat(v, 64)
	default:
		return 0, fmt.Errorf("cannot scan coordinate from %T", src)
	}
}
