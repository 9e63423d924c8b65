package attrition

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/mitchellh/mapstructure"
)

// Record is one observation to be scored: feature name to number or category string.
type Record map[string]any

// Clone returns a shallow copy so engineered features never leak into the caller's map.
func (r Record) Clone() Record {
	out := make(Record, len(r)+1)
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Employee is the typed form of the documented input schema. Every field is
// optional: a nil field is absent from Record, so the artifacts stay the
// authority on which features are required and a partial Employee fails with
// ErrMissingFeature instead of being scored on zero values.
type Employee struct {
	BusinessTravel     *string  `mapstructure:"BusinessTravel,omitempty" json:"BusinessTravel,omitempty"`
	JobRole            *string  `mapstructure:"JobRole,omitempty" json:"JobRole,omitempty"`
	MaritalStatus      *string  `mapstructure:"MaritalStatus,omitempty" json:"MaritalStatus,omitempty"`
	OverTime           *string  `mapstructure:"OverTime,omitempty" json:"OverTime,omitempty"`
	Age                *float64 `mapstructure:"Age,omitempty" json:"Age,omitempty"`
	DailyRate          *float64 `mapstructure:"DailyRate,omitempty" json:"DailyRate,omitempty"`
	DistanceFromHome   *float64 `mapstructure:"DistanceFromHome,omitempty" json:"DistanceFromHome,omitempty"`
	HourlyRate         *float64 `mapstructure:"HourlyRate,omitempty" json:"HourlyRate,omitempty"`
	MonthlyIncome      *float64 `mapstructure:"MonthlyIncome,omitempty" json:"MonthlyIncome,omitempty"`
	MonthlyRate        *float64 `mapstructure:"MonthlyRate,omitempty" json:"MonthlyRate,omitempty"`
	PercentSalaryHike  *float64 `mapstructure:"PercentSalaryHike,omitempty" json:"PercentSalaryHike,omitempty"`
	TotalWorkingYears  *float64 `mapstructure:"TotalWorkingYears,omitempty" json:"TotalWorkingYears,omitempty"`
	YearsAtCompany     *float64 `mapstructure:"YearsAtCompany,omitempty" json:"YearsAtCompany,omitempty"`
	YearsInCurrentRole *float64 `mapstructure:"YearsInCurrentRole,omitempty" json:"YearsInCurrentRole,omitempty"`
}

// Record converts the employee into the open mapping consumed by the
// predictor. Only the fields that are set appear in the result.
func (e Employee) Record() (Record, error) {
	var raw map[string]any
	if err := mapstructure.Decode(e, &raw); err != nil {
		return nil, fmt.Errorf("convert employee to record: %w", err)
	}

	out := make(Record, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case *string:
			if val != nil {
				out[k] = *val
			}
		case *float64:
			if val != nil {
				out[k] = *val
			}
		case nil:
		default:
			out[k] = v
		}
	}
	return out, nil
}

// DecodeEmployee decodes a loosely typed input map (e.g. parsed from a file or
// flags) into an Employee. Numeric strings such as "35" are accepted, keys the
// schema does not know are ignored and absent keys stay nil.
func DecodeEmployee(input map[string]any) (Employee, error) {
	var e Employee
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &e,
	})
	if err != nil {
		return e, err
	}
	if err := decoder.Decode(input); err != nil {
		return e, fmt.Errorf("decode employee: %w", err)
	}
	return e, nil
}

// NormalizeRecord coerces the documented fields of input to their schema
// types ("35" becomes 35) and keeps every other key as given.
func NormalizeRecord(input map[string]any) (Record, error) {
	e, err := DecodeEmployee(input)
	if err != nil {
		return nil, err
	}

	typed, err := e.Record()
	if err != nil {
		return nil, err
	}

	out := make(Record, len(input))
	for k, v := range input {
		out[k] = v
	}
	for k, v := range typed {
		out[k] = v
	}
	return out, nil
}

// SampleEmployee is the reference record used by the demo command.
func SampleEmployee() Employee {
	text := func(s string) *string { return &s }
	num := func(f float64) *float64 { return &f }

	return Employee{
		BusinessTravel:     text("Travel_Rarely"),
		JobRole:            text("Sales Executive"),
		MaritalStatus:      text("Single"),
		Age:                num(35),
		OverTime:           text("Yes"),
		DailyRate:          num(1000),
		DistanceFromHome:   num(10),
		HourlyRate:         num(50),
		MonthlyIncome:      num(5000),
		MonthlyRate:        num(15000),
		PercentSalaryHike:  num(15),
		TotalWorkingYears:  num(5),
		YearsAtCompany:     num(2),
		YearsInCurrentRole: num(2),
	}
}

func numberValue(v any) (float64, error) {
	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case float32:
		f = float64(val)
	case int:
		f = float64(val)
	case int8:
		f = float64(val)
	case int16:
		f = float64(val)
	case int32:
		f = float64(val)
	case int64:
		f = float64(val)
	case uint:
		f = float64(val)
	case uint8:
		f = float64(val)
	case uint16:
		f = float64(val)
	case uint32:
		f = float64(val)
	case uint64:
		f = float64(val)
	case json.Number:
		parsed, err := val.Float64()
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", val.String())
		}
		f = parsed
	default:
		return 0, fmt.Errorf("not a number: %v (%T)", v, v)
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not a finite number: %v", f)
	}
	return f, nil
}

func categoryValue(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", fmt.Errorf("category is null")
	case string:
		return val, nil
	case SalaryBand:
		return string(val), nil
	case bool:
		return strconv.FormatBool(val), nil
	case fmt.Stringer:
		return val.String(), nil
	default:
		if f, err := numberValue(v); err == nil {
			return strconv.FormatFloat(f, 'f', -1, 64), nil
		}
		return fmt.Sprintf("%v", v), nil
	}
}
