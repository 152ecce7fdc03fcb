package grid

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDecodeTimes(t *testing.T) {
	cases := []struct {
		Name   string
		Units  string
		Values []float64
		Expect []time.Time
	}{
		{
			"Hours1900",
			"hours since 1900-01-01 00:00:00.0",
			[]float64{1051896, 1051897},
			[]time.Time{time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2020, 1, 1, 1, 0, 0, 0, time.UTC)},
		},
		{
			"SecondsEpoch",
			"seconds since 1970-01-01",
			[]float64{1577836800},
			[]time.Time{time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)},
		},
		{
			"DaysShortDate",
			"days since 2000-1-1",
			[]float64{0.5},
			[]time.Time{time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)},
		},
		{
			"ISO",
			"minutes since 2020-06-01T00:00:00Z",
			[]float64{90},
			[]time.Time{time.Date(2020, 6, 1, 1, 30, 0, 0, time.UTC)},
		},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			out, err := DecodeTimes(c.Units, c.Values)

			assert.Nil(t, err)
			assert.Equal(t, c.Expect, out)
		})
	}
}

func TestDecodeTimesErrors(t *testing.T) {
	cases := []struct {
		Name  string
		Units string
	}{
		{"NoSince", "hours"},
		{"BadUnit", "fortnights since 2000-01-01"},
		{"BadRef", "hours since yesterday"},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			_, err := DecodeTimes(c.Units, []float64{1})

			assert.NotNil(t, err)
		})
	}
}

func TestDescribeStep(t *testing.T) {
	cases := []struct {
		Given  time.Duration
		Expect string
	}{
		{time.Hour, "1 hour"},
		{6 * time.Hour, "6 hours"},
		{24 * time.Hour, "1 day"},
		{72 * time.Hour, "3 days"},
		{30 * time.Minute, "30 minutes"},
		{90 * time.Second, "1m30s"},
	}

	for _, c := range cases {
		t.Run(c.Expect, func(t *testing.T) {
			assert.Equal(t, c.Expect, describeStep(c.Given))
		})
	}
}
