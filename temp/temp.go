// Package temp converts readings of the RP2040 on-die temperature sensor.
package temp

import (
	"math"

	"tinygo.org/x/drivers"

	"picoos/x/strconvx"
)

// Sensor constants from the RP2040 datasheet: 27 °C reads 0.706 V and the
// slope is -1.721 mV/°C, sampled by a 12-bit ADC against 3.3 V.
const (
	vref    = 3.3
	fullADC = 4096
	v27     = 0.706
	slope   = 0.001721
)

// Sampler returns one raw 12-bit sample of the temperature channel.
type Sampler interface {
	ReadRaw() (uint16, error)
}

// Celsius converts a raw sample to degrees Celsius.
func Celsius(raw uint16) float64 {
	v := float64(raw) * vref / fullADC
	return 27 - (v-v27)/slope
}

// DeciCelsius converts a raw sample to tenths of a degree, rounded half
// away from zero.
func DeciCelsius(raw uint16) int32 {
	return int32(math.Round(Celsius(raw) * 10))
}

// FormatDeci renders tenths of a degree as "23.4" or "-3.2".
func FormatDeci(d int32) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	return sign + strconvx.Itoa(int(d/10)) + "." + strconvx.Itoa(int(d%10))
}

// Sensor adapts a Sampler to drivers.Sensor.
type Sensor struct {
	s     Sampler
	milli int32
	deci  int32
}

func New(s Sampler) *Sensor { return &Sensor{s: s} }

// Update takes a fresh sample when Temperature is requested.
func (t *Sensor) Update(which drivers.Measurement) error {
	if which&drivers.Temperature == 0 {
		return nil
	}
	raw, err := t.s.ReadRaw()
	if err != nil {
		return err
	}
	c := Celsius(raw)
	t.milli = int32(math.Round(c * 1000))
	t.deci = int32(math.Round(c * 10))
	return nil
}

// Temperature returns the last sample in milli-degrees Celsius.
func (t *Sensor) Temperature() int32 { return t.milli }

// DeciCelsius returns the last sample in tenths of a degree.
func (t *Sensor) DeciCelsius() int32 { return t.deci }

var _ drivers.Sensor = (*Sensor)(nil)
