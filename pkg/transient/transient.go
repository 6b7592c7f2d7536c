// Package transient models lumped-capacitance cooldown of a sealed charge
// after shutdown: exponential temperature decay toward ambient and the
// ideal-gas pressure that follows it. It is independent of the crank-angle
// cycle model and works in Celsius at the API surface.
package transient

import (
	"fmt"
	"math"
)

const kelvinOffset = 273.15

// ErrInvalidModel reports a physically meaningless model configuration.
var ErrInvalidModel = fmt.Errorf("transient: invalid model")

// Model holds the lumped thermal parameters of the cooling body.
type Model struct {
	InitialTempC      float64 `json:"initialTempC"`
	AmbientTempC      float64 `json:"ambientTempC"`
	InitialPressurePa float64 `json:"initialPressurePa"`

	// HeatTransferCoeff is the combined hA term in W/K.
	HeatTransferCoeff float64 `json:"heatTransferCoeff"`
	MassKg            float64 `json:"massKg"`
	SpecificHeatJKgK  float64 `json:"specificHeatJKgK"`
}

// DefaultModel returns the bench configuration: a 1 kg body at 25 °C cooling
// toward a 20 °C room from atmospheric pressure.
func DefaultModel() Model {
	return Model{
		InitialTempC:      25,
		AmbientTempC:      20,
		InitialPressurePa: 101325,
		HeatTransferCoeff: 10,
		MassKg:            1,
		SpecificHeatJKgK:  1000,
	}
}

// Validate rejects non-positive thermal mass or pressure and temperatures
// below absolute zero.
func (m Model) Validate() error {
	if m.MassKg <= 0 {
		return fmt.Errorf("%w: mass must be positive, got %g", ErrInvalidModel, m.MassKg)
	}
	if m.SpecificHeatJKgK <= 0 {
		return fmt.Errorf("%w: specific heat must be positive, got %g", ErrInvalidModel, m.SpecificHeatJKgK)
	}
	if m.HeatTransferCoeff < 0 {
		return fmt.Errorf("%w: heat transfer coefficient must be non-negative, got %g", ErrInvalidModel, m.HeatTransferCoeff)
	}
	if m.InitialPressurePa <= 0 {
		return fmt.Errorf("%w: initial pressure must be positive, got %g", ErrInvalidModel, m.InitialPressurePa)
	}
	if m.InitialTempC <= -kelvinOffset || m.AmbientTempC <= -kelvinOffset {
		return fmt.Errorf("%w: temperatures must be above absolute zero", ErrInvalidModel)
	}
	return nil
}

// TemperatureAt returns the body temperature in Celsius after the given
// number of seconds: T(t) = Tamb + (T0 - Tamb) * exp(-hA t / (m cp)).
func (m Model) TemperatureAt(seconds float64) float64 {
	decay := math.Exp(-m.HeatTransferCoeff * seconds / (m.MassKg * m.SpecificHeatJKgK))
	return m.AmbientTempC + (m.InitialTempC-m.AmbientTempC)*decay
}

// PressureAt returns the sealed-volume pressure in Pascal after the given
// number of seconds, from the ideal gas law at constant volume. The ratio is
// taken in Kelvin.
func (m Model) PressureAt(seconds float64) float64 {
	tempK := m.TemperatureAt(seconds) + kelvinOffset
	initialK := m.InitialTempC + kelvinOffset
	return m.InitialPressurePa * (tempK / initialK)
}

// Series samples the model on a uniform time grid from zero to spanSeconds
// inclusive. It mirrors the aligned-sequence shape of a cycle trace so the
// same exporters can consume it.
func (m Model) Series(spanSeconds float64, sampleCount int) (times, tempsC, pressuresPa []float64, err error) {
	if err := m.Validate(); err != nil {
		return nil, nil, nil, err
	}
	if sampleCount < 2 {
		return nil, nil, nil, fmt.Errorf("%w: sample count must be at least 2, got %d", ErrInvalidModel, sampleCount)
	}
	if spanSeconds <= 0 {
		return nil, nil, nil, fmt.Errorf("%w: span must be positive, got %g", ErrInvalidModel, spanSeconds)
	}

	times = make([]float64, sampleCount)
	tempsC = make([]float64, sampleCount)
	pressuresPa = make([]float64, sampleCount)
	step := spanSeconds / float64(sampleCount-1)
	for i := range times {
		t := float64(i) * step
		times[i] = t
		tempsC[i] = m.TemperatureAt(t)
		pressuresPa[i] = m.PressureAt(t)
	}
	return times, tempsC, pressuresPa, nil
}
