// Package inputsource maps logical input events from an external local
// input source onto the Switch Pro Controller InputState consumed by the
// wire codec. Discovering and reading an actual local gamepad device node
// (evdev or otherwise) is an external collaborator; this package only knows
// about the logical event shape below.
package inputsource

import (
	"context"
	"sync/atomic"

	"switchbridge/device/procontroller"
)

// AxisID names one of the logical axes spec.md section 4.5 defines: the two
// sticks and the two analog triggers (when the source reports triggers as
// axes rather than buttons).
type AxisID int

const (
	AxisLeftX AxisID = iota
	AxisLeftY
	AxisRightX
	AxisRightY
	AxisLeftTrigger
	AxisRightTrigger
)

// EventKind discriminates the Event union.
type EventKind int

const (
	EventButton EventKind = iota
	EventHat
	EventAxis
	EventIMUSample
)

// Event is one logical input change, as produced by an EventSource. Only
// the fields relevant to Kind are read.
type Event struct {
	Kind EventKind

	Button  uint32 // one of procontroller's Button* bits
	Pressed bool

	// HatDX, HatDY are hat_change(dx, dy): each in {-1, 0, 1}, resolved by
	// the Adapter into independent Hat bits with diagonals co-set.
	HatDX, HatDY int8

	Axis AxisID
	// Value is the raw signed axis reading, full int16 range, centred on 0 —
	// the Adapter normalises it to the controller's [0,4095]/centre-2048
	// range (sticks) or a midpoint threshold (triggers).
	Value int16

	IMU procontroller.IMUSample // raw sample, sign/remap applied by Adapter
}

// EventSource is anything that can be drained for logical Events: a real
// gamepad reader, a scripted fixture in tests, or a replay file.
type EventSource interface {
	// Events returns the channel Adapter.Run reads from. Closing it ends
	// Adapter.Run, after which Adapter.Alive reports false.
	Events() <-chan Event
}

// AxisConfig resolves spec.md's IMU orientation open question: sign and
// remap are configuration, not a hard-coded axis order, since the physical
// mounting of a local sensor is unknown to this bridge.
type AxisConfig struct {
	AccelSign  [3]int8
	GyroSign   [3]int8
	AccelRemap [3]int // source index feeding output axis i
	GyroRemap  [3]int
}

// DefaultAxisConfig is the identity mapping: no sign flip, no axis swap.
func DefaultAxisConfig() AxisConfig {
	return AxisConfig{
		AccelSign:  [3]int8{1, 1, 1},
		GyroSign:   [3]int8{1, 1, 1},
		AccelRemap: [3]int{0, 1, 2},
		GyroRemap:  [3]int{0, 1, 2},
	}
}

// Adapter owns the InputState the Protocol Engine reads and updates it from
// a stream of logical Events. It satisfies engine.Source directly, so the
// same value can be handed to both inputsource and engine.
type Adapter struct {
	state *procontroller.InputState
	axis  AxisConfig
	alive atomic.Bool
}

// New builds an Adapter writing into state using cfg for IMU orientation.
func New(state *procontroller.InputState, cfg AxisConfig) *Adapter {
	return &Adapter{state: state, axis: cfg}
}

// Run drains source.Events() into the owned InputState until ctx is
// cancelled or the channel is closed. It is meant to run on its own
// goroutine, matching the teacher's one-goroutine-per-stream pattern
// (spec.md section 5: the Adapter may run independently of the Protocol
// Engine, which only reads the InputState it writes).
func (a *Adapter) Run(ctx context.Context, source EventSource) {
	a.alive.Store(true)
	defer a.alive.Store(false)

	events := source.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			a.Apply(ev)
		}
	}
}

// Alive reports whether Run's event channel is still open. Implements
// engine.Source.
func (a *Adapter) Alive() bool {
	return a.alive.Load()
}

// Apply folds one Event into the owned InputState. It never blocks and
// never returns an error: an Event the Adapter doesn't recognise is simply
// dropped, matching spec.md's "malformed input is not a protocol error"
// stance (the malformed-input edge case lives on the Transport side, not
// here).
func (a *Adapter) Apply(ev Event) {
	switch ev.Kind {
	case EventButton:
		if ev.Pressed {
			a.state.Buttons |= ev.Button
		} else {
			a.state.Buttons &^= ev.Button
		}
	case EventHat:
		a.applyHat(ev.HatDX, ev.HatDY)
	case EventAxis:
		a.applyAxis(ev.Axis, ev.Value)
	case EventIMUSample:
		a.state.PushIMUSample(a.remapIMU(ev.IMU))
	}
}

// applyAxis implements spec.md section 4.5's mapping rules: sticks are
// normalised to [0,4095]/centre 2048 with the Y axes inverted, and trigger
// axes above the raw midpoint additionally set ZL/ZR as if they were
// buttons.
func (a *Adapter) applyAxis(axis AxisID, raw int16) {
	switch axis {
	case AxisLeftX:
		a.state.LeftStick.X = normalizeStick(raw, false)
	case AxisLeftY:
		a.state.LeftStick.Y = normalizeStick(raw, true)
	case AxisRightX:
		a.state.RightStick.X = normalizeStick(raw, false)
	case AxisRightY:
		a.state.RightStick.Y = normalizeStick(raw, true)
	case AxisLeftTrigger:
		a.applyTrigger(procontroller.ButtonZL, raw)
	case AxisRightTrigger:
		a.applyTrigger(procontroller.ButtonZR, raw)
	}
}

// applyTrigger sets or clears bit depending on whether raw is above the
// axis midpoint (0 in the signed 16-bit range), matching a trigger that
// reports as an analog axis rather than a digital button.
func (a *Adapter) applyTrigger(bit uint32, raw int16) {
	if raw > 0 {
		a.state.Buttons |= bit
	} else {
		a.state.Buttons &^= bit
	}
}

// applyHat resolves hat_change(dx, dy) into the four independent Hat bits,
// co-setting diagonals (e.g. dx=1,dy=-1 sets both Right and Up).
func (a *Adapter) applyHat(dx, dy int8) {
	var h uint8
	switch {
	case dy < 0:
		h |= procontroller.HatUp
	case dy > 0:
		h |= procontroller.HatDown
	}
	switch {
	case dx > 0:
		h |= procontroller.HatRight
	case dx < 0:
		h |= procontroller.HatLeft
	}
	a.state.Hat = h
}

// normalizeStick maps a raw signed axis reading (full int16 range, centred
// on 0) onto the controller's [0,4095] range centred on 2048, inverting Y
// axes so that raw-up maps to a higher numeric value (spec.md section 4.5).
func normalizeStick(raw int16, invert bool) uint16 {
	v := int32(raw)
	if invert {
		v = -v
	}
	v += 32768
	if v < 0 {
		v = 0
	}
	if v > 65535 {
		v = 65535
	}
	scaled := (v*int32(procontroller.StickMax) + 32767) / 65535
	return uint16(scaled)
}

// remapIMU applies the configured per-axis sign and source remap before the
// sample reaches Controller State, keeping the wire codec and calibration
// store orientation-agnostic (SPEC_FULL.md section 3).
func (a *Adapter) remapIMU(s procontroller.IMUSample) procontroller.IMUSample {
	accelIn := [3]int16{s.AccelX, s.AccelY, s.AccelZ}
	gyroIn := [3]int16{s.GyroX, s.GyroY, s.GyroZ}

	var accelOut, gyroOut [3]int16
	for i := 0; i < 3; i++ {
		accelOut[i] = int16(int32(accelIn[a.axis.AccelRemap[i]]) * int32(a.axis.AccelSign[i]))
		gyroOut[i] = int16(int32(gyroIn[a.axis.GyroRemap[i]]) * int32(a.axis.GyroSign[i]))
	}

	return procontroller.IMUSample{
		AccelX: accelOut[0], AccelY: accelOut[1], AccelZ: accelOut[2],
		GyroX: gyroOut[0], GyroY: gyroOut[1], GyroZ: gyroOut[2],
	}
}

// Reset returns the owned InputState to Idle, used when the EventSource
// disconnects (spec.md section 7's SourceDisconnected recovery: keep
// streaming neutral reports rather than stopping).
func (a *Adapter) Reset() {
	*a.state = procontroller.Idle()
}
