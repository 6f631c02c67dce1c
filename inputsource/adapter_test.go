package inputsource_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"switchbridge/device/procontroller"
	"switchbridge/inputsource"
)

type fakeSource struct {
	ch chan inputsource.Event
}

func (f *fakeSource) Events() <-chan inputsource.Event { return f.ch }

func TestAdapterButtonPressAndRelease(t *testing.T) {
	state := procontroller.Idle()
	a := inputsource.New(&state, inputsource.DefaultAxisConfig())

	a.Apply(inputsource.Event{Kind: inputsource.EventButton, Button: procontroller.ButtonA, Pressed: true})
	assert.Equal(t, procontroller.ButtonA, state.Buttons&procontroller.ButtonA)

	a.Apply(inputsource.Event{Kind: inputsource.EventButton, Button: procontroller.ButtonA, Pressed: false})
	assert.Equal(t, uint32(0), state.Buttons&procontroller.ButtonA)
}

func TestAdapterButtonsAreIndependent(t *testing.T) {
	state := procontroller.Idle()
	a := inputsource.New(&state, inputsource.DefaultAxisConfig())

	a.Apply(inputsource.Event{Kind: inputsource.EventButton, Button: procontroller.ButtonA, Pressed: true})
	a.Apply(inputsource.Event{Kind: inputsource.EventButton, Button: procontroller.ButtonB, Pressed: true})
	a.Apply(inputsource.Event{Kind: inputsource.EventButton, Button: procontroller.ButtonA, Pressed: false})

	assert.Equal(t, uint32(0), state.Buttons&procontroller.ButtonA)
	assert.Equal(t, procontroller.ButtonB, state.Buttons&procontroller.ButtonB)
}

func TestAdapterAxisNormalizesToStickRange(t *testing.T) {
	state := procontroller.Idle()
	a := inputsource.New(&state, inputsource.DefaultAxisConfig())

	a.Apply(inputsource.Event{Kind: inputsource.EventAxis, Axis: inputsource.AxisLeftX, Value: 0})
	assert.Equal(t, procontroller.StickCenter, state.LeftStick.X, "raw midpoint maps to stick centre")

	a.Apply(inputsource.Event{Kind: inputsource.EventAxis, Axis: inputsource.AxisLeftX, Value: -32768})
	assert.Equal(t, uint16(0), state.LeftStick.X, "raw minimum maps to stick minimum")

	a.Apply(inputsource.Event{Kind: inputsource.EventAxis, Axis: inputsource.AxisLeftX, Value: 32767})
	assert.Equal(t, procontroller.StickMax, state.LeftStick.X, "raw maximum maps to stick maximum")

	assert.Equal(t, procontroller.StickCenter, state.RightStick.Y, "unset axis stays centred")
}

func TestAdapterYAxisIsInverted(t *testing.T) {
	state := procontroller.Idle()
	a := inputsource.New(&state, inputsource.DefaultAxisConfig())

	// raw-up (negative, the evdev convention) must map to a HIGHER numeric
	// value on the impersonated controller (spec.md section 4.5).
	a.Apply(inputsource.Event{Kind: inputsource.EventAxis, Axis: inputsource.AxisLeftY, Value: -32768})
	assert.Equal(t, procontroller.StickMax, state.LeftStick.Y)

	a.Apply(inputsource.Event{Kind: inputsource.EventAxis, Axis: inputsource.AxisLeftY, Value: 32767})
	assert.Equal(t, uint16(0), state.LeftStick.Y)
}

func TestAdapterTriggerAxisSetsZLZR(t *testing.T) {
	state := procontroller.Idle()
	a := inputsource.New(&state, inputsource.DefaultAxisConfig())

	a.Apply(inputsource.Event{Kind: inputsource.EventAxis, Axis: inputsource.AxisLeftTrigger, Value: 1})
	assert.Equal(t, procontroller.ButtonZL, state.Buttons&procontroller.ButtonZL)

	a.Apply(inputsource.Event{Kind: inputsource.EventAxis, Axis: inputsource.AxisRightTrigger, Value: 100})
	assert.Equal(t, procontroller.ButtonZR, state.Buttons&procontroller.ButtonZR)

	a.Apply(inputsource.Event{Kind: inputsource.EventAxis, Axis: inputsource.AxisLeftTrigger, Value: 0})
	assert.Equal(t, uint32(0), state.Buttons&procontroller.ButtonZL, "at or below midpoint releases ZL")
}

func TestAdapterHatBitsAndDiagonal(t *testing.T) {
	state := procontroller.Idle()
	a := inputsource.New(&state, inputsource.DefaultAxisConfig())

	a.Apply(inputsource.Event{Kind: inputsource.EventHat, HatDX: 1, HatDY: -1})
	assert.Equal(t, procontroller.HatUp|procontroller.HatRight, state.Hat, "diagonal co-sets both bits")

	a.Apply(inputsource.Event{Kind: inputsource.EventHat, HatDX: 0, HatDY: 1})
	assert.Equal(t, procontroller.HatDown, state.Hat)

	a.Apply(inputsource.Event{Kind: inputsource.EventHat, HatDX: -1, HatDY: 0})
	assert.Equal(t, procontroller.HatLeft, state.Hat)
}

func TestAdapterIMUSignFlip(t *testing.T) {
	state := procontroller.Idle()
	cfg := inputsource.DefaultAxisConfig()
	cfg.AccelSign = [3]int8{1, -1, 1}

	a := inputsource.New(&state, cfg)
	a.Apply(inputsource.Event{Kind: inputsource.EventIMUSample, IMU: procontroller.IMUSample{AccelX: 10, AccelY: 20, AccelZ: 30}})

	assert.Equal(t, int16(10), state.IMU[0].AccelX)
	assert.Equal(t, int16(-20), state.IMU[0].AccelY)
	assert.Equal(t, int16(30), state.IMU[0].AccelZ)
}

func TestAdapterIMURemap(t *testing.T) {
	state := procontroller.Idle()
	cfg := inputsource.DefaultAxisConfig()
	cfg.GyroRemap = [3]int{1, 0, 2} // swap x/y

	a := inputsource.New(&state, cfg)
	a.Apply(inputsource.Event{Kind: inputsource.EventIMUSample, IMU: procontroller.IMUSample{GyroX: 1, GyroY: 2, GyroZ: 3}})

	assert.Equal(t, int16(2), state.IMU[0].GyroX)
	assert.Equal(t, int16(1), state.IMU[0].GyroY)
	assert.Equal(t, int16(3), state.IMU[0].GyroZ)
}

func TestAdapterIMURingIsNewestFirst(t *testing.T) {
	state := procontroller.Idle()
	a := inputsource.New(&state, inputsource.DefaultAxisConfig())

	a.Apply(inputsource.Event{Kind: inputsource.EventIMUSample, IMU: procontroller.IMUSample{AccelX: 1}})
	a.Apply(inputsource.Event{Kind: inputsource.EventIMUSample, IMU: procontroller.IMUSample{AccelX: 2}})
	a.Apply(inputsource.Event{Kind: inputsource.EventIMUSample, IMU: procontroller.IMUSample{AccelX: 3}})

	assert.Equal(t, int16(3), state.IMU[0].AccelX)
	assert.Equal(t, int16(2), state.IMU[1].AccelX)
	assert.Equal(t, int16(1), state.IMU[2].AccelX)
}

func TestAdapterResetReturnsToIdle(t *testing.T) {
	state := procontroller.Idle()
	a := inputsource.New(&state, inputsource.DefaultAxisConfig())

	a.Apply(inputsource.Event{Kind: inputsource.EventButton, Button: procontroller.ButtonA, Pressed: true})
	a.Reset()

	assert.Equal(t, procontroller.Idle(), state)
}

func TestAdapterRunAppliesEventsAndTracksAlive(t *testing.T) {
	state := procontroller.Idle()
	a := inputsource.New(&state, inputsource.DefaultAxisConfig())
	source := &fakeSource{ch: make(chan inputsource.Event, 1)}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		a.Run(ctx, source)
		close(done)
	}()

	require.Eventually(t, a.Alive, time.Second, time.Millisecond)

	source.ch <- inputsource.Event{Kind: inputsource.EventButton, Button: procontroller.ButtonX, Pressed: true}
	require.Eventually(t, func() bool {
		return state.Buttons&procontroller.ButtonX != 0
	}, time.Second, time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after ctx cancellation")
	}
	assert.False(t, a.Alive())
}

func TestAdapterRunStopsWhenChannelCloses(t *testing.T) {
	state := procontroller.Idle()
	a := inputsource.New(&state, inputsource.DefaultAxisConfig())
	source := &fakeSource{ch: make(chan inputsource.Event)}

	done := make(chan struct{})
	go func() {
		a.Run(context.Background(), source)
		close(done)
	}()

	require.Eventually(t, a.Alive, time.Second, time.Millisecond)
	close(source.ch)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after channel close")
	}
	assert.False(t, a.Alive())
}
