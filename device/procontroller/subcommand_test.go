package procontroller_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"switchbridge/device/procontroller"
)

func newHandler() (*procontroller.SubcommandHandler, *procontroller.EngineState) {
	cal := procontroller.NewCalibrationStore()
	engine := procontroller.NewEngineState([6]byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06}, 3, 72)
	return procontroller.NewSubcommandHandler(cal, engine), engine
}

func TestSubcommandSetInputModeStoresValue(t *testing.T) {
	h, engine := newHandler()

	ack, _, ok := h.Handle(procontroller.SubcmdSetInputMode, []byte{0x30})
	require.True(t, ok)
	assert.Equal(t, byte(procontroller.AckPermissive), ack)
	assert.Equal(t, byte(0x30), engine.InputMode)
	assert.Equal(t, procontroller.PhaseStreaming, engine.Phase)
}

func TestSubcommandSetIMUEnable(t *testing.T) {
	h, engine := newHandler()

	_, _, ok := h.Handle(procontroller.SubcmdSetIMUEnable, []byte{0x01})
	require.True(t, ok)
	assert.True(t, engine.IMUEnabled)

	_, _, ok = h.Handle(procontroller.SubcmdSetIMUEnable, []byte{0x00})
	require.True(t, ok)
	assert.False(t, engine.IMUEnabled)
}

func TestSubcommandSetVibrationEnable(t *testing.T) {
	h, engine := newHandler()

	_, _, ok := h.Handle(procontroller.SubcmdSetVibrationEnable, []byte{0x01})
	require.True(t, ok)
	assert.True(t, engine.VibrationEnabled)
}

func TestSubcommandDeviceInfoReportsFirmwareAndMAC(t *testing.T) {
	h, _ := newHandler()

	ack, reply, ok := h.Handle(procontroller.SubcmdRequestDeviceInfo, nil)
	require.True(t, ok)
	assert.Equal(t, byte(procontroller.AckDeviceInfo), ack)
	require.GreaterOrEqual(t, len(reply), 10)
	assert.Equal(t, byte(3), reply[0], "firmware major")
	assert.Equal(t, byte(72), reply[1], "firmware minor")
	assert.Equal(t, byte(procontroller.ControllerTypePro), reply[2])
	assert.Equal(t, []byte{0x06, 0x05, 0x04, 0x03, 0x02, 0x01}, reply[4:10])
	assert.Equal(t, []byte{0x03, 0x02}, reply[10:12], "uses-colour-SPI + unknown trailer")
}

func TestSubcommandSPIFlashReadEchoesRequestAndFillsFixture(t *testing.T) {
	h, _ := newHandler()

	req := []byte{0x3D, 0x60, 0x00, 0x00, 0x09}
	ack, reply, ok := h.Handle(procontroller.SubcmdSPIFlashRead, req)
	require.True(t, ok)
	assert.Equal(t, byte(procontroller.AckSPIFlashRead), ack)
	require.Len(t, reply, 5+9)
	assert.Equal(t, req, reply[:5])
	assert.Equal(t, byte(0xFF), reply[5])
}

func TestSubcommandSPIFlashReadTooShortRequest(t *testing.T) {
	h, _ := newHandler()

	ack, reply, ok := h.Handle(procontroller.SubcmdSPIFlashRead, []byte{0x00})
	require.True(t, ok)
	assert.Equal(t, byte(procontroller.AckSPIFlashRead), ack)
	assert.Nil(t, reply)
}

func TestSubcommandUnknownIsIgnoredNotFatal(t *testing.T) {
	h, _ := newHandler()

	_, _, ok := h.Handle(0xFE, nil)
	assert.False(t, ok)
}

func TestSubcommandSetPlayerLightsStoresValue(t *testing.T) {
	h, engine := newHandler()

	_, _, ok := h.Handle(procontroller.SubcmdSetPlayerLights, []byte{0x03})
	require.True(t, ok)
	assert.Equal(t, byte(0x03), engine.PlayerLights)
}
