package procontroller_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"switchbridge/device/procontroller"
)

func TestCalibrationStoreReadKnownRegion(t *testing.T) {
	cal := procontroller.NewCalibrationStore()

	got := cal.Read(procontroller.CalOffsetFactoryStick1, 9)
	assert.Len(t, got, 9)
	assert.Equal(t, byte(0xFF), got[0])
	assert.Equal(t, byte(0xF2), got[1])
	assert.Equal(t, byte(0x6E), got[2])
}

func TestCalibrationStoreReadUnknownRegionFillsFF(t *testing.T) {
	cal := procontroller.NewCalibrationStore()

	got := cal.Read(0x1234, 8)
	want := []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}
	assert.Equal(t, want, got)
}

func TestCalibrationStoreReadPastRegionEndFillsFF(t *testing.T) {
	cal := procontroller.NewCalibrationStore()

	// CalOffsetUserStickMarker region is 2 bytes; ask for 4.
	got := cal.Read(procontroller.CalOffsetUserStickMarker, 4)
	assert.Equal(t, []byte{0xFF, 0xFF, 0xFF, 0xFF}, got)
}

func TestCalibrationStoreReadZeroLength(t *testing.T) {
	cal := procontroller.NewCalibrationStore()
	got := cal.Read(procontroller.CalOffsetSerial, 0)
	assert.Empty(t, got)
}
