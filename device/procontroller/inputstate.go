package procontroller

// Stick holds a pair of 12-bit unsigned stick axes, centre StickCenter.
type Stick struct {
	X, Y uint16
}

// IMUSample is a single accelerometer+gyro reading, 16-bit signed LSBs.
// Accel units: 1G = 4096. Gyro units: raw LSB/dps per calibration fixture.
type IMUSample struct {
	AccelX, AccelY, AccelZ int16
	GyroX, GyroY, GyroZ    int16
}

// InputState is the normalised snapshot consumed by the wire codec. It is
// updated by the Input Adapter and read by copy, never mutated concurrently
// with a read (see engine.Engine's ownership rule).
type InputState struct {
	Buttons uint32 // see const.go bit layout; only the low 24 bits are wire-significant
	Hat     uint8  // low nibble: HatUp/HatDown/HatLeft/HatRight, may co-set for diagonals

	LeftStick  Stick
	RightStick Stick

	// IMU is newest-first: IMU[0] is the most recent sample. Encoded in that
	// order by EncodeInputReport.
	IMU [IMUSampleCount]IMUSample
}

// Idle returns the InputState for "all buttons released, sticks centred",
// used by the Input Adapter when the local source disconnects (spec.md
// section 7, SourceDisconnected recovery).
func Idle() InputState {
	return InputState{
		LeftStick:  Stick{X: StickCenter, Y: StickCenter},
		RightStick: Stick{X: StickCenter, Y: StickCenter},
	}
}

// PushIMUSample shifts the ring and writes s as the newest sample.
func (s *InputState) PushIMUSample(sample IMUSample) {
	copy(s.IMU[1:], s.IMU[:IMUSampleCount-1])
	s.IMU[0] = sample
}

// packStick writes the bit-exact 3-byte packing spec.md section 3 defines:
//
//	byte_a = lo8(x); byte_b = hi4(x) | (lo4(y) << 4); byte_c = hi8(y)
func packStick(b []byte, s Stick) {
	x, y := s.X&0x0FFF, s.Y&0x0FFF
	b[0] = byte(x & 0xFF)
	b[1] = byte((x>>8)&0x0F) | byte((y&0x0F)<<4)
	b[2] = byte(y >> 4)
}

// unpackStick is the inverse of packStick. Nothing in the module calls it.
func unpackStick(b []byte) Stick {
	x := uint16(b[0]) | (uint16(b[1]&0x0F) << 8)
	y := uint16(b[1]>>4) | (uint16(b[2]) << 4)
	return Stick{X: x, Y: y}
}
