package procontroller

import "encoding/binary"

// EncodeInputReport writes a full 0x30 standard input report: buttons,
// sticks and the IMU sample ring, per spec.md section 4.1.
func EncodeInputReport(state *InputState, engine *EngineState) []byte {
	b := make([]byte, InputReportSize)
	b[OffsetReportID] = ReportIDInputFull
	b[OffsetCounter] = engine.NextTimer()
	b[OffsetBatteryConn] = engine.BatteryConn

	encodeButtons(b[OffsetButtons:OffsetButtons+3], state)

	packStick(b[OffsetSticks:OffsetSticks+3], state.LeftStick)
	packStick(b[OffsetSticks+3:OffsetSticks+6], state.RightStick)

	b[OffsetVibrator] = 0

	if engine.IMUEnabled {
		encodeIMU(b[OffsetIMU:OffsetIMU+IMUSampleCount*IMUSampleBytes], state)
	}

	return b
}

// EncodeSubcommandReply writes a 0x21 report: the same leading fields as
// 0x30 (so the console can treat it as input data too) plus an ack byte,
// the echoed subcommand id, and up to SubcmdReplyMax reply bytes.
func EncodeSubcommandReply(state *InputState, engine *EngineState, ack, subcmd byte, reply []byte) []byte {
	b := make([]byte, InputReportSize)
	b[OffsetReportID] = ReportIDSubcmdReply
	b[OffsetCounter] = engine.NextPacketCounter()
	b[OffsetBatteryConn] = engine.BatteryConn

	encodeButtons(b[OffsetButtons:OffsetButtons+3], state)
	packStick(b[OffsetSticks:OffsetSticks+3], state.LeftStick)
	packStick(b[OffsetSticks+3:OffsetSticks+6], state.RightStick)
	b[OffsetVibrator] = 0

	b[OffsetAck] = ack
	b[OffsetSubcmdEcho] = subcmd
	n := len(reply)
	if n > SubcmdReplyMax {
		n = SubcmdReplyMax
	}
	copy(b[OffsetReply:OffsetReply+n], reply[:n])

	return b
}

// encodeButtons packs Buttons and Hat into bytes 3-5. The SL/SR bits of
// byte2 are never set by this bridge; they appear only if an EventSource
// sends those Button bits.
func encodeButtons(b []byte, state *InputState) {
	b[0] = byte(state.Buttons)
	b[1] = byte(state.Buttons >> 8)
	b[2] = byte(state.Buttons>>16) | hatToBits(state.Hat)
}

// hatToBits maps the four independent Hat bits onto byte2's low nibble,
// matching const.go's HatUp/HatDown/HatRight/HatLeft layout directly: the
// hat nibble and the button-byte2 nibble share the same bit positions.
func hatToBits(hat uint8) byte {
	return hat & 0x0F
}

func encodeIMU(b []byte, state *InputState) {
	for i := 0; i < IMUSampleCount; i++ {
		s := state.IMU[i]
		off := i * IMUSampleBytes
		binary.LittleEndian.PutUint16(b[off+0:], uint16(s.AccelX))
		binary.LittleEndian.PutUint16(b[off+2:], uint16(s.AccelY))
		binary.LittleEndian.PutUint16(b[off+4:], uint16(s.AccelZ))
		binary.LittleEndian.PutUint16(b[off+6:], uint16(s.GyroX))
		binary.LittleEndian.PutUint16(b[off+8:], uint16(s.GyroY))
		binary.LittleEndian.PutUint16(b[off+10:], uint16(s.GyroZ))
	}
}

// OutputFrame is the decoded form of an output report received from the
// console (a 0x01, 0x10 or 0x80 report).
type OutputFrame struct {
	ReportID byte

	// Populated when ReportID == ReportIDRumbleSub.
	SubcommandID byte
	SubcommandData []byte

	// Populated when ReportID == ReportIDUSBCommand.
	USBCommand byte
}

// DecodeOutputReport parses a raw report received from the gadget endpoint.
// It returns (frame, true) on a recognised, well-formed report, and
// (zero, false) for an empty report, an unknown report id, or a 0x01/0x80
// report too short to carry its command byte. Subcommand ids are not
// checked here.
func DecodeOutputReport(raw []byte) (OutputFrame, bool) {
	if len(raw) == 0 {
		return OutputFrame{}, false
	}
	switch raw[0] {
	case ReportIDRumbleSub:
		if len(raw) < 11 {
			return OutputFrame{}, false
		}
		f := OutputFrame{ReportID: ReportIDRumbleSub, SubcommandID: raw[10]}
		if len(raw) > 11 {
			f.SubcommandData = raw[11:]
		}
		return f, true
	case ReportIDRumble:
		return OutputFrame{ReportID: ReportIDRumble}, true
	case ReportIDUSBCommand:
		if len(raw) < 2 {
			return OutputFrame{}, false
		}
		return OutputFrame{ReportID: ReportIDUSBCommand, USBCommand: raw[1]}, true
	default:
		return OutputFrame{}, false
	}
}
