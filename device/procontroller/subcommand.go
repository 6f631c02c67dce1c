package procontroller

// SubcommandHandler answers 0x01-report subcommands against the given
// Calibration Store and Engine State, per spec.md section 4.3. Dispatch is
// a single switch on the subcommand id, matching gabstv-nscon's per-case
// shape; the longer replies are built by helper methods.
type SubcommandHandler struct {
	cal    *CalibrationStore
	engine *EngineState
}

// NewSubcommandHandler builds a handler bound to one session's state.
func NewSubcommandHandler(cal *CalibrationStore, engine *EngineState) *SubcommandHandler {
	return &SubcommandHandler{cal: cal, engine: engine}
}

// Handle dispatches a subcommand and returns the ack byte and reply payload
// to encode into a 0x21 report. ok is false for a subcommand id this
// handler has no entry for; per spec.md section 4.3 that is ignored by the
// caller, not treated as a protocol violation.
func (h *SubcommandHandler) Handle(subcmd byte, data []byte) (ack byte, reply []byte, ok bool) {
	switch subcmd {
	case SubcmdBluetoothPairing:
		return AckBluetoothPairing, []byte{0x03}, true
	case SubcmdRequestDeviceInfo:
		return AckDeviceInfo, h.deviceInfoReply(), true
	case SubcmdSetInputMode:
		if len(data) > 0 {
			h.engine.InputMode = data[0]
		}
		// The console commonly begins streaming via this subcommand rather
		// than the USB 0x04 (HID-only) command.
		h.engine.Phase = PhaseStreaming
		return AckPermissive, nil, true
	case SubcmdTriggerButtonsElapsed:
		return AckTriggerButtonsTime, make([]byte, 6), true
	case SubcmdSetShipmentLowPower:
		return AckPermissive, nil, true
	case SubcmdSPIFlashRead:
		return AckSPIFlashRead, h.spiFlashReadReply(data), true
	case SubcmdSetNFCIRConfig:
		return AckSetNFCIRConfig, []byte{0x01, 0x00, 0xFF, 0x00, 0x03, 0x00, 0x05, 0x01}, true
	case SubcmdSetPlayerLights:
		if len(data) > 0 {
			h.engine.PlayerLights = data[0]
		}
		return AckPermissive, nil, true
	case SubcmdSetHomeLight:
		return AckPermissive, nil, true
	case SubcmdSetIMUEnable:
		if len(data) > 0 {
			h.engine.IMUEnabled = data[0] != 0
		}
		return AckPermissive, nil, true
	case SubcmdSetIMUSensitivity:
		return AckPermissive, nil, true
	case SubcmdSetVibrationEnable:
		if len(data) > 0 {
			h.engine.VibrationEnabled = data[0] != 0
		}
		return AckPermissive, nil, true
	default:
		return 0, nil, false
	}
}

// deviceInfoReply mirrors gabstv-nscon's 0x02 reply layout: firmware
// major/minor, controller type, a reserved 0x02 byte, the MAC (console
// expects it byte-swapped relative to presentation order), then the
// "uses colour SPI" and "unknown" trailer bytes.
func (h *SubcommandHandler) deviceInfoReply() []byte {
	r := make([]byte, 0, 12)
	r = append(r, h.engine.FirmwareMajor, h.engine.FirmwareMinor)
	r = append(r, ControllerTypePro, 0x02)
	mac := h.engine.MAC
	r = append(r, mac[5], mac[4], mac[3], mac[2], mac[1], mac[0])
	r = append(r, 0x03, 0x02)
	return r
}

// spiFlashReadReply answers SubcmdSPIFlashRead: the request data carries a
// 16-bit little-endian offset at bytes 0-1 and a length at byte 4, echoed
// back ahead of the fixture bytes (gabstv-nscon's SPI_ROM_DATA contract).
func (h *SubcommandHandler) spiFlashReadReply(data []byte) []byte {
	if len(data) < 5 {
		return nil
	}
	offset := uint16(data[0]) | uint16(data[1])<<8
	length := data[4]
	fixture := h.cal.Read(offset, length)

	reply := make([]byte, 0, 5+len(fixture))
	reply = append(reply, data[0], data[1], data[2], data[3], length)
	reply = append(reply, fixture...)
	return reply
}
