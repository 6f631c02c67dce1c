package procontroller

// Phase is the Protocol Engine's lifecycle position, per spec.md section 4.4.
type Phase int

const (
	// PhaseAwaiting: no USB handshake command has been observed yet. Only
	// the 0x80 USB-command class is answered; subcommands are not expected.
	PhaseAwaiting Phase = iota
	// PhaseHandshaking: the console has begun the 0x80/0x01 handshake
	// sequence; subcommand replies and opportunistic 0x30 reports are sent.
	PhaseHandshaking
	// PhaseStreaming: the console has requested continuous reports, either
	// with USBCmdHIDOnly or with SubcmdSetInputMode; 0x30 is sent every tick.
	PhaseStreaming
	// PhaseSuspended: no reports are sent in this phase. The engine never
	// enters it: a Transport error for a vanished endpoint is fatal and
	// ends engine.Run instead.
	PhaseSuspended
)

func (p Phase) String() string {
	switch p {
	case PhaseAwaiting:
		return "awaiting"
	case PhaseHandshaking:
		return "handshaking"
	case PhaseStreaming:
		return "streaming"
	case PhaseSuspended:
		return "suspended"
	default:
		return "unknown"
	}
}

// EngineState is the mutable controller/session state owned exclusively by
// the Protocol Engine (spec.md section 5's ownership invariant: only one
// goroutine mutates this struct).
type EngineState struct {
	Phase Phase

	// Timer increments once per emitted 0x30 report and wraps at 256,
	// written to OffsetCounter. PacketCounter is the independent counter
	// used for 0x21 subcommand-reply reports.
	Timer         uint8
	PacketCounter uint8

	BatteryConn uint8 // see DefaultBatteryConn

	InputMode uint8 // last value accepted by SubcmdSetInputMode, 0 until set

	IMUEnabled       bool
	VibrationEnabled bool

	// PlayerLights is the raw byte from SubcmdSetPlayerLights, echoed back
	// to status tooling but not otherwise interpreted (no physical LEDs).
	PlayerLights uint8

	// MAC is the 6-byte controller identity presented during the device-info
	// subcommand reply and the 0x80/0x01 status reply.
	MAC [6]byte

	FirmwareMajor uint8
	FirmwareMinor uint8
}

// NewEngineState builds the initial Awaiting-phase state for a fresh session.
func NewEngineState(mac [6]byte, firmwareMajor, firmwareMinor uint8) *EngineState {
	return &EngineState{
		Phase:         PhaseAwaiting,
		BatteryConn:   DefaultBatteryConn,
		MAC:           mac,
		FirmwareMajor: firmwareMajor,
		FirmwareMinor: firmwareMinor,
	}
}

// NextTimer advances and returns the wrapping input-report counter.
func (s *EngineState) NextTimer() uint8 {
	v := s.Timer
	s.Timer++
	return v
}

// NextPacketCounter advances and returns the wrapping subcommand-reply
// counter.
func (s *EngineState) NextPacketCounter() uint8 {
	v := s.PacketCounter
	s.PacketCounter++
	return v
}
