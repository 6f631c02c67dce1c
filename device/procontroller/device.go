package procontroller

import "switchbridge/device"

// Controller ties the Wire Codec, Calibration Store, Engine State and
// Subcommand Handler together behind device.ReportBuilder, so the Protocol
// Engine can ask it to serialize either a standard input report or the most
// recent subcommand reply without knowing the wire format.
type Controller struct {
	State   *InputState
	Engine  *EngineState
	Cal     *CalibrationStore
	Subcmds *SubcommandHandler

	// pendingReply, when non-nil, makes BuildReport emit a 0x21 subcommand
	// reply instead of a 0x30 standard report for exactly one call.
	pendingReply *subcommandReply
}

type subcommandReply struct {
	ack    byte
	subcmd byte
	data   []byte
}

var _ device.ReportBuilder = (*Controller)(nil)

// NewController builds a Controller with fresh Awaiting-phase state.
func NewController(mac [6]byte, firmwareMajor, firmwareMinor uint8) *Controller {
	engine := NewEngineState(mac, firmwareMajor, firmwareMinor)
	cal := NewCalibrationStore()
	state := Idle()
	return &Controller{
		State:   &state,
		Engine:  engine,
		Cal:     cal,
		Subcmds: NewSubcommandHandler(cal, engine),
	}
}

// HandleOutput decodes a raw output report and applies it: a subcommand is
// dispatched and its reply queued for the next BuildReport call; a USB
// command is returned to the caller for phase-transition handling (the
// Protocol Engine owns phase, not this type); rumble-only reports are
// decoded and then ignored.
func (c *Controller) HandleOutput(raw []byte) (usbCmd byte, isUSBCmd bool) {
	frame, ok := DecodeOutputReport(raw)
	if !ok {
		return 0, false
	}
	switch frame.ReportID {
	case ReportIDRumbleSub:
		if ack, reply, ok := c.Subcmds.Handle(frame.SubcommandID, frame.SubcommandData); ok {
			c.pendingReply = &subcommandReply{ack: ack, subcmd: frame.SubcommandID, data: reply}
		}
		return 0, false
	case ReportIDUSBCommand:
		return frame.USBCommand, true
	default:
		return 0, false
	}
}

// BuildReport implements device.ReportBuilder: a queued subcommand reply
// takes priority over a standard input report, matching the real
// controller's behaviour of answering a subcommand before resuming its
// regular report cadence.
func (c *Controller) BuildReport() []byte {
	if c.pendingReply != nil {
		r := c.pendingReply
		c.pendingReply = nil
		return EncodeSubcommandReply(c.State, c.Engine, r.ack, r.subcmd, r.data)
	}
	return EncodeInputReport(c.State, c.Engine)
}
