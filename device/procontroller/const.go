// Package procontroller implements the console-side protocol emulation of a
// Nintendo Switch Pro Controller: wire codec, calibration fixtures, engine
// state and the subcommand handler that answers the console's handshake.
package procontroller

// Report IDs, as seen on the gadget endpoint.
const (
	ReportIDInputFull   = 0x30 // standard input report (buttons/sticks/IMU)
	ReportIDSubcmdReply = 0x21 // input report carrying a subcommand reply
	ReportIDRumbleSub   = 0x01 // output report: rumble + subcommand
	ReportIDRumble      = 0x10 // output report: rumble only
	ReportIDUSBCommand  = 0x80 // output report: USB-only handshake command
)

// Sizes in bytes. Every input/output report on the gadget endpoint is fixed
// at InputReportSize.
const (
	InputReportSize = 64
	SubcmdReplyMax  = 35 // max bytes available after the echoed subcommand id
	IMUSampleCount  = 3
	IMUSampleBytes  = 12 // accel x,y,z + gyro x,y,z, int16 LE each
)

// Input report byte offsets (shared by 0x30 and 0x21 for bytes 0-12).
const (
	OffsetReportID    = 0
	OffsetCounter     = 1 // timer for 0x30, packet_counter for 0x21
	OffsetBatteryConn = 2
	OffsetButtons     = 3 // 3 bytes
	OffsetSticks      = 6 // 6 bytes, left stick then right stick
	OffsetVibrator    = 12
	OffsetIMU         = 13 // 0x30 only: 36 bytes, 3 samples of 12 bytes
	OffsetAck         = 13 // 0x21 only
	OffsetSubcmdEcho  = 14 // 0x21 only
	OffsetReply       = 15 // 0x21 only
)

// Button bits, packed into three bytes per spec.md's data model.
//
//	byte0: Y, B, A, X, L, R, ZL, ZR (bit 0..7)
//	byte1: minus, plus, Lclick, Rclick, home, capture, _, _
//	byte2: Ddown, Dup, Dright, Dleft, SL_L, SR_L, SL_R, SR_R
const (
	ButtonY  uint32 = 1 << 0
	ButtonB  uint32 = 1 << 1
	ButtonA  uint32 = 1 << 2
	ButtonX  uint32 = 1 << 3
	ButtonL  uint32 = 1 << 4
	ButtonR  uint32 = 1 << 5
	ButtonZL uint32 = 1 << 6
	ButtonZR uint32 = 1 << 7

	ButtonMinus   uint32 = 1 << 8
	ButtonPlus    uint32 = 1 << 9
	ButtonLClick  uint32 = 1 << 10
	ButtonRClick  uint32 = 1 << 11
	ButtonHome    uint32 = 1 << 12
	ButtonCapture uint32 = 1 << 13

	ButtonDDown   uint32 = 1 << 16
	ButtonDUp     uint32 = 1 << 17
	ButtonDRight  uint32 = 1 << 18
	ButtonDLeft   uint32 = 1 << 19
	ButtonSLLeft  uint32 = 1 << 20
	ButtonSRLeft  uint32 = 1 << 21
	ButtonSLRight uint32 = 1 << 22
	ButtonSRRight uint32 = 1 << 23
)

// Hat directions, four independent bits in the low nibble of byte2.
const (
	HatDown  uint8 = 1 << 0
	HatUp    uint8 = 1 << 1
	HatRight uint8 = 1 << 2
	HatLeft  uint8 = 1 << 3
)

// StickCenter and StickMax bound the 12-bit stick axes.
const (
	StickCenter uint16 = 2048
	StickMax    uint16 = 4095
)

// Subcommand ids, carried at offset 10 of a 0x01 output report.
const (
	SubcmdBluetoothPairing      = 0x01
	SubcmdRequestDeviceInfo     = 0x02
	SubcmdSetInputMode          = 0x03
	SubcmdTriggerButtonsElapsed = 0x04
	SubcmdSetShipmentLowPower   = 0x08
	SubcmdSPIFlashRead          = 0x10
	SubcmdSetNFCIRConfig        = 0x21
	SubcmdSetPlayerLights       = 0x30
	SubcmdSetHomeLight          = 0x38
	SubcmdSetIMUEnable          = 0x40
	SubcmdSetIMUSensitivity     = 0x41
	SubcmdSetVibrationEnable    = 0x48
)

// Ack bytes, the first byte of a subcommand reply (high nibble = category).
const (
	AckBluetoothPairing   = 0x81
	AckDeviceInfo         = 0x82
	AckPermissive         = 0x80
	AckTriggerButtonsTime = 0x83
	AckSPIFlashRead       = 0x90
	AckSetNFCIRConfig     = 0xA0
)

// USB-only handshake command bytes, carried at offset 1 of a 0x80 output
// report (report id 0x80, no subcommand framing — these never occur over
// Bluetooth, hence "USB command").
const (
	USBCmdStatusRequest     = 0x01
	USBCmdHandshake         = 0x02
	USBCmdSetBaud           = 0x03
	USBCmdHIDOnly           = 0x04
	USBCmdDisableUSBTimeout = 0x05
)

// USBReplyStatus is report id 0x81: the engine's on-endpoint reply to a USB
// command, echoing the command byte plus, for USBCmdStatusRequest, the MAC.
const USBReplyStatus = 0x81

// Controller identity fixtures.
const (
	ControllerTypePro    = 0x03
	DefaultFirmwareMajor = 3
	DefaultFirmwareMinor = 72
)

// Default battery/connection byte: high nibble full battery, low nibble USB
// connected (spec.md section 3).
const DefaultBatteryConn = 0x81

// Calibration Store fixture offsets (spec.md section 3).
const (
	CalOffsetSerial          uint16 = 0x6000
	CalOffsetFactoryIMU      uint16 = 0x6020
	CalOffsetColour          uint16 = 0x6050
	CalOffsetFactoryStick1   uint16 = 0x603D
	CalOffsetFactoryStick2   uint16 = 0x6080
	CalOffsetFactoryStick3   uint16 = 0x6098
	CalOffsetUserStickMarker uint16 = 0x8010
	CalOffsetUserIMUMarker   uint16 = 0x8028
)

// Pacing.
const (
	DefaultTickMillis       = 15  // 66 Hz while Streaming
	PreStreamAnnounceMillis = 120 // opportunistic 0x30 before handshake completes
	MaxStreamingGapMillis   = 30  // spec.md invariant: no gap > 30ms while Streaming
)
