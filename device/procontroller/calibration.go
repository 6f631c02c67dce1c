package procontroller

// CalibrationStore answers SPI flash read subcommands (0x10) with fixture
// data, grounded on gabstv-nscon's SPI_ROM_DATA table: a real Pro Controller
// keeps serial number, colour, and factory/user stick+IMU calibration in a
// handful of small SPI regions, and the console reads them opportunistically
// during handshake and input-mode negotiation.
type CalibrationStore struct {
	regions map[uint16][]byte
}

// NewCalibrationStore builds the default fixture set. Every region the
// console is known to probe is populated; anything else falls back to 0xFF
// fill, matching unprogrammed flash.
func NewCalibrationStore() *CalibrationStore {
	return &CalibrationStore{
		regions: map[uint16][]byte{
			CalOffsetSerial: { // 0x6000, 16 bytes, ASCII serial (0xFF = "no serial")
				0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
				0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
			},
			CalOffsetFactoryIMU: { // 0x6020, 24 bytes, factory IMU cal
				0x50, 0xFD, 0x00, 0x00, 0xC6, 0x0F, 0x0F, 0x30,
				0x5E, 0x3F, 0x94, 0xE1, 0xFF, 0x3F, 0xFC, 0xFF,
				0xFC, 0xFF, 0xE5, 0xDF, 0xDF, 0xDF, 0xE0, 0xDF,
			},
			CalOffsetColour: { // 0x6050, 12 bytes: body/buttons/L-grip/R-grip RGB
				0x32, 0x32, 0x32, 0xFF, 0xFF, 0xFF,
				0x32, 0x32, 0x32, 0x32, 0x32, 0x32,
			},
			CalOffsetFactoryStick1: { // 0x603D, 9 bytes, left stick factory cal
				0xFF, 0xF2, 0x6E, 0xFF, 0xF2, 0x6E, 0xFF, 0xF2, 0x6E,
			},
			CalOffsetFactoryStick2: { // 0x6080, 18 bytes, shipping default cal block
				0x0F, 0x30, 0x61, 0x96, 0x30, 0xF3, 0xD4, 0x14, 0x54,
				0x41, 0x15, 0x54, 0xC7, 0x79, 0x9C, 0x33, 0x36, 0x63,
			},
			CalOffsetFactoryStick3: { // 0x6098, 9 bytes, right stick factory cal
				0xFF, 0xF2, 0x6E, 0xFF, 0xF2, 0x6E, 0xFF, 0xF2, 0x6E,
			},
			CalOffsetUserStickMarker: { // 0x8010, 2 bytes, 0xB2 0xA1 = "user cal present"
				0xFF, 0xFF, // absent: no user stick calibration written
			},
			CalOffsetUserIMUMarker: { // 0x8028, 2 bytes, same marker convention
				0xFF, 0xFF, // absent: no user IMU calibration written
			},
		},
	}
}

// Read returns length bytes starting at offset, 0xFF-filling any bytes that
// fall outside a known region or past the end of one. A real SPI flash reads
// all-ones for unprogrammed cells, so this is indistinguishable to the
// console from an unpopulated calibration slot.
func (c *CalibrationStore) Read(offset uint16, length uint8) []byte {
	out := make([]byte, length)
	for i := range out {
		out[i] = 0xFF
	}
	region, data := c.findRegion(offset)
	if data == nil {
		return out
	}
	start := int(offset - region)
	for i := 0; i < int(length) && start+i < len(data); i++ {
		if start+i < 0 {
			continue
		}
		out[i] = data[start+i]
	}
	return out
}

func (c *CalibrationStore) findRegion(offset uint16) (uint16, []byte) {
	var best uint16
	var bestData []byte
	found := false
	for base, data := range c.regions {
		if base > offset {
			continue
		}
		if int(offset-base) >= len(data) {
			continue
		}
		if !found || base > best {
			best, bestData, found = base, data, true
		}
	}
	return best, bestData
}
