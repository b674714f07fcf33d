package encoding

import (
	"encoding/binary"
	"fmt"
)

// HeaderSize is the length of the Confluent framing prefix
// [0x00][schema_id (4 bytes, big-endian)]. It is the decode offset of a framed payload.
const HeaderSize = 5

const magicByte = 0x00

// ParseHeader returns the schema ID of a Confluent framed message.
func ParseHeader(data []byte) (int, error) {
	if len(data) < HeaderSize {
		return 0, fmt.Errorf("data too short: expected at least %d bytes, got %d", HeaderSize, len(data))
	}
	if data[0] != magicByte {
		return 0, fmt.Errorf("invalid magic byte: expected 0x00, got 0x%02x", data[0])
	}
	return int(binary.BigEndian.Uint32(data[1:HeaderSize])), nil
}

// Frame prefixes payload with the Confluent header for schemaID.
func Frame(schemaID int, payload []byte) []byte {
	out := make([]byte, HeaderSize, HeaderSize+len(payload))
	out[0] = magicByte
	binary.BigEndian.PutUint32(out[1:HeaderSize], uint32(schemaID))
	return append(out, payload...)
}
