package rover

// frameStartByte is the fixed first byte of every frame, in either
// direction, and the byte the decoder resynchronizes on after a bad
// checksum or arbitrary noise on the line.
const frameStartByte byte = 0xFD

// outboundPayloadSize is the number of checksummed bytes in an outbound
// command frame: mLeft, mRight, mFlip, verb, arg.
const outboundPayloadSize = 5

// outboundFrameSize is the fixed length of an outbound frame: start byte,
// five payload bytes, checksum.
const outboundFrameSize = 1 + outboundPayloadSize + 1

// inboundPayloadSize is the number of checksummed bytes in an inbound
// telemetry frame: index, hi, lo. The wire protocol is asymmetric — the
// controller's replies carry no filler bytes the way outbound commands
// do, so this is deliberately smaller than outboundPayloadSize.
const inboundPayloadSize = 3

// inboundFrameSize is the fixed length of an inbound frame: start byte,
// three payload bytes, checksum.
const inboundFrameSize = 1 + inboundPayloadSize + 1

// checksum implements the wire checksum: 255 - (sum(payload) mod 255).
func checksum(payload []byte) byte {
	var sum int
	for _, b := range payload {
		sum += int(b)
	}
	return byte(255 - sum%255)
}

// encodeFrame builds the 7-byte outbound frame for the given five payload
// bytes.
func encodeFrame(payload [outboundPayloadSize]byte) [outboundFrameSize]byte {
	var frame [outboundFrameSize]byte
	frame[0] = frameStartByte
	copy(frame[1:1+outboundPayloadSize], payload[:])
	frame[outboundFrameSize-1] = checksum(payload[:])
	return frame
}

// decodedBody is the parsed post-start-byte body of an inbound frame.
type decodedBody struct {
	index byte
	hi    byte
	lo    byte
}

// decodeBody parses the three payload bytes of an inbound frame and
// verifies the checksum against them alone. It returns a *RoverError with
// KindBadChecksum on mismatch.
func decodeBody(payload [inboundPayloadSize]byte, cksum byte) (decodedBody, error) {
	if checksum(payload[:]) != cksum {
		return decodedBody{}, newError(KindBadChecksum, "frame checksum mismatch", nil)
	}
	return decodedBody{index: payload[0], hi: payload[1], lo: payload[2]}, nil
}
