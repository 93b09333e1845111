package header

// lowNibbleCodec implements LayoutLowNibble. The sample representation
// shares bits 0-3 with the flags, so only bytes that were produced by this
// layout survive a decode/encode round trip unchanged.
type lowNibbleCodec struct{}

func (lowNibbleCodec) Layout() Layout { return LayoutLowNibble }

func (lowNibbleCodec) Decode(buf []byte) (*Header, error) {
	return decode(buf, unpackLowNibble)
}

func (lowNibbleCodec) Encode(h *Header) []byte {
	return encode(h, packLowNibble)
}

func unpackLowNibble(h *Header, flags, version byte) {
	unpackFlagBits(h, flags)
	h.SampleRepresentation = flags & 0x0F
	unpackVersion(h, version)
}

func packLowNibble(h *Header) (byte, byte) {
	return packFlagBits(h) | h.SampleRepresentation&0x0F, packVersion(h)
}
