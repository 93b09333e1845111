package header

// canonicalCodec implements LayoutCanonical.
type canonicalCodec struct{}

func (canonicalCodec) Layout() Layout { return LayoutCanonical }

func (canonicalCodec) Decode(buf []byte) (*Header, error) {
	return decode(buf, unpackCanonical)
}

func (canonicalCodec) Encode(h *Header) []byte {
	return encode(h, packCanonical)
}

func unpackCanonical(h *Header, flags, version byte) {
	unpackFlagBits(h, flags)
	h.SampleRepresentation = flags >> 4
	unpackVersion(h, version)
}

func packCanonical(h *Header) (byte, byte) {
	return packFlagBits(h) | h.SampleRepresentation<<4, packVersion(h)
}
