// Package codif decodes CODIF captures: concatenated frames of
// radio-telescope digitiser samples, each a 64-byte packed header
// followed by a payload of signed little-endian integer samples.
//
// # Frames
//
// [Reader] decodes one frame per call to [Reader.Next]. A frame carries
// its validated [Header], a channel × sample complex matrix and one
// timestamp per sample. Timestamps are float64 seconds since
// 2000-01-01T00:00:00Z; whole seconds are exact and only the fraction
// within an alignment period is rounded.
//
//	r, err := codif.NewReader(bufio.NewReader(f))
//	for {
//	    frame, err := r.Next()
//	    if err == io.EOF {
//	        break
//	    }
//	    ...
//	}
//
// # Datasets
//
// [Load] reads a whole capture and demultiplexes it by frame key
// (frame number, thread, group, secondary, station) into a [Dataset]
// whose tensor has axes (station, group, thread, channel, sample):
//
//	d, err := codif.LoadFile(ctx, "capture.codif.zst", codif.WithWorkers(0))
//	plane := d.Data.Plane(0, 0, 0) // channels × samples of the first combination
//
// Every frame must share one [Geometry], no key may repeat, and every
// (station, group, thread) combination must contribute the same number of
// samples. [WithFlattenGroups] concatenates the station, group, thread and
// channel axes into one row axis.
//
// [Inspect] performs the same cross-frame checks from headers alone.
//
// # Header layouts
//
// Historic encoders disagree on where the sample representation sits in
// byte 10. [LayoutCanonical] reads it from bits 4-7, [LayoutLowNibble]
// from bits 0-3. Select one with [WithLayout].
//
// # Errors
//
// Byte-level failures are [*FormatError] values wrapping [ErrTruncated],
// [ErrBadSync], [ErrInvalidHeader], [ErrChannelBlockMismatch] or
// [ErrUnsupportedSampleFormat]. Cross-frame failures are
// [*ValidationError] values wrapping [ErrDuplicateKey],
// [ErrInconsistentGeometry], [ErrIncompleteFrameSet] or [ErrNoFrames].
// Any error aborts decoding of the capture unless [WithResync] is set.
package codif
