package codif

// WalkFunc is called for each frame of a dataset.
// Return nil to continue walking, or an error to stop.
type WalkFunc func(key FrameKey, f *Frame) error

// Walk visits the frames of d in ascending key order: frame number, then
// thread, group, secondary and station. It returns the first error fn
// returns.
//
// Example:
//
//	codif.Walk(d, func(key codif.FrameKey, f *codif.Frame) error {
//	    fmt.Println(key, f.Start())
//	    return nil
//	})
func Walk(d *Dataset, fn WalkFunc) error {
	for _, k := range d.keys {
		if err := fn(k, d.Frames[k]); err != nil {
			return err
		}
	}
	return nil
}
