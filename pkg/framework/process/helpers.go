package process

// Deinterleave loads interleaved frames from src into the input channels
// and returns how many frames were loaded. Frames beyond the block are
// ignored; a short src leaves the block tail zeroed. srcChannels is the
// channel count of src; missing input channels repeat the last source
// channel, so a mono source feeds every input.
func (c *Context) Deinterleave(src []float32, srcChannels int) int {
	if srcChannels <= 0 {
		return 0
	}
	n := c.NumSamples()
	frames := len(src) / srcChannels
	if frames > n {
		frames = n
	}
	for ch := 0; ch < c.NumInputChannels(); ch++ {
		sc := ch
		if sc >= srcChannels {
			sc = srcChannels - 1
		}
		buf := c.Audio[ch]
		for i := 0; i < frames; i++ {
			buf[i] = src[i*srcChannels+sc]
		}
		clear(buf[frames:])
	}
	return frames
}

// Interleave writes the first dstChannels channels of the block into dst as
// interleaved frames and returns the number of frames written. Channels the
// block does not have are written as silence.
func (c *Context) Interleave(dst []float32, dstChannels int) int {
	if dstChannels <= 0 {
		return 0
	}
	n := c.NumSamples()
	if frames := len(dst) / dstChannels; frames < n {
		n = frames
	}
	for ch := 0; ch < dstChannels; ch++ {
		if ch < len(c.Audio) {
			buf := c.Audio[ch]
			for i := 0; i < n; i++ {
				dst[i*dstChannels+ch] = buf[i]
			}
			continue
		}
		for i := 0; i < n; i++ {
			dst[i*dstChannels+ch] = 0
		}
	}
	return n
}
