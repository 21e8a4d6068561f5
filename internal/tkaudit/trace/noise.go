package trace

// Noise returns a deterministic pseudo-random value in [-1, 1) derived
// only from (seed, step, channel). It is the single source of randomness
// in trace generation: reruns with the same seed reproduce the same
// sequence bit for bit.
func Noise(seed uint64, step int, channel uint64) float64 {
	v := mix(seed ^ uint64(step)*0xbf58476d1ce4e5b9 ^ channel*0x94d049bb133111eb)
	return 2.0*float64(v>>11)/float64(uint64(1)<<53) - 1.0
}

// mix is a splitmix64 finalizer. One invertible avalanche pass is enough
// for the audit's noise channels; this is not a cryptographic generator.
func mix(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
