package automaton

// Initial-condition densities, in percent, used for training and out-of-distribution
// evaluation.
const (
	TrainingDensity = 50
	SparseDensity   = 10
	DenseDensity    = 90
)

// TrainingSeed is the seed of training trial t.
func TrainingSeed(trial int) uint64 {
	return uint64(trial)*12345 + 67890
}

// SparseSeed is the seed of sparse evaluation trial t.
func SparseSeed(trial int) uint64 {
	return uint64(trial)*99999 + 11111
}

// DenseSeed is the seed of dense evaluation trial t.
func DenseSeed(trial int) uint64 {
	return uint64(trial)*77777 + 33333
}
