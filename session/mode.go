package session

// Mode is the sequencing mode. Loop and shuffle live in one value so they can never both be on.
type Mode int

const (
	ModeSequential Mode = iota
	ModeLoop
	ModeShuffle
)

func (m Mode) Looping() bool {
	return m == ModeLoop
}

func (m Mode) Shuffling() bool {
	return m == ModeShuffle
}

func (m Mode) String() string {
	switch m {
	case ModeLoop:
		return "loop"
	case ModeShuffle:
		return "shuffle"
	default:
		return "sequential"
	}
}
