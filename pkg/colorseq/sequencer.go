// Package colorseq generates the deterministic stroke colours used to tell
// trajectories and clusters apart on a map layer.
//
// A Sequencer walks a small triangular colour wheel whose channels only take
// the values 0, 51 and 102.  Every call to Next changes exactly one channel by
// one step, so neighbouring polylines get neighbouring (but distinct) colours
// and the walk repeats every Period calls.
//
// Usage:
//
//	seq := colorseq.New()
//	for _, path := range paths {
//		draw(path, seq.Next())
//	}
//
// A Sequencer is not safe for concurrent use.  Each rendering pass creates its
// own instance and drops it when the pass completes.
package colorseq

// Step is the amount a channel moves per transition.
const Step = 51

// MaxIntensity is the highest value any channel reaches.
const MaxIntensity = 2 * Step

// Period is the number of distinct colours produced before the walk repeats.
const Period = 12

// numChannels is fixed at three (red, green, blue).
const numChannels = 3

// Direction is the ramp direction of the walk.
type Direction int

const (
	// Ascending raises the channel after the active one.
	Ascending Direction = iota
	// Descending lowers the channel before the active one.
	Descending
)

// String implements fmt.Stringer.
func (d Direction) String() string {
	switch d {
	case Ascending:
		return "ascending"
	case Descending:
		return "descending"
	default:
		return "unknown"
	}
}

// State is a snapshot of a Sequencer.
type State struct {
	Channels  [numChannels]int
	Active    int
	Direction Direction
}

// Hex formats the state's channels as "#rrggbb".
func (s State) Hex() string {
	return FormatHex(s.Channels)
}

// initialState is where every fresh walk begins: pure red at 102, ascending.
var initialState = State{
	Channels:  [numChannels]int{MaxIntensity, 0, 0},
	Active:    0,
	Direction: Ascending,
}

// Sequencer produces an endless, restartable sequence of display colours.
// The zero value is not ready for use; call New.
type Sequencer struct {
	state State
}

// New returns a Sequencer positioned at the start of the walk.
func New() *Sequencer {
	return &Sequencer{state: initialState}
}

// Next returns the current colour and advances the walk by one transition.
// The first call on a fresh Sequencer returns "#660000".
func (s *Sequencer) Next() string {
	out := s.state.Hex()
	s.advance()
	return out
}

// Peek returns the colour the next call to Next will return.
func (s *Sequencer) Peek() string {
	return s.state.Hex()
}

// State returns a copy of the internal state.
func (s *Sequencer) State() State {
	return s.state
}

// Reset rewinds the walk to its starting colour.
func (s *Sequencer) Reset() {
	s.state = initialState
}

// advance applies exactly one of the four transitions.
//
//	Ascending,  next < max : raise next
//	Ascending,  next == max: make next active, lower the channel before it, turn
//	Descending, prev > 0   : lower prev
//	Descending, prev == 0  : raise next, turn
func (s *Sequencer) advance() {
	st := &s.state
	next := nextIndex(st.Active)
	prev := prevIndex(st.Active)

	switch st.Direction {
	case Ascending:
		if st.Channels[next] < MaxIntensity {
			st.Channels[next] += Step
			return
		}
		st.Active = next
		st.Channels[prevIndex(st.Active)] -= Step
		st.Direction = Descending
	case Descending:
		if st.Channels[prev] > 0 {
			st.Channels[prev] -= Step
			return
		}
		st.Channels[next] += Step
		st.Direction = Ascending
	}
}

func nextIndex(i int) int { return TrueMod(i+1, numChannels) }

func prevIndex(i int) int { return TrueMod(i-1, numChannels) }

// Take returns the first n colours of a fresh walk.  n <= 0 yields nil.
func Take(n int) []string {
	if n <= 0 {
		return nil
	}
	seq := New()
	out := make([]string, n)
	for i := range out {
		out[i] = seq.Next()
	}
	return out
}

//Personal.AI order the ending
