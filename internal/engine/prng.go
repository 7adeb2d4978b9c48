package engine

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"

	"github.com/pkg/errors"
)

// Source is the randomness consumed by the evasion and celebration logic.
// Float64 must return values in [0,1).
type Source interface {
	Float64() float64
}

// SeedFromString hashes s down to a 64-bit seed.
func SeedFromString(s string) uint64 {
	h := sha256.Sum256([]byte(s))
	return binary.LittleEndian.Uint64(h[:8])
}

// Derive keys an HMAC-SHA256 with base and returns the first 8 bytes of label's MAC.
// Labels are stable strings such as "evasion" or "confetti".
func Derive(base uint64, label string) uint64 {
	key := make([]byte, 8)
	binary.LittleEndian.PutUint64(key, base)
	m := hmac.New(sha256.New, key)
	_, _ = m.Write([]byte(label))
	sum := m.Sum(nil)
	return binary.LittleEndian.Uint64(sum[:8])
}

// SessionSeed holds the textual seed of a presentation and hands out labelled streams.
type SessionSeed struct {
	Text string
	root uint64
}

// NewSessionSeed creates a deterministic seed from text. Empty text is rejected.
func NewSessionSeed(seedText string) (SessionSeed, error) {
	if seedText == "" {
		return SessionSeed{}, errors.New("seed text must not be empty")
	}
	return SessionSeed{Text: seedText, root: SeedFromString(seedText)}, nil
}

// WithSession mixes a session id into the root so every replay draws fresh numbers
// while staying reproducible for the same (seed, session) pair.
func (s SessionSeed) WithSession(sessionID string) SessionSeed {
	if sessionID == "" {
		return s
	}
	return SessionSeed{Text: s.Text, root: Derive(s.root, "session|"+sessionID)}
}

// Stream returns the stream for label. Equal labels give equal streams.
func (s SessionSeed) Stream(label string) *Stream {
	return newStream(Derive(s.root, label))
}

// Stream is a SplitMix64 generator. Streams with the same seed yield the same draws.
type Stream struct {
	state uint64
}

func newStream(seed uint64) *Stream { return &Stream{state: seed} }

func (s *Stream) next() uint64 {
	s.state += 0x9E3779B97F4A7C15
	z := s.state
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

// Intn returns a value in [0,n); n <= 0 yields 0.
func (s *Stream) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(s.next() % uint64(n))
}

// Float64 returns a float in [0,1).
func (s *Stream) Float64() float64 { return float64(s.next()>>11) / (1 << 53) }

// fixedSource replays a fixed sequence of values; used where tests need exact draws.
type fixedSource struct {
	vals []float64
	i    int
}

// FixedSource returns a Source cycling through vals. An empty list always yields 0.
func FixedSource(vals ...float64) Source { return &fixedSource{vals: vals} }

func (f *fixedSource) Float64() float64 {
	if len(f.vals) == 0 {
		return 0
	}
	v := f.vals[f.i%len(f.vals)]
	f.i++
	return v
}

func between(src Source, lo, hi float64) float64 { return lo + src.Float64()*(hi-lo) }
