package gwave

import (
	"errors"
	"fmt"
	"sync"

	"github.com/chewxy/math32"
)

// Keys of the [Store] fields as addressed by control bindings.
const (
	KeyFrequencyX = "frequency.x"
	KeyFrequencyY = "frequency.y"
	KeyAmplitudeX = "amplitude.x"
	KeyAmplitudeY = "amplitude.y"
	KeyWireframe  = "wireframe"
)

var (
	ErrUnknownField = errors.New("unknown field")
	ErrOutOfRange   = errors.New("value out of range")
)

// Field identifies a mutable field of [Params].
type Field uint8

const (
	FieldFrequencyX Field = iota
	FieldFrequencyY
	FieldAmplitudeX
	FieldAmplitudeY
	FieldColor
	FieldWireframe
)

func (f Field) String() string {
	switch f {
	case FieldFrequencyX:
		return KeyFrequencyX
	case FieldFrequencyY:
		return KeyFrequencyY
	case FieldAmplitudeX:
		return KeyAmplitudeX
	case FieldAmplitudeY:
		return KeyAmplitudeY
	case FieldColor:
		return "color"
	case FieldWireframe:
		return KeyWireframe
	}
	return fmt.Sprintf("Field(%d)", uint8(f))
}

// Change is sent to subscribers after a successful mutation of the [Store].
type Change struct {
	Field Field
	// Params is the parameter set right after the change.
	Params Params
}

// Store owns the [Params] for the lifetime of the program. It is the single
// source of truth for the wave material uniforms.
type Store struct {
	mu   sync.Mutex
	p    Params
	subs []chan<- Change
}

// NewStore returns a store holding p.
func NewStore(p Params) *Store {
	return &Store{p: p}
}

// Params returns a snapshot of the current parameters.
func (s *Store) Params() Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.p
}

// Subscribe registers ch to receive a [Change] on every mutation.
// Sends never block: a notification is skipped when ch is full.
func (s *Store) Subscribe(ch chan<- Change) {
	if ch == nil {
		panic("nil subscription channel")
	}
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()
}

// Unsubscribe removes ch from the subscribers. It is a no-op if ch was not subscribed.
func (s *Store) Unsubscribe(ch chan<- Change) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.subs {
		if s.subs[i] == ch {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			return
		}
	}
}

// Float returns the value of a float field addressed by key.
func (s *Store) Float(key string) (float32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ptr, _, err := s.floatField(key)
	if err != nil {
		return 0, err
	}
	return *ptr, nil
}

// SetFloat sets a float field addressed by key. Values outside
// [MinWave, MaxWave] and NaN are rejected with [ErrOutOfRange].
func (s *Store) SetFloat(key string, v float32) error {
	if math32.IsNaN(v) || v < MinWave || v > MaxWave {
		return fmt.Errorf("%s=%g: %w [%d, %d]", key, v, ErrOutOfRange, MinWave, MaxWave)
	}
	s.mu.Lock()
	ptr, field, err := s.floatField(key)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	*ptr = v
	s.notifyLocked(field)
	s.mu.Unlock()
	return nil
}

// ColorHex returns the color as last set by the user.
func (s *Store) ColorHex() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.p.ColorHex
}

// SetColorHex parses hex and stores both the string and the converted color.
// Conversion happens here and not at render time.
func (s *Store) SetColorHex(hex string) error {
	c, err := ParseColor(hex)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.p.ColorHex = hex
	s.p.Color = c
	s.notifyLocked(FieldColor)
	s.mu.Unlock()
	return nil
}

// Bool returns the value of a boolean field addressed by key.
func (s *Store) Bool(key string) (bool, error) {
	if key != KeyWireframe {
		return false, fmt.Errorf("%w %q", ErrUnknownField, key)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.p.Wireframe, nil
}

// SetBool sets a boolean field addressed by key.
func (s *Store) SetBool(key string, v bool) error {
	if key != KeyWireframe {
		return fmt.Errorf("%w %q", ErrUnknownField, key)
	}
	s.mu.Lock()
	s.p.Wireframe = v
	s.notifyLocked(FieldWireframe)
	s.mu.Unlock()
	return nil
}

func (s *Store) floatField(key string) (*float32, Field, error) {
	switch key {
	case KeyFrequencyX:
		return &s.p.Frequency.X, FieldFrequencyX, nil
	case KeyFrequencyY:
		return &s.p.Frequency.Y, FieldFrequencyY, nil
	case KeyAmplitudeX:
		return &s.p.Amplitude.X, FieldAmplitudeX, nil
	case KeyAmplitudeY:
		return &s.p.Amplitude.Y, FieldAmplitudeY, nil
	}
	return nil, 0, fmt.Errorf("%w %q", ErrUnknownField, key)
}

func (s *Store) notifyLocked(f Field) {
	c := Change{Field: f, Params: s.p}
	for _, ch := range s.subs {
		select {
		case ch <- c:
		default:
		}
	}
}
