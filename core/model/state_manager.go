package model

import (
	"sync"

	"github.com/YuminosukeSato/ratfit/pkg/errors"
)

// StateManager manages the fitted state of an estimator in a thread-safe
// manner. Estimators hold one by composition.
type StateManager struct {
	Fitted bool // Public for gob encoding
	mu     sync.RWMutex

	// Shape of the data seen during fitting. Public for gob encoding.
	NDim     int
	NSamples int
}

// NewStateManager creates a new StateManager instance.
func NewStateManager() *StateManager {
	return &StateManager{}
}

// IsFitted returns whether the model has been fitted.
func (s *StateManager) IsFitted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Fitted
}

// SetFitted marks the model as fitted.
func (s *StateManager) SetFitted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Fitted = true
}

// Reset resets the fitted state.
func (s *StateManager) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Fitted = false
	s.NDim = 0
	s.NSamples = 0
}

// SetDimensions records the input dimension and sample count of a fit.
func (s *StateManager) SetDimensions(nDim, nSamples int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.NDim = nDim
	s.NSamples = nSamples
}

// GetDimensions returns the input dimension and sample count of the last fit.
func (s *StateManager) GetDimensions() (nDim, nSamples int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.NDim, s.NSamples
}

// RequireFitted returns a NotFittedError naming model and method if the
// estimator has not been fitted.
func (s *StateManager) RequireFitted(model, method string) error {
	if !s.IsFitted() {
		return errors.NewNotFittedError(model, method)
	}
	return nil
}

// RequireDim checks that X has the input dimension seen during fitting.
func (s *StateManager) RequireDim(op string, dim int) error {
	nDim, _ := s.GetDimensions()
	if dim != nDim {
		return errors.NewDimensionError(op, nDim, dim, 1)
	}
	return nil
}

// ModelState represents the complete state of a model.
type ModelState struct {
	Fitted   bool `json:"fitted"`
	NDim     int  `json:"n_dim,omitempty"`
	NSamples int  `json:"n_samples,omitempty"`
}

// GetState returns the current state as a ModelState struct.
func (s *StateManager) GetState() ModelState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ModelState{Fitted: s.Fitted, NDim: s.NDim, NSamples: s.NSamples}
}

// SetState sets the state from a ModelState struct.
func (s *StateManager) SetState(state ModelState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Fitted = state.Fitted
	s.NDim = state.NDim
	s.NSamples = state.NSamples
}

// WithStateMut executes fn with the state locked for writing.
func (s *StateManager) WithStateMut(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}
