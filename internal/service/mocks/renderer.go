package mocks

import (
	"errors"

	"github.com/godilite/satisfaction-radar/internal/render"
)

// MockRenderer is a mock implementation of the Renderer interface.
type MockRenderer struct {
	RenderFunc func(in render.Input) (*render.Chart, error)
}

// Render implements the Renderer interface
func (m *MockRenderer) Render(in render.Input) (*render.Chart, error) {
	if m.RenderFunc != nil {
		return m.RenderFunc(in)
	}
	return nil, errors.New("RenderFunc not implemented")
}
