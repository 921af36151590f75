package gemini

import "context"

type stubGenerator struct {
	response   string
	err        error
	lastSystem string
	lastPrompt string
	calls      int
}

func (s *stubGenerator) GenerateContent(_ context.Context, system, prompt string) (string, error) {
	s.calls++
	s.lastSystem = system
	s.lastPrompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}
