package mocks

// MockPckFileFinder はPckFileFinderのモック実装です
type MockPckFileFinder struct {
	FoundFile string
	Error     error
}

// Find はモック実装です
func (m *MockPckFileFinder) Find() (string, error) {
	if m.Error != nil {
		return "", m.Error
	}
	return m.FoundFile, nil
}
