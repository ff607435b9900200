package mocks

import "fmt"

// MockLogger は出力したメッセージを記録するLoggerのモック実装です
type MockLogger struct {
	Messages []string
}

// Printf はモック実装です
func (m *MockLogger) Printf(format string, a ...any) {
	m.Messages = append(m.Messages, fmt.Sprintf(format, a...))
}
