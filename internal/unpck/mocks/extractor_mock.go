package mocks

import (
	"context"

	"github.com/shiroemons/go-unpck/internal/unpck/interfaces"
	"github.com/shiroemons/go-unpck/internal/unpck/models"
	"github.com/shiroemons/go-unpck/pkg/pck"
)

// MockExtractor はExtractorのモック実装です
type MockExtractor struct {
	Archive    interfaces.Archive
	Result     pck.OpenResult
	Report     models.ExtractReport
	OpenError  error
	Error      error
	OpenCount  int
	CallCount  int
	OpenedPath string
	OutputDir  string
	Targets    []string
	KeepGoing  bool
}

// Open はモック実装です
func (m *MockExtractor) Open(ctx context.Context, archivePath string) (interfaces.Archive, pck.OpenResult, error) {
	m.OpenCount++
	m.OpenedPath = archivePath
	if err := ctx.Err(); err != nil {
		return nil, pck.OpenResult{}, err
	}
	if m.OpenError != nil {
		return nil, pck.OpenResult{}, m.OpenError
	}
	return m.Archive, m.Result, nil
}

// ExtractFiles はモック実装です
func (m *MockExtractor) ExtractFiles(ctx context.Context, archive interfaces.Archive, outputDir string, targets []string, keepGoing bool) (models.ExtractReport, error) {
	m.CallCount++
	m.OutputDir = outputDir
	m.Targets = targets
	m.KeepGoing = keepGoing
	if m.Error != nil {
		return m.Report, m.Error
	}
	return m.Report, nil
}
