package app

import (
	"context"
	"fmt"
	"testing"

	"tidytab/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockDocumentConverter struct {
	mock.Mock
	started chan struct{}
	block   chan struct{}
}

func (m *MockDocumentConverter) DocxToPDF(content []byte) ([]byte, error) {
	if m.block != nil {
		m.started <- struct{}{}
		<-m.block
	}
	args := m.Called(content)
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockDocumentConverter) PDFToDocx(content []byte) ([]byte, error) {
	args := m.Called(content)
	return args.Get(0).([]byte), args.Error(1)
}

func TestConvertService_NamesOutputAfterInput(t *testing.T) {
	conv := new(MockDocumentConverter)
	conv.On("DocxToPDF", []byte("docx")).Return([]byte("%PDF"), nil)
	conv.On("PDFToDocx", []byte("pdf")).Return([]byte("PK"), nil)
	svc := NewConvertService(conv, 2, 1<<20)

	file, err := svc.DocxToPDF(context.Background(), "Quarterly Report.DOCX", []byte("docx"))
	require.NoError(t, err)
	assert.Equal(t, "Quarterly Report.pdf", file.Filename)
	assert.Equal(t, "application/pdf", file.ContentType)

	file, err = svc.PDFToDocx(context.Background(), "scan.pdf", []byte("pdf"))
	require.NoError(t, err)
	assert.Equal(t, "scan.docx", file.Filename)
}

func TestConvertService_RejectsWrongInput(t *testing.T) {
	conv := new(MockDocumentConverter)
	conv.On("PDFToDocx", []byte("junk")).Return([]byte(nil), fmt.Errorf("not a pdf"))
	svc := NewConvertService(conv, 1, 1<<20)

	_, err := svc.DocxToPDF(context.Background(), "file.pdf", []byte("x"))
	require.Error(t, err)
	assert.Equal(t, "Invalid DOCX file", err.Error())

	_, err = svc.PDFToDocx(context.Background(), "file.pdf", nil)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))

	_, err = svc.PDFToDocx(context.Background(), "file.pdf", []byte("junk"))
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
	conv.AssertNotCalled(t, "DocxToPDF", mock.Anything)
}

func TestConvertService_BusyWhenSlotsTaken(t *testing.T) {
	conv := &MockDocumentConverter{started: make(chan struct{}), block: make(chan struct{})}
	conv.On("DocxToPDF", mock.Anything).Return([]byte("%PDF"), nil)
	svc := NewConvertService(conv, 1, 1<<20)

	done := make(chan error)
	go func() {
		_, err := svc.DocxToPDF(context.Background(), "a.docx", []byte("a"))
		done <- err
	}()

	// the first conversion now holds the only slot
	<-conv.started

	_, err := svc.DocxToPDF(context.Background(), "b.docx", []byte("b"))
	assert.True(t, errors.HasCode(err, errors.CodeBusy))

	close(conv.block)
	require.NoError(t, <-done)
}
