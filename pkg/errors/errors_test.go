package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeExtractionFailed, "extraction failed")

	assert.Equal(t, ErrCodeExtractionFailed, err.Code)
	assert.Equal(t, "extraction failed", err.Message)
	assert.Equal(t, SeverityError, err.Severity)
	assert.False(t, err.Recoverable)
	assert.NotEmpty(t, err.Stack)
}

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("network unreachable")
	err := Wrap(cause, ErrCodeConnectionFailed, "cannot reach server")

	assert.Equal(t, ErrCodeConnectionFailed, err.Code)
	assert.Equal(t, cause, err.Unwrap())
	assert.Contains(t, err.Error(), "network unreachable")

	assert.Nil(t, Wrap(nil, ErrCodeConnectionFailed, "ignored"))
}

func TestWrapInheritsContext(t *testing.T) {
	inner := New(ErrCodeSQLExecution, "query failed").WithContext("country", "CHILE")
	outer := Wrap(inner, ErrCodeExtractionFailed, "extract failed")

	assert.Equal(t, "CHILE", outer.Context["country"])
}

func TestWithContext(t *testing.T) {
	err := New(ErrCodeCopyFailed, "copy aborted").
		WithContext("table", "MAEGC_PRODUCTO_CHILE").
		WithContext("rows", 120)

	assert.Equal(t, "MAEGC_PRODUCTO_CHILE", err.Context["table"])
	assert.Equal(t, 120, err.Context["rows"])
}

func TestErrorFormatting(t *testing.T) {
	err := New(ErrCodeRenameBackup, "rename to _OLD failed").
		WithSuggestions("Check table ownership", "Verify role privileges")

	msg := err.Error()
	assert.Contains(t, msg, "SNLF4006")
	assert.Contains(t, msg, "rename to _OLD failed")
	assert.Contains(t, msg, "1. Check table ownership")
	assert.Contains(t, msg, "2. Verify role privileges")
}

func TestIs(t *testing.T) {
	a := New(ErrCodeProcedureNotFound, "sp missing")
	b := New(ErrCodeProcedureNotFound, "another sp missing")
	c := New(ErrCodeSQLExecution, "boom")

	assert.True(t, a.Is(b))
	assert.False(t, a.Is(c))
	assert.False(t, a.Is(fmt.Errorf("plain")))
}

func TestProcedureNotFound(t *testing.T) {
	cause := fmt.Errorf("mssql: Could not find stored procedure 'uspGC_X'")
	err := ProcedureNotFound("PERU", "uspGC_X", cause)

	assert.True(t, IsProcedureNotFound(err))
	assert.True(t, IsRecoverable(err))
	assert.Equal(t, "PERU", err.Context["country"])

	wrapped := Wrap(err, ErrCodeExtractionFailed, "report failed")
	assert.False(t, IsProcedureNotFound(wrapped))
}

func TestGetErrorCode(t *testing.T) {
	assert.Equal(t, ErrCodeStagingFailed, GetErrorCode(New(ErrCodeStagingFailed, "put failed")))
	assert.Equal(t, ErrCodeInternal, GetErrorCode(fmt.Errorf("plain error")))
}

func TestSQLErrorTimeoutClassification(t *testing.T) {
	err := SQLError("statement timeout exceeded", "SELECT * FROM big", fmt.Errorf("canceled"))
	assert.Equal(t, ErrCodeSQLTimeout, err.Code)

	err = SQLError("syntax error", "SELEC 1", fmt.Errorf("bad"))
	assert.Equal(t, ErrCodeSQLExecution, err.Code)
}

func TestValidationError(t *testing.T) {
	err := ValidationError("batch_size", 0, "must be positive")

	assert.Equal(t, ErrCodeValidationFailed, err.Code)
	assert.Equal(t, SeverityWarning, err.Severity)
	assert.True(t, err.Recoverable)
}
