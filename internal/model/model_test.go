package model

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func validRun() *ProcessingRun {
	return &ProcessingRun{
		RunID:        "01HZX3J8Q4W9V7ZJ6D5T2K1M0N",
		ChatID:       42,
		Source:       SourceJSON,
		Scope:        ScopePage,
		Nodes:        3,
		ChangedNodes: 2,
		FailedNodes:  1,
		NbspCount:    5,
	}
}

func TestProcessingRun_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(r *ProcessingRun)
		wantErr string
	}{
		{name: "valid", modify: func(r *ProcessingRun) {}},
		{name: "missing run id", modify: func(r *ProcessingRun) { r.RunID = "" }, wantErr: "run_id"},
		{name: "short run id", modify: func(r *ProcessingRun) { r.RunID = "abc" }, wantErr: "must be a ULID"},
		{name: "run id with excluded letter", modify: func(r *ProcessingRun) { r.RunID = "01HZX3J8Q4W9V7ZJ6D5T2K1M0U" }, wantErr: "must be a ULID"},
		{name: "unknown source", modify: func(r *ProcessingRun) { r.Source = "pdf" }, wantErr: "source"},
		{name: "unknown scope", modify: func(r *ProcessingRun) { r.Scope = "document" }, wantErr: "scope"},
		{name: "negative count", modify: func(r *ProcessingRun) { r.NbspCount = -1 }, wantErr: "non-negative"},
		{name: "counts exceed total", modify: func(r *ProcessingRun) { r.ChangedNodes = 3 }, wantErr: "exceed total"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run := validRun()
			tt.modify(run)
			err := run.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), tt.wantErr)
				var verrs ValidationErrors
				assert.True(t, errors.As(err, &verrs))
			}
		})
	}
}

func TestChatSettings_Validate(t *testing.T) {
	assert.NoError(t, (&ChatSettings{ChatID: 1, Scope: ScopeFile}).Validate())
	assert.Error(t, (&ChatSettings{ChatID: 1, Scope: "all"}).Validate())
}

func TestValidateRequired_TrimsSpaces(t *testing.T) {
	if err := ValidateRequired("name", strings.Repeat(" ", 3)); err == nil {
		t.Errorf("Expected error for blank value")
	}
}

func TestValidationErrors_Error(t *testing.T) {
	var errs ValidationErrors
	if errs.Error() != "no validation errors" {
		t.Errorf("Expected empty message, got %q", errs.Error())
	}

	errs = ValidationErrors{{Field: "a", Message: "x"}, {Field: "b", Message: "y"}}
	assert.Equal(t, "validation error for field 'a': x; validation error for field 'b': y", errs.Error())
}
