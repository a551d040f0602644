package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Ramsey-B/aster/pkg/models"
)

func TestOutputAllowed(t *testing.T) {
	tests := []struct {
		name     string
		scheme   models.SkemaTipe
		category models.LuaranJenis
		want     bool
	}{
		{"journal under basic", models.SchemeBasic, models.OutputJournal, true},
		{"book under applied", models.SchemeApplied, models.OutputBook, true},
		{"ipr under basic", models.SchemeBasic, models.OutputIPR, true},
		{"ipr under applied", models.SchemeApplied, models.OutputIPR, true},
		{"product under applied", models.SchemeApplied, models.OutputProduct, false},
		{"product under basic", models.SchemeBasic, models.OutputProduct, false},
		{"ipr under development", models.SchemeDevelopment, models.OutputIPR, true},
		{"product under development", models.SchemeDevelopment, models.OutputProduct, true},
		{"journal under self funded", models.SchemeSelfFunded, models.OutputJournal, true},
		{"ipr under self funded", models.SchemeSelfFunded, models.OutputIPR, true},
		{"product under self funded", models.SchemeSelfFunded, models.OutputProduct, false},
		{"mass media under basic", models.SchemeBasic, models.OutputMassMedia, false},
		{"mass media under development", models.SchemeDevelopment, models.OutputMassMedia, false},
		{"other under development", models.SchemeDevelopment, models.OutputOther, false},
		{"other under applied", models.SchemeApplied, models.OutputOther, false},
		{"unknown scheme", models.SkemaTipe("BOGUS"), models.OutputJournal, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OutputAllowed(tt.scheme, tt.category))
		})
	}
}

func TestCheckOutputEligibility(t *testing.T) {
	assert.NoError(t, CheckOutputEligibility(models.SchemeBasic, models.OutputIPR))
	assert.NoError(t, CheckOutputEligibility(models.SchemeDevelopment, models.OutputProduct))

	err := CheckOutputEligibility(models.SchemeBasic, models.OutputMassMedia)
	assert.ErrorIs(t, err, ErrCategoryNotAllowedForScheme)

	err = CheckOutputEligibility(models.SchemeApplied, models.OutputProduct)
	assert.ErrorIs(t, err, ErrCategoryNotAllowedForScheme)
}
