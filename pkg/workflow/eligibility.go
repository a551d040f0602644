package workflow

import "github.com/Ramsey-B/aster/pkg/models"

// allowedOutputs maps each scheme type to the output categories it accepts.
// Every scheme accepts JURNAL, BUKU and HAKI; PENGEMBANGAN additionally
// accepts PRODUK. MEDIA_MASSA and LAINNYA are never fundable outputs.
// MANDIRI follows the same rules as DASAR and TERAPAN.
var allowedOutputs = map[models.SkemaTipe]map[models.LuaranJenis]bool{
	models.SchemeBasic: {
		models.OutputJournal: true,
		models.OutputBook:    true,
		models.OutputIPR:     true,
	},
	models.SchemeApplied: {
		models.OutputJournal: true,
		models.OutputBook:    true,
		models.OutputIPR:     true,
	},
	models.SchemeDevelopment: {
		models.OutputJournal: true,
		models.OutputBook:    true,
		models.OutputIPR:     true,
		models.OutputProduct: true,
	},
	models.SchemeSelfFunded: {
		models.OutputJournal: true,
		models.OutputBook:    true,
		models.OutputIPR:     true,
	},
}

// OutputAllowed reports whether an output category may be claimed under a
// scheme type. PRODUK is reserved for PENGEMBANGAN schemes.
func OutputAllowed(scheme models.SkemaTipe, category models.LuaranJenis) bool {
	allowed, ok := allowedOutputs[scheme]
	return ok && allowed[category]
}

// CheckOutputEligibility validates a claimed output category against the
// proposal's scheme type.
func CheckOutputEligibility(scheme models.SkemaTipe, category models.LuaranJenis) error {
	if !OutputAllowed(scheme, category) {
		return ErrCategoryNotAllowedForScheme
	}
	return nil
}
