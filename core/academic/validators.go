package academic

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/acadify/core"
)

var (
	correctIndexTag  = "correctindex"
	correctIndexText = "the correct answer must be one of the options"
)

// InitValidators registers the academic validators and their translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(questionStructValidation, Question{})
	core.RegisterCustomTranslation(validate, translator, correctIndexTag, correctIndexText)
}

// questionStructValidation checks that CorrectIndex points into Options.
// Option count itself is covered by the `min=2` tag.
func questionStructValidation(sl validator.StructLevel) {
	if q, ok := sl.Current().Interface().(Question); ok {
		if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
			sl.ReportError(q.CorrectIndex, "correctIndex", "CorrectIndex", correctIndexTag, "")
		}
	}
}
