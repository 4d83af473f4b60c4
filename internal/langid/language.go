package langid

import "strings"

// labelPrefix is the fastText convention for label dictionary entries.
const labelPrefix = "__label__"

// KnownLanguages lists the fastText-style language codes this model's
// label set is trained over.
var KnownLanguages = []string{
	"arb_Arab", "dan_Latn", "nld_Latn", "eng_Latn", "fin_Latn", "fra_Latn",
	"deu_Latn", "hun_Latn", "ita_Latn", "nob_Latn", "por_Latn", "ron_Latn",
	"rus_Cyrl", "spa_Latn", "swe_Latn", "tur_Latn",
}

// CleanLabel strips the "__label__" training prefix fastText dict
// entries carry, if present.
func CleanLabel(raw string) string {
	return strings.TrimPrefix(raw, labelPrefix)
}
