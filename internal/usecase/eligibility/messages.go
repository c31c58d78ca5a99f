package eligibility

import "golang.org/x/text/language"

const popupTitleKey = "POPUP_TITLE"

var matcher = language.NewMatcher([]language.Tag{
	language.Indonesian, // default
	language.English,
})

var catalogue = map[string]map[string]string{
	ReasonFDCPlatformLimit: {
		"id": "Anda memiliki pinjaman aktif di terlalu banyak platform lain.",
		"en": "You have active loans on too many other platforms.",
	},
	ReasonInside: {
		"id": "Jumlah pengajuan terlalu tinggi dibandingkan limit Anda. Silakan ajukan jumlah yang lebih kecil.",
		"en": "The requested amount is too high for your limit. Please request a smaller amount.",
	},
	ReasonOutside: {
		"id": "Pengajuan belum dapat diproses karena ada keterlambatan pembayaran di lembaga lain.",
		"en": "Your application cannot be processed because of an overdue loan with another lender.",
	},
	popupTitleKey: {
		"id": "Pengajuan belum dapat diproses",
		"en": "Application on hold",
	},
}

func baseLanguage(locale string) string {
	tag, _, _ := matcher.Match(language.Make(locale))
	b, _ := tag.Base()
	return b.String()
}

// Message localizes a reason code. Configured overrides win over the
// built-in catalogue; unknown codes come back unchanged.
func Message(overrides map[string]map[string]string, reason, locale string) string {
	lang := baseLanguage(locale)
	if m := overrides[reason][lang]; m != "" {
		return m
	}
	if m := catalogue[reason][lang]; m != "" {
		return m
	}
	return reason
}
