package identity

import "strings"

// CanonicalPhone reduce un teléfono a su forma canónica: solo dígitos,
// con código de país incluido. "+54 9 11 2233-4455" → "5491122334455".
// Retorna "" si no queda ningún dígito.
func CanonicalPhone(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CanonicalPhoneParts arma el teléfono canónico desde código de país y
// número por separado (formato Phone.email). El '+' del código y cualquier
// separador se descartan.
func CanonicalPhoneParts(countryCode, number string) string {
	return CanonicalPhone(countryCode) + CanonicalPhone(number)
}
