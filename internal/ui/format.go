package ui

import "strings"

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatCPF renders an 11-digit CPF as 000.000.000-00. Anything else is
// returned unchanged.
func FormatCPF(cpf string) string {
	digits := digitsOnly(cpf)
	if len(digits) != 11 {
		return cpf
	}
	return digits[0:3] + "." + digits[3:6] + "." + digits[6:9] + "-" + digits[9:11]
}

// FormatPhone renders Brazilian phone numbers as (00) 0000-0000 or
// (00) 00000-0000. Anything else is returned unchanged.
func FormatPhone(phone string) string {
	digits := digitsOnly(phone)
	switch len(digits) {
	case 10:
		return "(" + digits[0:2] + ") " + digits[2:6] + "-" + digits[6:10]
	case 11:
		return "(" + digits[0:2] + ") " + digits[2:7] + "-" + digits[7:11]
	}
	return phone
}
