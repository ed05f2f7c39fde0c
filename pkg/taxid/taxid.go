// Package taxid normaliza y valida identificaciones tributarias de proveedores.
package taxid

import (
	"fmt"
	"strings"
	"unicode"
)

// pesos módulo 11 aplicados a los 9 dígitos base, de izquierda a derecha.
var weights = [9]int{41, 37, 29, 23, 19, 17, 13, 7, 3}

// Normalize elimina puntos, espacios y guiones y valida la longitud.
// Si el identificador tiene 10 dígitos, el último se valida como dígito de verificación.
// Devuelve la forma canónica "BASE-DV" para 10 dígitos o solo dígitos en otro caso.
func Normalize(raw string) (string, error) {
	var digits []byte
	for _, r := range raw {
		switch {
		case unicode.IsDigit(r):
			digits = append(digits, byte(r))
		case r == '.' || r == '-' || unicode.IsSpace(r):
		default:
			return "", fmt.Errorf("taxid: carácter inválido %q", r)
		}
	}
	if len(digits) < 6 || len(digits) > 15 {
		return "", fmt.Errorf("taxid: longitud inválida (%d dígitos)", len(digits))
	}
	if len(digits) != 10 {
		return string(digits), nil
	}
	dv := CheckDigit(string(digits[:9]))
	if digits[9] != dv {
		return "", fmt.Errorf("taxid: dígito de verificación inválido: esperado %c, recibido %c", dv, digits[9])
	}
	return string(digits[:9]) + "-" + string(digits[9]), nil
}

// CheckDigit calcula el dígito de verificación de una base de 9 dígitos.
func CheckDigit(base string) byte {
	base = strings.TrimSpace(base)
	var sum int
	for i := 0; i < len(weights) && i < len(base); i++ {
		sum += int(base[i]-'0') * weights[i]
	}
	remainder := sum % 11
	if remainder == 0 || remainder == 1 {
		return byte('0' + remainder)
	}
	return byte('0' + (11 - remainder))
}
