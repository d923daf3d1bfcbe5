// Package validation - правила форм, общие для API и Go-клиента.
// Сервер и клиент принимают и отклоняют один и тот же ввод.
package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// MinPasswordLength - минимальная длина пароля в символах
	MinPasswordLength = 6
	// MaxPasswordBytes - bcrypt не принимает пароли длиннее 72 байт
	MaxPasswordBytes = 72
	// CodeLength - число цифр в коде подтверждения
	CodeLength = 6
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Email проверяет форму local-part@domain.tld
func Email(s string) bool {
	return emailPattern.MatchString(s)
}

// Password проверяет обе границы длины пароля
func Password(s string) bool {
	return utf8.RuneCountInString(s) >= MinPasswordLength && !PasswordTooLong(s)
}

// PasswordTooLong считает байты, а не символы: буква кириллицы занимает два байта
func PasswordTooLong(s string) bool {
	return len(s) > MaxPasswordBytes
}

// Code - ровно шесть десятичных цифр
func Code(s string) bool {
	if len(s) != CodeLength {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// NormalizeEmail обрезает пробелы и приводит адрес к нижнему регистру
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
