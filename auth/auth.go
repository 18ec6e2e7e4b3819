// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// CodeLength is the length of generated voter access codes.
const CodeLength = 6

// No 0/O, 1/I/L: codes are read aloud and typed by hand.
const codeAlphabet = "23456789ABCDEFGHJKMNPQRSTUVWXYZ"

var ErrCodeExhausted = errors.New("no free access code found")

// maxCodeAttempts bounds the retry loop in NewVoterCode. With 31^6 codes it
// is only reached when the taken func always reports true.
const maxCodeAttempts = 10000

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// NewPollID returns a time-ordered UUIDv7 (timestamp + random bits).
func NewPollID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate poll ID: %w", err)
	}
	return id.String(), nil
}

// NewVoterID returns the stable identifier of a voter slot.
func NewVoterID() string {
	return uuid.NewString()
}

// NormalizeCode is the canonical form of an access code: trimmed, upper-case.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// RandomCode returns a random upper-case access code of CodeLength characters.
func RandomCode() (string, error) {
	b := make([]byte, CodeLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate access code: %w", err)
	}
	out := make([]byte, CodeLength)
	for i, v := range b {
		out[i] = codeAlphabet[int(v)%len(codeAlphabet)]
	}
	return string(out), nil
}

// NewVoterCode resolves a unique access code. The preferred code is used
// when it is non-empty and not taken; otherwise random codes are drawn
// until one is free.
func NewVoterCode(preferred string, taken func(code string) bool) (string, error) {
	if code := NormalizeCode(preferred); code != "" && !taken(code) {
		return code, nil
	}
	for i := 0; i < maxCodeAttempts; i++ {
		code, err := RandomCode()
		if err != nil {
			return "", err
		}
		if !taken(code) {
			return code, nil
		}
	}
	return "", ErrCodeExhausted
}
