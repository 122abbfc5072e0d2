// Package sharecode generates and validates the 6-character codes used to
// look up and share profiles. Codes are 3 consonants followed by 3 digits;
// the alphabet drops vowels plus I, O, Q and U to avoid characters that are
// easily misread when a code is spoken or typed across the table.
package sharecode

import (
	"strings"

	"github.com/nickagee13/commandtrack/internal/dependencies/random"
	"github.com/nickagee13/commandtrack/internal/model"
)

const (
	// Length is the total code length
	Length = 6
	// LetterCount is the number of leading consonants
	LetterCount = 3
	// DigitCount is the number of trailing digits
	DigitCount = 3
	// Alphabet is the 20-consonant letter pool
	Alphabet = "BCDFGHJKLMNPRSTVWXYZ"
	// Separator is inserted between letters and digits for display
	Separator = "-"
	// DefaultSafeAttempts bounds the retry loop in GenerateSafe
	DefaultSafeAttempts = 10

	digitAlphabet = "0123456789"

	// memorableChance is the percentage of codes that use a fixed
	// pronounceable letter triple instead of random letters
	memorableChance = 30
)

// memorablePatterns are letter triples that are easy to relay verbally.
// Every letter must come from Alphabet or the code would fail validation.
var memorablePatterns = []string{
	"MTG", "PWR", "CMD", "BLT", "BRD",
	"DMG", "GRV", "WZD", "TPS", "LVL",
}

// denyList blocks letter triples that read as slurs or profanity.
// Only the 3-letter prefix is checked; digits carry no meaning.
var denyList = map[string]bool{
	"FCK": true,
	"SHT": true,
	"CNT": true,
	"NGR": true,
	"KKK": true,
	"FGT": true,
	"XXX": true,
	"WTF": true,
}

// Generator mints share codes from an injected randomness source
type Generator struct {
	random random.Random
}

// NewGenerator creates a Generator
func NewGenerator(rnd random.Random) *Generator {
	return &Generator{random: rnd}
}

// Generate returns a uniform random code: 3 letters from Alphabet plus
// 3 digits (000-999)
func (g *Generator) Generate() model.ShareCode {
	letters := g.random.String(LetterCount, Alphabet)
	digits := g.random.String(DigitCount, digitAlphabet)
	return model.ShareCode(letters + digits)
}

// GenerateMemorable returns a code biased toward readability: 30% of the
// time the letter triple is one of the fixed pronounceable patterns, and
// the digit triple is resampled while all three digits are equal
// (000, 111, ... are easy to mistype when heard).
func (g *Generator) GenerateMemorable() model.ShareCode {
	var letters string
	if g.random.Intn(100) < memorableChance {
		letters = memorablePatterns[g.random.Intn(len(memorablePatterns))]
	} else {
		letters = g.random.String(LetterCount, Alphabet)
	}

	digits := g.random.String(DigitCount, digitAlphabet)
	for len(digits) == DigitCount && repeatedTriple(digits) {
		digits = g.random.String(DigitCount, digitAlphabet)
	}

	return model.ShareCode(letters + digits)
}

// GenerateSafe retries GenerateMemorable until the code passes the
// deny-list, up to maxAttempts draws. After that the last draw is
// returned unchecked; generation is best-effort and never blocks.
func (g *Generator) GenerateSafe(maxAttempts int) model.ShareCode {
	if maxAttempts <= 0 {
		maxAttempts = DefaultSafeAttempts
	}

	var code model.ShareCode
	for i := 0; i < maxAttempts; i++ {
		code = g.GenerateMemorable()
		if IsAppropriate(code) {
			return code
		}
	}
	return code
}

func repeatedTriple(digits string) bool {
	return digits[0] == digits[1] && digits[1] == digits[2]
}

// Validate reports whether code is exactly 6 characters: 3 uppercase
// letters from Alphabet followed by 3 digits
func Validate(code model.ShareCode) bool {
	s := string(code)
	if len(s) != Length {
		return false
	}
	for i := 0; i < LetterCount; i++ {
		if !strings.ContainsRune(Alphabet, rune(s[i])) {
			return false
		}
	}
	for i := LetterCount; i < Length; i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// IsAppropriate reports whether the code's letter prefix clears the
// deny-list. Invalid codes are not rejected here; validation is separate.
func IsAppropriate(code model.ShareCode) bool {
	s := string(code)
	if len(s) < LetterCount {
		return true
	}
	return !denyList[strings.ToUpper(s[:LetterCount])]
}

// Format renders a code for display with a separator after the letters,
// e.g. BLT423 -> BLT-423. Codes of unexpected length pass through as-is.
func Format(code model.ShareCode) string {
	s := string(code)
	if len(s) != Length {
		return s
	}
	return s[:LetterCount] + Separator + s[LetterCount:]
}

// Parse normalizes user input (strips separators and whitespace,
// uppercases) and validates it. The second return is false for input
// that does not match the code grammar.
func Parse(input string) (model.ShareCode, bool) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '-', ' ', '\t', '.', '_':
			return -1
		}
		return r
	}, strings.TrimSpace(input))

	code := model.ShareCode(strings.ToUpper(cleaned))
	if !Validate(code) {
		return "", false
	}
	return code, true
}
