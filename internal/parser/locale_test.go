package parser

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrenchMonths(t *testing.T) {
	fr := French()
	assert.Equal(t, "fr", fr.Name())

	tests := map[string]time.Month{
		"janv":     time.January,
		"AVR.":     time.April,
		"févr":     time.February,
		"FÉVRIER":  time.February,
		"fev":      time.February,
		"août":     time.August,
		"aout":     time.August,
		"Sept":     time.September,
		"déc":      time.December,
		"decembre": time.December,
	}
	for name, want := range tests {
		got, ok := fr.Month(name)
		assert.True(t, ok, name)
		assert.Equal(t, want, got, name)
	}

	_, ok := fr.Month("foo")
	assert.False(t, ok)
}

func TestLoadLocale(t *testing.T) {
	l, err := LoadLocale("FR")
	require.NoError(t, err)
	assert.Equal(t, "fr", l.Name())

	_, err = LoadLocale("xx")
	assert.Error(t, err)
}

func TestParseLocale_Invalid(t *testing.T) {
	_, err := ParseLocale([]byte("name: bad\nmonths:\n  undecimber: 13\n"))
	assert.Error(t, err)

	_, err = ParseLocale([]byte("name: empty\n"))
	assert.Error(t, err)

	_, err = ParseLocale([]byte("months: [1, 2"))
	assert.Error(t, err)
}

func TestLoadLocaleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "en.yaml")
	data := []byte("name: en\nmonths:\n  jan: 1\n  feb: 2\n  apr: 4\n  april: 4\n")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	en, err := LoadLocaleFile(path)
	require.NoError(t, err)

	p := New(WithLocale(en))
	assert.Same(t, en, p.Locale())

	txn, err := p.ParseLine("4 Apr 2025 Corner Shop London €3.20 €96.80", 0)
	require.NoError(t, err)
	assert.Equal(t, "2025-04-04", txn.Date)
	assert.Equal(t, "Corner Shop London", txn.Description)

	_, err = p.ParseLine("4 avr. 2025 Corner Shop London €3.20 €96.80", 0)
	assert.ErrorIs(t, err, ErrUnknownMonth)

	_, err = LoadLocaleFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
