package localization

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_BundledLanguages(t *testing.T) {
	l, err := New()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"en", "uk"}, l.Languages())
	assert.Equal(t, "Your account is not active.", l.GetString("en", "auth.account_inactive"))
	assert.Equal(t, "Ваш обліковий запис неактивний.", l.GetString("uk", "auth.account_inactive"))
}

func TestBundledLanguagesShareKeys(t *testing.T) {
	l, err := New()
	require.NoError(t, err)
	for key := range l.translations["en"] {
		assert.Contains(t, l.translations["uk"], key)
	}
}

func TestGetString_Fallbacks(t *testing.T) {
	fsys := fstest.MapFS{
		"en.json":    {Data: []byte(`{"greeting": "Hello", "only.en": "English"}`)},
		"uk.json":    {Data: []byte(`{"greeting": "Привіт"}`)},
		"README.txt": {Data: []byte("ignored")},
	}
	l, err := NewLocalizer(fsys)
	require.NoError(t, err)

	assert.Equal(t, "Привіт", l.GetString("uk", "greeting"))
	assert.Equal(t, "Привіт", l.GetString("uk-UA", "greeting"))
	assert.Equal(t, "English", l.GetString("uk", "only.en"))
	assert.Equal(t, "Hello", l.GetString("fr", "greeting"))
	assert.Equal(t, "missing.key", l.GetString("en", "missing.key"))
}

func TestNewLocalizer_BadJSON(t *testing.T) {
	_, err := NewLocalizer(fstest.MapFS{"en.json": {Data: []byte("{")}})
	assert.Error(t, err)
}
