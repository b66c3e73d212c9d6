package schema_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"structured_markup/internal/schema"
)

const cafeBlock = `<script type="application/ld+json">
{
    "@context": "http://schema.org",
    "@type": "Cafe",
    "name": "Cafe X",
    "logo": "",
    "url": "http://x",
    "telephone": "555",
    "menu": "http://menu",
    "acceptsReservations": "True",
    "address": {
        "@type": "PostalAddress",
        "streetAddress": "1 Main",
        "addressLocality": "",
        "addressRegion": "",
        "postalCode": "",
        "addressCountry": ""
    }
}
</script>
`

func TestEncode_Block(t *testing.T) {
	lb := build(t, schema.GatePerField, `{
		"name": "Cafe X", "business_type": "Cafe", "url": "http://x", "telephone": "555",
		"street_address": "1 Main", "food_active": "on", "menu": "http://menu",
		"accepts_reservations": "on"
	}`)

	b, err := schema.Encode(lb)
	require.NoError(t, err)
	assert.Equal(t, cafeBlock, string(b))
}

func TestEncode_NoSlashOrUnicodeEscaping(t *testing.T) {
	lb := build(t, schema.GatePerField, `{"name": "東京 Café", "url": "https://example.com/a/b"}`)

	b, err := schema.Encode(lb)
	require.NoError(t, err)
	out := string(b)
	assert.Contains(t, out, `"name": "東京 Café"`)
	assert.Contains(t, out, `"url": "https://example.com/a/b"`)
	assert.NotContains(t, out, `\/`)
	assert.NotContains(t, out, `\u`)
}

func TestEmitter_OneBlockPerDocument(t *testing.T) {
	var buf bytes.Buffer
	e := schema.NewEmitter(&buf)

	require.NoError(t, e.Emit(build(t, schema.GatePerField, `{"name": "A"}`)))
	require.NoError(t, e.Emit(build(t, schema.GatePerField, `{"name": "B"}`)))

	out := buf.String()
	assert.Equal(t, 2, strings.Count(out, `<script type="application/ld+json">`))
	assert.Equal(t, 2, strings.Count(out, "</script>"))
	assert.Less(t, strings.Index(out, `"name": "A"`), strings.Index(out, `"name": "B"`))
}
