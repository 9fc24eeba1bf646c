package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PrivateRookie/psql/pkg/template"
)

func TestCheckValueCleanString(t *testing.T) {
	assert.Nil(t, CheckValue("name", template.Str("ada lovelace")))
	assert.Nil(t, CheckValue("id", template.Str("12345")))
}

func TestCheckValueDetectsInjection(t *testing.T) {
	res := CheckValue("search", template.Str("'; DROP TABLE users--"))
	require.NotNil(t, res)
	assert.Equal(t, "search", res.ParamName)
	assert.NotEmpty(t, res.Fingerprint)
}

func TestCheckValueSkipsNonStrings(t *testing.T) {
	assert.Nil(t, CheckValue("n", template.Num(1)))
	// Raw values are the trusted escape hatch and are never scanned.
	assert.Nil(t, CheckValue("tail", template.Raw("1; DROP TABLE users")))
}

func TestCheckValueArrayElements(t *testing.T) {
	arr := template.Array{template.Str("ok"), template.Str("' OR '1'='1")}
	res := CheckValue("names", arr)
	require.NotNil(t, res)
	assert.Equal(t, "names", res.ParamName)
}

func TestCheckContext(t *testing.T) {
	ctx := template.Context{
		"safe": template.Str("hello"),
		"evil": template.Str("1' UNION SELECT password FROM users--"),
	}
	results := CheckContext(ctx)
	require.Len(t, results, 1)
	assert.Equal(t, "evil", results[0].ParamName)
}
