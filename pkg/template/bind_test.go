package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromArgString(t *testing.T) {
	tests := []struct {
		name string
		ty   InnerType
		arg  string
		want ParamValue
	}{
		{"str passes through", InnerString, "hello world", Str("hello world")},
		{"str keeps quotes literal", InnerString, "'quoted'", Str("'quoted'")},
		{"num integer", InnerNumber, "42", Num(42)},
		{"num float", InnerNumber, "-3.5", Num(-3.5)},
		{"num exponent", InnerNumber, "1e3", Num(1000)},
		{"raw fragment", InnerRaw, "#order by id#", Raw("order by id")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromArgString(tt.ty, tt.arg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromArgStringInvalid(t *testing.T) {
	tests := []struct {
		name string
		ty   InnerType
		arg  string
	}{
		{"num with trailing text", InnerNumber, "12abc"},
		{"num empty", InnerNumber, ""},
		{"num not numeric", InnerNumber, "ten"},
		{"raw without markers", InnerRaw, "order by id"},
		{"raw unterminated", InnerRaw, "#order by id"},
		{"raw with trailing text", InnerRaw, "#x# extra"},
		{"raw empty", InnerRaw, "##"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromArgString(tt.ty, tt.arg)
			var invalid *InvalidArgValueError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tt.arg, invalid.Value)
		})
	}
}

func TestBindParamScalar(t *testing.T) {
	p := Param{Name: "age", Type: ParamType{Inner: InnerNumber}}

	got, err := BindParam(p, []string{"21"})
	require.NoError(t, err)
	assert.Equal(t, Num(21), got)

	_, err = BindParam(p, []string{"1", "2"})
	var single *ExpectSingleValueError
	require.ErrorAs(t, err, &single)
	assert.Equal(t, "age", single.Name)
	assert.Equal(t, 2, single.Count)
}

func TestBindParamArray(t *testing.T) {
	p := Param{Name: "ids", Type: ParamType{Inner: InnerNumber, IsArray: true}}

	got, err := BindParam(p, []string{"1", "2", "3"})
	require.NoError(t, err)
	assert.Equal(t, Array{Num(1), Num(2), Num(3)}, got)

	_, err = BindParam(p, []string{"1", "x"})
	var invalid *InvalidArgValueError
	require.ErrorAs(t, err, &invalid)
}

func TestBuildContext(t *testing.T) {
	params := []Param{
		{Name: "age", Type: ParamType{Inner: InnerNumber}, Default: Num(10)},
		{Name: "name", Type: ParamType{Inner: InnerString}},
	}

	ctx, err := BuildContext(params, map[string][]string{"name": {"ada"}})
	require.NoError(t, err)
	assert.Equal(t, Num(10), ctx["age"])
	assert.Equal(t, Str("ada"), ctx["name"])

	ctx, err = BuildContext(params, map[string][]string{"name": {"ada"}, "age": {"30"}})
	require.NoError(t, err)
	assert.Equal(t, Num(30), ctx["age"])
}

func TestBuildContextRequired(t *testing.T) {
	params := []Param{{Name: "name", Type: ParamType{Inner: InnerString}}}
	_, err := BuildContext(params, nil)
	var required *RequiredParamError
	require.ErrorAs(t, err, &required)
	assert.Equal(t, "name", required.Name)
	assert.EqualError(t, err, "name is required")
}
