package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PrivateRookie/psql/pkg/template"
)

func TestBindArgs(t *testing.T) {
	params := []template.Param{
		{Name: "age", Type: template.ParamType{Inner: template.InnerNumber}, Default: template.Num(18)},
		{Name: "names", Type: template.ParamType{Inner: template.InnerString, IsArray: true}},
	}

	ctx, err := bindArgs(params, []string{"-age", "30", "-names", "ada", "-names", "grace"})
	require.NoError(t, err)
	assert.Equal(t, template.Num(30), ctx["age"])
	assert.Equal(t, template.Array{template.Str("ada"), template.Str("grace")}, ctx["names"])
}

func TestBindArgsDefaults(t *testing.T) {
	params := []template.Param{
		{Name: "age", Type: template.ParamType{Inner: template.InnerNumber}, Default: template.Num(18)},
	}
	ctx, err := bindArgs(params, nil)
	require.NoError(t, err)
	assert.Equal(t, template.Num(18), ctx["age"])
}

func TestBindArgsMissingRequired(t *testing.T) {
	params := []template.Param{
		{Name: "name", Type: template.ParamType{Inner: template.InnerString}},
	}
	_, err := bindArgs(params, nil)
	assert.Error(t, err)
}

func TestBindArgsRejectsPositional(t *testing.T) {
	params := []template.Param{
		{Name: "name", Type: template.ParamType{Inner: template.InnerString}},
	}
	_, err := bindArgs(params, []string{"-name", "x", "stray"})
	assert.Error(t, err)
}
