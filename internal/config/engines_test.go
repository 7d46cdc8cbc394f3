package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enginesniff/enginesniff/internal/classify"
	"github.com/enginesniff/enginesniff/internal/signature"
	"github.com/enginesniff/enginesniff/internal/types"
)

func TestLoadEngines_JSON(t *testing.T) {
	dir := t.TempDir()
	p := writeTemp(t, dir, "engines.json", `[
		{"name":"Godot","signatures":[{"type":"extension","value":"pck","weight":2.0}]},
		{"name":"Unity","signatures":[{"type":"path_contains","value":"_Data/Managed"}]}
	]`)
	cfgs, err := LoadEngines(p)
	require.NoError(t, err)
	require.Len(t, cfgs, 2)
	assert.Equal(t, "Godot", cfgs[0].Name)
	assert.Equal(t, 2.0, cfgs[0].Signatures[0].Weight)
	assert.Equal(t, signature.DefaultWeight, cfgs[1].Signatures[0].Weight)

	res := classify.Classify([]string{"game.pck"}, cfgs)
	assert.Equal(t, "Godot", res.Engine)
}

func TestLoadEngines_YAML(t *testing.T) {
	dir := t.TempDir()
	p := writeTemp(t, dir, "engines.yml", "- name: Ren'Py\n  signatures:\n    - type: extension\n      value: rpa\n      weight: 4\n")
	cfgs, err := LoadEngines(p)
	require.NoError(t, err)
	require.Len(t, cfgs, 1)
	assert.Equal(t, "Ren'Py", cfgs[0].Name)
	assert.Equal(t, signature.TypeExtension, cfgs[0].Signatures[0].Kind.Type())
}

func TestLoadEngines_FailsFast(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]struct {
		body string
		want error
	}{
		"unknown.json":   {`[{"name":"X","signatures":[{"type":"regex","value":"a"}]}]`, signature.ErrUnknownType},
		"missing.json":   {`[{"name":"X","signatures":[{"type":"extension"}]}]`, signature.ErrMissingValue},
		"weight.json":    {`[{"name":"X","signatures":[{"type":"extension","value":"a","weight":0}]}]`, signature.ErrInvalidWeight},
		"dup.json":       {`[{"name":"X","signatures":[]},{"name":"X","signatures":[]}]`, ErrDuplicateEngine},
		"empty.json":     {`[{"name":"  ","signatures":[]}]`, ErrEmptyName},
		"reserved.json":  {`[{"name":"unknown","signatures":[]}]`, ErrReservedName},
		"dup.yaml":       {"- name: X\n  signatures: []\n- name: X\n  signatures: []\n", ErrDuplicateEngine},
		"unknownty.yaml": {"- name: X\n  signatures:\n    - type: nope\n      value: a\n", signature.ErrUnknownType},
		"blank.yaml":     {"", ErrNoEngines},
		"comment.yaml":   {"# c\n", ErrNoEngines},
		"null.json":      {"null", ErrNoEngines},
		"nolist.json":    {"[]", ErrNoEngines},
	}
	for name, tc := range cases {
		p := writeTemp(t, dir, name, tc.body)
		_, err := LoadEngines(p)
		require.ErrorIs(t, err, tc.want, name)
	}
}

func TestLoadEngines_MissingAndMalformed(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadEngines(dir + "/nope.json")
	require.Error(t, err)

	p := writeTemp(t, dir, "bad.json", `{"name": "not-a-list"}`)
	_, err = LoadEngines(p)
	require.Error(t, err)

	p = writeTemp(t, dir, "extra.json", `[{"name":"X","signatures":[],"priority":3}]`)
	_, err = LoadEngines(p)
	require.Error(t, err, "unknown fields are rejected")
}

func TestFormatForPath(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatForPath("a/engines.YML"))
	assert.Equal(t, FormatYAML, FormatForPath("engines.yaml"))
	assert.Equal(t, FormatJSON, FormatForPath("engines.json"))
	assert.Equal(t, FormatJSON, FormatForPath("engines"))
}

func TestDefaultEngines(t *testing.T) {
	cfgs := DefaultEngines()
	require.NoError(t, Validate(cfgs))
	names := make([]string, 0, len(cfgs))
	for _, c := range cfgs {
		names = append(names, c.Name)
		assert.NotEmpty(t, c.Signatures, c.Name)
	}
	assert.Contains(t, names, "Unity")
	assert.Contains(t, names, "Godot")

	cases := map[string][]string{
		"Unity":         {"MyGame.exe", "UnityPlayer.dll", "MyGame_Data/Managed/Assembly-CSharp.dll", "MyGame_Data/globalgamemanagers"},
		"Godot":         {"game.exe", "game.pck"},
		"Unreal Engine": {"Game/Binaries/Win64/Game-Win64-Shipping.exe", "Game/Content/Paks/Game-WindowsNoEditor.pak", "Engine/Binaries/ThirdParty/x.dll"},
		"GameMaker":     {"game.exe", "data.win", "options.ini"},
		"Ren'Py":        {"game/archive.rpa", "game/script.rpyc", "renpy/common/00start.rpy"},
		types.Unknown:   {"readme.txt", "license.md"},
	}
	for want, files := range cases {
		res := classify.Classify(files, cfgs)
		assert.Equal(t, want, res.Engine, "%v", files)
	}
}
