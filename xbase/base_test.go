/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package xbase

import (
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fixture struct {
	Name    string `json:"name" yaml:"name"`
	Stripes int    `json:"stripes" yaml:"stripes"`
}

func TestXbaseWriteFile(t *testing.T) {
	dir, err := os.MkdirTemp("", "xbase_")
	assert.Nil(t, err)
	defer os.RemoveAll(dir)

	// Write OK.
	{
		err := WriteFile(path.Join(dir, "xbase.test"), []byte{0xfd})
		assert.Nil(t, err)
	}

	// Write Error.
	{
		err := WriteFile(path.Join(dir, "nodir", "xbase.test"), []byte{0xfd})
		assert.NotNil(t, err)
	}
}

func TestXbaseDecodeFile(t *testing.T) {
	dir, err := os.MkdirTemp("", "xbase_")
	assert.Nil(t, err)
	defer os.RemoveAll(dir)

	jsonFile := path.Join(dir, "db.json")
	yamlFile := path.Join(dir, "db.yaml")
	assert.Nil(t, WriteFile(jsonFile, []byte(`{"name":"LSST","stripes":85}`)))
	assert.Nil(t, WriteFile(yamlFile, []byte("name: LSST\nstripes: 85\n")))

	for _, file := range []string{jsonFile, yamlFile} {
		got := &fixture{}
		err := DecodeFile(file, got)
		assert.Nil(t, err)
		assert.Equal(t, &fixture{Name: "LSST", Stripes: 85}, got)
	}

	err = DecodeFile(path.Join(dir, "missing.json"), &fixture{})
	assert.NotNil(t, err)
	assert.True(t, IsYAMLFile("a/b.YML"))
	assert.False(t, IsYAMLFile("a/b.json"))
}

func TestXbaseTruncateQuery(t *testing.T) {
	var testCases = []struct {
		in, out string
	}{{
		in:  "",
		out: "",
	}, {
		in:  "12345",
		out: "12345",
	}, {
		in:  "123456",
		out: "12345 [TRUNCATED]",
	}}
	for _, testCase := range testCases {
		got := TruncateQuery(testCase.in, 5)
		assert.Equal(t, testCase.out, got)
	}
}
