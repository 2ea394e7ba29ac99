package cli

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSimpleText(t *testing.T) {
	var out bytes.Buffer
	reader := bufio.NewReader(strings.NewReader("  hello world  \n"))

	got, err := GetSimpleText(reader, "Say something", &out)
	require.NoError(t, err)
	assert.Equal(t, "hello world", got)
	assert.Contains(t, out.String(), "Say something")
}

func TestGetSimpleText_EOFWithPartialLine(t *testing.T) {
	var out bytes.Buffer
	reader := bufio.NewReader(strings.NewReader("partial"))

	got, err := GetSimpleText(reader, "p", &out)
	require.NoError(t, err)
	assert.Equal(t, "partial", got)
}

func TestGetFloat(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		fallback float64
		want     float64
		wantErr  bool
	}{
		{name: "number", input: "2.5\n", want: 2.5},
		{name: "empty uses fallback", input: "\n", fallback: 1, want: 1},
		{name: "garbage", input: "two\n", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			got, err := GetFloat(bufio.NewReader(strings.NewReader(tc.input)), "q", tc.fallback, &out)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestGetIndex(t *testing.T) {
	var out bytes.Buffer

	got, err := GetIndex(bufio.NewReader(strings.NewReader("3\n")), "pick", 5, &out)
	require.NoError(t, err)
	assert.Equal(t, 3, got)

	_, err = GetIndex(bufio.NewReader(strings.NewReader("9\n")), "pick", 5, &out)
	assert.Error(t, err)

	_, err = GetIndex(bufio.NewReader(strings.NewReader("zero\n")), "pick", 5, &out)
	assert.Error(t, err)
}

func TestGetSecret(t *testing.T) {
	orig := readSecret
	defer func() { readSecret = orig }()
	readSecret = func(fd int) ([]byte, error) { return []byte(" kitchen-42 "), nil }

	var out bytes.Buffer
	got, err := GetSecret("Sync code", &out)
	require.NoError(t, err)
	assert.Equal(t, "kitchen-42", got)
	assert.Contains(t, out.String(), "Sync code")
}
