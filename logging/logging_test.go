/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer

	log, err := New(Options{Format: FormatJSON, Output: &buf})
	require.NoError(t, err)

	log.WithField("room", "ABC234").Info("room created")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))

	assert.Equal(t, "room created", line["message"])
	assert.Equal(t, "ABC234", line["room"])
	assert.Contains(t, line, "timestamp")
}

func TestVerboseEnablesDebug(t *testing.T) {
	log, err := New(Options{Verbose: true, Output: &bytes.Buffer{}})
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())

	log, err = New(Options{Output: &bytes.Buffer{}})
	require.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}

func TestUnknownFormat(t *testing.T) {
	_, err := New(Options{Format: "xml"})
	assert.Error(t, err)
}
