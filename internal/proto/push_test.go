package proto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSignalEnvelope(entries ...struct {
	signalType string
	payloads   [][]byte
}) []byte {
	var buf []byte
	for _, e := range entries {
		var item []byte
		item = appendString(item, 1, e.signalType)
		for _, p := range e.payloads {
			item = appendBytes(item, 2, p)
		}
		buf = appendMessage(buf, 1, item)
	}
	return buf
}

func TestZtLiveScMessageRoundTrip(t *testing.T) {
	var buf []byte
	buf = appendInt32(buf, 1, int32(CompressionGzip))
	buf = appendString(buf, 2, "ZtLiveScActionSignal")
	buf = appendBytes(buf, 3, []byte{1, 2, 3})

	m, err := UnmarshalZtLiveScMessage(buf)
	require.NoError(t, err)
	assert.Equal(t, CompressionGzip, m.CompressionType)
	assert.Equal(t, "ZtLiveScActionSignal", m.MessageType)
	assert.Equal(t, []byte{1, 2, 3}, m.Payload)
}

func TestZtLiveScStatusChanged(t *testing.T) {
	var buf []byte
	buf = appendInt32(buf, 1, int32(StatusLiveClosed))
	s, err := UnmarshalZtLiveScStatusChanged(buf)
	require.NoError(t, err)
	assert.Equal(t, StatusLiveClosed, s.Type)
}

func TestActionSignalItemsExpandsRepeatedPayloads(t *testing.T) {
	data := buildSignalEnvelope(struct {
		signalType string
		payloads   [][]byte
	}{signalType: "CommonActionSignalComment", payloads: [][]byte{{1}, {2}}})

	items, err := ActionSignalItems(data)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "CommonActionSignalComment", items[0].SignalType)
	assert.Equal(t, []byte{1}, items[0].Payload)
	assert.Equal(t, []byte{2}, items[1].Payload)
}

func TestStateSignalItemsTakesFirstPayloadOnly(t *testing.T) {
	data := buildSignalEnvelope(struct {
		signalType string
		payloads   [][]byte
	}{signalType: "CommonStateSignalTopUser", payloads: [][]byte{{7}, {8}}})

	items, err := StateSignalItems(data)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, []byte{7}, items[0].Payload)
}
