package core

import (
	"bytes"
	"compress/gzip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dproto "github.com/riverlink/danmaku-go/internal/proto"
)

// Minimal wire-tag writers: the signal envelope has no client-side Marshal
// (nothing ever sends one — the server only ever sends them), so these
// exist purely to synthesize server-shaped test fixtures, mirroring the
// package's own buildSignalEnvelope test helper.
func pbVarint(buf []byte, v uint64) []byte {
	for v >= 0x80 {
		buf = append(buf, byte(v)|0x80)
		v >>= 7
	}
	return append(buf, byte(v))
}

func pbString(buf []byte, num int, s string) []byte {
	buf = append(buf, byte(num<<3|2))
	buf = pbVarint(buf, uint64(len(s)))
	return append(buf, s...)
}

func pbBytes(buf []byte, num int, b []byte) []byte {
	buf = append(buf, byte(num<<3|2))
	buf = pbVarint(buf, uint64(len(b)))
	return append(buf, b...)
}

func pbMessage(buf []byte, num int, msg []byte) []byte {
	if len(msg) == 0 {
		return buf
	}
	buf = append(buf, byte(num<<3|2))
	buf = pbVarint(buf, uint64(len(msg)))
	return append(buf, msg...)
}

func buildEnvelope(signalType string, payloads ...[]byte) []byte {
	var item []byte
	item = pbString(item, 1, signalType)
	for _, p := range payloads {
		item = pbBytes(item, 2, p)
	}
	var buf []byte
	buf = pbMessage(buf, 1, item)
	return buf
}

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestDecodeActionSignalDispatchesKnownTypes(t *testing.T) {
	c := &dproto.CommonActionSignalComment{UserID: 1, UserName: "a", Content: "hi", SendTimeMs: 10}
	sig := decodeActionSignal("CommonActionSignalComment", c.Marshal())
	require.NotNil(t, sig.Comment)
	assert.Equal(t, "hi", sig.Comment.Content)
}

func TestDecodeActionSignalFallsBackToUnknown(t *testing.T) {
	sig := decodeActionSignal("SomeFutureSignal", []byte{1, 2, 3})
	assert.Nil(t, sig.Comment)
	assert.Equal(t, []byte{1, 2, 3}, sig.Unknown)
}

func TestDecodeActionSignalFallsBackOnCorruptPayload(t *testing.T) {
	// A gift payload is length-delimited (string fields); feeding it a bare
	// varint-tagged byte that trips parseFields should fall through to Unknown.
	sig := decodeActionSignal("CommonActionSignalGift", []byte{0xFF})
	assert.Nil(t, sig.Gift)
	assert.Equal(t, []byte{0xFF}, sig.Unknown)
}

func TestDecodeStateSignalDispatchesKnownTypes(t *testing.T) {
	top := &dproto.CommonStateSignalTopUser{}
	sig := decodeStateSignal("CommonStateSignalTopUser", top.Marshal())
	assert.NotNil(t, sig.TopUser)
}

func TestDecodeNotifySignalDispatchesKnownTypes(t *testing.T) {
	kicked := &dproto.CommonNotifySignalKickedOut{Reason: "banned"}
	sig := decodeNotifySignal("CommonNotifySignalKickedOut", kicked.Marshal())
	require.NotNil(t, sig.KickedOut)
	assert.Equal(t, "banned", sig.KickedOut.Reason)
}

func TestDecodeSignalsActionSignalSortsBySendTime(t *testing.T) {
	late := (&dproto.CommonActionSignalComment{Content: "late", SendTimeMs: 200}).Marshal()
	early := (&dproto.CommonActionSignalComment{Content: "early", SendTimeMs: 100}).Marshal()
	envelope := buildEnvelope("CommonActionSignalComment", late, early)

	msg := &dproto.ZtLiveScMessage{MessageType: "ZtLiveScActionSignal", Payload: envelope}
	out, err := decodeSignals(msg)
	require.NoError(t, err)
	require.Len(t, out.Actions, 2)
	assert.Equal(t, "early", out.Actions[0].Comment.Content)
	assert.Equal(t, "late", out.Actions[1].Comment.Content)
}

func TestDecodeSignalsGunzipsWhenCompressed(t *testing.T) {
	comment := (&dproto.CommonActionSignalComment{Content: "zipped", SendTimeMs: 1}).Marshal()
	envelope := buildEnvelope("CommonActionSignalComment", comment)

	msg := &dproto.ZtLiveScMessage{
		CompressionType: dproto.CompressionGzip,
		MessageType:     "ZtLiveScActionSignal",
		Payload:         gzipBytes(t, envelope),
	}
	out, err := decodeSignals(msg)
	require.NoError(t, err)
	require.Len(t, out.Actions, 1)
	assert.Equal(t, "zipped", out.Actions[0].Comment.Content)
}

func TestDecodeSignalsStateSignalBatch(t *testing.T) {
	top := (&dproto.CommonStateSignalTopUser{}).Marshal()
	envelope := buildEnvelope("CommonStateSignalTopUser", top)
	msg := &dproto.ZtLiveScMessage{MessageType: "ZtLiveScStateSignal", Payload: envelope}

	out, err := decodeSignals(msg)
	require.NoError(t, err)
	require.Len(t, out.States, 1)
	assert.NotNil(t, out.States[0].TopUser)
}

func TestDecodeSignalsNotifySignalBatch(t *testing.T) {
	kicked := (&dproto.CommonNotifySignalKickedOut{Reason: "spam"}).Marshal()
	envelope := buildEnvelope("CommonNotifySignalKickedOut", kicked)
	msg := &dproto.ZtLiveScMessage{MessageType: "ZtLiveScNotifySignal", Payload: envelope}

	out, err := decodeSignals(msg)
	require.NoError(t, err)
	require.Len(t, out.Notifies, 1)
	require.NotNil(t, out.Notifies[0].KickedOut)
	assert.Equal(t, "spam", out.Notifies[0].KickedOut.Reason)
}

func TestDecodeSignalsRejectsUnknownMessageType(t *testing.T) {
	msg := &dproto.ZtLiveScMessage{MessageType: "ZtLiveScSomethingElse"}
	_, err := decodeSignals(msg)
	assert.Error(t, err)
}

func TestGunzipRejectsNonGzipInput(t *testing.T) {
	_, err := gunzip([]byte("not gzip"))
	assert.Error(t, err)
}
