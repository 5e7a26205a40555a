package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dproto "github.com/riverlink/danmaku-go/internal/proto"
)

func downstreamPlaintext(t *testing.T, command string, seqID int64, payload []byte) []byte {
	t.Helper()
	return (&dproto.DownstreamPayload{Command: command, SeqID: seqID, PayloadData: payload}).Marshal()
}

func TestFrameRoundTripServiceToken(t *testing.T) {
	key := make([]byte, aesBlockSize)
	for i := range key {
		key[i] = byte(i)
	}

	header := &dproto.PacketHeader{
		AppID:          1000,
		UID:            5,
		EncryptionMode: dproto.EncryptionServiceToken,
		SeqID:          1,
		Kpn:            "ACFUN_APP",
	}
	plaintext := downstreamPlaintext(t, "Basic.Register", 1, []byte("hello"))

	frame, err := encodeFrame(header, plaintext, key)
	require.NoError(t, err)

	decoded, err := decodeFrame(frame, key, nil)
	require.NoError(t, err)
	assert.Equal(t, "Basic.Register", decoded.Payload.Command)
	assert.Equal(t, int64(1), decoded.Payload.SeqID)
	assert.Equal(t, []byte("hello"), decoded.Payload.PayloadData)
}

func TestFrameRoundTripNone(t *testing.T) {
	header := &dproto.PacketHeader{EncryptionMode: dproto.EncryptionNone, SeqID: 3}
	plaintext := downstreamPlaintext(t, "Basic.Ping", 3, []byte("unencrypted"))

	frame, err := encodeFrame(header, plaintext, nil)
	require.NoError(t, err)

	decoded, err := decodeFrame(frame, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "Basic.Ping", decoded.Payload.Command)
	assert.Equal(t, int64(3), decoded.Payload.SeqID)
	assert.Equal(t, []byte("unencrypted"), decoded.Payload.PayloadData)
}

func TestFrameRoundTripSessionKey(t *testing.T) {
	key := make([]byte, aesBlockSize)
	for i := range key {
		key[i] = byte(255 - i)
	}
	header := &dproto.PacketHeader{EncryptionMode: dproto.EncryptionSessionKey, SeqID: 2}
	plaintext := downstreamPlaintext(t, "Basic.KeepAlive", 2, nil)

	frame, err := encodeFrame(header, plaintext, key)
	require.NoError(t, err)

	decoded, err := decodeFrame(frame, nil, key)
	require.NoError(t, err)
	assert.Equal(t, "Basic.KeepAlive", decoded.Payload.Command)
}

func TestFrameIVIsFreshEveryEncode(t *testing.T) {
	key := make([]byte, aesBlockSize)
	header := &dproto.PacketHeader{EncryptionMode: dproto.EncryptionServiceToken}
	plaintext := downstreamPlaintext(t, "Basic.Ping", 0, nil)

	a, err := encodeFrame(header, plaintext, key)
	require.NoError(t, err)
	b, err := encodeFrame(header, plaintext, key)
	require.NoError(t, err)
	assert.NotEqual(t, a, b, "each encode must use a fresh random IV")
}

func TestFrameCiphertextGrowsInWholeBlocks(t *testing.T) {
	key := make([]byte, aesBlockSize)
	header := &dproto.PacketHeader{EncryptionMode: dproto.EncryptionServiceToken}
	plaintext := downstreamPlaintext(t, "Basic.Ping", 0, nil)

	frame, err := encodeFrame(header, plaintext, key)
	require.NoError(t, err)

	bodyLen := len(frame) - framePrefixSize - len(header.Marshal())
	assert.Equal(t, 0, (bodyLen-aesBlockSize)%aesBlockSize, "ciphertext (minus IV) must be a whole number of blocks")
}

func TestDecodeFrameRejectsBadMagic(t *testing.T) {
	_, err := decodeFrame(make([]byte, framePrefixSize), nil, nil)
	assert.Error(t, err)
}

func TestDecodeFrameRejectsTruncatedPrefix(t *testing.T) {
	_, err := decodeFrame([]byte{1, 2, 3}, nil, nil)
	assert.Error(t, err)
}

func TestDecodeSecurityKeyValidatesLength(t *testing.T) {
	_, err := decodeSecurityKey("dG9vc2hvcnQ=") // "tooshort", not 16 bytes
	assert.Error(t, err)
}

func TestPkcs7RoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 15, 16, 17, 33} {
		data := make([]byte, n)
		for i := range data {
			data[i] = byte(i)
		}
		padded := pkcs7Pad(data, aesBlockSize)
		assert.Equal(t, 0, len(padded)%aesBlockSize)
		unpadded, err := pkcs7Unpad(padded)
		require.NoError(t, err)
		assert.Equal(t, data, unpadded)
	}
}
