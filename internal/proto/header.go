package proto

// EncryptionMode mirrors PacketHeader.encryption_mode.
type EncryptionMode int32

const (
	EncryptionNone EncryptionMode = iota
	EncryptionServiceToken
	EncryptionSessionKey
)

// TokenInfo carries the handshake credential sent on the register frame.
type TokenInfo struct {
	TokenType int32
	Token     string
}

func (t *TokenInfo) Marshal() []byte {
	if t == nil {
		return nil
	}
	var buf []byte
	buf = appendInt32(buf, 1, t.TokenType)
	buf = appendString(buf, 2, t.Token)
	return buf
}

func unmarshalTokenInfo(data []byte) (*TokenInfo, error) {
	fields, err := parseFields(data)
	if err != nil {
		return nil, err
	}
	t := &TokenInfo{}
	for _, f := range fields {
		switch f.num {
		case 1:
			t.TokenType = int32(f.varint)
		case 2:
			t.Token = string(f.bytes)
		}
	}
	return t, nil
}

// PacketHeader is the frame's header, carried on every wire frame.
type PacketHeader struct {
	AppID             int32
	UID               int64
	InstanceID        int64
	EncryptionMode    EncryptionMode
	SeqID             int64
	Kpn               string
	DecodedPayloadLen uint32
	TokenInfo         *TokenInfo
}

func (h *PacketHeader) Marshal() []byte {
	var buf []byte
	buf = appendInt32(buf, 1, h.AppID)
	buf = appendInt64(buf, 2, h.UID)
	buf = appendInt64(buf, 3, h.InstanceID)
	buf = appendInt32(buf, 4, int32(h.EncryptionMode))
	buf = appendInt64(buf, 5, h.SeqID)
	buf = appendString(buf, 6, h.Kpn)
	buf = appendUint32(buf, 7, h.DecodedPayloadLen)
	buf = appendMessage(buf, 8, h.TokenInfo.Marshal())
	return buf
}

func UnmarshalPacketHeader(data []byte) (*PacketHeader, error) {
	fields, err := parseFields(data)
	if err != nil {
		return nil, err
	}
	h := &PacketHeader{}
	for _, f := range fields {
		switch f.num {
		case 1:
			h.AppID = int32(f.varint)
		case 2:
			h.UID = int64(f.varint)
		case 3:
			h.InstanceID = int64(f.varint)
		case 4:
			h.EncryptionMode = EncryptionMode(f.varint)
		case 5:
			h.SeqID = int64(f.varint)
		case 6:
			h.Kpn = string(f.bytes)
		case 7:
			h.DecodedPayloadLen = uint32(f.varint)
		case 8:
			ti, err := unmarshalTokenInfo(f.bytes)
			if err != nil {
				return nil, err
			}
			h.TokenInfo = ti
		}
	}
	return h, nil
}

// UpstreamPayload wraps every client->server command.
type UpstreamPayload struct {
	Command     string
	SeqID       int64
	RetryCount  uint32
	SubBiz      string
	PayloadData []byte
}

func (p *UpstreamPayload) Marshal() []byte {
	var buf []byte
	buf = appendString(buf, 1, p.Command)
	buf = appendInt64(buf, 2, p.SeqID)
	buf = appendUint32(buf, 3, p.RetryCount)
	buf = appendString(buf, 4, p.SubBiz)
	buf = appendBytes(buf, 5, p.PayloadData)
	return buf
}

func UnmarshalUpstreamPayload(data []byte) (*UpstreamPayload, error) {
	fields, err := parseFields(data)
	if err != nil {
		return nil, err
	}
	p := &UpstreamPayload{}
	for _, f := range fields {
		switch f.num {
		case 1:
			p.Command = string(f.bytes)
		case 2:
			p.SeqID = int64(f.varint)
		case 3:
			p.RetryCount = uint32(f.varint)
		case 4:
			p.SubBiz = string(f.bytes)
		case 5:
			p.PayloadData = f.bytes
		}
	}
	return p, nil
}

// DownstreamPayload wraps every server->client command.
type DownstreamPayload struct {
	Command     string
	ErrorCode   int32
	SeqID       int64
	PayloadData []byte
}

func (d *DownstreamPayload) Marshal() []byte {
	var buf []byte
	buf = appendString(buf, 1, d.Command)
	buf = appendInt32(buf, 2, d.ErrorCode)
	buf = appendInt64(buf, 3, d.SeqID)
	buf = appendBytes(buf, 4, d.PayloadData)
	return buf
}

func UnmarshalDownstreamPayload(data []byte) (*DownstreamPayload, error) {
	fields, err := parseFields(data)
	if err != nil {
		return nil, err
	}
	d := &DownstreamPayload{}
	for _, f := range fields {
		switch f.num {
		case 1:
			d.Command = string(f.bytes)
		case 2:
			d.ErrorCode = int32(f.varint)
		case 3:
			d.SeqID = int64(f.varint)
		case 4:
			d.PayloadData = f.bytes
		}
	}
	return d, nil
}
