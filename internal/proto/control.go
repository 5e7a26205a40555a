package proto

// AppInfo identifies the client SDK/link version during registration.
type AppInfo struct {
	SdkVersion  string
	LinkVersion string
}

func (a *AppInfo) Marshal() []byte {
	if a == nil {
		return nil
	}
	var buf []byte
	buf = appendString(buf, 1, a.SdkVersion)
	buf = appendString(buf, 2, a.LinkVersion)
	return buf
}

// DeviceInfo identifies the simulated device platform.
type DeviceInfo struct {
	PlatformType int32
	DeviceModel  string
}

func (d *DeviceInfo) Marshal() []byte {
	if d == nil {
		return nil
	}
	var buf []byte
	buf = appendInt32(buf, 1, d.PlatformType)
	buf = appendString(buf, 2, d.DeviceModel)
	return buf
}

// ZtCommonInfo carries the platform identification triple (kpn/kpf/uid).
type ZtCommonInfo struct {
	Kpn string
	Kpf string
	UID int64
}

func (z *ZtCommonInfo) Marshal() []byte {
	if z == nil {
		return nil
	}
	var buf []byte
	buf = appendString(buf, 1, z.Kpn)
	buf = appendString(buf, 2, z.Kpf)
	buf = appendInt64(buf, 3, z.UID)
	return buf
}

const (
	PresenceOnline     int32 = 1
	AppActiveForeground int32 = 1
)

// RegisterRequest is the body of the Basic.Register upstream command.
type RegisterRequest struct {
	AppInfo         *AppInfo
	DeviceInfo      *DeviceInfo
	PresenceStatus  int32
	AppActiveStatus int32
	InstanceID      int64
	ZtCommonInfo    *ZtCommonInfo
}

func (r *RegisterRequest) Marshal() []byte {
	var buf []byte
	buf = appendMessage(buf, 1, r.AppInfo.Marshal())
	buf = appendMessage(buf, 2, r.DeviceInfo.Marshal())
	buf = appendInt32(buf, 3, r.PresenceStatus)
	buf = appendInt32(buf, 4, r.AppActiveStatus)
	buf = appendInt64(buf, 5, r.InstanceID)
	buf = appendMessage(buf, 6, r.ZtCommonInfo.Marshal())
	return buf
}

// RegisterResponse is the decoded Basic.Register downstream payload.
type RegisterResponse struct {
	InstanceID int64
	SessKey    []byte
}

func (r *RegisterResponse) Marshal() []byte {
	var buf []byte
	buf = appendInt64(buf, 1, r.InstanceID)
	buf = appendBytes(buf, 2, r.SessKey)
	return buf
}

func UnmarshalRegisterResponse(data []byte) (*RegisterResponse, error) {
	fields, err := parseFields(data)
	if err != nil {
		return nil, err
	}
	r := &RegisterResponse{}
	for _, f := range fields {
		switch f.num {
		case 1:
			r.InstanceID = int64(f.varint)
		case 2:
			r.SessKey = f.bytes
		}
	}
	return r, nil
}

// KeepAliveRequest is the body of the Basic.KeepAlive upstream command.
type KeepAliveRequest struct {
	PresenceStatus  int32
	AppActiveStatus int32
}

func (k *KeepAliveRequest) Marshal() []byte {
	var buf []byte
	buf = appendInt32(buf, 1, k.PresenceStatus)
	buf = appendInt32(buf, 2, k.AppActiveStatus)
	return buf
}

// ZtLiveCsCmd wraps every Global.ZtLiveInteractive.CsCmd subtype.
type ZtLiveCsCmd struct {
	CmdType string
	Ticket  string
	LiveID  string
	Payload []byte
}

func (c *ZtLiveCsCmd) Marshal() []byte {
	var buf []byte
	buf = appendString(buf, 1, c.CmdType)
	buf = appendString(buf, 2, c.Ticket)
	buf = appendString(buf, 3, c.LiveID)
	buf = appendBytes(buf, 4, c.Payload)
	return buf
}

func UnmarshalZtLiveCsCmd(data []byte) (*ZtLiveCsCmd, error) {
	fields, err := parseFields(data)
	if err != nil {
		return nil, err
	}
	c := &ZtLiveCsCmd{}
	for _, f := range fields {
		switch f.num {
		case 1:
			c.CmdType = string(f.bytes)
		case 2:
			c.Ticket = string(f.bytes)
		case 3:
			c.LiveID = string(f.bytes)
		case 4:
			c.Payload = f.bytes
		}
	}
	return c, nil
}

// ZtLiveCsCmdAck is the decoded response to any ZtLiveCsCmd.
type ZtLiveCsCmdAck struct {
	CmdAckType string
	Payload    []byte
}

func (a *ZtLiveCsCmdAck) Marshal() []byte {
	var buf []byte
	buf = appendString(buf, 1, a.CmdAckType)
	buf = appendBytes(buf, 2, a.Payload)
	return buf
}

func UnmarshalZtLiveCsCmdAck(data []byte) (*ZtLiveCsCmdAck, error) {
	fields, err := parseFields(data)
	if err != nil {
		return nil, err
	}
	a := &ZtLiveCsCmdAck{}
	for _, f := range fields {
		switch f.num {
		case 1:
			a.CmdAckType = string(f.bytes)
		case 2:
			a.Payload = f.bytes
		}
	}
	return a, nil
}

// ZtLiveCsEnterRoom is the payload of the ENTER_ROOM cmd.
type ZtLiveCsEnterRoom struct {
	EnterRoomAttach      string
	ClientLiveSdkVersion string
}

func (e *ZtLiveCsEnterRoom) Marshal() []byte {
	var buf []byte
	buf = appendString(buf, 1, e.EnterRoomAttach)
	buf = appendString(buf, 2, e.ClientLiveSdkVersion)
	return buf
}

// ZtLiveCsEnterRoomAck carries the server-declared heartbeat interval.
type ZtLiveCsEnterRoomAck struct {
	HeartbeatIntervalMs int64
}

func (a *ZtLiveCsEnterRoomAck) Marshal() []byte {
	var buf []byte
	buf = appendInt64(buf, 1, a.HeartbeatIntervalMs)
	return buf
}

func UnmarshalZtLiveCsEnterRoomAck(data []byte) (*ZtLiveCsEnterRoomAck, error) {
	fields, err := parseFields(data)
	if err != nil {
		return nil, err
	}
	a := &ZtLiveCsEnterRoomAck{}
	for _, f := range fields {
		if f.num == 1 {
			a.HeartbeatIntervalMs = int64(f.varint)
		}
	}
	return a, nil
}

func UnmarshalZtLiveCsEnterRoom(data []byte) (*ZtLiveCsEnterRoom, error) {
	fields, err := parseFields(data)
	if err != nil {
		return nil, err
	}
	e := &ZtLiveCsEnterRoom{}
	for _, f := range fields {
		switch f.num {
		case 1:
			e.EnterRoomAttach = string(f.bytes)
		case 2:
			e.ClientLiveSdkVersion = string(f.bytes)
		}
	}
	return e, nil
}

// ZtLiveCsHeartbeat is the payload of the HEARTBEAT cmd.
type ZtLiveCsHeartbeat struct {
	ClientTimestampMs int64
	Sequence          int64
}

func (h *ZtLiveCsHeartbeat) Marshal() []byte {
	var buf []byte
	buf = appendInt64(buf, 1, h.ClientTimestampMs)
	buf = appendInt64(buf, 2, h.Sequence)
	return buf
}

func UnmarshalZtLiveCsHeartbeat(data []byte) (*ZtLiveCsHeartbeat, error) {
	fields, err := parseFields(data)
	if err != nil {
		return nil, err
	}
	h := &ZtLiveCsHeartbeat{}
	for _, f := range fields {
		switch f.num {
		case 1:
			h.ClientTimestampMs = int64(f.varint)
		case 2:
			h.Sequence = int64(f.varint)
		}
	}
	return h, nil
}

// ZtLiveCsHeartbeatAck is the (empty) ack body for the HEARTBEAT cmd.
type ZtLiveCsHeartbeatAck struct{}

func UnmarshalZtLiveCsHeartbeatAck(data []byte) (*ZtLiveCsHeartbeatAck, error) {
	return &ZtLiveCsHeartbeatAck{}, nil
}

// ZtLiveCsUserExit is the (empty) payload of the USER_EXIT cmd.
type ZtLiveCsUserExit struct{}

func (*ZtLiveCsUserExit) Marshal() []byte { return nil }

// ZtLiveCsUserExitAck is the (empty) ack body for the USER_EXIT cmd.
type ZtLiveCsUserExitAck struct{}

func UnmarshalZtLiveCsUserExitAck(data []byte) (*ZtLiveCsUserExitAck, error) {
	return &ZtLiveCsUserExitAck{}, nil
}
