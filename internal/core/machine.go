// danmaku-go - AcFun live push-channel client
// Copyright (c) 2026 Riverlink
// Licensed under MIT License
// https://github.com/riverlink/danmaku-go

package core

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	dproto "github.com/riverlink/danmaku-go/internal/proto"
)

const (
	kpn                  = "ACFUN_APP"
	kpf                  = "PC_WEB"
	subBizMainApp        = "mainApp"
	clientLiveSdkVersion = "kwai-acfun-live-link"
	linkVersion          = "2.13.8"
	deviceModel          = "h5"
	platformTypeH5Win    = 1

	cmdEnterRoom = "ZtLiveCsEnterRoom"
	cmdHeartbeat = "ZtLiveCsHeartbeat"
	cmdUserExit  = "ZtLiveCsUserExit"

	commandRegister   = "Basic.Register"
	commandUnregister = "Basic.Unregister"
	commandKeepAlive  = "Basic.KeepAlive"
	commandPing       = "Basic.Ping"
	commandCsCmd      = "Global.ZtLiveInteractive.CsCmd"
	commandPushMsg    = "Push.ZtLiveInteractive.Message"

	errCodeTicketExpired = 10018
)

// outboundKind enumerates every frame the machine can be asked to build.
type outboundKind int

const (
	outboundRegister outboundKind = iota
	outboundUnregister
	outboundEnterRoom
	outboundKeepAlive
	outboundPushAck
	outboundHeartbeat
	outboundUserExit
)

// builtFrame is a ready-to-send (header, payload) pair.
type builtFrame struct {
	Header  *dproto.PacketHeader
	Payload []byte
}

func (m *machine) baseHeader(mode dproto.EncryptionMode) *dproto.PacketHeader {
	return &dproto.PacketHeader{
		AppID:          m.state.appID,
		UID:            m.state.token.UserID,
		InstanceID:     m.state.instanceID,
		EncryptionMode: mode,
		Kpn:            kpn,
	}
}

// machine holds session state and translates it into outbound frames /
// inbound classification, per the single-owner cooperative model.
type machine struct {
	state  *sessionState
	logger *zap.SugaredLogger
}

func newMachine(token DanmakuToken) *machine {
	return &machine{state: newSessionState(token)}
}

func (m *machine) build(kind outboundKind) (*builtFrame, error) {
	switch kind {
	case outboundRegister:
		header := m.baseHeader(dproto.EncryptionServiceToken)
		header.SeqID = m.state.nextSeq()
		header.TokenInfo = &dproto.TokenInfo{TokenType: 1, Token: m.state.token.ServiceToken}
		req := &dproto.RegisterRequest{
			AppInfo:         &dproto.AppInfo{SdkVersion: clientLiveSdkVersion, LinkVersion: linkVersion},
			DeviceInfo:      &dproto.DeviceInfo{PlatformType: platformTypeH5Win, DeviceModel: deviceModel},
			PresenceStatus:  dproto.PresenceOnline,
			AppActiveStatus: dproto.AppActiveForeground,
			InstanceID:      m.state.instanceID,
			ZtCommonInfo:    &dproto.ZtCommonInfo{Kpn: kpn, Kpf: kpf, UID: m.state.token.UserID},
		}
		payload := (&dproto.UpstreamPayload{
			Command:     commandRegister,
			SeqID:       header.SeqID,
			SubBiz:      subBizMainApp,
			PayloadData: req.Marshal(),
		}).Marshal()
		return &builtFrame{Header: header, Payload: payload}, nil

	case outboundUnregister:
		header := m.baseHeader(dproto.EncryptionSessionKey)
		header.SeqID = m.state.seqID
		payload := (&dproto.UpstreamPayload{
			Command: commandUnregister,
			SeqID:   header.SeqID,
			SubBiz:  subBizMainApp,
		}).Marshal()
		return &builtFrame{Header: header, Payload: payload}, nil

	case outboundEnterRoom:
		header := m.baseHeader(dproto.EncryptionSessionKey)
		header.SeqID = m.state.nextSeq()
		inner := (&dproto.ZtLiveCsEnterRoom{
			EnterRoomAttach:      m.state.token.EnterRoomAttach,
			ClientLiveSdkVersion: clientLiveSdkVersion,
		}).Marshal()
		cmd := &dproto.ZtLiveCsCmd{
			CmdType: cmdEnterRoom,
			Ticket:  m.state.currentTicket(),
			LiveID:  m.state.token.LiveID,
			Payload: inner,
		}
		payload := (&dproto.UpstreamPayload{
			Command:     commandCsCmd,
			SeqID:       header.SeqID,
			SubBiz:      subBizMainApp,
			PayloadData: cmd.Marshal(),
		}).Marshal()
		return &builtFrame{Header: header, Payload: payload}, nil

	case outboundKeepAlive:
		header := m.baseHeader(dproto.EncryptionSessionKey)
		header.SeqID = m.state.nextSeq()
		req := &dproto.KeepAliveRequest{
			PresenceStatus:  dproto.PresenceOnline,
			AppActiveStatus: dproto.AppActiveForeground,
		}
		payload := (&dproto.UpstreamPayload{
			Command:     commandKeepAlive,
			SeqID:       header.SeqID,
			SubBiz:      subBizMainApp,
			PayloadData: req.Marshal(),
		}).Marshal()
		return &builtFrame{Header: header, Payload: payload}, nil

	case outboundPushAck:
		header := m.baseHeader(dproto.EncryptionSessionKey)
		header.SeqID = m.state.headerSeqID
		payload := (&dproto.UpstreamPayload{
			Command: commandPushMsg,
			SeqID:   header.SeqID,
			SubBiz:  subBizMainApp,
		}).Marshal()
		return &builtFrame{Header: header, Payload: payload}, nil

	case outboundHeartbeat:
		header := m.baseHeader(dproto.EncryptionSessionKey)
		header.SeqID = m.state.nextSeq()
		inner := (&dproto.ZtLiveCsHeartbeat{
			ClientTimestampMs: time.Now().UnixMilli(),
			Sequence:          m.state.heartbeatSeqID,
		}).Marshal()
		cmd := &dproto.ZtLiveCsCmd{CmdType: cmdHeartbeat, Payload: inner}
		payload := (&dproto.UpstreamPayload{
			Command:     commandCsCmd,
			SeqID:       header.SeqID,
			SubBiz:      subBizMainApp,
			PayloadData: cmd.Marshal(),
		}).Marshal()
		m.state.heartbeatSeqID++
		return &builtFrame{Header: header, Payload: payload}, nil

	case outboundUserExit:
		header := m.baseHeader(dproto.EncryptionSessionKey)
		header.SeqID = m.state.nextSeq()
		cmd := &dproto.ZtLiveCsCmd{CmdType: cmdUserExit}
		payload := (&dproto.UpstreamPayload{
			Command:     commandCsCmd,
			SeqID:       header.SeqID,
			SubBiz:      subBizMainApp,
			PayloadData: cmd.Marshal(),
		}).Marshal()
		return &builtFrame{Header: header, Payload: payload}, nil
	}
	return nil, newError(KindEncodeProto, "unknown outbound kind", nil)
}

// inboundKind enumerates the classification results of 4.C.
type inboundKind int

const (
	inboundNoop inboundKind = iota
	inboundRegisterResponse
	inboundInterval
	inboundSignals
	inboundPushMessage
	inboundEnterRoom
	inboundPushAndStop
	inboundStop
	inboundClose
)

// inboundEvent is the tagged-union result of classify.
type inboundEvent struct {
	Kind         inboundKind
	IntervalMs   int64
	Signals      Signals
	PushMessage  *dproto.ZtLiveScMessage
}

// classify implements spec 4.C's inbound classification table. It mutates
// session state when the event carries state (register response, ticket
// rotation) so the caller never has to.
func (m *machine) classify(payload *dproto.DownstreamPayload) (inboundEvent, error) {
	switch payload.Command {
	case commandRegister:
		resp, err := dproto.UnmarshalRegisterResponse(payload.PayloadData)
		if err != nil {
			return inboundEvent{}, wrapf(KindDecodeProto, err, "unmarshal register response")
		}
		m.state.instanceID = resp.InstanceID
		m.state.sessionKey = resp.SessKey
		return inboundEvent{Kind: inboundRegisterResponse}, nil

	case commandCsCmd:
		ack, err := dproto.UnmarshalZtLiveCsCmdAck(payload.PayloadData)
		if err != nil {
			return inboundEvent{}, wrapf(KindDecodeProto, err, "unmarshal cs cmd ack")
		}
		switch ack.CmdAckType {
		case "ZtLiveCsEnterRoomAck":
			roomAck, err := dproto.UnmarshalZtLiveCsEnterRoomAck(ack.Payload)
			if err != nil {
				return inboundEvent{}, wrapf(KindDecodeProto, err, "unmarshal enter room ack")
			}
			return inboundEvent{Kind: inboundInterval, IntervalMs: roomAck.HeartbeatIntervalMs}, nil
		case "ZtLiveCsHeartbeatAck", "ZtLiveCsUserExitAck":
			return inboundEvent{Kind: inboundNoop}, nil
		default:
			return inboundEvent{Kind: inboundNoop}, nil
		}

	case commandKeepAlive, commandPing:
		return inboundEvent{Kind: inboundNoop}, nil

	case commandUnregister:
		return inboundEvent{Kind: inboundClose}, nil

	case commandPushMsg:
		msg, err := dproto.UnmarshalZtLiveScMessage(payload.PayloadData)
		if err != nil {
			return inboundEvent{}, wrapf(KindDecodeProto, err, "unmarshal push message")
		}
		switch msg.MessageType {
		case "ZtLiveScActionSignal", "ZtLiveScStateSignal", "ZtLiveScNotifySignal":
			sig, err := decodeSignals(msg)
			if err != nil {
				return inboundEvent{}, err
			}
			return inboundEvent{Kind: inboundSignals, Signals: sig, PushMessage: msg}, nil

		case "ZtLiveScStatusChanged":
			status, err := dproto.UnmarshalZtLiveScStatusChanged(msg.Payload)
			if err != nil {
				return inboundEvent{}, wrapf(KindDecodeProto, err, "unmarshal status changed")
			}
			if status.Type == dproto.StatusLiveClosed || status.Type == dproto.StatusLiveBanned {
				return inboundEvent{Kind: inboundPushAndStop, PushMessage: msg}, nil
			}
			return inboundEvent{Kind: inboundPushMessage, PushMessage: msg}, nil

		case "ZtLiveScTicketInvalid":
			m.state.rotateTicket()
			return inboundEvent{Kind: inboundEnterRoom, PushMessage: msg}, nil

		default:
			return inboundEvent{Kind: inboundPushMessage, PushMessage: msg}, nil
		}

	default:
		if payload.ErrorCode == errCodeTicketExpired {
			return inboundEvent{Kind: inboundStop}, nil
		}
		if payload.ErrorCode != 0 && m.logger != nil {
			m.logger.Warnw("received non-fatal server error, ignoring",
				"command", payload.Command, "error_code", payload.ErrorCode)
		}
		return inboundEvent{Kind: inboundNoop}, nil
	}
}

func (m *machine) recordHeaderSeq(header *dproto.PacketHeader) {
	m.state.headerSeqID = header.SeqID
	if header.AppID != 0 {
		m.state.appID = header.AppID
	}
}

func (m *machine) securityKey() ([]byte, error) {
	return decodeSecurityKey(m.state.token.SecurityKey)
}

func (m *machine) currentKeyFor(mode dproto.EncryptionMode) ([]byte, error) {
	switch mode {
	case dproto.EncryptionServiceToken:
		return m.securityKey()
	case dproto.EncryptionSessionKey:
		if len(m.state.sessionKey) == 0 {
			return nil, newError(KindNoSessionKey, "session key not yet established", nil)
		}
		return m.state.sessionKey, nil
	default:
		return nil, nil
	}
}

func (m *machine) encode(frame *builtFrame) ([]byte, error) {
	key, err := m.currentKeyFor(frame.Header.EncryptionMode)
	if err != nil {
		return nil, err
	}
	return encodeFrame(frame.Header, frame.Payload, key)
}

func (m *machine) decode(msg []byte) (*decodedFrame, error) {
	securityKey, err := m.securityKey()
	if err != nil {
		return nil, err
	}
	decoded, err := decodeFrame(msg, securityKey, m.state.sessionKey)
	if err != nil {
		return nil, err
	}
	m.recordHeaderSeq(decoded.Header)
	return decoded, nil
}

func (m *machine) describe() string {
	return fmt.Sprintf("uid=%d liver=%d instance=%d ticket=%d/%d",
		m.state.token.UserID, m.state.token.LiverUID, m.state.instanceID,
		m.state.ticketIndex, len(m.state.token.Tickets))
}
