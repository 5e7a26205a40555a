// Package restapi implements the danmaku token collaborator: an HTTP
// client that optionally logs in, exchanges for a visitor or user token,
// and fetches live-room metadata, projecting the result into a
// core.DanmakuToken. The core treats all of this as an opaque handshake.
package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/riverlink/danmaku-go/internal/core"
)

const (
	acfunID        = "https://id.app.acfun.cn/"
	acfunLive      = "https://live.acfun.cn/"
	kuaishouZt     = "https://api.kuaishouzt.com/"
	requestTimeout = 15 * time.Second
)

// ClientBuilder is the REST façade described by the core's Token
// collaborator contract: login -> device id -> visitor/user token ->
// live-room info -> DanmakuToken.
type ClientBuilder struct {
	httpClient *http.Client
	logger     *zap.SugaredLogger

	// idBase/liveBase/ztBase default to the real AcFun/Kuaishou hosts;
	// overridable so tests can point them at an httptest.Server.
	idBase   string
	liveBase string
	ztBase   string

	mu        sync.Mutex
	loggedIn  bool
	deviceID  string
	token     ApiToken
	giftNames map[int64]string
}

// NewClientBuilder constructs a builder with its own cookie jar, the same
// http.Client{Timeout: ...} pattern the gateway uses for outbound webhook
// delivery.
func NewClientBuilder(logger *zap.SugaredLogger) (*ClientBuilder, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &ClientBuilder{
		httpClient: &http.Client{Jar: jar, Timeout: requestTimeout},
		logger:     logger,
		idBase:     acfunID,
		liveBase:   acfunLive,
		ztBase:     kuaishouZt,
		giftNames:  make(map[int64]string),
	}, nil
}

// Login authenticates with username/password against the ID host. Returned
// Set-Cookie values are captured automatically by the builder's cookie jar.
// Skipping Login produces a visitor token instead of a user token.
func (b *ClientBuilder) Login(ctx context.Context, account, password string) error {
	form := url.Values{"username": {account}, "password": {password}}
	var resp loginResponse
	if err := b.postForm(ctx, b.idBase+"rest/web/login/signin", form, &resp); err != nil {
		return fmt.Errorf("login request: %w", err)
	}
	if resp.Result != 0 {
		return fmt.Errorf("login failed: %s", resp.Message)
	}

	b.mu.Lock()
	b.loggedIn = true
	b.mu.Unlock()
	return nil
}

// deviceID fetches and caches the _did cookie from a GET of the live host.
func (b *ClientBuilder) ensureDeviceID(ctx context.Context) (string, error) {
	b.mu.Lock()
	if b.deviceID != "" {
		id := b.deviceID
		b.mu.Unlock()
		return id, nil
	}
	b.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.liveBase, nil)
	if err != nil {
		return "", err
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch device id: %w", err)
	}
	defer resp.Body.Close()

	liveURL, _ := url.Parse(b.liveBase)
	for _, cookie := range b.httpClient.Jar.Cookies(liveURL) {
		if cookie.Name == "_did" {
			b.mu.Lock()
			b.deviceID = cookie.Value
			b.mu.Unlock()
			return cookie.Value, nil
		}
	}
	return "", fmt.Errorf("restapi: _did cookie not present in response")
}

// ensureToken exchanges for a visitor token (no prior Login) or a user
// token (after Login), caching the result.
func (b *ClientBuilder) ensureToken(ctx context.Context) (ApiToken, error) {
	b.mu.Lock()
	if b.token.isLogin() {
		tok := b.token
		b.mu.Unlock()
		return tok, nil
	}
	loggedIn := b.loggedIn
	b.mu.Unlock()

	deviceID, err := b.ensureDeviceID(ctx)
	if err != nil {
		return ApiToken{}, err
	}

	var token ApiToken
	if loggedIn {
		var resp userTokenResponse
		form := url.Values{"sid": {"acfun.midground.api"}}
		if err := b.postForm(ctx, b.idBase+"rest/app/token/get", form, &resp); err != nil {
			return ApiToken{}, fmt.Errorf("user token exchange: %w", err)
		}
		if resp.Result != 0 {
			return ApiToken{}, fmt.Errorf("user token exchange failed, result=%d", resp.Result)
		}
		token = ApiToken{UserID: resp.UserID, SecurityKey: resp.SecurityKey, ServiceToken: resp.ServiceToken, DeviceID: deviceID}
	} else {
		var resp visitorTokenResponse
		form := url.Values{"sid": {"acfun.api.visitor"}}
		if err := b.postForm(ctx, b.idBase+"rest/app/visitor/login", form, &resp); err != nil {
			return ApiToken{}, fmt.Errorf("visitor token exchange: %w", err)
		}
		if resp.Result != 0 {
			return ApiToken{}, fmt.Errorf("visitor token exchange failed, result=%d", resp.Result)
		}
		token = ApiToken{UserID: resp.UserID, SecurityKey: resp.SecurityKey, ServiceToken: resp.ServiceToken, DeviceID: deviceID}
	}

	if !token.isLogin() {
		return ApiToken{}, fmt.Errorf("restapi: token exchange returned incomplete token")
	}

	b.mu.Lock()
	b.token = token
	b.mu.Unlock()
	return token, nil
}

// FetchLiveInfo fetches room metadata (ticket list, live id, security
// attach) for liverUID from the live host.
func (b *ClientBuilder) FetchLiveInfo(ctx context.Context, liverUID int64) (Live, error) {
	form := url.Values{"authorId": {fmt.Sprintf("%d", liverUID)}}
	var resp liveInfoResponse
	if err := b.postForm(ctx, b.liveBase+"rest/pc-direct/live/getRoomInfoByAuthorId", form, &resp); err != nil {
		return Live{}, fmt.Errorf("fetch live info: %w", err)
	}
	if resp.Result != 0 {
		return Live{}, fmt.Errorf("no live info for liver %d, result=%d", liverUID, resp.Result)
	}
	if resp.Data.LiveID == "" {
		return Live{}, fmt.Errorf("liver %d is not currently live", liverUID)
	}
	return Live{
		LiverUID:        resp.Data.LiverUID,
		LiveID:          resp.Data.LiveID,
		Tickets:         resp.Data.Tickets,
		EnterRoomAttach: resp.Data.EnterRoomAttach,
		Title:           resp.Data.Title,
		StartTime:       resp.Data.StartTime,
	}, nil
}

// enrichGiftCatalog fetches the KUAISHOU_ZT gift catalog once and caches
// names by gift id, used by the session manager to annotate gift signals.
// Failure here is never fatal to FetchToken.
func (b *ClientBuilder) enrichGiftCatalog(ctx context.Context, token ApiToken, liveID string) {
	b.mu.Lock()
	if len(b.giftNames) > 0 {
		b.mu.Unlock()
		return
	}
	b.mu.Unlock()

	form := url.Values{
		"principalId": {fmt.Sprintf("%d", token.UserID)},
		"liveStreamId": {liveID},
	}
	var resp giftListResponse
	if err := b.postForm(ctx, b.ztBase+"rest/zt/live/gift/list", form, &resp); err != nil {
		b.logger.Debugw("gift catalog fetch failed, continuing without names", "err", err)
		return
	}
	if resp.Result != 0 {
		return
	}

	names := make(map[int64]string, len(resp.Data.GiftList))
	for _, g := range resp.Data.GiftList {
		names[g.GiftID] = g.GiftName
	}
	b.mu.Lock()
	b.giftNames = names
	b.mu.Unlock()
}

// GiftName returns the cached display name for a gift id, if known.
func (b *ClientBuilder) GiftName(giftID int64) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	name, ok := b.giftNames[giftID]
	return name, ok
}

// FetchToken runs the full collaborator sequence and projects the result
// into a core.DanmakuToken for liverUID.
func (b *ClientBuilder) FetchToken(ctx context.Context, liverUID int64) (core.DanmakuToken, error) {
	if liverUID <= 0 {
		return core.DanmakuToken{}, fmt.Errorf("restapi: invalid liver uid %d", liverUID)
	}

	apiToken, err := b.ensureToken(ctx)
	if err != nil {
		return core.DanmakuToken{}, err
	}

	live, err := b.FetchLiveInfo(ctx, liverUID)
	if err != nil {
		return core.DanmakuToken{}, err
	}
	if live.EnterRoomAttach == "" || len(live.Tickets) == 0 {
		return core.DanmakuToken{}, fmt.Errorf("restapi: incomplete live info for liver %d", liverUID)
	}

	go b.enrichGiftCatalog(context.Background(), apiToken, live.LiveID)

	return core.DanmakuToken{
		UserID:          apiToken.UserID,
		LiverUID:        liverUID,
		SecurityKey:     apiToken.SecurityKey,
		ServiceToken:    apiToken.ServiceToken,
		LiveID:          live.LiveID,
		EnterRoomAttach: live.EnterRoomAttach,
		Tickets:         live.Tickets,
	}, nil
}

func (b *ClientBuilder) postForm(ctx context.Context, endpoint string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBufferString(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, endpoint)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
