package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/gray-logic-remote/internal/device"
	"github.com/nerrad567/gray-logic-remote/internal/home"
	"github.com/nerrad567/gray-logic-remote/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-remote/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-remote/internal/session"
)

// defaultRequestTimeout bounds one HTTP call when config omits a value.
const defaultRequestTimeout = 15 * time.Second

// Client is the typed HTTP client for the remote home-automation service.
//
// The base URL and bearer token are re-read from the session store on
// every call, so a login, logout, or endpoint change takes effect on the
// next request without rebuilding the client.
//
// Thread Safety: All methods are safe for concurrent use.
type Client struct {
	routes     Routes
	sessions   session.Store
	httpClient *http.Client
	logger     *logging.Logger
}

// New creates a gateway client.
//
// Parameters:
//   - cfg: Server configuration (timeout and route overrides)
//   - sessions: Session store supplying endpoint and token per call
//   - logger: Structured logger
//
// Returns:
//   - *Client: Ready-to-use client
func New(cfg config.ServerConfig, sessions session.Store, logger *logging.Logger) *Client {
	timeout := defaultRequestTimeout
	if cfg.RequestTimeout > 0 {
		timeout = time.Duration(cfg.RequestTimeout) * time.Second
	}

	return &Client{
		routes:     RoutesFromConfig(cfg.Routes),
		sessions:   sessions,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With("component", "gateway"),
	}
}

// Credentials carries a username/password pair for login and register.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email,omitempty"`
}

// TokenResponse is the server's answer to a successful login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// RegisteredUser is the server's answer to a successful registration.
type RegisteredUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

// ActionResult is the server's acknowledgement of a device action.
type ActionResult struct {
	Status   string `json:"status"`
	DeviceID int64  `json:"device"`
	State    string `json:"state"`
}

// Notification is one entry from the server's notification history.
type Notification struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type,omitempty"`
	Read      bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// PushTokenRequest registers a device push token with the server.
type PushTokenRequest struct {
	Token      string `json:"token"`
	DeviceType string `json:"device_type"`
	DeviceName string `json:"device_name"`
}

// Automation is one server-side rule: a trigger bound to an action.
//
// TriggerType is "device_state" for rules fired by a device changing
// state, or "time" for scheduled rules; Schedule carries the timetable
// for the latter. The server owns evaluation; clients only list, create
// and toggle.
type Automation struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	TriggerType  string `json:"trigger_type"`
	TriggerValue string `json:"trigger_value"`
	Action       string `json:"action"`
	Schedule     string `json:"schedule,omitempty"`
	Enabled      bool   `json:"enabled"`
}

// CreateAutomationRequest describes a new automation rule.
type CreateAutomationRequest struct {
	Name         string `json:"name"`
	TriggerType  string `json:"trigger_type"`
	TriggerValue string `json:"trigger_value"`
	Action       string `json:"action"`
	Schedule     string `json:"schedule,omitempty"`
	Enabled      bool   `json:"enabled"`
}

// AutomationToggle is the server's acknowledgement of an enable/disable.
type AutomationToggle struct {
	Status       string `json:"status"`
	AutomationID int64  `json:"automation"`
	Enabled      bool   `json:"enabled"`
}

// Login exchanges credentials for an access token.
//
// The token is returned, not persisted; session writes are the caller's
// responsibility so login and persistence stay one logical step up.
func (c *Client) Login(ctx context.Context, username, password string) (TokenResponse, error) {
	const op = "login"

	var out TokenResponse
	if username == "" || password == "" {
		return out, &Error{Kind: KindValidation, Op: op, Message: "username and password are required"}
	}

	body := Credentials{Username: username, Password: password}
	if err := c.call(ctx, op, http.MethodPost, c.routes.Login, nil, body, &out, false); err != nil {
		return TokenResponse{}, err
	}
	if out.AccessToken == "" {
		return TokenResponse{}, &Error{Kind: KindDecode, Op: op, Message: "response carried no access token"}
	}
	return out, nil
}

// Register creates a new user account.
func (c *Client) Register(ctx context.Context, creds Credentials) (RegisteredUser, error) {
	const op = "register"

	var out RegisteredUser
	if creds.Username == "" || creds.Password == "" {
		return out, &Error{Kind: KindValidation, Op: op, Message: "username and password are required"}
	}

	if err := c.call(ctx, op, http.MethodPost, c.routes.Register, nil, creds, &out, false); err != nil {
		return RegisteredUser{}, err
	}
	return out, nil
}

// Ping hits the server health endpoint. A nil return means the
// service is reachable and answering.
func (c *Client) Ping(ctx context.Context) error {
	return c.call(ctx, "ping", http.MethodGet, c.routes.Health, nil, nil, nil, false)
}

// Homes returns every home the logged-in user can see.
func (c *Client) Homes(ctx context.Context) ([]home.Home, error) {
	var out []home.Home
	if err := c.call(ctx, "homes", http.MethodGet, c.routes.Homes, nil, nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateHome registers a new home owned by the logged-in user.
func (c *Client) CreateHome(ctx context.Context, req home.CreateHomeRequest) (home.Home, error) {
	const op = "create_home"

	var out home.Home
	if err := home.ValidateName(req.Name); err != nil {
		return out, &Error{Kind: KindValidation, Op: op, Message: err.Error(), Err: err}
	}

	if err := c.call(ctx, op, http.MethodPost, c.routes.Homes, nil, req, &out, true); err != nil {
		return home.Home{}, err
	}
	return out, nil
}

// Rooms returns the rooms of one home.
func (c *Client) Rooms(ctx context.Context, homeID int64) ([]home.Room, error) {
	const op = "rooms"

	if err := home.ValidateHomeID(homeID); err != nil {
		return nil, &Error{Kind: KindValidation, Op: op, Message: err.Error(), Err: err}
	}

	var out []home.Room
	if err := c.call(ctx, op, http.MethodGet, c.routes.rooms(homeID), nil, nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateRoom adds a room to a home.
func (c *Client) CreateRoom(ctx context.Context, homeID int64, req home.CreateRoomRequest) (home.Room, error) {
	const op = "create_room"

	var out home.Room
	if err := home.ValidateHomeID(homeID); err != nil {
		return out, &Error{Kind: KindValidation, Op: op, Message: err.Error(), Err: err}
	}
	if err := home.ValidateName(req.Name); err != nil {
		return out, &Error{Kind: KindValidation, Op: op, Message: err.Error(), Err: err}
	}

	if err := c.call(ctx, op, http.MethodPost, c.routes.rooms(homeID), nil, req, &out, true); err != nil {
		return home.Room{}, err
	}
	return out, nil
}

// Devices returns every device registered in a home, across all rooms.
func (c *Client) Devices(ctx context.Context, homeID int64) ([]device.Device, error) {
	const op = "devices"

	if err := home.ValidateHomeID(homeID); err != nil {
		return nil, &Error{Kind: KindValidation, Op: op, Message: err.Error(), Err: err}
	}

	query := url.Values{"home_id": {strconv.FormatInt(homeID, 10)}}
	var out []device.Device
	if err := c.call(ctx, op, http.MethodGet, c.routes.Devices, query, nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

// Device returns a single device by id.
func (c *Client) Device(ctx context.Context, deviceID int64) (device.Device, error) {
	const op = "device"

	var out device.Device
	if deviceID <= 0 {
		return out, &Error{Kind: KindValidation, Op: op, Message: fmt.Sprintf("invalid device id %d", deviceID)}
	}

	if err := c.call(ctx, op, http.MethodGet, c.routes.device(deviceID), nil, nil, &out, true); err != nil {
		return device.Device{}, err
	}
	return out, nil
}

// CreateDevice registers a new device in a home.
func (c *Client) CreateDevice(ctx context.Context, homeID int64, req device.CreateRequest) (device.Device, error) {
	const op = "create_device"

	var out device.Device
	if err := home.ValidateHomeID(homeID); err != nil {
		return out, &Error{Kind: KindValidation, Op: op, Message: err.Error(), Err: err}
	}
	if err := device.ValidateCreateRequest(req); err != nil {
		return out, &Error{Kind: KindValidation, Op: op, Message: err.Error(), Err: err}
	}

	query := url.Values{"home_id": {strconv.FormatInt(homeID, 10)}}
	if err := c.call(ctx, op, http.MethodPost, c.routes.Devices, query, req, &out, true); err != nil {
		return device.Device{}, err
	}
	return out, nil
}

// SendAction asks the server to move a device to a new state.
// The returned state is authoritative and may differ from the request.
func (c *Client) SendAction(ctx context.Context, deviceID int64, newState string) (ActionResult, error) {
	const op = "device_action"

	var out ActionResult
	if err := device.ValidateControl(deviceID, newState); err != nil {
		return out, &Error{Kind: KindValidation, Op: op, Message: err.Error(), Err: err}
	}

	query := url.Values{"new_state": {newState}}
	if err := c.call(ctx, op, http.MethodPost, c.routes.deviceAction(deviceID), query, nil, &out, true); err != nil {
		return ActionResult{}, err
	}
	return out, nil
}

// RegisterPushToken associates a push notification token with the
// logged-in user.
func (c *Client) RegisterPushToken(ctx context.Context, req PushTokenRequest) error {
	const op = "push_token"

	if req.Token == "" {
		return &Error{Kind: KindValidation, Op: op, Message: "push token is required"}
	}

	return c.call(ctx, op, http.MethodPost, c.routes.PushToken, nil, req, nil, true)
}

// Automations returns every automation rule visible to the user.
func (c *Client) Automations(ctx context.Context) ([]Automation, error) {
	var out []Automation
	if err := c.call(ctx, "automations", http.MethodGet, c.routes.Automations, nil, nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateAutomation registers a new automation rule with the server.
// The server reloads its scheduler, so a time-triggered rule is live as
// soon as the call returns.
func (c *Client) CreateAutomation(ctx context.Context, req CreateAutomationRequest) (Automation, error) {
	const op = "create_automation"

	var out Automation
	if req.Name == "" || req.TriggerType == "" || req.Action == "" {
		return out, &Error{Kind: KindValidation, Op: op, Message: "name, trigger type and action are required"}
	}

	if err := c.call(ctx, op, http.MethodPost, c.routes.Automations, nil, req, &out, true); err != nil {
		return Automation{}, err
	}
	return out, nil
}

// EnableAutomation switches an automation rule on or off.
func (c *Client) EnableAutomation(ctx context.Context, automationID int64, enabled bool) (AutomationToggle, error) {
	const op = "automation_enable"

	var out AutomationToggle
	if automationID <= 0 {
		return out, &Error{Kind: KindValidation, Op: op, Message: fmt.Sprintf("invalid automation id %d", automationID)}
	}

	query := url.Values{"enabled": {strconv.FormatBool(enabled)}}
	if err := c.call(ctx, op, http.MethodPost, c.routes.automationEnable(automationID), query, nil, &out, true); err != nil {
		return AutomationToggle{}, err
	}
	return out, nil
}

// Notifications returns the user's notification history.
func (c *Client) Notifications(ctx context.Context) ([]Notification, error) {
	var out []Notification
	if err := c.call(ctx, "notifications", http.MethodGet, c.routes.Notifications, nil, nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

// call performs one HTTP round trip: resolve endpoint and token from
// the session store, encode the body, classify the outcome.
func (c *Client) call(ctx context.Context, op, method, path string, query url.Values, body, out any, authed bool) error {
	endpoint, err := c.sessions.Endpoint(ctx)
	if err != nil {
		return &Error{Kind: KindNetwork, Op: op, Message: "resolving endpoint", Err: err}
	}

	var token string
	if authed {
		token, err = c.sessions.Token(ctx)
		if err != nil {
			return &Error{Kind: KindUnauthenticated, Op: op, Message: "reading stored token", Err: err}
		}
		if token == "" {
			return &Error{Kind: KindUnauthenticated, Op: op, Message: "not logged in"}
		}
	}

	target := strings.TrimRight(endpoint, "/") + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return &Error{Kind: KindValidation, Op: op, Message: "encoding request body", Err: err}
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return &Error{Kind: KindValidation, Op: op, Message: "building request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "op", op, "error", err)
		return &Error{Kind: KindNetwork, Op: op, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if gerr := classifyStatus(op, resp); gerr != nil {
		c.logger.Debug("request rejected", "op", op, "status", resp.StatusCode)
		return gerr
	}

	if out == nil {
		// Drain body to allow connection reuse
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Kind: KindDecode, Op: op, Status: resp.StatusCode, Message: "decoding response body", Err: err}
	}
	return nil
}

// classifyStatus maps a non-2xx response to a discriminated error.
// The server's detail message is carried when it can be extracted.
func classifyStatus(op string, resp *http.Response) *Error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	message := http.StatusText(resp.StatusCode)
	var detail struct {
		Detail string `json:"detail"`
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err == nil && json.Unmarshal(raw, &detail) == nil && detail.Detail != "" {
		message = detail.Detail
	}

	kind := KindServer
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		kind = KindUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		kind = KindNotFound
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		// Other 4xx responses are the server refusing the request shape.
		kind = KindValidation
	}

	return &Error{Kind: kind, Op: op, Status: resp.StatusCode, Message: message}
}
