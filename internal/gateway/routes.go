package gateway

import (
	"strconv"
	"strings"

	"github.com/nerrad567/gray-logic-remote/internal/infrastructure/config"
)

// Routes holds the relative path template of every remote endpoint.
//
// Templates use {home_id} and {device_id} placeholders. Keeping them in
// one place, overridable from configuration, means a deployment behind
// a non-standard path prefix needs a config change and nothing else.
type Routes struct {
	Login            string
	Register         string
	Health           string
	Homes            string
	Rooms            string
	Devices          string
	Device           string
	DeviceAction     string
	PushToken        string
	Notifications    string
	Automations      string
	AutomationEnable string
}

// DefaultRoutes returns the route templates of the stock remote service.
func DefaultRoutes() Routes {
	return Routes{
		Login:            "/api/auth/token",
		Register:         "/api/auth/register",
		Health:           "/api/system/ping",
		Homes:            "/homes",
		Rooms:            "/homes/{home_id}/rooms",
		Devices:          "/api/devices",
		Device:           "/api/devices/{device_id}",
		DeviceAction:     "/api/devices/{device_id}/action",
		PushToken:        "/api/notifications/push-token",
		Notifications:    "/api/notifications",
		Automations:      "/api/automations/",
		AutomationEnable: "/api/automations/{automation_id}/enable",
	}
}

// RoutesFromConfig merges configured overrides over the defaults.
// Empty config fields keep the default template.
func RoutesFromConfig(cfg config.RoutesConfig) Routes {
	r := DefaultRoutes()

	override := func(dst *string, value string) {
		if value != "" {
			*dst = value
		}
	}
	override(&r.Login, cfg.Login)
	override(&r.Register, cfg.Register)
	override(&r.Health, cfg.Health)
	override(&r.Homes, cfg.Homes)
	override(&r.Rooms, cfg.Rooms)
	override(&r.Devices, cfg.Devices)
	override(&r.Device, cfg.Device)
	override(&r.DeviceAction, cfg.DeviceAction)
	override(&r.PushToken, cfg.PushToken)
	override(&r.Notifications, cfg.Notifications)
	override(&r.Automations, cfg.Automations)
	override(&r.AutomationEnable, cfg.AutomationEnable)

	return r
}

// rooms expands the rooms template for a home.
func (r Routes) rooms(homeID int64) string {
	return expand(r.Rooms, "{home_id}", homeID)
}

// device expands the single-device template.
func (r Routes) device(deviceID int64) string {
	return expand(r.Device, "{device_id}", deviceID)
}

// deviceAction expands the device action template.
func (r Routes) deviceAction(deviceID int64) string {
	return expand(r.DeviceAction, "{device_id}", deviceID)
}

// automationEnable expands the automation toggle template.
func (r Routes) automationEnable(automationID int64) string {
	return expand(r.AutomationEnable, "{automation_id}", automationID)
}

// expand substitutes a numeric id into a path template placeholder.
func expand(template, placeholder string, id int64) string {
	return strings.ReplaceAll(template, placeholder, strconv.FormatInt(id, 10))
}
