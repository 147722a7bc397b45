package handlers

import (
	"delivery-agent/client"
	"delivery-agent/notifications"
	"delivery-agent/orders"
	"delivery-agent/route"
	"delivery-agent/tracking"
)

// Deps are the core components the local API exposes. The UI shell
// (dashboard, map, schedule, notification bell) is the consumer.
type Deps struct {
	Backend   *client.Client
	Tracker   *tracking.Tracker
	Poller    *notifications.Poller
	Store     *orders.Store
	Refresher *orders.Refresher
	Optimizer *route.Optimizer
}

var core Deps

// Setup wires the handler package to the agent's components. Call once at
// startup, before the router is built.
func Setup(deps Deps) {
	core = deps
}
