// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the coin poll server.

	mux := router.NewRouter(router.Deps{...})

# Endpoints

	GET /health             - Liveness
	GET /ws                 - Websocket commands and poll broadcasts
	GET /polls/{id}         - Poll snapshot
	GET /codes/{code}       - Poll snapshot by voter access code
	GET /network/addresses  - LAN addresses participants can use
	GET /metrics            - Prometheus metrics (when a Gatherer is set)
*/
package router
