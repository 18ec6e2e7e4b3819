// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net"
	"net/http"

	"github.com/danielhkuo/coin-poll/middleware"
	"github.com/danielhkuo/coin-poll/models"
)

// NetworkHandler tells the organizer which addresses participants can reach.
type NetworkHandler struct {
	port  int
	addrs func() ([]net.Addr, error)
}

func NewNetworkHandler(port int) *NetworkHandler {
	return &NetworkHandler{port: port, addrs: net.InterfaceAddrs}
}

// GetAddresses handles GET /network/addresses
func (h *NetworkHandler) GetAddresses(w http.ResponseWriter, r *http.Request) {
	addrs, err := h.addrs()
	if err != nil {
		slog.Error("failed to list interface addresses", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to list addresses")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.AddressesResponse{
		Addresses: LANAddresses(addrs),
		Port:      h.port,
	})
}

// LANAddresses keeps the non-loopback IPv4 addresses, in order.
func LANAddresses(addrs []net.Addr) []string {
	out := []string{}
	for _, a := range addrs {
		var ip net.IP
		switch v := a.(type) {
		case *net.IPNet:
			ip = v.IP
		case *net.IPAddr:
			ip = v.IP
		}
		if ip == nil || ip.IsLoopback() {
			continue
		}
		if ip4 := ip.To4(); ip4 != nil {
			out = append(out, ip4.String())
		}
	}
	return out
}
