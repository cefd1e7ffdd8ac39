// go-mcprotocol
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-mcprotocol.
//
// go-mcprotocol is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-mcprotocol is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-mcprotocol; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/ZaparooProject/go-mcprotocol/device"
	"github.com/ZaparooProject/go-mcprotocol/internal/logging"
	testutil "github.com/ZaparooProject/go-mcprotocol/internal/testing"
	"github.com/go-chi/chi/v5"
)

const maxPoints = 7168

// DevicesResponse is the JSON body of a device read.
type DevicesResponse struct {
	Device string `json:"device"`
	Words  []int  `json:"words,omitempty"`
	Bits   []bool `json:"bits,omitempty"`
}

// DevicesRequest is the JSON body of a device write. Exactly one of Words
// and Bits must be set.
type DevicesRequest struct {
	Words []int  `json:"words,omitempty"`
	Bits  []bool `json:"bits,omitempty"`
}

// InjectRequest queues an end code for the next MC protocol request.
type InjectRequest struct {
	EndCode string `json:"end_code"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type handlers struct {
	plc *testutil.VirtualPLC
	log *logging.Logger
}

func newRouter(plc *testutil.VirtualPLC, logger *logging.Logger) chi.Router {
	h := &handlers{plc: plc, log: logger}
	r := chi.NewRouter()
	r.Get("/status", h.handleStatus)
	r.Get("/devices", h.handleDeviceNames)
	r.Get("/devices/{ref}", h.handleRead)
	r.Put("/devices/{ref}", h.handleWrite)
	r.Post("/inject", h.handleInject)
	return r
}

func (h *handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("encode response: %v", err)
	}
}

func (h *handlers) writeError(w http.ResponseWriter, status int, err error) {
	h.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (h *handlers) handleStatus(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, h.plc.Snapshot())
}

func (h *handlers) handleDeviceNames(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, device.Names(h.plc.Family))
}

func (h *handlers) reference(w http.ResponseWriter, r *http.Request) (device.Reference, bool) {
	ref, err := device.ParseReference(h.plc.Family, chi.URLParam(r, "ref"))
	if err != nil {
		var unknown *device.UnknownDeviceError
		status := http.StatusBadRequest
		if errors.As(err, &unknown) {
			status = http.StatusNotFound
		}
		h.writeError(w, status, err)
		return device.Reference{}, false
	}
	return ref, true
}

// handleRead serves GET /devices/{ref}?count=N[&bits=true].
func (h *handlers) handleRead(w http.ResponseWriter, r *http.Request) {
	ref, ok := h.reference(w, r)
	if !ok {
		return
	}
	count := 1
	if s := r.URL.Query().Get("count"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > maxPoints {
			h.writeError(w, http.StatusBadRequest, errors.New("count must be between 1 and 7168"))
			return
		}
		count = n
	}
	bits, _ := strconv.ParseBool(r.URL.Query().Get("bits"))

	resp := DevicesResponse{Device: ref.String()}
	if bits {
		resp.Bits = h.plc.ReadBits(ref, count)
	} else {
		resp.Words = h.plc.ReadWords(ref, count)
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// handleWrite serves PUT /devices/{ref}.
func (h *handlers) handleWrite(w http.ResponseWriter, r *http.Request) {
	ref, ok := h.reference(w, r)
	if !ok {
		return
	}
	var req DevicesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	switch {
	case len(req.Words) > 0 && len(req.Bits) == 0 && len(req.Words) <= maxPoints:
		h.plc.WriteWords(ref, req.Words)
	case len(req.Bits) > 0 && len(req.Words) == 0 && len(req.Bits) <= maxPoints:
		h.plc.WriteBits(ref, req.Bits)
	default:
		h.writeError(w, http.StatusBadRequest, errors.New("set either words or bits"))
		return
	}
	h.log.Verbose("http write %s", ref)
	w.WriteHeader(http.StatusNoContent)
}

// handleInject serves POST /inject.
func (h *handlers) handleInject(w http.ResponseWriter, r *http.Request) {
	var req InjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	code, err := strconv.ParseUint(req.EndCode, 0, 16)
	if err != nil || code == 0 {
		h.writeError(w, http.StatusBadRequest, errors.New("end_code must be a non-zero 16-bit value"))
		return
	}
	h.plc.InjectEndCode(uint16(code))
	h.log.Info("next request fails with end code 0x%04X", code)
	w.WriteHeader(http.StatusAccepted)
}
