package handlers

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
)

func (h *Handlers) handleShareURL(w http.ResponseWriter, r *http.Request) {
	link, err := h.Share.Encode(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, ShareResponse{Payload: link.Payload, URL: link.URL})
}

func (h *Handlers) handleShareQR(w http.ResponseWriter, r *http.Request) {
	png, err := h.Share.QRCode(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

func (h *Handlers) handleShareDecode(w http.ResponseWriter, r *http.Request) {
	var req ShareDecodeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	decoded, err := h.Share.Decode(r.Context(), req.Payload)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, decoded)
}

// handleShareLink answers a share URL. Browsers never send the fragment,
// so only the names are known here; the viewer decodes client-side.
func (h *Handlers) handleShareLink(w http.ResponseWriter, r *http.Request) {
	band, err := url.PathUnescape(chi.URLParam(r, "band"))
	if err != nil {
		respondError(w, BadRequest("Invalid band name"))
		return
	}
	plot, err := url.PathUnescape(chi.URLParam(r, "plot"))
	if err != nil {
		respondError(w, BadRequest("Invalid plot name"))
		return
	}
	respondOK(w, ShareLinkResponse{Band: band, Plot: plot})
}

func (h *Handlers) handleShareImport(w http.ResponseWriter, r *http.Request) {
	var req ShareImportRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	id, err := h.Share.Import(r.Context(), req.BandID, req.Payload, req.Name)
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, IDResponse{ID: id})
}
