package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/kompox/tmpcluster/domain/model"
	"github.com/kompox/tmpcluster/internal/logging"
	"github.com/kompox/tmpcluster/usecase/cluster"
)

type handler struct {
	clusters ClusterService
	ready    ReadyFunc
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// errorStatus maps use case errors to HTTP status and a stable error code.
// Order matters: a submission failure may wrap a remote error.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrClusterInvalid):
		return http.StatusBadRequest, "ClusterInvalid"
	case errors.Is(err, model.ErrTemplateParameter):
		return http.StatusBadRequest, "TemplateParameter"
	case errors.Is(err, model.ErrNameConflict):
		return http.StatusConflict, "NameConflict"
	case errors.Is(err, model.ErrNotConfigured):
		return http.StatusServiceUnavailable, "NotConfigured"
	case errors.Is(err, model.ErrAuthFailure):
		return http.StatusBadGateway, "AuthFailure"
	case errors.Is(err, model.ErrDeploymentSubmit):
		return http.StatusBadGateway, "DeploymentSubmitFailure"
	case errors.Is(err, model.ErrResourceNotFound):
		return http.StatusNotFound, "ClusterNotFound"
	case errors.Is(err, model.ErrRemoteUnavailable):
		return http.StatusServiceUnavailable, "RemoteUnavailable"
	case errors.Is(err, model.ErrTemplatesInvalid):
		return http.StatusInternalServerError, "TemplatesInvalid"
	}
	return http.StatusBadGateway, "RemoteError"
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := errorStatus(err)
	ctx := r.Context()
	logging.FromContext(ctx).Warn(ctx, "request failed", "code", code, "err", err)
	writeJSON(w, status, errorBody{Error: code, Message: err.Error()})
}

type createRequest struct {
	Name  string `json:"name"`
	Ports []int  `json:"ports"`
}

func (h *handler) createCluster(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "BadRequest", Message: err.Error()})
		return
	}
	out, err := h.clusters.Create(r.Context(), &cluster.CreateInput{Name: req.Name, Ports: req.Ports})
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/v1/clusters/"+out.Name+"/status")
	writeJSON(w, http.StatusAccepted, out)
}

func (h *handler) deleteCluster(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	out, err := h.clusters.Delete(r.Context(), &cluster.DeleteInput{Name: name})
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/v1/clusters/"+name+"/status")
	writeJSON(w, http.StatusAccepted, out)
}

func (h *handler) clusterStatus(w http.ResponseWriter, r *http.Request) {
	out, err := h.clusters.Status(r.Context(), &cluster.StatusInput{Name: mux.Vars(r)["name"]})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) clusterHistory(w http.ResponseWriter, r *http.Request) {
	in := &cluster.HistoryInput{Name: mux.Vars(r)["name"]}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "BadRequest", Message: "limit must be a positive integer"})
			return
		}
		in.Limit = n
	}
	out, err := h.clusters.History(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) healthz(w http.ResponseWriter, _ *http.Request) {
	if h.ready != nil && !h.ready() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not configured"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
