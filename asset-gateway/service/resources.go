package service

import (
	"fmt"
	"net/http"

	"github.com/plgd-dev/assethub/asset-gateway/uri"
	"github.com/plgd-dev/assethub/query/filter"
	telemetryStore "github.com/plgd-dev/assethub/telemetry/store"
)

type InsertResponse struct {
	Inserted int `json:"inserted"`
}

func (rh *RequestHandler) queryResources(w http.ResponseWriter, r *http.Request) {
	kwargs, err := filter.ParseQuery(r.URL.RawQuery)
	if err != nil {
		rh.logAndWriteErrorResponse(w, fmt.Errorf("%w: %w", errInvalidParameter, err))
		return
	}
	docs, err := rh.query.Query(r.Context(), pathValue(r, uri.ResourceTypeKey), kwargs)
	if err != nil {
		rh.logAndWriteErrorResponse(w, err)
		return
	}
	rh.writeResponse(w, http.StatusOK, docs)
}

func (rh *RequestHandler) insertResources(w http.ResponseWriter, r *http.Request) {
	var docs []telemetryStore.Document
	if err := decodeBody(r, &docs); err != nil {
		rh.logAndWriteErrorResponse(w, err)
		return
	}
	n, err := rh.query.Insert(r.Context(), pathValue(r, uri.ResourceTypeKey), docs)
	if err != nil {
		rh.logAndWriteErrorResponse(w, err)
		return
	}
	rh.writeResponse(w, http.StatusCreated, InsertResponse{Inserted: n})
}
