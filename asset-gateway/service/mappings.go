package service

import (
	"net/http"

	"github.com/plgd-dev/assethub/asset-gateway/uri"
	mappingStore "github.com/plgd-dev/assethub/mapping/store"
)

func (rh *RequestHandler) createAsset(w http.ResponseWriter, r *http.Request) {
	var asset mappingStore.Asset
	if err := decodeBody(r, &asset); err != nil {
		rh.logAndWriteErrorResponse(w, err)
		return
	}
	created, err := rh.mappings.CreateAsset(r.Context(), &asset)
	if err != nil {
		rh.logAndWriteErrorResponse(w, err)
		return
	}
	rh.writeResponse(w, http.StatusCreated, created)
}

func (rh *RequestHandler) deleteAsset(w http.ResponseWriter, r *http.Request) {
	if err := rh.mappings.DeleteAsset(r.Context(), pathValue(r, uri.AssetIDKey)); err != nil {
		rh.logAndWriteErrorResponse(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rh *RequestHandler) createAttribute(w http.ResponseWriter, r *http.Request) {
	var attribute mappingStore.Attribute
	if err := decodeBody(r, &attribute); err != nil {
		rh.logAndWriteErrorResponse(w, err)
		return
	}
	created, err := rh.mappings.CreateAttribute(r.Context(), &attribute)
	if err != nil {
		rh.logAndWriteErrorResponse(w, err)
		return
	}
	rh.writeResponse(w, http.StatusCreated, created)
}

func (rh *RequestHandler) deleteAttribute(w http.ResponseWriter, r *http.Request) {
	if err := rh.mappings.DeleteAttribute(r.Context(), pathValue(r, uri.AttributeIDKey)); err != nil {
		rh.logAndWriteErrorResponse(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rh *RequestHandler) createMapping(w http.ResponseWriter, r *http.Request) {
	var mapping mappingStore.Mapping
	if err := decodeBody(r, &mapping); err != nil {
		rh.logAndWriteErrorResponse(w, err)
		return
	}
	created, err := rh.mappings.CreateMapping(r.Context(), &mapping)
	if err != nil {
		rh.logAndWriteErrorResponse(w, err)
		return
	}
	rh.writeResponse(w, http.StatusCreated, created)
}

func (rh *RequestHandler) deleteMapping(w http.ResponseWriter, r *http.Request) {
	if err := rh.mappings.DeleteMapping(r.Context(), pathValue(r, uri.MappingIDKey)); err != nil {
		rh.logAndWriteErrorResponse(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
