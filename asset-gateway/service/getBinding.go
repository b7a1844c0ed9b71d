package service

import (
	"net/http"

	"github.com/plgd-dev/assethub/asset-gateway/uri"
)

func (rh *RequestHandler) getBinding(w http.ResponseWriter, r *http.Request) {
	b, err := rh.resolver.Resolve(r.Context(), pathValue(r, uri.AssetIDKey), pathValue(r, uri.AttributeIDKey))
	if err != nil {
		rh.logAndWriteErrorResponse(w, err)
		return
	}
	rh.writeResponse(w, http.StatusOK, b)
}
