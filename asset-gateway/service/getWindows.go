package service

import (
	"net/http"

	"github.com/plgd-dev/assethub/asset-gateway/uri"
	"github.com/plgd-dev/assethub/lifecycle"
)

func (rh *RequestHandler) getWindows(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	to, err := parseTime(uri.ToQueryKey, q.Get(uri.ToQueryKey), "now")
	if err != nil {
		rh.logAndWriteErrorResponse(w, err)
		return
	}
	from, err := parseTime(uri.FromQueryKey, q.Get(uri.FromQueryKey), defaultHistoryRange)
	if err != nil {
		rh.logAndWriteErrorResponse(w, err)
		return
	}
	windows, err := rh.lifecycle.Windows(r.Context(), pathValue(r, uri.ResourceTypeKey), lifecycle.Period{Start: from, End: to})
	if err != nil {
		rh.logAndWriteErrorResponse(w, err)
		return
	}
	rh.writeResponse(w, http.StatusOK, windows)
}
