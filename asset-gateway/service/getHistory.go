package service

import (
	"fmt"
	"net/http"

	"github.com/plgd-dev/assethub/asset-gateway/uri"
	"github.com/plgd-dev/assethub/history"
)

func parseHistoryRequest(r *http.Request) (history.Request, error) {
	q := r.URL.Query()
	to, err := parseTime(uri.ToQueryKey, q.Get(uri.ToQueryKey), "now")
	if err != nil {
		return history.Request{}, err
	}
	from, err := parseTime(uri.FromQueryKey, q.Get(uri.FromQueryKey), defaultHistoryRange)
	if err != nil {
		return history.Request{}, err
	}
	cadence, err := parseDuration(uri.CadenceQueryKey, q.Get(uri.CadenceQueryKey), defaultCadence)
	if err != nil {
		return history.Request{}, err
	}
	attributeIDs := queryList(r, uri.AttributeIDQueryKey)
	if len(attributeIDs) == 0 {
		return history.Request{}, fmt.Errorf("%w: %v is required", errInvalidParameter, uri.AttributeIDQueryKey)
	}
	return history.Request{
		AssetID:      pathValue(r, uri.AssetIDKey),
		AttributeIDs: attributeIDs,
		From:         from,
		To:           to,
		Cadence:      cadence,
	}, nil
}

func (rh *RequestHandler) getHistory(w http.ResponseWriter, r *http.Request) {
	req, err := parseHistoryRequest(r)
	if err != nil {
		rh.logAndWriteErrorResponse(w, err)
		return
	}
	rows, err := rh.history.History(r.Context(), req)
	if err != nil {
		rh.logAndWriteErrorResponse(w, err)
		return
	}
	rh.writeResponse(w, http.StatusOK, rows)
}
