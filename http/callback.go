package http

import (
	"context"
	"errors"
	"io"
	"net/http"

	swishpay "github.com/commercekit/swishpay"
)

// maxCallbackBody bounds the notification body read. Provider documents
// are small; anything larger is not a notification.
const maxCallbackBody = 64 * 1024

// Callback receives the provider's status notification for one order. The
// order id arrives as the "order_id" query parameter appended to the
// callback URL at creation time.
//
// Anything that cannot be tied to an order and authenticated is answered
// 403 with no state change: a missing order id, an unreadable or malformed
// body, and a failed correlation check all look the same to the provider.
// A genuine notification is acknowledged 200 regardless of processing
// outcome: re-delivery cannot fix a processing failure, the scheduled poll
// backstop can.
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	orderID := r.URL.Query().Get("order_id")
	if orderID == "" {
		writeJSON(w, http.StatusForbidden, map[string]int{"status": http.StatusForbidden})
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxCallbackBody))
	if err != nil {
		writeJSON(w, http.StatusForbidden, map[string]int{"status": http.StatusForbidden})
		return
	}

	n, err := decodeNotification(body)
	if err != nil {
		h.log.Warn("rejecting malformed callback body", "order", orderID, "err", err)
		writeJSON(w, http.StatusForbidden, map[string]int{"status": http.StatusForbidden})
		return
	}

	if err := h.gw.VerifyNotification(r.Context(), orderID, n); err != nil {
		var aerr *swishpay.AuthenticationError
		if errors.As(err, &aerr) {
			writeJSON(w, http.StatusForbidden, map[string]int{"status": http.StatusForbidden})
			return
		}
		writeJSON(w, http.StatusNotFound, map[string]int{"status": http.StatusNotFound})
		return
	}

	if h.gw.Config().DeferCallbackProcessing {
		// Acknowledge before running the state machine, so a slow order
		// save never makes the provider re-deliver. The notification has
		// already been authenticated above.
		h.wg.Add(1)
		go func() {
			defer h.wg.Done()
			h.process(context.Background(), orderID, n)
		}()
		writeJSON(w, http.StatusOK, map[string]int{"status": http.StatusOK})
		return
	}

	h.process(r.Context(), orderID, n)
	writeJSON(w, http.StatusOK, map[string]int{"status": http.StatusOK})
}

func (h *Handler) process(ctx context.Context, orderID string, n *swishpay.Notification) {
	if err := h.gw.HandleNotification(ctx, orderID, n); err != nil {
		// The poll backstop reconciles what a failed apply left behind.
		h.log.Error("callback processing failed", "order", orderID, "err", err)
	}
}
