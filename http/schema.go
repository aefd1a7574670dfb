package http

import (
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	swishpay "github.com/commercekit/swishpay"
)

// notificationSchema validates the provider's notification document before
// it reaches the gateway. Only the fields the state machine keys on are
// constrained; the provider adds fields between API versions and unknown
// ones pass through.
const notificationSchema = `{
	"type": "object",
	"required": ["id", "status"],
	"properties": {
		"id": {"type": "string", "minLength": 1},
		"status": {"type": "string", "minLength": 1},
		"paymentReference": {"type": "string"},
		"originalPaymentReference": {"type": "string"},
		"errorCode": {"type": "string"},
		"errorMessage": {"type": "string"},
		"payerAlias": {"type": "string"},
		"payeeAlias": {"type": "string"},
		"amount": {"type": "number"},
		"currency": {"type": "string"},
		"message": {"type": "string"},
		"dateCreated": {"type": "string"},
		"datePaid": {"type": ["string", "null"]}
	}
}`

var compiledNotificationSchema = gojsonschema.NewStringLoader(notificationSchema)

// decodeNotification validates and unmarshals a callback body.
func decodeNotification(body []byte) (*swishpay.Notification, error) {
	result, err := gojsonschema.Validate(compiledNotificationSchema, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return nil, fmt.Errorf("invalid notification body: %w", err)
	}
	if !result.Valid() {
		errs := result.Errors()
		if len(errs) > 0 {
			return nil, fmt.Errorf("invalid notification: %s", errs[0].String())
		}
		return nil, fmt.Errorf("invalid notification")
	}

	var n swishpay.Notification
	if err := json.Unmarshal(body, &n); err != nil {
		return nil, fmt.Errorf("failed to parse notification: %w", err)
	}
	return &n, nil
}
