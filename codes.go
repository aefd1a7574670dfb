package swishpay

// statusText maps provider status and error codes to shopper-facing text.
// Codes are provider-defined opaque strings; unknown codes fall back to a
// generic contact-support message.
var statusText = map[string]string{
	"WAITING":  "Start your Swish app and authorize the payment",
	"PAID":     "The payment is completed",
	"DECLINED": "The payment was declined in the Swish app",
	"DEBITED":  "The merchant account has been debited",

	"RF07":     "The payment was declined by the bank",
	"BANKIDCL": "The BankID signing was cancelled",
	"TM01":     "The payment timed out, please try again",
	"DS24":     "The payment timed out waiting for an answer, please try again",
	"AM02":     "The amount is higher than the allowed maximum",
	"AM03":     "The currency is not valid",
	"AM06":     "The amount is lower than the allowed minimum",
	"AM21":     "The payment exceeds the limit agreed with the bank",
	"ACMT01":   "The counterpart is not activated for payments",
	"ACMT03":   "The payer is not enrolled with Swish",
	"ACMT07":   "The payee is not enrolled with Swish",
	"RP01":     "The merchant Swish number is missing or invalid",
	"RP02":     "The Swish number has the wrong format",
	"RP03":     "The callback URL is missing or does not use https",
	"RP06":     "A payment request is already in progress for this number",
	"BE18":     "The Swish number is not valid",
	"DS02":     "The order was declined by the bank",
	"FF08":     "The payment reference is not valid",
	"FF10":     "The bank system could not process the payment",
	"VR01":     "The payer does not meet the age requirement",
	"VR02":     "The Swish number could not be verified",
}

// genericStatusText is returned for codes without a mapping.
const genericStatusText = "Error processing the payment. Contact the shop support"

// StatusText returns the shopper-facing message for a provider status or
// error code.
func StatusText(code string) string {
	if text, ok := statusText[code]; ok {
		return text
	}
	return genericStatusText
}
