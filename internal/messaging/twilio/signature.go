package twilio

import (
	"net/url"

	"github.com/twilio/twilio-go/client"
)

// SignatureHeader carries Twilio's HMAC of the webhook URL and form.
const SignatureHeader = "X-Twilio-Signature"

// SignatureValidator checks that a webhook really came from Twilio.
type SignatureValidator struct {
	validator client.RequestValidator
}

func NewSignatureValidator(authToken string) *SignatureValidator {
	return &SignatureValidator{validator: client.NewRequestValidator(authToken)}
}

// Valid reports whether signature matches fullURL (as Twilio called it) and
// the posted form.
func (v *SignatureValidator) Valid(fullURL string, form url.Values, signature string) bool {
	if signature == "" {
		return false
	}
	params := make(map[string]string, len(form))
	for k, vals := range form {
		if len(vals) > 0 {
			params[k] = vals[0]
		}
	}
	return v.validator.Validate(fullURL, params, signature)
}
