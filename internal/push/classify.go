package push

import "strings"

// Provider error codes shared by the FCM and webhook gateways.
const (
	CodeUnregistered        = "UNREGISTERED"
	CodeInvalidArgument     = "INVALID_ARGUMENT"
	CodeSenderIDMismatch    = "SENDER_ID_MISMATCH"
	CodeUnavailable         = "UNAVAILABLE"
	CodeInternal            = "INTERNAL"
	CodeQuotaExceeded       = "QUOTA_EXCEEDED"
	CodeThirdPartyAuthError = "THIRD_PARTY_AUTH_ERROR"
	CodeUnknown             = "UNKNOWN"
)

// Classification maps provider error codes to outcome classes. It is an
// explicit table rather than string matching in the gateways, so operators
// can reclassify codes through configuration without a deploy.
type Classification map[string]Class

// DefaultClassification covers the codes the supported providers emit.
// Unknown codes classify as transient: wrongly evicting a live token is worse
// than one wasted future attempt.
func DefaultClassification() Classification {
	return Classification{
		CodeUnregistered:        ClassPermanent,
		CodeInvalidArgument:     ClassPermanent,
		CodeSenderIDMismatch:    ClassPermanent,
		CodeUnavailable:         ClassTransient,
		CodeInternal:            ClassTransient,
		CodeQuotaExceeded:       ClassTransient,
		CodeThirdPartyAuthError: ClassTransient,
	}
}

// Classify returns the class for a provider error code.
func (c Classification) Classify(code string) Class {
	if class, ok := c[normalizeCode(code)]; ok {
		return class
	}
	return ClassTransient
}

// Override reclassifies the listed codes, typically from configuration.
// Empty entries are ignored.
func (c Classification) Override(permanent, transient []string) Classification {
	for _, code := range permanent {
		if normalized := normalizeCode(code); normalized != "" {
			c[normalized] = ClassPermanent
		}
	}
	for _, code := range transient {
		if normalized := normalizeCode(code); normalized != "" {
			c[normalized] = ClassTransient
		}
	}
	return c
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
