package openid

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"wotmaps-api/internal/region"
	"wotmaps-api/internal/request"
)

// Field names of an OpenID 2.0 positive assertion.
const (
	prefix = "openid."

	FieldMode          = "openid.mode"
	FieldOPEndpoint    = "openid.op_endpoint"
	FieldIdentity      = "openid.identity"
	FieldClaimedID     = "openid.claimed_id"
	FieldReturnTo      = "openid.return_to"
	FieldResponseNonce = "openid.response_nonce"
	FieldAssocHandle   = "openid.assoc_handle"
	FieldSigned        = "openid.signed"
	FieldSig           = "openid.sig"

	modeIDRes = "id_res"

	maxFieldLength = 2048
)

var signatureFields = []string{
	FieldReturnTo,
	FieldResponseNonce,
	FieldAssocHandle,
	FieldSigned,
	FieldSig,
}

// Assertion is an indirect identity assertion relayed by the player's
// browser. Only Identity and Region are interpreted; every other field is
// echoed back to the provider untouched.
type Assertion struct {
	Region   region.Region
	Endpoint *url.URL
	Identity *url.URL
	fields   map[string]string
}

// ParseAssertion builds an Assertion from the openid.* members of values.
// Keys outside the openid namespace are ignored. A missing or repeated
// openid field, an unparseable identity, or a provider endpoint that is not
// in registry is a schema error.
func ParseAssertion(values url.Values, registry *region.Registry) (*Assertion, error) {
	fields := make(map[string]string)
	for key, vals := range values {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		if len(vals) != 1 {
			return nil, request.NewSchemaError(fmt.Sprintf("field %s must appear exactly once", key))
		}
		fields[key] = vals[0]
	}

	var missing []string
	for _, key := range []string{FieldMode, FieldOPEndpoint, FieldIdentity} {
		if fields[key] == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, request.NewSchemaError("missing required fields", missing...)
	}

	r, err := registry.RegionForProvider(fields[FieldOPEndpoint])
	if err != nil {
		return nil, request.NewSchemaError(fmt.Sprintf("unknown identity provider %q", fields[FieldOPEndpoint]), FieldOPEndpoint)
	}
	endpoints, err := registry.Resolve(r)
	if err != nil {
		return nil, err
	}

	identity, err := url.Parse(fields[FieldIdentity])
	if err != nil || !identity.IsAbs() || identity.Host == "" {
		return nil, request.NewSchemaError("identity is not an absolute URL", FieldIdentity)
	}

	return &Assertion{
		Region:   r,
		Endpoint: endpoints.IdentityProvider,
		Identity: identity,
		fields:   fields,
	}, nil
}

// Get returns the raw value of an openid field.
func (a *Assertion) Get(key string) string {
	return a.fields[key]
}

// ResponseNonce returns the provider's nonce for this assertion.
func (a *Assertion) ResponseNonce() string {
	return a.fields[FieldResponseNonce]
}

// Validate checks that the assertion is a complete positive assertion issued
// for an identity on its own provider.
func (a *Assertion) Validate() error {
	var violations []request.Violation

	if mode := a.fields[FieldMode]; mode != modeIDRes {
		violations = append(violations, request.Violation{
			Field:   FieldMode,
			Rule:    "eq=" + modeIDRes,
			Message: fmt.Sprintf("mode must be %s", modeIDRes),
		})
	}

	for _, key := range signatureFields {
		if a.fields[key] == "" {
			violations = append(violations, request.Violation{
				Field:   key,
				Rule:    "required",
				Message: "field is required in a positive assertion",
			})
		}
	}

	keys := make([]string, 0, len(a.fields))
	for key := range a.fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if len(a.fields[key]) > maxFieldLength {
			violations = append(violations, request.Violation{
				Field:   key,
				Rule:    fmt.Sprintf("max=%d", maxFieldLength),
				Message: "field is too long",
			})
		}
	}

	if !strings.EqualFold(a.Identity.Host, a.Endpoint.Host) {
		violations = append(violations, request.Violation{
			Field:   FieldIdentity,
			Rule:    "provider_host",
			Message: "identity is not hosted by the identity provider",
		})
	}

	if len(violations) > 0 {
		return &request.ValidationError{Violations: violations}
	}
	return nil
}

// checkAuthenticationForm is the direct verification request: every field of
// the assertion with the mode replaced.
func (a *Assertion) checkAuthenticationForm() url.Values {
	form := make(url.Values, len(a.fields))
	for key, value := range a.fields {
		form.Set(key, value)
	}
	form.Set(FieldMode, modeCheckAuthentication)
	return form
}
