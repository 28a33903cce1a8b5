package gemini

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidURL             = errors.New("invalid gemini url")
	ErrConnection             = errors.New("connection failed")
	ErrTLS                    = errors.New("tls handshake failed")
	ErrTimeout                = errors.New("timed out")
	ErrTooLarge               = errors.New("response too large")
	ErrInvalidResponse        = errors.New("invalid response")
	ErrInputRequired          = errors.New("input required")
	ErrSensitiveInputRequired = errors.New("sensitive input required")
	ErrRedirectLoop           = errors.New("too many redirects")
	ErrCertificateChanged     = errors.New("certificate changed")
	ErrClientCertRequired     = errors.New("client certificate required, which is not supported")
	ErrServerStatus           = errors.New("server returned an error status")
)

// TimeoutError reports a blocking step that did not finish within the
// configured timeout.
type TimeoutError struct {
	Step    string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: server did not respond within %s", e.Step, e.Timeout)
}

func (e *TimeoutError) Is(target error) bool { return target == ErrTimeout }

// InputRequiredError is returned for 1x responses. The caller is expected to
// prompt with Prompt and retry through Client.Submit. Sensitive input must be
// masked while typed.
type InputRequiredError struct {
	URL       string
	Prompt    string
	Sensitive bool
}

func (e *InputRequiredError) Error() string {
	if e.Sensitive {
		return fmt.Sprintf("sensitive input requested: %s", e.Prompt)
	}
	return fmt.Sprintf("input requested: %s", e.Prompt)
}

func (e *InputRequiredError) Is(target error) bool {
	if e.Sensitive {
		return target == ErrSensitiveInputRequired
	}
	return target == ErrInputRequired
}

// CertificateChangedError means a known host presented a certificate whose
// fingerprint differs from the stored one.
type CertificateChangedError struct {
	Host           string
	OldFingerprint string
	NewFingerprint string
}

func (e *CertificateChangedError) Error() string {
	return fmt.Sprintf("certificate for %s has changed (stored %s, presented %s); this may indicate a man-in-the-middle attack",
		e.Host, e.OldFingerprint, e.NewFingerprint)
}

func (e *CertificateChangedError) Is(target error) bool { return target == ErrCertificateChanged }

// ServerError carries a 4x or 5x response.
type ServerError struct {
	Status int
	Meta   string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("gemini error %d (%s): %s", e.Status, StatusText(e.Status), e.Meta)
}

func (e *ServerError) Is(target error) bool { return target == ErrServerStatus }

// Temporary reports whether the server signalled a 4x failure.
func (e *ServerError) Temporary() bool { return e.Status/10 == classTemporary }
