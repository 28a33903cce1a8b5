package gemini

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"os"
)

// Dialer opens the TCP connection a request travels over.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// acceptAnyCertificate is installed as the handshake verifier. Gemini has no
// CA ecosystem; the certificate is judged by the TrustStore once the
// handshake has finished.
func acceptAnyCertificate(_ [][]byte, _ [][]*x509.Certificate) error {
	return nil
}

func tlsConfig(serverName string) *tls.Config {
	return &tls.Config{
		ServerName:            serverName,
		MinVersion:            tls.VersionTLS12,
		InsecureSkipVerify:    true,
		VerifyPeerCertificate: acceptAnyCertificate,
	}
}

// peerLeaf returns the DER bytes of the certificate the server presented.
func peerLeaf(state tls.ConnectionState) ([]byte, error) {
	if len(state.PeerCertificates) == 0 {
		return nil, fmt.Errorf("%w: server presented no certificate", ErrTLS)
	}
	return state.PeerCertificates[0].Raw, nil
}

// isTimeout reports whether err came from an expired deadline or context.
func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
