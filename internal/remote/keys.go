package remote

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/ssh"
)

// ErrAuthUnavailable means no usable SSH key material exists for the
// target. There is no password fallback: callers must not dial at all.
var ErrAuthUnavailable = errors.New("remote: ssh authentication unavailable")

// keyParser is one entry in the ordered parser table. Parsers are tried in
// sequence and the first success wins; x/crypto/ssh detects the key
// algorithm (RSA, DSA, ECDSA, Ed25519) itself, so the table's axis is
// encryption, not algorithm.
type keyParser struct {
	name  string
	parse func(key []byte, passphrase string) (ssh.Signer, error)
}

var keyParsers = []keyParser{
	{
		name: "unencrypted",
		parse: func(key []byte, _ string) (ssh.Signer, error) {
			return ssh.ParsePrivateKey(key)
		},
	},
	{
		name: "passphrase-protected",
		parse: func(key []byte, passphrase string) (ssh.Signer, error) {
			if passphrase == "" {
				return nil, errors.New("no passphrase supplied")
			}
			return ssh.ParsePrivateKeyWithPassphrase(key, []byte(passphrase))
		},
	},
}

// parseSigner resolves private key bytes into an ssh.Signer by walking the
// parser table. An empty key, or a key no parser accepts, yields
// ErrAuthUnavailable with each parser's failure attached.
func parseSigner(key []byte, passphrase string) (ssh.Signer, error) {
	if len(key) == 0 {
		return nil, fmt.Errorf("%w: no private key configured", ErrAuthUnavailable)
	}

	var failures []string
	for _, p := range keyParsers {
		signer, err := p.parse(key, passphrase)
		if err == nil {
			return signer, nil
		}
		failures = append(failures, fmt.Sprintf("%s: %v", p.name, err))
	}

	return nil, fmt.Errorf("%w: no key parser matched (%s)",
		ErrAuthUnavailable, strings.Join(failures, "; "))
}
