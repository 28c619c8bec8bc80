package tlsclient

import (
	"bytes"
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/pkcs12"
)

// KeyMaterial is the client identity read from a key store.
type KeyMaterial struct {
	// Certificate is ready for tls.Config.Certificates, leaf first.
	Certificate tls.Certificate
	// Leaf is the parsed certificate matching the private key.
	Leaf *x509.Certificate
}

var pemMarker = []byte("-----BEGIN ")

// LoadKeyStore reads the client certificate and private key from path.
//
// PEM bundles are recognized by their armor; encrypted PEM keys are opened
// with keyPassword. Anything else is treated as PKCS#12 and opened with
// storePassword, falling back to keyPassword when the archive was sealed
// with the key password instead.
func LoadKeyStore(path, storePassword, keyPassword string) (*KeyMaterial, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read key store %s: %w", path, err)
	}

	var blocks []*pem.Block
	if bytes.Contains(data, pemMarker) {
		blocks, err = decodePEMBundle(data, keyPassword)
	} else {
		blocks, err = decodePKCS12(data, storePassword, keyPassword)
	}
	if err != nil {
		return nil, fmt.Errorf("key store %s: %w", path, err)
	}

	return buildKeyMaterial(blocks)
}

func decodePKCS12(data []byte, storePassword, keyPassword string) ([]*pem.Block, error) {
	blocks, err := pkcs12.ToPEM(data, storePassword)
	if errors.Is(err, pkcs12.ErrIncorrectPassword) && keyPassword != storePassword {
		blocks, err = pkcs12.ToPEM(data, keyPassword)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open PKCS#12 archive: %w", err)
	}
	return blocks, nil
}

func decodePEMBundle(data []byte, keyPassword string) ([]*pem.Block, error) {
	var blocks []*pem.Block
	for {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			break
		}
		switch {
		case block.Type == "ENCRYPTED PRIVATE KEY":
			return nil, errors.New("PKCS#8 encrypted private keys are not supported; use a legacy encrypted PEM key or PKCS#12")
		case strings.HasSuffix(block.Type, "PRIVATE KEY") && x509.IsEncryptedPEMBlock(block): //nolint:staticcheck
			der, err := x509.DecryptPEMBlock(block, []byte(keyPassword)) //nolint:staticcheck
			if err != nil {
				return nil, fmt.Errorf("failed to decrypt private key: %w", err)
			}
			block = &pem.Block{Type: block.Type, Bytes: der}
		}
		blocks = append(blocks, block)
	}
	return blocks, nil
}

func buildKeyMaterial(blocks []*pem.Block) (*KeyMaterial, error) {
	var (
		certs []*x509.Certificate
		key   crypto.Signer
	)

	for _, block := range blocks {
		switch {
		case block.Type == "CERTIFICATE":
			cert, err := x509.ParseCertificate(block.Bytes)
			if err != nil {
				return nil, fmt.Errorf("failed to parse certificate: %w", err)
			}
			certs = append(certs, cert)
		case strings.HasSuffix(block.Type, "PRIVATE KEY"):
			if key != nil {
				return nil, errors.New("more than one private key found")
			}
			k, err := parsePrivateKey(block.Bytes)
			if err != nil {
				return nil, err
			}
			key = k
		}
	}

	if key == nil {
		return nil, errors.New("no private key found")
	}
	if len(certs) == 0 {
		return nil, errors.New("no certificate found")
	}

	leafIdx := -1
	for i, cert := range certs {
		if publicKeyMatches(cert.PublicKey, key.Public()) {
			leafIdx = i
			break
		}
	}
	if leafIdx < 0 {
		return nil, errors.New("no certificate matches the private key")
	}

	leaf := certs[leafIdx]
	chain := [][]byte{leaf.Raw}
	for i, cert := range certs {
		if i != leafIdx {
			chain = append(chain, cert.Raw)
		}
	}

	return &KeyMaterial{
		Certificate: tls.Certificate{
			Certificate: chain,
			PrivateKey:  key,
			Leaf:        leaf,
		},
		Leaf: leaf,
	}, nil
}

func parsePrivateKey(der []byte) (crypto.Signer, error) {
	if key, err := x509.ParsePKCS1PrivateKey(der); err == nil {
		return key, nil
	}
	if key, err := x509.ParsePKCS8PrivateKey(der); err == nil {
		switch k := key.(type) {
		case *rsa.PrivateKey:
			return k, nil
		case *ecdsa.PrivateKey:
			return k, nil
		case ed25519.PrivateKey:
			return k, nil
		default:
			return nil, fmt.Errorf("unsupported private key type %T", key)
		}
	}
	if key, err := x509.ParseECPrivateKey(der); err == nil {
		return key, nil
	}
	return nil, errors.New("failed to parse private key")
}

func publicKeyMatches(certKey, privPub crypto.PublicKey) bool {
	k, ok := certKey.(interface{ Equal(crypto.PublicKey) bool })
	return ok && k.Equal(privPub)
}

// LoadCertPool reads a PEM trust bundle.
func LoadCertPool(path string) (*x509.CertPool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA bundle %s: %w", path, err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(data) {
		return nil, fmt.Errorf("no certificates found in CA bundle %s", path)
	}
	return pool, nil
}
