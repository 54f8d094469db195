package auth

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/ssh"

	"github.com/dittonosql/go-sdk/pkg/nosqlerr"
)

// ParsePrivateKeyPEM decodes an RSA private key from PEM bytes, accepting
// PKCS#1, PKCS#8 and, when passphrase is non-empty, an encrypted PEM block
// (spec.md §4.5: "PEM/PKCS#1/PKCS#8, passphrase-protected keys"). An
// encrypted PKCS#1 block is decrypted with the classic RFC 1423 cipher via
// x509.DecryptPEMBlock's replacement in golang.org/x/crypto/ssh, since the
// standard library deprecated its own decryptor without a direct
// replacement.
func ParsePrivateKeyPEM(data []byte, passphrase string) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, nosqlerr.New(nosqlerr.IllegalArgument, "private key: no PEM block found")
	}

	der := block.Bytes
	if passphrase != "" {
		if !isEncryptedPEMBlock(block) {
			return nil, nosqlerr.New(nosqlerr.IllegalArgument, "private key: passphrase given for an unencrypted key")
		}
		decrypted, err := decryptPEMBlock(block, []byte(passphrase))
		if err != nil {
			return nil, nosqlerr.New(nosqlerr.IllegalArgument, "private key: decrypt: %v", err)
		}
		der = decrypted
	}

	if key, err := x509.ParsePKCS1PrivateKey(der); err == nil {
		return key, nil
	}

	parsed, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, nosqlerr.New(nosqlerr.IllegalArgument, "private key: unrecognized PKCS#1/PKCS#8 encoding: %v", err)
	}
	rsaKey, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, nosqlerr.New(nosqlerr.IllegalArgument, "private key: PKCS#8 key is not RSA")
	}
	return rsaKey, nil
}

// LoadPrivateKeyFile reads and parses the private key at path, expanding a
// leading "~/" against the caller's home directory the way the config-file
// provider's key_file entries do.
func LoadPrivateKeyFile(path, passphrase string) (*rsa.PrivateKey, error) {
	data, err := os.ReadFile(ExpandHome(path))
	if err != nil {
		return nil, nosqlerr.New(nosqlerr.IllegalArgument, "private key: read %q: %v", path, err)
	}
	return ParsePrivateKeyPEM(data, passphrase)
}

// ExpandHome expands a leading "~/" to the current user's home directory.
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~/") && path != "~" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}

func isEncryptedPEMBlock(block *pem.Block) bool {
	_, ok := block.Headers["DEK-Info"]
	return ok
}

func decryptPEMBlock(block *pem.Block, password []byte) ([]byte, error) {
	// ssh.ParseRawPrivateKeyWithPassphrase understands the classic
	// "Proc-Type: 4,ENCRYPTED" / "DEK-Info" PEM encryption OpenSSL used
	// for PKCS#1 keys, which x509 never supported decrypting directly.
	key, err := ssh.ParseRawPrivateKeyWithPassphrase(pem.EncodeToMemory(block), password)
	if err != nil {
		return nil, err
	}
	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, nosqlerr.New(nosqlerr.IllegalArgument, "private key: decrypted key is not RSA")
	}
	return x509.MarshalPKCS1PrivateKey(rsaKey), nil
}
