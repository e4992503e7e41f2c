package main

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"hash"

	"golang.org/x/crypto/pbkdf2"
)

// AlgorithmHandle is an open HMAC algorithm of a Provider
type AlgorithmHandle struct {
	name    string
	newHash func() hash.Hash
	closed  bool
}

// Name returns the provider name of the algorithm
func (h *AlgorithmHandle) Name() string {
	return h.name
}

// Provider is the key-derivation primitive the program builds on
type Provider interface {
	OpenAlgorithm(name string) (*AlgorithmHandle, error)
	NativeDigestSize(h *AlgorithmHandle) (int, error)
	DerivePBKDF2(h *AlgorithmHandle, password, salt []byte, iterations, keyLen int) ([]byte, error)
	CloseAlgorithm(h *AlgorithmHandle) error
}

// hmacProvider implements Provider with golang.org/x/crypto/pbkdf2
type hmacProvider struct{}

func newHMACProvider() *hmacProvider {
	return &hmacProvider{}
}

var hashConstructors = map[string]func() hash.Hash{
	SHA1.String():   sha1.New,
	SHA256.String(): sha256.New,
	SHA384.String(): sha512.New384,
	SHA512.String(): sha512.New,
}

func (p *hmacProvider) OpenAlgorithm(name string) (*AlgorithmHandle, error) {
	newHash, ok := hashConstructors[name]
	if !ok {
		return nil, &ProviderError{Code: StatusNotFound, Operation: "OpenAlgorithm"}
	}
	return &AlgorithmHandle{name: name, newHash: newHash}, nil
}

func (p *hmacProvider) NativeDigestSize(h *AlgorithmHandle) (int, error) {
	if h == nil || h.closed {
		return 0, &ProviderError{Code: StatusInvalidHandle, Operation: "NativeDigestSize"}
	}
	return h.newHash().Size(), nil
}

func (p *hmacProvider) DerivePBKDF2(h *AlgorithmHandle, password, salt []byte, iterations, keyLen int) ([]byte, error) {
	if h == nil || h.closed {
		return nil, &ProviderError{Code: StatusInvalidHandle, Operation: "DerivePBKDF2"}
	}
	if iterations < 1 || keyLen < 1 {
		return nil, &ProviderError{Code: StatusInvalidParameter, Operation: "DerivePBKDF2"}
	}
	return pbkdf2.Key(password, salt, iterations, keyLen, h.newHash), nil
}

func (p *hmacProvider) CloseAlgorithm(h *AlgorithmHandle) error {
	if h == nil || h.closed {
		return &ProviderError{Code: StatusInvalidHandle, Operation: "CloseAlgorithm"}
	}
	h.closed = true
	return nil
}

// deriveKey runs PBKDF2 through the provider. The key length is the native
// digest size of the algorithm. On any provider failure no key is returned.
func deriveKey(p Provider, arena *bufferArena, params DerivationParameters) (key []byte, err error) {
	if p == nil {
		return nil, &ProviderError{Code: StatusInvalidHandle, Operation: "OpenAlgorithm"}
	}

	h, err := p.OpenAlgorithm(params.Algorithm.String())
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := p.CloseAlgorithm(h); cerr != nil && err == nil {
			zeroBytes(key)
			key, err = nil, cerr
		}
	}()

	size, err := p.NativeDigestSize(h)
	if err != nil {
		return nil, err
	}

	out, err := arena.alloc(size, "hash value")
	if err != nil {
		return nil, err
	}

	dk, err := p.DerivePBKDF2(h, params.Password, params.Salt, params.IterationCount, size)
	if err != nil {
		return nil, err
	}
	if len(dk) != size {
		zeroBytes(dk)
		return nil, &ProviderError{Code: StatusInvalidParameter, Operation: "DerivePBKDF2"}
	}
	copy(out, dk)
	zeroBytes(dk)
	return out, nil
}
