package ethutil

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

var ErrInvalidSignature = errors.New("invalid signature")

// GeneratePrivateKey derives a secp256k1 key from sha256(secret || nonce). The
// same inputs always give the same key.
func GeneratePrivateKey(secret, nonce []byte) (*ecdsa.PrivateKey, error) {
	h := sha256.New()
	h.Write(secret)
	h.Write(nonce)
	return ethcrypto.ToECDSA(h.Sum(nil))
}

func GeneratePublicKey(secret, nonce []byte) (common.Address, error) {
	walletPrivateKey, err := GeneratePrivateKey(secret, nonce)
	if err != nil {
		return common.Address{}, err
	}

	return ethcrypto.PubkeyToAddress(walletPrivateKey.PublicKey), nil
}

// NormalizeAddress returns the checksummed form of a hex address, or false if
// the input is not an address.
func NormalizeAddress(address string) (string, bool) {
	if !common.IsHexAddress(address) {
		return "", false
	}

	return common.HexToAddress(address).Hex(), true
}

// SignText signs message following EIP-191 (personal_sign) and returns the hex
// encoded signature.
func SignText(key *ecdsa.PrivateKey, message []byte) (string, error) {
	signature, err := ethcrypto.Sign(accounts.TextHash(message), key)
	if err != nil {
		return "", err
	}

	signature[ethcrypto.RecoveryIDOffset] += 27
	return hexutil.Encode(signature), nil
}

// RecoverText returns the address which signed message with personal_sign.
func RecoverText(message []byte, signature string) (string, error) {
	if !strings.HasPrefix(signature, "0x") {
		signature = "0x" + signature
	}

	sig, err := hexutil.Decode(signature)
	if err != nil {
		return "", err
	}

	if len(sig) != ethcrypto.SignatureLength {
		return "", ErrInvalidSignature
	}

	if sig[ethcrypto.RecoveryIDOffset] == 27 || sig[ethcrypto.RecoveryIDOffset] == 28 {
		sig[ethcrypto.RecoveryIDOffset] -= 27
	}

	pubkey, err := ethcrypto.SigToPub(accounts.TextHash(message), sig)
	if err != nil {
		return "", err
	}

	return ethcrypto.PubkeyToAddress(*pubkey).Hex(), nil
}
