package auth

import (
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"fmt"

	"wager-ledger/internal/models"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

// LoginMessage is the text a wallet signs to obtain a session token.
const LoginMessage = "Sign this message to authenticate with wager-ledger"

var ErrInvalidSignature = errors.New("invalid signature")

// VerifyWalletSignature checks that signature is the wallet's ed25519
// signature of LoginMessage. Signatures may be base58 or hex encoded.
func VerifyWalletSignature(walletAddress, signature string) (models.Address, error) {
	wallet, err := models.AddressFromBase58(walletAddress)
	if err != nil {
		return models.Address{}, fmt.Errorf("invalid wallet address: %w", err)
	}

	raw, err := base58.Decode(signature)
	if err != nil || len(raw) != ed25519.SignatureSize {
		raw, err = hex.DecodeString(signature)
		if err != nil {
			return models.Address{}, fmt.Errorf("invalid signature format: %w", err)
		}
	}
	if len(raw) != ed25519.SignatureSize {
		return models.Address{}, fmt.Errorf("signature must be %d bytes", ed25519.SignatureSize)
	}

	var sig solana.Signature
	copy(sig[:], raw)
	if !sig.Verify(solana.PublicKeyFromBytes(wallet[:]), []byte(LoginMessage)) {
		return models.Address{}, ErrInvalidSignature
	}
	return wallet, nil
}
