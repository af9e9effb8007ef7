package ledger

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
)

// newWalletKeypair generates the opaque wallet identity assigned at account
// creation: a 0x-prefixed 40-hex address and a 64-hex private key. The pair
// is a real secp256k1 keypair but the ledger treats both as plain strings;
// nothing is ever signed with the key.
func newWalletKeypair() (address, privateKey string, err error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return "", "", fmt.Errorf("failed to generate wallet keypair: %w", err)
	}

	addr := crypto.PubkeyToAddress(key.PublicKey)
	address = "0x" + strings.ToUpper(hex.EncodeToString(addr.Bytes()))
	privateKey = strings.ToUpper(hex.EncodeToString(crypto.FromECDSA(key)))
	return address, privateKey, nil
}
