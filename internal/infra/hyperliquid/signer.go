package hyperliquid

import (
	"crypto/ecdsa"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

type rsvSig struct {
	R string `json:"r"`
	S string `json:"s"`
	V uint8  `json:"v"`
}

// Signer produces the EIP-712 agent signatures the exchange endpoint expects.
// The action payload and nonce are hashed into a connection id which the
// signing key attests to; the venue recovers the agent wallet address from
// the signature.
type Signer struct {
	key     *ecdsa.PrivateKey
	address string
}

func NewSigner(privateKeyHex string) (*Signer, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return &Signer{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey).Hex(),
	}, nil
}

// Address returns the agent wallet address derived from the signing key.
func (s *Signer) Address() string { return s.address }

// SignAction signs the action/nonce pair.
func (s *Signer) SignAction(action interface{}, nonce uint64) (rsvSig, error) {
	connectionID, err := actionHash(action, nonce)
	if err != nil {
		return rsvSig{}, err
	}

	typedData := apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": {
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
				{Name: "verifyingContract", Type: "address"},
			},
			"Agent": {
				{Name: "source", Type: "string"},
				{Name: "connectionId", Type: "bytes32"},
			},
		},
		PrimaryType: "Agent",
		Domain: apitypes.TypedDataDomain{
			Name:              "Exchange",
			Version:           "1",
			ChainId:           (*math.HexOrDecimal256)(big.NewInt(1337)),
			VerifyingContract: "0x0000000000000000000000000000000000000000",
		},
		Message: apitypes.TypedDataMessage{
			"source":       "a",
			"connectionId": hexutil.Encode(connectionID[:]),
		},
	}

	digest, _, err := apitypes.TypedDataAndHash(typedData)
	if err != nil {
		return rsvSig{}, fmt.Errorf("failed to hash typed data: %w", err)
	}

	sig, err := crypto.Sign(digest, s.key)
	if err != nil {
		return rsvSig{}, fmt.Errorf("failed to sign action: %w", err)
	}

	return rsvSig{
		R: "0x" + hex.EncodeToString(sig[:32]),
		S: "0x" + hex.EncodeToString(sig[32:64]),
		V: sig[64] + 27,
	}, nil
}

func actionHash(action interface{}, nonce uint64) ([32]byte, error) {
	data, err := json.Marshal(action)
	if err != nil {
		return [32]byte{}, fmt.Errorf("failed to marshal action: %w", err)
	}

	var nonceBytes [8]byte
	binary.BigEndian.PutUint64(nonceBytes[:], nonce)

	var out [32]byte
	copy(out[:], crypto.Keccak256(data, nonceBytes[:]))
	return out, nil
}
