package model

import "time"

// WalletType says how a wallet record came to exist.
type WalletType string

const (
	WalletTypeGenerated WalletType = "generated"
	WalletTypeImported  WalletType = "imported"
	// WalletTypeAsset marks a token wallet that shares its key with the
	// chain's primary wallet via BaseChainWalletID.
	WalletTypeAsset WalletType = "asset"
)

// WalletRecord is one wallet in a user's local collection. Address is a
// denormalized cache of what derivation produces from (seed, path) and must
// always match it. The two vaults are independent ciphertexts under the same
// password-derived key. Records are deactivated, never deleted.
type WalletRecord struct {
	ID                  string          `json:"id"`
	ChainID             string          `json:"chainId"`
	Address             string          `json:"address"`
	WalletType          WalletType      `json:"walletType"`
	EncryptedPrivateKey *EncryptedVault `json:"encryptedPrivateKey,omitempty"`
	EncryptedMnemonic   *EncryptedVault `json:"encryptedMnemonic,omitempty"`
	CreatedAt           time.Time       `json:"createdAt"`
	IsActive            bool            `json:"isActive"`
	IsBackedUp          bool            `json:"isBackedUp"`
	AssetType           string          `json:"assetType,omitempty"`
	BaseChainWalletID   string          `json:"baseChainWalletId,omitempty"`
	Balance             string          `json:"balance,omitempty"`
}

// Chain resolves the record's stored chain id (canonical or legacy alias).
func (w *WalletRecord) Chain() (Chain, error) {
	return ParseChain(w.ChainID)
}

// Availability is the per-chain wallet state evaluated on activation.
type Availability int

// Evaluation order is fixed and load-bearing: the remote-restore check must
// run before declaring import or creation required, otherwise a user with
// cloud-backed keys gets prompted to re-import.
const (
	// Unlocked: local record present, caller holds a decrypted session.
	Unlocked Availability = iota
	// LocalEncryptedNoPassword: local record present, signing needs a
	// password prompt; read-only display works.
	LocalEncryptedNoPassword
	// RemoteOnly: no local record but a remote backup exists; a silent
	// restore transitions to LocalEncryptedNoPassword.
	RemoteOnly
	// AddressKnownNoBlob: an address is on file but no key material
	// anywhere; the user must import a mnemonic reproducing it.
	AddressKnownNoBlob
	// NoWallet: nothing exists; creation required.
	NoWallet
)

func (a Availability) String() string {
	switch a {
	case Unlocked:
		return "unlocked"
	case LocalEncryptedNoPassword:
		return "local_encrypted_no_password"
	case RemoteOnly:
		return "remote_only"
	case AddressKnownNoBlob:
		return "address_known_no_blob"
	case NoWallet:
		return "no_wallet"
	}
	return "unknown"
}
