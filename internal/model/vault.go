package model

// VaultVersion is the current EncryptedVault format version.
const VaultVersion = 1

// KdfParams are the scrypt cost parameters recorded inside each vault so the
// defaults can change without orphaning old ciphertexts.
type KdfParams struct {
	N     int `json:"N"`
	R     int `json:"r"`
	P     int `json:"p"`
	DkLen int `json:"dkLen"`
}

// DefaultKdfParams returns the cost parameters used for new vaults.
func DefaultKdfParams() KdfParams {
	return KdfParams{N: 16384, R: 8, P: 1, DkLen: 32}
}

// EncryptedVault is the self-describing encrypted container for a secret
// (private key or mnemonic). Ciphertext, IV and Salt are base64. Salt and IV
// are freshly random per encryption call and never reused between vaults.
type EncryptedVault struct {
	Version    int       `json:"version"`
	CipherText string    `json:"ciphertext"`
	IV         string    `json:"iv"`
	Salt       string    `json:"salt"`
	KDF        string    `json:"kdf"`
	KDFParams  KdfParams `json:"kdfParams"`
}
