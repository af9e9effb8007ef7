package ledger

// Key layout in the kv store. The referral namespace holds both directions
// of the graph: referral:{code} -> owner userId, and
// referral:{userId}:referrer -> referrer userId (written once per redeemer).

const (
	userKeyPrefix     = "user:"
	walletKeyPrefix   = "wallet:"
	referralKeyPrefix = "referral:"
	txKeyPrefix       = "tx:"
	userTxKeyPrefix   = "tx:user:"
	referrerKeySuffix = ":referrer"
)

func userKey(userID string) string {
	return userKeyPrefix + userID
}

func walletKey(address string) string {
	return walletKeyPrefix + address
}

func referralKey(code string) string {
	return referralKeyPrefix + code
}

func referrerKey(userID string) string {
	return referralKeyPrefix + userID + referrerKeySuffix
}

func txKey(txID string) string {
	return txKeyPrefix + txID
}

func userTxKey(userID, txID string) string {
	return userTxKeyPrefix + userID + ":" + txID
}

func userTxPrefix(userID string) string {
	return userTxKeyPrefix + userID + ":"
}
