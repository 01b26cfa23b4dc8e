package store

// Declare database key prefix for objects
const (
	PrefixAccount = "account:"

	PrefixState         = "state:"
	StateKeyIssuance    = PrefixState + "total_issuance"
	StateKeyBlockNumber = PrefixState + "block_number"
)
