package domain

// Table is a mongo collection name. Collections together form the
// diamond's storage area.
type Table string

const (
	TableDiamondRegistry        Table = "DiamondRegistry"
	TableDiamondSettings        Table = "DiamondSettings"
	TableDiamondVersions        Table = "DiamondVersions"
	TableWhitelistedCollections Table = "WhitelistedCollections"
	TableAllowedCurrencies      Table = "AllowedCurrencies"
	TableBuyerWhitelist         Table = "BuyerWhitelist"
	TableListings               Table = "Listings"
	TableCounters               Table = "Counters"
	TableTokens                 Table = "Tokens"
	TableTokenBalances          Table = "TokenBalances"
	TableTokenApprovals         Table = "TokenApprovals"
	TableLedgerBalances         Table = "LedgerBalances"
	TableLedgerAllowances       Table = "LedgerAllowances"
)
