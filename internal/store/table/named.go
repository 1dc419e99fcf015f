package table

// Named returns the OHLCV table layout bound to a configured table name.
// An empty schemaName leaves the name unqualified so search_path applies.
func Named(schemaName, tableName string) *OhlcvTable {
	return newOhlcvTable(schemaName, tableName, "")
}
