// Package table holds the jet model of the OHLCV table, laid out the way the
// go-jet generator emits table models so statements stay type-checked.
package table

import (
	"github.com/go-jet/jet/v2/postgres"
)

var OhlcvData = newOhlcvTable("", "ohlcv_data", "")

type ohlcvTable struct {
	postgres.Table

	// Columns
	Timestamp postgres.ColumnTimestamp
	Symbol    postgres.ColumnString
	Open      postgres.ColumnFloat
	High      postgres.ColumnFloat
	Low       postgres.ColumnFloat
	Close     postgres.ColumnFloat
	Volume    postgres.ColumnInteger

	AllColumns     postgres.ColumnList
	MutableColumns postgres.ColumnList
}

type OhlcvTable struct {
	ohlcvTable

	EXCLUDED ohlcvTable
}

// AS creates new OhlcvTable with assigned alias
func (a OhlcvTable) AS(alias string) *OhlcvTable {
	return newOhlcvTable(a.SchemaName(), a.TableName(), alias)
}

// Schema creates new OhlcvTable with assigned schema name
func (a OhlcvTable) FromSchema(schemaName string) *OhlcvTable {
	return newOhlcvTable(schemaName, a.TableName(), a.Alias())
}

func newOhlcvTable(schemaName, tableName, alias string) *OhlcvTable {
	return &OhlcvTable{
		ohlcvTable: newOhlcvTableImpl(schemaName, tableName, alias),
		EXCLUDED:   newOhlcvTableImpl("", "excluded", ""),
	}
}

func newOhlcvTableImpl(schemaName, tableName, alias string) ohlcvTable {
	var (
		TimestampColumn = postgres.TimestampColumn("timestamp")
		SymbolColumn    = postgres.StringColumn("symbol")
		OpenColumn      = postgres.FloatColumn("open")
		HighColumn      = postgres.FloatColumn("high")
		LowColumn       = postgres.FloatColumn("low")
		CloseColumn     = postgres.FloatColumn("close")
		VolumeColumn    = postgres.IntegerColumn("volume")
		allColumns      = postgres.ColumnList{TimestampColumn, SymbolColumn, OpenColumn, HighColumn, LowColumn, CloseColumn, VolumeColumn}
		mutableColumns  = postgres.ColumnList{OpenColumn, HighColumn, LowColumn, CloseColumn, VolumeColumn}
	)

	return ohlcvTable{
		Table: postgres.NewTable(schemaName, tableName, alias, allColumns...),

		//Columns
		Timestamp: TimestampColumn,
		Symbol:    SymbolColumn,
		Open:      OpenColumn,
		High:      HighColumn,
		Low:       LowColumn,
		Close:     CloseColumn,
		Volume:    VolumeColumn,

		AllColumns:     allColumns,
		MutableColumns: mutableColumns,
	}
}
