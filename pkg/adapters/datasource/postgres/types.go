package postgres

// pgTypeNames maps built-in PostgreSQL type OIDs to display names.
var pgTypeNames = map[uint32]string{
	16:   "BOOL",
	17:   "BYTEA",
	18:   "CHAR",
	19:   "NAME",
	20:   "INT8",
	21:   "INT2",
	23:   "INT4",
	25:   "TEXT",
	26:   "OID",
	114:  "JSON",
	142:  "XML",
	650:  "CIDR",
	700:  "FLOAT4",
	701:  "FLOAT8",
	790:  "MONEY",
	829:  "MACADDR",
	869:  "INET",
	1042: "BPCHAR",
	1043: "VARCHAR",
	1082: "DATE",
	1083: "TIME",
	1114: "TIMESTAMP",
	1184: "TIMESTAMPTZ",
	1186: "INTERVAL",
	1266: "TIMETZ",
	1560: "BIT",
	1562: "VARBIT",
	1700: "NUMERIC",
	2950: "UUID",
	3802: "JSONB",

	1000: "BOOL[]",
	1005: "INT2[]",
	1007: "INT4[]",
	1016: "INT8[]",
	1009: "TEXT[]",
	1015: "VARCHAR[]",
	1021: "FLOAT4[]",
	1022: "FLOAT8[]",
	2951: "UUID[]",
	3807: "JSONB[]",
}

// pgTypeNameFromOID returns the display name for oid, or "UNKNOWN".
func pgTypeNameFromOID(oid uint32) string {
	if name, ok := pgTypeNames[oid]; ok {
		return name
	}
	return "UNKNOWN"
}
