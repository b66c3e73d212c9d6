package mysql

// `type` is a reserved word in some modes; keep it quoted everywhere.
const insertRecordsPrefix = "INSERT INTO schema_records\n  (id, `type`, output, activate, options)\nVALUES "

// Use VALUES(col) for broad compatibility with MySQL 5.7 and MariaDB.
const insertRecordsOnDup = " ON DUPLICATE KEY UPDATE\n" +
	"  `type`     = VALUES(`type`),\n" +
	"  output     = VALUES(output),\n" +
	"  activate   = VALUES(activate),\n" +
	"  options    = VALUES(options),\n" +
	"  updated_at = CURRENT_TIMESTAMP\n"

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

// Records for one category in id order, which is the order admins created them in.
const recordsForCategorySQL = "SELECT id, `type`, output, activate, options\n" +
	"FROM schema_records\n" +
	"WHERE output = ?\n" +
	"ORDER BY id"
