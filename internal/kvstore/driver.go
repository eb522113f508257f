package kvstore

import (
	"database/sql"

	sqlite3 "github.com/mutecomm/go-sqlcipher/v4"
)

const (
	// DriverName is the project-specific SQLCipher driver registration.
	// go-sqlcipher registers "sqlite3" itself; a dedicated name keeps this
	// package from fighting other sqlite drivers linked into the same binary.
	DriverName = "sqlite3_devicestate"
)

func init() {
	sql.Register(DriverName, &sqlite3.SQLiteDriver{})
}
