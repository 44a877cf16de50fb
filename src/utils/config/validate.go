package config

import (
	"fmt"
)

func (self *Config) Validate() (err error) {
	switch self.Database.Driver {
	case DatabaseDriverPostgres, DatabaseDriverSqlite:
	default:
		return fmt.Errorf("unknown database driver: %s", self.Database.Driver)
	}

	err = self.Synchronizer.validate()
	if err != nil {
		return
	}

	if self.Gateway.RateLimit <= 0 {
		return fmt.Errorf("Gateway.RateLimit must be positive")
	}
	return
}
