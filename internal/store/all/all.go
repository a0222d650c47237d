// Package all links every store backend into the binary.
package all

import (
	_ "countyloader/internal/store/postgres"
	_ "countyloader/internal/store/sqlstore"
)
