package postgis

import (
	"database/sql"
	"strings"

	"github.com/omniscale/clipwater/log"
)

// disableDefaultSsl adds sslmode=disable to params if no sslmode is set.
func disableDefaultSsl(params string) string {
	if !strings.Contains(params, "sslmode=") {
		params += " sslmode=disable"
	}
	return strings.TrimSpace(params)
}

// stripParam removes key=value from the space separated params and
// returns the value and the remaining params. lib/pq refuses unknown
// parameters.
func stripParam(params, key string) (string, string) {
	parts := strings.Fields(params)
	var value string
	var rest []string
	for _, p := range parts {
		if strings.HasPrefix(p, key+"=") {
			value = strings.TrimPrefix(p, key+"=")
		} else {
			rest = append(rest, p)
		}
	}
	return value, strings.Join(rest, " ")
}

func rollbackIfTx(tx **sql.Tx) {
	if *tx != nil {
		if err := (*tx).Rollback(); err != nil {
			log.Printf("[error] rollback failed: %s", err)
		}
	}
}
