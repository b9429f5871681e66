//go:build !sqlite

package storage

import "errors"

func newSQLiteStore(_ string) (Store, error) {
	return nil, errors.New(`store backend "sqlite" needs a binary built with -tags sqlite`)
}
