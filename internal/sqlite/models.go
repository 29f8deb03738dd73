package sqlite

import (
	"strings"

	"github.com/guilherme-santos/gluecal/internal"
)

type Account struct {
	ID   string `db:"id"`
	Auth string `db:"auth"`
}

func (a Account) Convert() *internal.Account {
	acc := &internal.Account{
		Auth: a.Auth,
	}
	acc.Platform, acc.Name, _ = strings.Cut(a.ID, "/")
	return acc
}

type Property struct {
	Key   string `db:"key"`
	Value string `db:"value"`
}
